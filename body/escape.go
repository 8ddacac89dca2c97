package body

import "html"

// Escape HTML-escapes s. The five special characters < > & ' " are replaced
// by their entities.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Unescape reverses Escape for callers that need the raw submitted value.
func Unescape(s string) string {
	return html.UnescapeString(s)
}

// EscapeValue escapes a field value, which is either a string or a []string.
func EscapeValue(v any) any {
	switch t := v.(type) {
	case string:
		return Escape(t)
	case []string:
		out := make([]string, len(t))
		for i, s := range t {
			out[i] = Escape(s)
		}
		return out
	default:
		return v
	}
}
