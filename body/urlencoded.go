package body

import (
	"net/url"
	"strings"
)

// ParseURLEncoded decodes an application/x-www-form-urlencoded string into
// Fields. Pairs are applied in order, so a repeated plain name keeps its last
// value while "name[]" pairs accumulate. Invalid percent escapes are kept
// verbatim. When escape is true every value is HTML-escaped before storage.
func ParseURLEncoded(raw string, escape bool) Fields {
	out := Fields{}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = unescapeComponent(key)
		if key == "" {
			continue
		}
		value = unescapeComponent(value)
		if escape {
			value = Escape(value)
		}
		out.Add(key, value)
	}
	return out
}

func unescapeComponent(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}
	// at least one escape is malformed; decode the rest one by one
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
