package body

import (
	"sort"
	"strings"
)

const listSuffix = "[]"

// Fields holds decoded form values keyed by field name. A value is either a
// string or a []string (for names declared with the "[]" list suffix).
type Fields map[string]any

// Has reports whether name is present.
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Get returns the raw value stored under name.
func (f Fields) Get(name string) (any, bool) {
	v, ok := f[name]
	return v, ok
}

// String returns the scalar value of name. For list values the last element
// is returned.
func (f Fields) String(name string) string {
	switch v := f[name].(type) {
	case string:
		return v
	case []string:
		if len(v) == 0 {
			return ""
		}
		return v[len(v)-1]
	default:
		return ""
	}
}

// Strings returns the value of name as a list. Scalars become a single
// element list.
func (f Fields) Strings(name string) []string {
	switch v := f[name].(type) {
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	default:
		return nil
	}
}

// Names returns the field names in lexical order.
func (f Fields) Names() []string {
	out := make([]string, 0, len(f))
	for name := range f {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if list, ok := v.([]string); ok {
			out[k] = append([]string(nil), list...)
			continue
		}
		out[k] = v
	}
	return out
}

// Merge copies every value of other into f, overwriting existing names.
func (f Fields) Merge(other Fields) Fields {
	for k, v := range other {
		f[k] = v
	}
	return f
}

// Add stores value under name. Names ending in "[]" append to a list under
// the base name; plain names overwrite.
func (f Fields) Add(name, value string) {
	if base, ok := ListBase(name); ok {
		list, _ := f[base].([]string)
		f[base] = append(list, value)
		return
	}
	f[name] = value
}

// ListBase strips the "[]" list suffix from name. It reports false when name
// does not carry the suffix or the base name would be empty.
func ListBase(name string) (string, bool) {
	if len(name) <= len(listSuffix) || !strings.HasSuffix(name, listSuffix) {
		return name, false
	}
	return strings.TrimSuffix(name, listSuffix), true
}
