package bind

import "reflect"

// Arguments is the ordered result of binding, one value per parameter.
type Arguments struct {
	names  []string
	values []reflect.Value
}

func (a *Arguments) Len() int { return len(a.values) }

// Values returns the values in parameter order, ready for reflect calls.
func (a *Arguments) Values() []reflect.Value {
	return append([]reflect.Value(nil), a.values...)
}

func (a *Arguments) Value(name string) (reflect.Value, bool) {
	for i, n := range a.names {
		if n == name {
			return a.values[i], true
		}
	}
	return reflect.Value{}, false
}

// Interfaces returns the values as plain Go values.
func (a *Arguments) Interfaces() []any {
	out := make([]any, len(a.values))
	for i, v := range a.values {
		out[i] = v.Interface()
	}
	return out
}
