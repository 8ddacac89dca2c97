package controller

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// Kind classifies how a parameter is bound.
type Kind int

const (
	// Scalar parameters come from a named field or route value.
	Scalar Kind = iota
	// Array parameters hold a list of scalars or of body-materialized objects.
	Array
	// Object parameters are materialized from the request body.
	Object
	// File parameters receive uploads by field name.
	File
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Array:
		return "array"
	case Object:
		return "object"
	case File:
		return "file"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Verbs are the recognized method name prefixes.
var Verbs = []string{"Get", "Post", "Put", "Patch", "Delete", "Head", "Options"}

// CanonicalVerb turns an HTTP verb into its method prefix form, e.g. "GET"
// becomes "Get".
func CanonicalVerb(verb string) string {
	if verb == "" {
		return ""
	}
	lower := strings.ToLower(verb)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// Param describes one formal parameter of a controller method.
type Param struct {
	Name string
	Kind Kind
	Type reflect.Type
	// Elem is the element type materialized from the body for Array
	// parameters. It is nil for lists of scalars.
	Elem     reflect.Type
	Required bool
	// ByRef marks pointer-to-scalar parameters.
	ByRef bool
}

// Method is the descriptor of a registered controller method.
type Method struct {
	Name   string
	Verb   string
	Doc    string
	Params []Param

	fn           reflect.Value
	file         string
	line         int
	withContext  bool
	returnsValue bool
	returnsError bool
}

// RequiredCount returns the number of required parameters.
func (m *Method) RequiredCount() int {
	n := 0
	for _, p := range m.Params {
		if p.Required {
			n++
		}
	}
	return n
}

// HasPrefix reports whether the method name starts with verb, ignoring case.
func (m *Method) HasPrefix(verb string) bool {
	return verb != "" && strings.HasPrefix(strings.ToLower(m.Name), strings.ToLower(verb))
}

// Param returns the parameter called name.
func (m *Method) Param(name string) (Param, bool) {
	for _, p := range m.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Source returns the file and line the method is declared at, when known.
func (m *Method) Source() (string, int) {
	return m.file, m.line
}

// Call invokes the method. args must match Params in order and type. A
// context is prepended when the Go method declares one.
func (m *Method) Call(ctx context.Context, args []reflect.Value) (any, error) {
	if len(args) != len(m.Params) {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrParamCount, m.Name, len(m.Params), len(args))
	}
	in := args
	if m.withContext {
		if ctx == nil {
			ctx = context.Background()
		}
		in = make([]reflect.Value, 0, len(args)+1)
		in = append(in, reflect.ValueOf(ctx))
		in = append(in, args...)
	}

	out := m.fn.Call(in)

	var (
		result any
		err    error
	)
	if m.returnsValue {
		result = out[0].Interface()
	}
	if m.returnsError {
		if e := out[len(out)-1]; !e.IsNil() {
			err = e.Interface().(error) //nolint:forcetypeassert
		}
	}
	return result, err
}
