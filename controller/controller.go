// Package controller builds the method-descriptor table of an API
// controller once, at registration time.
package controller

import (
	"context"
	"encoding"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/bronystylecrazy/amvisie/body"
	"github.com/bronystylecrazy/amvisie/hint"
)

var (
	contextType         = reflect.TypeFor[context.Context]()
	errorType           = reflect.TypeFor[error]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	fileFieldType       = reflect.TypeFor[body.FileField]()
	bytesType           = reflect.TypeFor[[]byte]()
)

// Action declares a controller method and the request names of its
// parameters. A trailing "?" marks an optional parameter.
type Action struct {
	Name   string
	Params []string
	// Doc may carry "@param Type[] $name" tags for list parameters.
	Doc string
	// Elems maps list parameter names to their element type. It takes
	// precedence over Doc.
	Elems map[string]reflect.Type
}

type Option func(*options)

type options struct {
	name     string
	registry *hint.Registry
}

// WithName overrides the controller name used in logs and spans.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithTypeRegistry sets the registry used to resolve doc tag type names.
func WithTypeRegistry(r *hint.Registry) Option {
	return func(o *options) { o.registry = r }
}

// Controller is an immutable table of method descriptors bound to a target.
type Controller struct {
	name    string
	target  any
	methods []*Method
	byName  map[string]*Method
}

// New reflects on target once and builds a descriptor for every action.
func New(target any, actions []Action, opts ...Option) (*Controller, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	v := reflect.ValueOf(target)
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return nil, ErrInvalidTarget
	}
	if o.name == "" {
		o.name = typeName(v.Type())
	}

	c := &Controller{
		name:   o.name,
		target: target,
		byName: make(map[string]*Method, len(actions)),
	}
	resolver := hint.NewResolver(o.registry)

	for _, action := range actions {
		if _, ok := c.byName[action.Name]; ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateMethod, c.name, action.Name)
		}
		m, err := newMethod(v, action, resolver)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", c.name, action.Name, err)
		}
		c.methods = append(c.methods, m)
		c.byName[m.Name] = m
	}
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(target any, actions []Action, opts ...Option) *Controller {
	c, err := New(target, actions, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Controller) Name() string { return c.name }

func (c *Controller) Target() any { return c.target }

// Methods returns the descriptors in registration order.
func (c *Controller) Methods() []*Method {
	return append([]*Method(nil), c.methods...)
}

func (c *Controller) Method(name string) (*Method, bool) {
	m, ok := c.byName[name]
	return m, ok
}

func newMethod(target reflect.Value, action Action, resolver *hint.Resolver) (*Method, error) {
	fn := target.MethodByName(action.Name)
	if !fn.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, action.Name)
	}
	ft := fn.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic methods are not supported", ErrUnsupportedParam)
	}

	m := &Method{
		Name: action.Name,
		Verb: verbOf(action.Name),
		Doc:  action.Doc,
		fn:   fn,
	}
	if tm, ok := target.Type().MethodByName(action.Name); ok {
		pc := tm.Func.Pointer()
		if f := runtime.FuncForPC(pc); f != nil {
			m.file, m.line = f.FileLine(pc)
		}
	}

	offset := 0
	if ft.NumIn() > 0 && ft.In(0) == contextType {
		m.withContext = true
		offset = 1
	}
	if ft.NumIn()-offset != len(action.Params) {
		return nil, fmt.Errorf("%w: found %d names but method takes %d", ErrParamCount, len(action.Params), ft.NumIn()-offset)
	}

	for i, spec := range action.Params {
		name, optional := strings.CutSuffix(spec, "?")
		p := Param{
			Name:     name,
			Type:     ft.In(i + offset),
			Required: !optional,
		}
		if err := classify(&p, action, resolver); err != nil {
			return nil, err
		}
		m.Params = append(m.Params, p)
	}

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			m.returnsError = true
		} else {
			m.returnsValue = true
		}
	case 2:
		if ft.Out(1) != errorType {
			return nil, fmt.Errorf("%w: second result must be error", ErrUnsupportedReturn)
		}
		m.returnsValue, m.returnsError = true, true
	default:
		return nil, fmt.Errorf("%w: %d results", ErrUnsupportedReturn, ft.NumOut())
	}
	return m, nil
}

func classify(p *Param, action Action, resolver *hint.Resolver) error {
	t := p.Type
	switch {
	case t == fileFieldType:
		p.Kind = File
	case IsScalar(t):
		p.Kind = Scalar
	case t.Kind() == reflect.Pointer && IsScalar(t.Elem()):
		p.Kind = Scalar
		p.ByRef = true
	case t.Kind() == reflect.Slice:
		p.Kind = Array
		return classifyElem(p, action, resolver)
	case isStruct(t):
		p.Kind = Object
	default:
		return fmt.Errorf("%w: %s %s", ErrUnsupportedParam, p.Name, t)
	}
	return nil
}

func classifyElem(p *Param, action Action, resolver *hint.Resolver) error {
	elem := p.Type.Elem()

	hinted, ok := action.Elems[p.Name]
	if !ok {
		hinted, ok = resolver.ResolveArrayElementType(action.Doc, p.Name)
	}
	if ok {
		if hinted.Kind() == reflect.Struct && reflect.PointerTo(hinted).AssignableTo(elem) {
			p.Elem = reflect.PointerTo(hinted)
			return nil
		}
		if hinted.AssignableTo(elem) {
			p.Elem = hinted
			return nil
		}
		return fmt.Errorf("%w: %s cannot hold %s", ErrElementType, p.Type, hinted)
	}

	switch {
	case isStruct(elem):
		p.Elem = elem
	case IsScalar(elem), elem.Kind() == reflect.Pointer && IsScalar(elem.Elem()):
	default:
		return fmt.Errorf("%w: %s %s", ErrUnsupportedParam, p.Name, p.Type)
	}
	return nil
}

// IsScalar reports whether values of t are bound from a single text value.
// Of the interface types only the empty interface qualifies; it receives the
// raw value.
func IsScalar(t reflect.Type) bool {
	if t == bytesType || reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Interface:
		return t.NumMethod() == 0
	}
	return false
}

func isStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct && !IsScalar(t)
}

func verbOf(name string) string {
	for _, verb := range Verbs {
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(verb)) {
			return verb
		}
	}
	return ""
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}
