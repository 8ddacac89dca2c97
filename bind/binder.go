// Package bind builds controller method arguments from route data, request
// fields and the parsed body.
package bind

import (
	"context"
	"encoding"
	"fmt"
	"reflect"

	"github.com/bronystylecrazy/amvisie/body"
	"github.com/bronystylecrazy/amvisie/controller"
	"github.com/bronystylecrazy/amvisie/otel"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	bytesType           = reflect.TypeFor[[]byte]()
)

// Input carries the request values available for binding.
type Input struct {
	// Fields is the merged query and body field set.
	Fields    body.Fields
	RouteData map[string]string
	Body      *body.ParsedBody
}

func (in Input) lookup(name string) (any, bool) {
	if v, ok := in.Fields[name]; ok {
		return v, true
	}
	if v, ok := in.RouteData[name]; ok {
		return v, true
	}
	return nil, false
}

type Option func(*Binder)

func WithConverters(f ConverterFactory) Option {
	return func(b *Binder) { b.converters = f }
}

func WithValidator(v *validator.Validate) Option {
	return func(b *Binder) { b.validate = v }
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Binder) { b.logger = l }
}

// Binder constructs argument lists for controller methods. It is safe for
// concurrent use.
type Binder struct {
	converters ConverterFactory
	validate   *validator.Validate
	logger     *zap.Logger
}

func New(opts ...Option) *Binder {
	b := &Binder{}
	for _, opt := range opts {
		opt(b)
	}
	if b.converters == nil {
		b.converters = DefaultConverters()
	}
	if b.validate == nil {
		b.validate = validator.New()
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b
}

// Bind returns one value per parameter of m, in declaration order.
func (b *Binder) Bind(ctx context.Context, m *controller.Method, in Input) (*Arguments, error) {
	ctx, span := otel.Start(ctx, "bind."+m.Name)
	defer span.End()

	if in.Body == nil {
		in.Body = body.Empty()
	}
	args := &Arguments{
		names:  make([]string, 0, len(m.Params)),
		values: make([]reflect.Value, 0, len(m.Params)),
	}
	conv := b.converters.ConverterFor(in.Body.ContentType)

	for _, p := range m.Params {
		v, err := b.bindParam(ctx, conv, p, in)
		if err != nil {
			b.logger.Debug("parameter binding failed",
				zap.String("method", m.Name),
				zap.String("param", p.Name),
				zap.Error(err),
			)
			berr := &BindingError{Param: p.Name, Err: err}
			span.Fail(berr)
			return nil, berr
		}
		args.names = append(args.names, p.Name)
		args.values = append(args.values, v)
	}
	return args, nil
}

func (b *Binder) bindParam(ctx context.Context, conv Converter, p controller.Param, in Input) (reflect.Value, error) {
	switch p.Kind {
	case controller.Array:
		return b.bindArray(ctx, conv, p, in)

	case controller.Object:
		v, err := conv.Convert(in.Body, p.Type)
		if err != nil {
			return reflect.Value{}, err
		}
		if err := b.validateValue(ctx, v); err != nil {
			return reflect.Value{}, err
		}
		return v, nil

	case controller.File:
		return reflect.ValueOf(in.Body.Files[p.Name]), nil

	default:
		raw, _ := in.lookup(p.Name)
		return coerce(raw, p.Type)
	}
}

func (b *Binder) bindArray(ctx context.Context, conv Converter, p controller.Param, in Input) (reflect.Value, error) {
	if p.Elem != nil {
		items, err := conv.ConvertList(in.Body, p.Elem)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.MakeSlice(p.Type, 0, len(items))
		for i, item := range items {
			if err := b.validateValue(ctx, item); err != nil {
				return reflect.Value{}, fmt.Errorf("item %d: %w", i, err)
			}
			out = reflect.Append(out, item)
		}
		return out, nil
	}

	raw, ok := in.lookup(p.Name)
	if !ok || raw == nil {
		return reflect.Zero(p.Type), nil
	}
	var list []string
	switch v := raw.(type) {
	case []string:
		list = v
	case string:
		list = []string{v}
	default:
		return reflect.Value{}, fmt.Errorf("unsupported value %T", raw)
	}

	out := reflect.MakeSlice(p.Type, 0, len(list))
	for i, s := range list {
		v, err := coerce(s, p.Type.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("item %d: %w", i, err)
		}
		out = reflect.Append(out, v)
	}
	return out, nil
}

// validateValue runs `validate` struct tags and then Validate() when the
// value or its address implements Validator.
func (b *Binder) validateValue(ctx context.Context, v reflect.Value) error {
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return nil
	}
	base := v
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base.Kind() == reflect.Struct {
		if err := b.validate.StructCtx(ctx, v.Interface()); err != nil {
			return err
		}
	}

	if val, ok := v.Interface().(Validator); ok {
		return val.Validate()
	}
	if v.Kind() != reflect.Pointer {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		if val, ok := p.Interface().(Validator); ok {
			return val.Validate()
		}
	}
	return nil
}

// coerce converts a field or route value into t. A missing value yields the
// zero value; list values contribute their last element.
func coerce(raw any, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Pointer {
		inner, err := coerce(raw, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, nil
	}
	if raw == nil {
		return reflect.Zero(t), nil
	}
	if t.Kind() == reflect.Interface {
		return reflect.ValueOf(raw), nil
	}

	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case []string:
		if len(v) > 0 {
			s = v[len(v)-1]
		}
	default:
		return reflect.Value{}, fmt.Errorf("unsupported value %T", raw)
	}

	switch {
	case t == bytesType:
		return reflect.ValueOf([]byte(s)), nil
	case reflect.PointerTo(t).Implements(textUnmarshalerType):
		p := reflect.New(t)
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil { //nolint:forcetypeassert
			return reflect.Value{}, err
		}
		return p.Elem(), nil
	}

	return decodeScalar(s, t)
}
