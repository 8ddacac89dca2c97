// Package dispatch turns a request into a controller call and the call's
// result into a response envelope.
package dispatch

import (
	"context"
	"reflect"

	"github.com/bronystylecrazy/amvisie/bind"
	"github.com/bronystylecrazy/amvisie/body"
	"github.com/bronystylecrazy/amvisie/controller"
	"github.com/bronystylecrazy/amvisie/otel"
	"github.com/bronystylecrazy/amvisie/resolve"
	"github.com/bronystylecrazy/amvisie/web"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Option func(*options)

type options struct {
	logger *zap.Logger
	tp     trace.TracerProvider
	mp     metric.MeterProvider
	hooks  []Hook
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tp = tp }
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.mp = mp }
}

// WithHooks appends hooks run before every invocation.
func WithHooks(hooks ...Hook) Option {
	return func(o *options) { o.hooks = append(o.hooks, hooks...) }
}

// Dispatcher is safe for concurrent use.
type Dispatcher struct {
	parser *body.Parser
	binder *bind.Binder
	hooks  []Hook
	obs    *otel.Observer
}

func New(parser *body.Parser, binder *bind.Binder, opts ...Option) *Dispatcher {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if parser == nil {
		parser = body.NewParser(body.Config{}, o.logger)
	}
	if binder == nil {
		binder = bind.New(bind.WithLogger(o.logger))
	}
	return &Dispatcher{
		parser: parser,
		binder: binder,
		hooks:  o.hooks,
		obs:    otel.NewObserver(o.logger, o.tp, o.mp),
	}
}

// Dispatch always returns a response. Verbs without a matching method yield
// 405; every other failure, panics included, yields 500.
func (d *Dispatcher) Dispatch(ctx context.Context, ctrl *controller.Controller, req *Request) (resp *web.Response) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		req = &Request{}
	}
	if ctrl == nil {
		return web.InternalServerError(errNoController.Error(), "", 0)
	}
	ctx, span := d.obs.Start(ctx, "dispatch."+ctrl.Name(),
		trace.WithAttributes(attribute.String("http.request.method", req.Verb)),
	)
	var method *controller.Method
	defer func() {
		if r := recover(); r != nil {
			resp = d.fail(span, panicError(r), method)
		}
		attrs := []attribute.KeyValue{
			attribute.String("amvisie.controller", ctrl.Name()),
			attribute.Int("http.response.status_code", resp.Status),
		}
		span.SetAttributes(attrs...)
		span.CountRequest(ctx, attrs...)
		span.End()
	}()

	parsed := d.parser.Parse(req.Body, req.ContentType, req.Verb)
	for _, err := range parsed.Errors {
		span.Warn("skipped malformed body block", zap.Error(err))
	}

	fields := req.Query.Clone().Merge(parsed.Fields)
	names := resolve.NewNames(fields.Names()...)
	for name := range req.RouteData {
		names.Add(name)
	}

	result := resolve.Resolve(req.Verb, req.RouteMethod, ctrl.Methods(), names)
	switch result.Outcome {
	case resolve.NotFound:
		span.Debug("no method for verb", zap.String("verb", req.Verb), zap.String("route_method", req.RouteMethod))
		return web.MethodNotAllowed(req.Verb)
	case resolve.Ambiguous:
		return d.fail(span, result.Err(), nil)
	}
	method = result.Method
	span.SetAttributes(attribute.String("amvisie.method", method.Name))

	args, err := d.binder.Bind(ctx, method, bind.Input{Fields: fields, RouteData: req.RouteData, Body: parsed})
	if err != nil {
		return d.fail(span, err, method)
	}

	mc := &MethodContext{
		Controller: ctrl,
		Method:     method,
		Request:    req,
		Body:       parsed,
		Arguments:  args,
	}
	ctx = withMethodContext(ctx, mc)
	d.beforeMethodCall(ctx, ctrl, mc)
	if mc.Response != nil {
		return mc.Response
	}

	out, err := invoke(ctx, method, args)
	if err != nil {
		return d.fail(span, err, method)
	}
	return normalize(out)
}

func (d *Dispatcher) beforeMethodCall(ctx context.Context, ctrl *controller.Controller, mc *MethodContext) {
	for _, hook := range d.hooks {
		hook(ctx, mc)
		if mc.Response != nil {
			return
		}
	}
	if h, ok := ctrl.Target().(BeforeMethodCaller); ok {
		h.BeforeMethodCall(ctx, mc)
	}
}

func invoke(ctx context.Context, m *controller.Method, args *bind.Arguments) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, panicError(r)
		}
	}()
	return m.Call(ctx, args.Values())
}

func (d *Dispatcher) fail(span *otel.Span, err error, m *controller.Method) *web.Response {
	ie := newInternalError(err, m)
	span.Fail(ie)
	span.Error("dispatch failed",
		zap.Error(err),
		zap.String("file", ie.File),
		zap.Int("line", ie.Line),
	)
	return web.InternalServerError(ie.Error(), ie.File, ie.Line)
}

// normalize passes response envelopes through and wraps everything else in
// a 200 response. Nil results produce an empty 200.
func normalize(out any) *web.Response {
	switch v := out.(type) {
	case *web.Response:
		if v != nil {
			return v
		}
		return web.Ok(nil)
	case web.Response:
		return &v
	}
	if isNil(out) {
		return web.Ok(nil)
	}
	return web.Ok(out)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
