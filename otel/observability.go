// Package otel carries the logger, tracer and meter used while dispatching.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/bronystylecrazy/amvisie"

type obsKey struct{}

type Observer struct {
	*zap.Logger
	tracer   trace.Tracer
	requests metric.Int64Counter
}

type Span struct {
	*Observer
	span trace.Span
}

func NewObserver(logger *zap.Logger, tp trace.TracerProvider, mp metric.MeterProvider) *Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	if mp == nil {
		mp = metricnoop.NewMeterProvider()
	}
	requests, err := mp.Meter(instrumentationName).Int64Counter("dispatch.requests",
		metric.WithDescription("Dispatched controller requests by outcome."),
	)
	if err != nil {
		logger.Warn("failed to create dispatch counter", zap.Error(err))
		requests, _ = metricnoop.NewMeterProvider().Meter(instrumentationName).Int64Counter("dispatch.requests")
	}
	return &Observer{
		Logger:   logger,
		tracer:   tp.Tracer(instrumentationName),
		requests: requests,
	}
}

func NewNopObserver() *Observer {
	return NewObserver(zap.NewNop(), nil, nil)
}

// With stores Obs in context
func (o *Observer) With(ctx context.Context) context.Context {
	return context.WithValue(ctx, obsKey{}, o)
}

// From retrieves Obs from context
func From(ctx context.Context) *Observer {
	if o, ok := ctx.Value(obsKey{}).(*Observer); ok {
		return o
	}
	return NewNopObserver()
}

// Start begins a span with the Observer found in ctx.
func Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, *Span) {
	return From(ctx).Start(ctx, name, opts...)
}

// Start begins a span and returns a context carrying a logger enriched with
// the trace identifiers.
func (o *Observer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, *Span) {
	ctx, span := o.tracer.Start(ctx, name, opts...)

	enrichedLogger := o.Logger
	if span.IsRecording() {
		spanCtx := span.SpanContext()
		enrichedLogger = o.Logger.With(
			zap.String("trace.id", spanCtx.TraceID().String()),
			zap.String("span.id", spanCtx.SpanID().String()),
			zap.String("span.name", name),
		)
	}

	enrichedObs := &Observer{
		Logger:   enrichedLogger,
		tracer:   o.tracer,
		requests: o.requests,
	}
	ctx = enrichedObs.With(ctx)

	return ctx, &Span{Observer: enrichedObs, span: span}
}

// CountRequest adds one to the dispatch request counter.
func (o *Observer) CountRequest(ctx context.Context, attrs ...attribute.KeyValue) {
	o.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (s *Span) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

// Fail records err on the span and marks it as errored.
func (s *Span) Fail(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// End closes the span.
func (s *Span) End(options ...trace.SpanEndOption) {
	if s == nil || s.span == nil {
		return
	}
	s.span.End(options...)
}
