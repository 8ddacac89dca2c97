package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestObserverStartEnrichesLogger(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	core, logs := observer.New(zap.InfoLevel)

	obs := NewObserver(zap.New(core), tp, nil)
	ctx, span := obs.Start(context.Background(), "dispatch.Users")
	From(ctx).Info("inside")
	span.Fail(errors.New("boom"))
	span.End()

	require.Len(t, recorder.Ended(), 1)
	ended := recorder.Ended()[0]
	assert.Equal(t, "dispatch.Users", ended.Name())
	assert.Equal(t, codes.Error, ended.Status().Code)

	entries := logs.FilterMessage("inside").All()
	require.Len(t, entries, 1)
	assert.Equal(t, ended.SpanContext().TraceID().String(), entries[0].ContextMap()["trace.id"])
}

func TestFromWithoutObserver(t *testing.T) {
	ctx, span := Start(context.Background(), "noop")
	defer span.End()
	assert.NotNil(t, From(ctx))
	From(ctx).CountRequest(ctx)
}
