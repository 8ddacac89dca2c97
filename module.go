// Package amvisie wires the body parser, binder, dispatcher and fiber app
// into an fx application.
package amvisie

import (
	"github.com/bronystylecrazy/amvisie/bind"
	"github.com/bronystylecrazy/amvisie/body"
	"github.com/bronystylecrazy/amvisie/dispatch"
	"github.com/bronystylecrazy/amvisie/log"
	"github.com/bronystylecrazy/amvisie/server"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ModuleName = "amvisie"

// HooksGroup collects dispatch.Hook values run before every invocation.
const HooksGroup = "amvisie.hooks"

func Module(opts ...fx.Option) fx.Option {
	return fx.Options(
		fx.WithLogger(log.NewEventLogger),
		fx.Module(ModuleName,
			fx.Provide(
				provideConfig,
				splitConfig,
				log.NewLevel,
				log.NewZapLogger,
				body.NewParser,
				newBinder,
				newDispatcher,
				server.NewFiberApp,
				fx.Annotate(
					server.NewZapMiddleware,
					fx.As(new(server.Handler)),
					fx.ResultTags(`group:"amvisie.handlers"`),
				),
			),
			fx.Invoke(server.SetupHandlers),
			fx.Invoke(server.RegisterFiberApp),
			fx.Invoke(watchLogLevel),
			fx.Options(opts...),
		),
	)
}

func newBinder(logger *zap.Logger) *bind.Binder {
	return bind.New(bind.WithLogger(logger))
}

type dispatcherIn struct {
	fx.In
	Parser         *body.Parser
	Binder         *bind.Binder
	Logger         *zap.Logger
	TracerProvider trace.TracerProvider `optional:"true"`
	MeterProvider  metric.MeterProvider `optional:"true"`
	Hooks          []dispatch.Hook      `group:"amvisie.hooks"`
}

func newDispatcher(in dispatcherIn) *dispatch.Dispatcher {
	return dispatch.New(in.Parser, in.Binder,
		dispatch.WithLogger(in.Logger),
		dispatch.WithTracerProvider(in.TracerProvider),
		dispatch.WithMeterProvider(in.MeterProvider),
		dispatch.WithHooks(in.Hooks...),
	)
}

// Hook runs fn before every controller invocation.
func Hook(fn dispatch.Hook) fx.Option {
	return fx.Provide(fx.Annotate(
		func() dispatch.Hook { return fn },
		fx.ResultTags(`group:"amvisie.hooks"`),
	))
}
