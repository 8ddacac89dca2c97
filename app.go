package amvisie

import "go.uber.org/fx"

type App struct {
	options []fx.Option
}

func New(opts ...fx.Option) *App {
	return &App{options: opts}
}

// Use appends options to the application.
func (a *App) Use(opts ...fx.Option) *App {
	a.options = append(a.options, opts...)
	return a
}

func (a *App) Build() fx.Option {
	return Module(a.options...)
}

// Run starts the application and blocks until it receives a stop signal.
func (a *App) Run() {
	fx.New(a.Build()).Run()
}
