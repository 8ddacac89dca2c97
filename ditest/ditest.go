// Package ditest runs fx applications inside tests.
package ditest

import (
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

// App wraps fxtest.App.
type App struct {
	app *fxtest.App
}

// New builds a test app from opts. Event logging is silenced.
func New(t testing.TB, opts ...fx.Option) *App {
	t.Helper()
	return &App{app: fxtest.New(t, append(opts[:len(opts):len(opts)], fx.NopLogger)...)}
}

// RequireStart starts the app and fails the test on error.
func (a *App) RequireStart() *App {
	a.app.RequireStart()
	return a
}

// RequireStop stops the app and fails the test on error.
func (a *App) RequireStop() *App {
	a.app.RequireStop()
	return a
}

// Fx exposes the underlying fxtest.App.
func (a *App) Fx() *fxtest.App {
	return a.app
}
