package amvisie_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/bronystylecrazy/amvisie"
	"github.com/bronystylecrazy/amvisie/cfg"
	"github.com/bronystylecrazy/amvisie/controller"
	"github.com/bronystylecrazy/amvisie/dispatch"
	"github.com/bronystylecrazy/amvisie/ditest"
	"github.com/bronystylecrazy/amvisie/server"
	"github.com/bronystylecrazy/amvisie/web"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

type greeter struct{}

func (greeter) Get() string                  { return "hello" }
func (greeter) GetByName(name string) string { return "hello " + name }
func (greeter) Delete(name string)           {}

var greeterActions = []controller.Action{
	{Name: "Get"},
	{Name: "GetByName", Params: []string{"name"}},
	{Name: "Delete", Params: []string{"name"}},
}

func testConfig(t *testing.T) amvisie.Config {
	t.Helper()
	c, err := amvisie.LoadConfig("", cfg.WithNoEnv())
	require.NoError(t, err)
	return c
}

func TestModuleServesControllers(t *testing.T) {
	var app *fiber.App
	ditest.New(t,
		amvisie.Module(
			amvisie.WithConfig(testConfig(t)),
			amvisie.Controller("/greet", greeter{}, greeterActions),
			amvisie.Controller("/greet/:name", greeter{}, greeterActions),
			amvisie.Hook(func(ctx context.Context, mc *dispatch.MethodContext) {
				if mc.Request.Verb == http.MethodDelete {
					mc.Response = web.Forbidden(nil)
				}
			}),
		),
		fx.Populate(&app),
	)

	tests := []struct {
		name   string
		method string
		target string
		status int
		want   string
	}{
		{name: "index", method: http.MethodGet, target: "/greet", status: http.StatusOK, want: "hello"},
		{name: "route data", method: http.MethodGet, target: "/greet/ann", status: http.StatusOK, want: "hello ann"},
		{name: "query", method: http.MethodGet, target: "/greet?name=bo", status: http.StatusOK, want: "hello bo"},
		{name: "hook", method: http.MethodDelete, target: "/greet/ann", status: http.StatusForbidden},
		{name: "no method", method: http.MethodPost, target: "/greet", status: http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
			require.NoError(t, err)
			require.Equal(t, tt.status, resp.StatusCode)
			if tt.want == "" {
				return
			}
			var got string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModuleRejectsBadController(t *testing.T) {
	app := fx.New(
		amvisie.Module(
			amvisie.WithConfig(testConfig(t)),
			amvisie.Controller("/bad", greeter{}, []controller.Action{{Name: "GetMissing"}}),
		),
		fx.NopLogger,
	)
	require.Error(t, app.Err())
	assert.Contains(t, app.Err().Error(), "controller at /bad")
}

func TestRoutes(t *testing.T) {
	var routes []*server.Route
	ditest.New(t,
		amvisie.Module(
			amvisie.WithConfig(testConfig(t)),
			amvisie.Controller("/greet", greeter{}, greeterActions, server.Verbs(fiber.MethodGet)),
			amvisie.Routes(func(rs []*server.Route) { routes = rs }),
		),
	)
	require.Len(t, routes, 1)
	assert.Equal(t, "/greet", routes[0].Path)
	assert.Equal(t, []string{fiber.MethodGet}, routes[0].Verbs())
	assert.Len(t, routes[0].Controller.Methods(), 3)
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := testConfig(t)
		assert.Equal(t, 8080, c.Web.Port)
		assert.Equal(t, "4MB", c.Web.BodyLimit)
		assert.Equal(t, "info", c.Log.Level)
		assert.Equal(t, 8192, c.Body.MaxHeaderBytes)
		assert.False(t, c.Body.RawValues)
	})

	t.Run("file and env", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[body]\nraw_values = true\n[web]\nport = 3000\n"), 0o600))
		t.Setenv("WEB_PORT", "9000")

		c, err := amvisie.LoadConfig(path)
		require.NoError(t, err)
		assert.True(t, c.Body.RawValues)
		assert.Equal(t, 9000, c.Web.Port)
		assert.Equal(t, "0.0.0.0", c.Web.Host)
	})
}
