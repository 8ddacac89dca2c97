package amvisie

import (
	"fmt"

	"github.com/bronystylecrazy/amvisie/controller"
	"github.com/bronystylecrazy/amvisie/dispatch"
	"github.com/bronystylecrazy/amvisie/server"
	"go.uber.org/fx"
)

type routeOut struct {
	fx.Out
	Handler server.Handler `group:"amvisie.handlers"`
	Route   *server.Route  `group:"amvisie.routes"`
}

// Controller registers target's actions and mounts them at path. Descriptor
// errors surface when the application is built.
func Controller(path string, target any, actions []controller.Action, opts ...server.RouteOption) fx.Option {
	return fx.Provide(func(d *dispatch.Dispatcher) (routeOut, error) {
		c, err := controller.New(target, actions)
		if err != nil {
			return routeOut{}, fmt.Errorf("controller at %s: %w", path, err)
		}
		return mount(path, d, c, opts), nil
	})
}

// Mount serves an already described controller at path.
func Mount(path string, c *controller.Controller, opts ...server.RouteOption) fx.Option {
	return fx.Provide(func(d *dispatch.Dispatcher) routeOut {
		return mount(path, d, c, opts)
	})
}

func mount(path string, d *dispatch.Dispatcher, c *controller.Controller, opts []server.RouteOption) routeOut {
	rt := server.NewRoute(path, d, c, opts...)
	return routeOut{Handler: rt, Route: rt}
}

// Routes hands every mounted route to fn once the application is built.
func Routes(fn func([]*server.Route)) fx.Option {
	return fx.Invoke(fx.Annotate(fn, fx.ParamTags(`group:"amvisie.routes"`)))
}
