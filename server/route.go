package server

import (
	"strings"

	"github.com/bronystylecrazy/amvisie/body"
	"github.com/bronystylecrazy/amvisie/controller"
	"github.com/bronystylecrazy/amvisie/dispatch"
	"github.com/bronystylecrazy/amvisie/web"
	"github.com/gofiber/fiber/v3"
)

// DefaultVerbs are routed to the dispatcher unless Verbs overrides them.
var DefaultVerbs = []string{
	fiber.MethodGet,
	fiber.MethodPost,
	fiber.MethodPut,
	fiber.MethodPatch,
	fiber.MethodDelete,
}

type routeOptions struct {
	method    string
	verbs     []string
	bodyLimit int64
}

type RouteOption func(*routeOptions)

// DefaultMethod pins the route to the method named verb+name, bypassing
// convention matching.
func DefaultMethod(name string) RouteOption {
	return func(o *routeOptions) { o.method = name }
}

// Verbs limits the HTTP methods the route answers.
func Verbs(verbs ...string) RouteOption {
	return func(o *routeOptions) { o.verbs = verbs }
}

// BodyLimit caps request bodies read by the net/http adapter. Fiber routes
// use the app's BodyLimit instead.
func BodyLimit(n int64) RouteOption {
	return func(o *routeOptions) { o.bodyLimit = n }
}

func newRouteOptions(opts []RouteOption) routeOptions {
	o := routeOptions{verbs: DefaultVerbs, bodyLimit: fiber.DefaultBodyLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Route serves one path pattern with one controller.
type Route struct {
	Path       string
	Controller *controller.Controller
	dispatcher *dispatch.Dispatcher
	options    routeOptions
}

func NewRoute(path string, d *dispatch.Dispatcher, c *controller.Controller, opts ...RouteOption) *Route {
	return &Route{
		Path:       path,
		Controller: c,
		dispatcher: d,
		options:    newRouteOptions(opts),
	}
}

func (rt *Route) Verbs() []string { return append([]string(nil), rt.options.verbs...) }

func (rt *Route) DefaultMethod() string { return rt.options.method }

func (rt *Route) Handle(r fiber.Router) {
	r.Add(rt.options.verbs, rt.Path, rt.serve)
}

func (rt *Route) serve(c fiber.Ctx) error {
	req := &dispatch.Request{
		Verb:        c.Method(),
		Body:        c.Body(),
		ContentType: c.Get(fiber.HeaderContentType),
		Query:       queryFields(c.OriginalURL()),
		RouteData:   fiberRouteData(c),
		RouteMethod: rt.options.method,
	}
	return writeFiber(c, rt.dispatcher.Dispatch(c.Context(), rt.Controller, req))
}

// Mount registers a dispatching route for c on r.
func Mount(r fiber.Router, path string, d *dispatch.Dispatcher, c *controller.Controller, opts ...RouteOption) *Route {
	rt := NewRoute(path, d, c, opts...)
	rt.Handle(r)
	return rt
}

func fiberRouteData(c fiber.Ctx) map[string]string {
	route := c.Route()
	if route == nil || len(route.Params) == 0 {
		return nil
	}
	data := make(map[string]string, len(route.Params))
	for _, name := range route.Params {
		data[name] = c.Params(name)
	}
	return data
}

func queryFields(uri string) body.Fields {
	_, query, ok := strings.Cut(uri, "?")
	if !ok {
		return body.Fields{}
	}
	return body.ParseURLEncoded(query, false)
}

func writeFiber(c fiber.Ctx, resp *web.Response) error {
	c.Status(resp.Status)
	if resp.Content == nil {
		return nil
	}
	return c.JSON(resp.Content)
}
