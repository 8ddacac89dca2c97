package server

import (
	"sort"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"
)

const (
	// HandlersGroup is the fx value group collecting Handlers.
	HandlersGroup = "amvisie.handlers"
	// RoutesGroup collects every mounted *Route for inspection.
	RoutesGroup = "amvisie.routes"
)

type Handler interface {
	Handle(r fiber.Router)
}

type setupHandlersIn struct {
	fx.In
	App      *fiber.App
	Handlers []Handler `group:"amvisie.handlers"`
}

func SetupHandlers(in setupHandlersIn) {
	orderedHandlers := Prioritize(in.Handlers)
	for i := range orderedHandlers {
		orderedHandlers[i].Handle(in.App)
	}
}

// Prioritize orders handlers by priority. Handlers of equal priority keep
// their registration order.
func Prioritize(handlers []Handler) []Handler {
	out := append([]Handler(nil), handlers...)
	sort.SliceStable(out, func(i, j int) bool {
		return handlerPriority(out[i]) < handlerPriority(out[j])
	})
	return out
}
