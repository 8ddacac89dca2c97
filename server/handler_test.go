package server

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

type recordHandler struct {
	id    string
	order *[]string
}

func (h *recordHandler) Handle(r fiber.Router) {
	*h.order = append(*h.order, h.id)
}

func provideHandler(h Handler) fx.Option {
	return fx.Provide(fx.Annotate(
		func() Handler { return h },
		fx.ResultTags(`group:"amvisie.handlers"`),
	))
}

func TestSetupHandlersPriorityOrder(t *testing.T) {
	app := fiber.New()
	var order []string

	h1 := &recordHandler{id: "h1", order: &order}
	h2 := WithPriority(&recordHandler{id: "h2", order: &order}, Later)
	h3 := WithPriority(&recordHandler{id: "h3", order: &order}, Earlier)
	h4 := WithPriority(&recordHandler{id: "h4", order: &order}, Later)

	fxApp := fxtest.New(t,
		fx.Supply(app),
		provideHandler(h1),
		provideHandler(h2),
		provideHandler(h3),
		provideHandler(h4),
		fx.Invoke(SetupHandlers),
	)
	if err := fxApp.Start(context.Background()); err != nil {
		t.Fatalf("start app: %v", err)
	}
	if err := fxApp.Stop(context.Background()); err != nil {
		t.Fatalf("stop app: %v", err)
	}

	want := []string{"h3", "h1", "h2", "h4"}
	if len(order) != len(want) {
		t.Fatalf("order length mismatch: got %d want %d", len(order), len(want))
	}
	for i, got := range order {
		if got != want[i] {
			t.Fatalf("order[%d]=%q want %q", i, got, want[i])
		}
	}
}

func TestBetweenPriority(t *testing.T) {
	mid := Between(Earlier, Later)
	if mid != Normal {
		t.Fatalf("Between(Earlier, Later)=%v want %v", mid, Normal)
	}

	wide := Between(Latest, Earlier)
	if !(wide > Earlier && wide < Latest) {
		t.Fatalf("Between(Latest, Earlier)=%v want between %v and %v", wide, Earlier, Latest)
	}
}
