package server

import "github.com/gofiber/fiber/v3"

type PriorityLevel int

const (
	Earliest PriorityLevel = -200
	Earlier  PriorityLevel = -100
	Normal   PriorityLevel = 0
	Later    PriorityLevel = 100
	Latest   PriorityLevel = 200
)

// Prioritized is implemented by handlers that choose their own position.
type Prioritized interface {
	Priority() PriorityLevel
}

type prioritized struct {
	Handler
	level PriorityLevel
}

func (p prioritized) Priority() PriorityLevel { return p.level }

// WithPriority assigns level to h.
func WithPriority(h Handler, level PriorityLevel) Handler {
	return prioritized{Handler: h, level: level}
}

func Between(lower, upper PriorityLevel) PriorityLevel {
	if lower == upper {
		return lower
	}
	if lower > upper {
		lower, upper = upper, lower
	}
	return PriorityLevel(int(lower) + (int(upper)-int(lower))/2)
}

func handlerPriority(handler Handler) PriorityLevel {
	if p, ok := handler.(Prioritized); ok {
		return p.Priority()
	}
	return Normal
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(r fiber.Router)

func (f HandlerFunc) Handle(r fiber.Router) { f(r) }
