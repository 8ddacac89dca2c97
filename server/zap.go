package server

import (
	fiberzap "github.com/gofiber/contrib/v3/zap"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ZapMiddleware logs every request. It runs ahead of the routes.
type ZapMiddleware struct {
	logger *zap.Logger
}

func NewZapMiddleware(logger *zap.Logger) *ZapMiddleware {
	return &ZapMiddleware{
		logger: logger,
	}
}

func (h *ZapMiddleware) Priority() PriorityLevel { return Earliest }

func (h *ZapMiddleware) Handle(r fiber.Router) {
	r.Use(fiberzap.New(fiberzap.Config{
		Logger: h.logger,
	}))
}
