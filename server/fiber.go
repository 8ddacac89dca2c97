package server

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/bronystylecrazy/amvisie/meta"
	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewFiberApp(config Config) (*fiber.App, error) {
	limit, err := ParseBodyLimit(config.BodyLimit)
	if err != nil {
		return nil, fmt.Errorf("parse body limit: %w", err)
	}
	return fiber.New(fiber.Config{
		AppName:      BuildAppName(config.Name),
		BodyLimit:    limit,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}), nil
}

func BuildAppName(name string) string {
	if name == "" {
		name = "amvisie"
	}
	return fmt.Sprintf("%s (%s %s %s)", name, meta.Version, meta.Commit, meta.BuildDate)
}

func RegisterFiberApp(lc fx.Lifecycle, app *fiber.App, logger *zap.Logger, config Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				err := app.Listen(ParseAddr(config), fiber.ListenConfig{DisableStartupMessage: true})
				if err != nil {
					logger.Error("failed to start fiber app", zap.Error(err))
				}
			}()
			logger.Info("listening", zap.String("addr", ParseAddr(config)))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

func ParseAddr(config Config) string {
	return fmt.Sprintf("%s:%d", config.Host, config.Port)
}

// ParseBodyLimit accepts human sizes such as "4MB" or "512 KiB". Empty means
// fiber's default limit.
func ParseBodyLimit(v string) (int, error) {
	s := strings.TrimSpace(v)
	if s == "" {
		return fiber.DefaultBodyLimit, nil
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if n > uint64(math.MaxInt) {
		return 0, fmt.Errorf("body limit overflows int")
	}

	return int(n), nil
}
