package amvisie

import (
	"context"
	"os"

	"github.com/bronystylecrazy/amvisie/cfg"
	"github.com/bronystylecrazy/amvisie/log"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type reloadIn struct {
	fx.In
	Lifecycle fx.Lifecycle
	File      ConfigFile `optional:"true"`
	Level     zap.AtomicLevel
	Logger    *zap.Logger
}

// watchLogLevel follows the log section of the config file and applies level
// changes without a restart. Nothing is watched when the file is absent.
func watchLogLevel(in reloadIn) {
	path := configPath(in.File)
	if _, err := os.Stat(path); err != nil {
		return
	}
	in.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			w := cfg.NewWatcher[log.Config]("log", in.Logger,
				cfg.WithFile(path),
				cfg.WithDefaults[log.Config]("log"),
			)
			return w.Watch(log.ApplyLevel(in.Level, in.Logger))
		},
	})
}
