// Package log builds the zap logger shared by every component.
package log

import (
	"strings"

	"github.com/bronystylecrazy/amvisie/meta"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level string `mapstructure:"level" default:"info"`
	// Drop lists field keys removed before entries are written.
	Drop []string `mapstructure:"drop"`
}

// NewLevel returns the level NewZapLogger filters on. Changing it takes
// effect on the running logger.
func NewLevel(cfg Config) zap.AtomicLevel {
	def := zapcore.InfoLevel
	if meta.IsDevelopment() {
		def = zapcore.DebugLevel
	}
	return zap.NewAtomicLevelAt(ParseLevel(cfg.Level, def))
}

func NewZapLogger(cfg Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zapConfig zap.Config
	if meta.IsDevelopment() {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = level

	var opts []zap.Option
	if len(cfg.Drop) > 0 {
		opts = append(opts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return FilterFieldsCore(core, cfg.Drop...)
		}))
	}
	return zapConfig.Build(opts...)
}

// ApplyLevel returns a callback that moves level to the one named by a
// reloaded Config. Unknown names leave it unchanged.
func ApplyLevel(level zap.AtomicLevel, logger *zap.Logger) func(Config) {
	return func(cfg Config) {
		prev := level.Level()
		next := ParseLevel(cfg.Level, prev)
		if next == prev {
			return
		}
		level.SetLevel(next)
		logger.Info("log level changed", zap.Stringer("from", prev), zap.Stringer("to", next))
	}
}

// ParseLevel falls back to def for unknown names.
func ParseLevel(name string, def zapcore.Level) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return def
	}
}

func NewEventLogger(log *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: log}
}
