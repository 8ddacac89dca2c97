package amvisie

import (
	"github.com/bronystylecrazy/amvisie/body"
	"github.com/bronystylecrazy/amvisie/cfg"
	"github.com/bronystylecrazy/amvisie/log"
	"github.com/bronystylecrazy/amvisie/server"
	"go.uber.org/fx"
)

const DefaultConfigFile = "config.toml"

type Config struct {
	Log  log.Config    `mapstructure:"log"`
	Web  server.Config `mapstructure:"web"`
	Body body.Config   `mapstructure:"body"`
}

// LoadConfig reads path when it exists, then applies WEB_PORT style
// environment overrides on top of the struct defaults.
func LoadConfig(path string, opts ...cfg.Option) (Config, error) {
	base := []cfg.Option{cfg.WithDefaults[Config]("")}
	if path != "" {
		base = append(base, cfg.WithFile(path))
	}
	return cfg.Load[Config]("", append(base, opts...)...)
}

// ConfigFile names the file Module loads configuration from.
type ConfigFile string

func WithConfigFile(path string) fx.Option {
	return fx.Supply(ConfigFile(path))
}

// WithConfig replaces the loaded configuration with c.
func WithConfig(c Config) fx.Option {
	return fx.Decorate(func(Config) Config { return c })
}

type configIn struct {
	fx.In
	File ConfigFile `optional:"true"`
}

func provideConfig(in configIn) (Config, error) {
	return LoadConfig(configPath(in.File))
}

func configPath(file ConfigFile) string {
	if file == "" {
		return DefaultConfigFile
	}
	return string(file)
}

func splitConfig(c Config) (log.Config, server.Config, body.Config) {
	return c.Log, c.Web, c.Body
}
