package server

import "time"

type Config struct {
	Name         string        `mapstructure:"name" default:"amvisie"`
	Host         string        `mapstructure:"host" default:"0.0.0.0"`
	Port         int           `mapstructure:"port" default:"8080"`
	BodyLimit    string        `mapstructure:"body_limit" default:"4MB"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" default:"5s"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" default:"5s"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" default:"30s"`
}
