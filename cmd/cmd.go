// Package cmd is the command line front end: serve the application or
// inspect its routes.
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

type Commander interface {
	Command() *cobra.Command // command instance
}

// AppFunc builds the fx application for the given config file.
type AppFunc func(configFile string) fx.Option

const ConfigFlag = "config"
