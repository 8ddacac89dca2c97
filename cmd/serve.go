package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

type ServeCommand struct {
	app AppFunc
}

func NewServeCommand(app AppFunc) *ServeCommand {
	return &ServeCommand{app: app}
}

func (s *ServeCommand) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  s.Run,
	}
}

// Run starts the application and blocks until a shutdown signal arrives.
func (s *ServeCommand) Run(cmd *cobra.Command, args []string) error {
	app := fx.New(s.app(configFile(cmd)))
	if err := app.Err(); err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	sig := <-app.Wait()
	if err := app.Stop(ctx); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	if sig.ExitCode != 0 {
		return fmt.Errorf("exited with code %d", sig.ExitCode)
	}
	return nil
}
