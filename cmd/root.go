package cmd

import (
	"fmt"
	"strings"

	"github.com/bronystylecrazy/amvisie/meta"
	"github.com/spf13/cobra"
)

type Root struct {
	*cobra.Command
}

// New wraps cmd, or a default root named after the build, and adds the
// persistent --config flag.
func New(cmd *cobra.Command) *Root {
	if cmd == nil {
		cmd = &cobra.Command{
			Use:           meta.Name,
			Short:         meta.Description,
			Version:       meta.Short(),
			SilenceUsage:  true,
			SilenceErrors: true,
		}
	}
	if cmd.PersistentFlags().Lookup(ConfigFlag) == nil {
		cmd.PersistentFlags().StringP(ConfigFlag, "c", "config.toml", "configuration file")
	}
	return &Root{Command: cmd}
}

// NewDefault registers serve, routes and version for app.
func NewDefault(app AppFunc) *Root {
	r := New(nil)
	_ = r.Register(NewServeCommand(app), NewRoutesCommand(app), NewVersionCommand())
	return r
}

func (r *Root) Register(commands ...Commander) error {
	for _, command := range commands {
		if err := r.RegisterOne(command); err != nil {
			return err
		}
	}
	return nil
}

// RegisterOne adds c under r. A multi word Use such as "debug routes"
// creates the intermediate commands.
func (r *Root) RegisterOne(c Commander) error {
	if r == nil || r.Command == nil {
		return fmt.Errorf("root command is nil")
	}
	path, err := commandPath(c)
	if err != nil {
		return err
	}
	cmd := c.Command()
	parts := strings.Fields(path)
	cmd.Use = leafUse(cmd.Use, len(parts))
	parent := r.Command
	for _, part := range parts[:len(parts)-1] {
		parent = ensureSubCommand(parent, part)
	}
	parent.AddCommand(cmd)
	return nil
}

func ensureSubCommand(parent *cobra.Command, use string) *cobra.Command {
	for _, child := range parent.Commands() {
		if child.Name() == use {
			return child
		}
	}
	child := &cobra.Command{Use: use}
	parent.AddCommand(child)
	return child
}

func commandPath(c Commander) (string, error) {
	if c == nil {
		return "", fmt.Errorf("commander is nil")
	}
	cmd := c.Command()
	if cmd == nil {
		return "", fmt.Errorf("command is nil")
	}
	fields := strings.Fields(cmd.Use)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.HasPrefix(f, "[") || strings.HasPrefix(f, "<") {
			break
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("command path is empty")
	}
	return strings.Join(out, " "), nil
}

// leafUse drops the parent words from use, keeping argument placeholders.
func leafUse(use string, pathParts int) string {
	fields := strings.Fields(use)
	if pathParts <= 1 {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[pathParts-1:], " ")
}

func configFile(cmd *cobra.Command) string {
	if f := cmd.Flag(ConfigFlag); f != nil {
		return f.Value.String()
	}
	return ""
}
