package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/bronystylecrazy/amvisie/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

type RoutesCommand struct {
	app AppFunc
}

func NewRoutesCommand(app AppFunc) *RoutesCommand {
	return &RoutesCommand{app: app}
}

func (s *RoutesCommand) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List mounted controllers and the methods each verb can reach",
		Args:  cobra.NoArgs,
		RunE:  s.Run,
	}
}

// Run builds the application without starting it and prints its routes.
func (s *RoutesCommand) Run(cmd *cobra.Command, args []string) error {
	var routes []*server.Route
	app := fx.New(
		s.app(configFile(cmd)),
		fx.Invoke(fx.Annotate(func(rs []*server.Route) { routes = rs }, fx.ParamTags(`group:"amvisie.routes"`))),
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		return err
	}
	return WriteRoutes(cmd.OutOrStdout(), routes)
}

// WriteRoutes prints one line per route and verb with the candidate methods.
func WriteRoutes(w io.Writer, routes []*server.Route) error {
	sorted := append([]*server.Route(nil), routes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERB\tPATH\tCONTROLLER\tMETHODS")
	for _, rt := range sorted {
		for _, verb := range rt.Verbs() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", verb, rt.Path, rt.Controller.Name(), strings.Join(candidates(rt, verb), ", "))
		}
	}
	return tw.Flush()
}

func candidates(rt *server.Route, verb string) []string {
	var out []string
	for _, m := range rt.Controller.Methods() {
		if !m.HasPrefix(verb) {
			continue
		}
		if name := rt.DefaultMethod(); name != "" && !strings.EqualFold(m.Name, verb+name) {
			continue
		}
		out = append(out, m.Name)
	}
	if len(out) == 0 {
		return []string{"-"}
	}
	return out
}
