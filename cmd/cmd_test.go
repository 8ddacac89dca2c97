package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bronystylecrazy/amvisie/controller"
	"github.com/bronystylecrazy/amvisie/dispatch"
	"github.com/bronystylecrazy/amvisie/meta"
	"github.com/bronystylecrazy/amvisie/server"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

type commandFunc func() *cobra.Command

func (f commandFunc) Command() *cobra.Command { return f() }

func TestRegisterNested(t *testing.T) {
	root := New(nil)
	var ran string
	err := root.Register(commandFunc(func() *cobra.Command {
		return &cobra.Command{Use: "debug routes [filter]", RunE: func(c *cobra.Command, args []string) error {
			ran = strings.Join(args, ",")
			return nil
		}}
	}))
	require.NoError(t, err)

	root.SetArgs([]string{"debug", "routes", "x"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "x", ran)
}

func TestRegisterRejectsEmptyUse(t *testing.T) {
	root := New(nil)
	err := root.RegisterOne(commandFunc(func() *cobra.Command { return &cobra.Command{Use: "[args]"} }))
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	root := New(nil)
	require.NoError(t, root.Register(NewVersionCommand()))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), meta.Name)
	assert.Contains(t, out.String(), meta.Version)
}

type shop struct{}

func (shop) Get() string             { return "" }
func (shop) GetImage(id int) string  { return "" }
func (shop) PostOrder(id int) string { return "" }

func TestRoutesCommand(t *testing.T) {
	c, err := controller.New(shop{}, []controller.Action{
		{Name: "Get"},
		{Name: "GetImage", Params: []string{"id"}},
		{Name: "PostOrder", Params: []string{"id"}},
	})
	require.NoError(t, err)

	var gotFile string
	app := func(file string) fx.Option {
		gotFile = file
		d := dispatch.New(nil, nil)
		return fx.Provide(
			fx.Annotate(func() *server.Route {
				return server.NewRoute("/shop", d, c, server.Verbs("GET", "POST"))
			}, fx.ResultTags(`group:"amvisie.routes"`)),
			fx.Annotate(func() *server.Route {
				return server.NewRoute("/shop/:id/image", d, c, server.Verbs("GET"), server.DefaultMethod("Image"))
			}, fx.ResultTags(`group:"amvisie.routes"`)),
		)
	}

	root := NewDefault(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"routes", "--config", "app.toml"})
	require.NoError(t, root.Execute())

	assert.Equal(t, "app.toml", gotFile)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"VERB", "PATH", "CONTROLLER", "METHODS"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"GET", "/shop", "shop", "Get,", "GetImage"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"POST", "/shop", "shop", "PostOrder"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"GET", "/shop/:id/image", "shop", "GetImage"}, strings.Fields(lines[3]))
}
