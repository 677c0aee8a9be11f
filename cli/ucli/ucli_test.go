package ucli

import (
	"io"
	"testing"

	"github.com/arwendowers/data-processing/cli"
	"github.com/stretchr/testify/require"
	urfave "github.com/urfave/cli/v2"
)

func TestBuild(t *testing.T) {
	builder := NewBuilder("test", "usage")
	app := builder.Build().(*urfave.App)

	app.Writer = io.Discard

	require.Equal(t, "test", app.Name)
	require.Equal(t, "usage", app.Usage)

	err := app.Run([]string{"test"})
	require.NoError(t, err)
}

func TestSetCommand(t *testing.T) {
	builder := NewBuilder("test", "")

	builder.SetCommand("first")
	builder.SetCommand("second")

	app := builder.Build().(*urfave.App)

	require.Len(t, app.Commands, 3)

	require.Equal(t, "first", app.Commands[0].Name)
	require.Equal(t, "second", app.Commands[1].Name)
	require.Equal(t, "help", app.Commands[2].Name)
}

func TestCommandBuilder(t *testing.T) {
	builder := NewBuilder("test", "").(*Builder)
	cmd := builder.SetCommand("first")

	fakeAction := func(flags cli.Flags) error {
		return nil
	}

	cmd.SetAction(fakeAction)
	cmd.SetDescription("first action")
	cmd.SetFlags(cli.StringFlag{
		Name:     "arg",
		Usage:    "this is a test arg",
		Required: true,
		Value:    "default",
	})

	require.Len(t, builder.commands, 1)
	require.Len(t, builder.flags, 0)

	cmd2 := builder.commands[0]
	require.Len(t, cmd2.flags, 1)
	require.Equal(t, "first action", cmd2.description)
}

func TestBuilder_RunWithFlags(t *testing.T) {
	builder := NewBuilder("test", "", cli.StringFlag{
		Name:  "global",
		Value: "abc",
	})

	var before, global, path string
	var count int
	var enabled bool

	builder.SetBefore(func(flags cli.Flags) error {
		before = flags.String("global")
		return nil
	})

	cmd := builder.SetCommand("cmd")
	cmd.SetFlags(
		cli.PathFlag{Name: "file"},
		cli.IntFlag{Name: "count", Value: 1},
		cli.BoolFlag{Name: "enabled"},
	)
	cmd.SetAction(func(flags cli.Flags) error {
		global = flags.String("global")
		path = flags.Path("file")
		count = flags.Int("count")
		enabled = flags.Bool("enabled")
		return nil
	})

	app := builder.Build()

	err := app.Run([]string{"test", "--global", "xyz", "cmd", "--file", "a.yaml",
		"--count", "3", "--enabled"})
	require.NoError(t, err)

	require.Equal(t, "xyz", before)
	require.Equal(t, "xyz", global)
	require.Equal(t, "a.yaml", path)
	require.Equal(t, 3, count)
	require.True(t, enabled)
}

func TestBuildFlags(t *testing.T) {
	in := []cli.Flag{
		cli.StringFlag{
			Name:     "name1",
			Usage:    "usage1",
			Required: true,
			Value:    "value1",
			EnvVars:  []string{"NAME1"},
		},
		cli.PathFlag{
			Name:     "name2",
			Usage:    "usage2",
			Required: true,
			Value:    "value2",
		},
		cli.IntFlag{
			Name:     "name3",
			Usage:    "usage3",
			Required: true,
			Value:    1,
		},
		cli.BoolFlag{
			Name:  "name4",
			Usage: "usage4",
			Value: true,
		},
	}

	out := buildFlags(in)
	require.Len(t, out, 4)

	require.Equal(t, "name1", out[0].Names()[0])
	require.Equal(t, "name2", out[1].Names()[0])
	require.Equal(t, "name3", out[2].Names()[0])
	require.Equal(t, "name4", out[3].Names()[0])
}

func TestBuildFlags_Panic(t *testing.T) {
	defer func() {
		r := recover()
		require.Equal(t, "flag type '<nil>' not supported", r)
	}()

	buildFlags([]cli.Flag{nil})
}

func TestMakeAction(t *testing.T) {
	res := makeAction(nil)
	require.Nil(t, res)

	isCalled := false
	fakeAction := func(flags cli.Flags) error {
		require.Nil(t, flags)
		isCalled = true
		return nil
	}

	res = makeAction(fakeAction)
	require.NotNil(t, res)

	out := res(nil)
	require.NoError(t, out)
	require.True(t, isCalled)
}
