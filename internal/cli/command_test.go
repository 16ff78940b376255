package cli_test

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growingdata/hml-go/internal/cli"
)

func TestExecuteDispatch(t *testing.T) {
	t.Parallel()

	var got []string
	root := &cli.Command{
		Name: "app",
		Subcommands: []*cli.Command{
			{
				Name: "pipelines",
				Subcommands: []*cli.Command{
					{
						Name: "run",
						Run: func(args []string) error {
							got = args

							return nil
						},
					},
				},
			},
		},
	}

	err := root.Execute([]string{"pipelines", "run", "demo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"demo"}, got)
}

func TestExecuteUnknownCommand(t *testing.T) {
	t.Parallel()

	root := &cli.Command{
		Name: "app",
		Subcommands: []*cli.Command{
			{Name: "pipelines"},
		},
	}

	err := root.Execute([]string{"nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "nope"`)
}

func TestExecuteFlagParsing(t *testing.T) {
	t.Parallel()

	var concurrency int
	cmd := &cli.Command{
		Name: "run",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.IntVar(&concurrency, "concurrency", 1, "")

			return flagSet
		},
		Run: func(args []string) error {
			return nil
		},
	}

	err := cmd.Execute([]string{"--concurrency", "4"})
	require.NoError(t, err)
	assert.Equal(t, 4, concurrency)
}

func TestExecuteBadFlag(t *testing.T) {
	t.Parallel()

	cmd := &cli.Command{
		Name: "run",
		Flags: func() *pflag.FlagSet {
			return pflag.NewFlagSet("run", pflag.ContinueOnError)
		},
		Run: func(args []string) error {
			return nil
		},
	}

	err := cmd.Execute([]string{"--nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--help")
}

func TestExecuteSubcommandRequired(t *testing.T) {
	t.Parallel()

	root := &cli.Command{
		Name: "app",
		Subcommands: []*cli.Command{
			{Name: "pipelines"},
		},
	}

	err := root.Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subcommand required")
}

func TestPrintHelp(t *testing.T) {
	t.Parallel()

	root := &cli.Command{
		Name:    "app",
		Summary: "Demo application.",
		Subcommands: []*cli.Command{
			{Name: "pipelines", Summary: "Manage pipelines."},
			{Name: "inference", Summary: "Run inference routines."},
		},
	}

	var buf bytes.Buffer
	root.PrintHelp(&buf)

	out := buf.String()
	assert.Contains(t, out, "Demo application.")
	assert.Contains(t, out, "pipelines")
	assert.Contains(t, out, "Manage pipelines.")
	assert.Contains(t, out, "app <command>")
}
