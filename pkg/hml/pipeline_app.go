package hml

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/growingdata/hml-go/internal/cli"
	"github.com/growingdata/hml-go/pkg/hml/drawer"
)

// PipelineApp hosts the app's pipelines and exposes them as the `pipelines`
// command group. Each registered op becomes a `pipelines <pipeline> <op>`
// subcommand whose invocation matches the argument list the registrar
// generates for the op's container.
type PipelineApp struct {
	app       *App
	order     []string
	pipelines map[string]*Pipeline
}

func newPipelineApp(app *App) *PipelineApp {
	return &PipelineApp{
		app:       app,
		pipelines: make(map[string]*Pipeline),
	}
}

// New creates a pipeline with the app's configured defaults and registers
// it with the app.
func (pa *PipelineApp) New(name string, opts ...PipelineOption) *Pipeline {
	defaults := []PipelineOption{
		PipelineLogger(pa.app.logger),
	}
	if pa.app.Config.ImageURL != "" {
		defaults = append(defaults, PipelineImage(pa.app.Config.ImageURL))
	}
	if len(pa.app.Config.Entrypoint) > 0 {
		defaults = append(defaults, PipelineEntrypoint(pa.app.Config.Entrypoint...))
	}

	pipe := NewPipeline(name, append(defaults, opts...)...)
	pa.Add(pipe)

	return pipe
}

// Add registers an existing pipeline with the app.
func (pa *PipelineApp) Add(p *Pipeline) {
	if _, ok := pa.pipelines[p.Name]; !ok {
		pa.order = append(pa.order, p.Name)
	}
	pa.pipelines[p.Name] = p
}

// Get returns the registered pipeline with the given name.
func (pa *PipelineApp) Get(name string) (*Pipeline, bool) {
	pipe, ok := pa.pipelines[name]

	return pipe, ok
}

func (pa *PipelineApp) command() *cli.Command {
	cmd := &cli.Command{
		Name:    "pipelines",
		Summary: "define, compile and execute pipelines",
		Subcommands: []*cli.Command{
			pa.listCommand(),
			pa.compileCommand(),
			pa.runCommand(),
			pa.drawCommand(),
		},
	}

	for _, name := range pa.order {
		cmd.Subcommands = append(cmd.Subcommands, pa.pipelineCommand(pa.pipelines[name]))
	}

	return cmd
}

func (pa *PipelineApp) pipelineCommand(pipe *Pipeline) *cli.Command {
	cmd := &cli.Command{
		Name:    pipe.Name,
		Summary: fmt.Sprintf("operations of the %s pipeline", pipe.Name),
	}

	for _, op := range pipe.Ops() {
		cmd.Subcommands = append(cmd.Subcommands, opCommand(op))
	}

	return cmd
}

// opCommand exposes one op as a CLI command. Inside the orchestrated
// workflow the executor substitutes real values into the generated
// argument list, so every input arrives as a string flag.
func opCommand(op *Op) *cli.Command {
	values := make(map[string]*string, len(op.bound))

	return &cli.Command{
		Name:    op.Name,
		Summary: fmt.Sprintf("run the %s op", op.Name),
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet(op.Name, pflag.ContinueOnError)
			for _, param := range op.bound {
				def := param.Value
				if param.OpName != "" {
					def = param.Placeholder()
				}
				values[param.Name] = flagSet.String(param.Name, def, "input "+param.Name)
			}

			return flagSet
		},
		Run: func(args []string) error {
			callArgs := make(map[string]any, len(values))
			for name, value := range values {
				callArgs[name] = *value
			}

			return op.fn(context.Background(), callArgs)
		},
	}
}

func (pa *PipelineApp) listCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Summary: "list registered pipelines",
		Run: func(args []string) error {
			for _, name := range pa.order {
				fmt.Fprintf(os.Stdout, "%s\t%d ops\n", name, len(pa.pipelines[name].Ops()))
			}

			return nil
		},
	}
}

func (pa *PipelineApp) compileCommand() *cli.Command {
	var outDir string

	return &cli.Command{
		Name:    "compile",
		Summary: "compile pipelines to workflow YAML",
		Usage:   "pipelines compile [pipeline] --out <dir>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("compile", pflag.ContinueOnError)
			flagSet.StringVar(&outDir, "out", ".", "directory to write workflow files to")

			return flagSet
		},
		Run: func(args []string) error {
			names := pa.order
			if len(args) == 1 {
				if _, ok := pa.pipelines[args[0]]; !ok {
					return errors.Wrap(ErrUnknownPipeline, args[0])
				}
				names = args[:1]
			}

			for _, name := range names {
				err := pa.compileOne(pa.pipelines[name], outDir)
				if err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func (pa *PipelineApp) compileOne(pipe *Pipeline, outDir string) error {
	spec, err := pipe.Compile()
	if err != nil {
		return errors.Wrapf(err, "unable to compile pipeline %s", pipe.Name)
	}

	path := filepath.Join(outDir, pipe.Name+".yaml")
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}
	defer file.Close()

	err = spec.WriteYAML(file)
	if err != nil {
		return err
	}

	pa.app.logger.Info().Str("pipeline", pipe.Name).Str("path", path).Msg("pipeline compiled")

	return nil
}

func (pa *PipelineApp) runCommand() *cli.Command {
	var concurrency int

	return &cli.Command{
		Name:    "run",
		Summary: "execute a pipeline locally",
		Usage:   "pipelines run <pipeline> [--concurrency n]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.IntVar(&concurrency, "concurrency", 1, "maximum ops running at once")

			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return errors.New("expected exactly one pipeline name")
			}

			pipe, ok := pa.Get(args[0])
			if !ok {
				return errors.Wrap(ErrUnknownPipeline, args[0])
			}

			return Run(context.Background(), pipe, RunnerConcurrency(concurrency))
		},
	}
}

func (pa *PipelineApp) drawCommand() *cli.Command {
	var outFile string

	return &cli.Command{
		Name:    "draw",
		Summary: "render a pipeline's op graph as a DOT file",
		Usage:   "pipelines draw <pipeline> --out <file>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("draw", pflag.ContinueOnError)
			flagSet.StringVar(&outFile, "out", "pipeline.dot", "output DOT file")

			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return errors.New("expected exactly one pipeline name")
			}

			pipe, ok := pa.Get(args[0])
			if !ok {
				return errors.Wrap(ErrUnknownPipeline, args[0])
			}

			return pipe.Draw(drawer.NewDOTDrawer(outFile), nil)
		},
	}
}
