package hml

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/growingdata/hml-go/internal/cli"
)

// InferenceRoutine is a named entrypoint served by the `inference` command
// group, typically a batch-scoring or model-serving bootstrap.
type InferenceRoutine func(ctx context.Context) error

// InferenceApp hosts the app's inference routines.
type InferenceApp struct {
	app      *App
	order    []string
	routines map[string]InferenceRoutine
}

func newInferenceApp(app *App) *InferenceApp {
	return &InferenceApp{
		app:      app,
		routines: make(map[string]InferenceRoutine),
	}
}

// Register adds a routine under the given name, replacing any previous one.
func (ia *InferenceApp) Register(name string, fn InferenceRoutine) {
	if _, ok := ia.routines[name]; !ok {
		ia.order = append(ia.order, name)
	}
	ia.routines[name] = fn
}

// Run executes the named routine.
func (ia *InferenceApp) Run(ctx context.Context, name string) error {
	fn, ok := ia.routines[name]
	if !ok {
		return errors.Wrap(ErrUnknownRoutine, name)
	}

	ia.app.logger.Info().Str("routine", name).Msg("running inference routine")

	err := fn(ctx)
	if err != nil {
		return errors.Wrapf(err, "inference routine %s", name)
	}

	return nil
}

func (ia *InferenceApp) command() *cli.Command {
	cmd := &cli.Command{
		Name:    "inference",
		Summary: "run inference routines",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Summary: "list registered inference routines",
				Run: func(args []string) error {
					for _, name := range ia.order {
						fmt.Fprintln(os.Stdout, name)
					}

					return nil
				},
			},
		},
	}

	for _, name := range ia.order {
		localName := name
		cmd.Subcommands = append(cmd.Subcommands, &cli.Command{
			Name:    localName,
			Summary: fmt.Sprintf("run the %s inference routine", localName),
			Run: func(args []string) error {
				return ia.Run(context.Background(), localName)
			},
		})
	}

	return cmd
}
