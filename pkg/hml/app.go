package hml

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/growingdata/hml-go/internal/cli"
)

// App is the command-line surface of an hml application. It groups the
// registered pipelines and inference routines under a root command so that
// the binary running inside an operation's container can dispatch the
// argument lists the registrar generates.
type App struct {
	Name      string
	Config    *Config
	Pipelines *PipelineApp
	Inference *InferenceApp

	logger zerolog.Logger
}

type AppOption func(a *App)

// AppLogger replaces the default logger.
func AppLogger(logger zerolog.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// AppConfig replaces the environment-derived configuration.
func AppConfig(cfg *Config) AppOption {
	return func(a *App) {
		a.Config = cfg
	}
}

// NewApp creates an app named name, configured from HML_-prefixed
// environment variables.
func NewApp(name string, opts ...AppOption) *App {
	app := &App{
		Name:   name,
		Config: loadConfig(),
		logger: log.Logger,
	}

	for _, opt := range opts {
		opt(app)
	}

	if level, err := zerolog.ParseLevel(app.Config.LogLevel); err == nil && level != zerolog.NoLevel {
		app.logger = app.logger.Level(level)
	}

	app.Pipelines = newPipelineApp(app)
	app.Inference = newInferenceApp(app)

	return app
}

// Root builds the root command tree: `<name> pipelines ...` and
// `<name> inference ...`.
func (a *App) Root() *cli.Command {
	return &cli.Command{
		Name:    a.Name,
		Summary: "pipeline and inference entrypoints for " + a.Name,
		Subcommands: []*cli.Command{
			a.Pipelines.command(),
			a.Inference.command(),
		},
	}
}

// Start dispatches the given command-line arguments (normally os.Args[1:]).
func (a *App) Start(args []string) error {
	return a.Root().Execute(args)
}
