// Command tragic-titanic defines the demo pipeline: a survival classifier
// trained on the Titanic passenger dataset. Feature preparation runs in
// process; the gradient-boosted training itself is delegated to the trainer
// container image referenced by the train op.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/growingdata/hml-go/pkg/hml"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	app := hml.NewApp("tragic-titanic", hml.AppLogger(logger))

	pipe := app.Pipelines.New("tragic-titanic",
		hml.PipelineImage("gcr.io/growing-data/tragic-titanic:"+version),
		hml.PipelineEntrypoint("tragic-titanic"),
	)

	hml.Enter(pipe)
	defer hml.Exit()

	createOp, err := hml.Register(createTraining,
		hml.Value("data", "gs://growing-data-demo/titanic/train.csv"),
		hml.Value("test_split", 0.2),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to register createTraining")
	}
	createOp.WithEmptyDir("training", "/training")

	trainOp, err := hml.Register(trainModel,
		hml.FromOutput("training", createOp),
		hml.Value("max_depth", 6),
		hml.Value("rounds", 200),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to register trainModel")
	}
	trainOp.
		WithGCPAuth("svcacc-tragic-titanic").
		WithEmptyDir("artifacts", "/artifacts").
		WithEnv("MODEL_NAME", "tragic-titanic")

	app.Inference.Register("batch-score", batchScore)

	if err := app.Start(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("command failed")
	}
}

func artifactDir() string {
	if dir := os.Getenv("HML_ARTIFACT_DIR"); dir != "" {
		return dir
	}

	return "."
}

// createTraining resolves the raw dataset reference and records the
// training matrix location for the downstream train op.
func createTraining(ctx context.Context, args map[string]any) error {
	manifest := map[string]any{
		"source":     args["data"],
		"test_split": args["test_split"],
		"columns": []string{
			"Pclass", "Sex", "Age", "SibSp", "Parch", "Fare", "Embarked",
		},
		"label": "Survived",
	}

	return writeJSON(filepath.Join(artifactDir(), "training.json"), manifest)
}

// trainModel hands the prepared training matrix to the external
// gradient-boosting trainer. Locally it only records the run parameters.
func trainModel(ctx context.Context, args map[string]any) error {
	params := map[string]any{
		"training":  fmt.Sprint(args["training"]),
		"max_depth": args["max_depth"],
		"rounds":    args["rounds"],
		"objective": "binary:logistic",
	}

	return writeJSON(filepath.Join(artifactDir(), "model-params.json"), params)
}

// batchScore is the demo inference routine.
func batchScore(ctx context.Context) error {
	fmt.Fprintln(os.Stdout, "scoring batch with the latest tragic-titanic model")

	return nil
}

func writeJSON(path string, payload any) error {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, raw, 0o644)
}
