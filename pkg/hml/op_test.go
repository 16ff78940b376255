package hml_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"

	"github.com/growingdata/hml-go/pkg/hml"
)

func nopOp(ctx context.Context, args map[string]any) error {
	return nil
}

func TestRegisterNamedArguments(t *testing.T) {
	t.Parallel()

	pipe := hml.NewPipeline("demo")

	prevOp, err := pipe.RegisterNamed("prev_op", nopOp)
	require.NoError(t, err)
	assert.Equal(t, "prev-op", prevOp.ID)

	trainOp, err := pipe.RegisterNamed("train", nopOp,
		hml.Value("data", "s3://bucket/x"),
		hml.FromOutput("model_params", prevOp),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"pipelines", "demo", "train",
		"--data", "{{inputs.parameters.data}}",
		"--model_params", "{{tasks.prev-op.outputs.parameters.model_params}}",
	}, trainOp.Arguments)
}

func TestRegisterInputOrderPreserved(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		inputs   []hml.Input
		expected []string
	}{
		"single literal": {
			inputs:   []hml.Input{hml.Value("alpha", 1)},
			expected: []string{"pipelines", "demo", "op", "--alpha", "{{inputs.parameters.alpha}}"},
		},
		"literals keep insertion order": {
			inputs: []hml.Input{
				hml.Value("zulu", "z"),
				hml.Value("alpha", "a"),
				hml.Value("mike", "m"),
			},
			expected: []string{
				"pipelines", "demo", "op",
				"--zulu", "{{inputs.parameters.zulu}}",
				"--alpha", "{{inputs.parameters.alpha}}",
				"--mike", "{{inputs.parameters.mike}}",
			},
		},
		"param reference renders its placeholder": {
			inputs: []hml.Input{
				hml.FromParam("rate", &hml.Param{Name: "rate", Value: "0.1"}),
			},
			expected: []string{"pipelines", "demo", "op", "--rate", "{{inputs.parameters.rate}}"},
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pipe := hml.NewPipeline("demo")
			op, err := pipe.RegisterNamed("op", nopOp, tc.inputs...)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, op.Arguments)
		})
	}
}

func TestRegisterLiteralRegistersParam(t *testing.T) {
	t.Parallel()

	pipe := hml.NewPipeline("demo")

	_, err := pipe.RegisterNamed("op", nopOp, hml.Value("data", "gs://bucket/train.csv"))
	require.NoError(t, err)

	params := pipe.Params()
	require.Len(t, params, 1)
	assert.Equal(t, "data", params[0].Name)
	assert.Equal(t, "gs://bucket/train.csv", params[0].Value)
	assert.Empty(t, params[0].OpName)
}

func TestRegisterTwiceDistinctOps(t *testing.T) {
	t.Parallel()

	pipe := hml.NewPipeline("demo")

	first, err := pipe.RegisterNamed("op", nopOp, hml.Value("data", "a"))
	require.NoError(t, err)
	second, err := pipe.RegisterNamed("op", nopOp, hml.Value("data", "b"))
	require.NoError(t, err)
	third, err := pipe.RegisterNamed("op", nopOp)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Len(t, pipe.Ops(), 3)

	// Identifiers stay unique so each op keeps its own graph vertex.
	assert.Equal(t, "op", first.ID)
	assert.Equal(t, "op-2", second.ID)
	assert.Equal(t, "op-3", third.ID)

	// A task-output reference resolves to the specific registration.
	consumer, err := pipe.RegisterNamed("consumer", nopOp, hml.FromOutput("x", second))
	require.NoError(t, err)
	assert.Contains(t, consumer.Arguments, "{{tasks.op-2.outputs.parameters.x}}")

	// Independent argument lists: mutating one must not leak into the other.
	first.WithCommand("other", "args")
	assert.NotEqual(t, first.Container.Args, second.Container.Args)
}

func TestRegisterNilFunc(t *testing.T) {
	t.Parallel()

	pipe := hml.NewPipeline("demo")

	_, err := pipe.Register(nil)
	require.ErrorIs(t, err, hml.ErrFuncMustBeSet)
}

func TestRegisterNilPipeline(t *testing.T) {
	t.Parallel()

	var pipe *hml.Pipeline

	_, err := pipe.RegisterNamed("op", nopOp)
	require.ErrorIs(t, err, hml.ErrPipelineMustBeSet)
}

func TestValueClassification(t *testing.T) {
	t.Parallel()

	pipe := hml.NewPipeline("demo")

	prevOp, err := pipe.RegisterNamed("prev_op", nopOp)
	require.NoError(t, err)

	// A value that happens to be an op handle classifies as a task-output
	// reference, and a *Param as a parameter reference; anything else stays
	// a literal.
	op, err := pipe.RegisterNamed("op", nopOp,
		hml.Value("training", prevOp),
		hml.Value("rate", &hml.Param{Name: "rate", Value: "0.1"}),
		hml.Value("rounds", 200),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"pipelines", "demo", "op",
		"--training", "{{tasks.prev-op.outputs.parameters.training}}",
		"--rate", "{{inputs.parameters.rate}}",
		"--rounds", "{{inputs.parameters.rounds}}",
	}, op.Arguments)
}

func TestOpContainerDefaults(t *testing.T) {
	t.Parallel()

	pipe := hml.NewPipeline("demo",
		hml.PipelineImage("gcr.io/demo/image:1"),
		hml.PipelineEntrypoint("demo-app"),
	)

	op, err := pipe.RegisterNamed("train_model", nopOp)
	require.NoError(t, err)

	assert.Equal(t, "train-model", op.Container.Name)
	assert.Equal(t, "gcr.io/demo/image:1", op.Container.Image)
	assert.Equal(t, []string{"demo-app"}, op.Container.Command)
	assert.Equal(t, op.Arguments, op.Container.Args)
}

func TestOpFluentConfiguration(t *testing.T) {
	t.Parallel()

	pipe := hml.NewPipeline("demo")
	op, err := pipe.RegisterNamed("op", nopOp)
	require.NoError(t, err)

	got := op.
		WithImage("gcr.io/demo/other:2").
		WithCommand("run", "--fast").
		WithEnv("ROUNDS", 200).
		WithSecret("db-credentials", "/secret/db").
		WithEmptyDir("scratch", "/scratch")

	// Fluent calls return the same instance for chaining.
	assert.Same(t, op, got)

	assert.Equal(t, "gcr.io/demo/other:2", op.Container.Image)
	assert.Equal(t, []string{"run"}, op.Container.Command)
	assert.Equal(t, []string{"--fast"}, op.Container.Args)
	assert.Contains(t, op.Container.Env, corev1.EnvVar{Name: "ROUNDS", Value: "200"})

	require.Len(t, op.Volumes, 2)
	assert.Equal(t, "db-credentials", op.Volumes[0].Name)
	require.NotNil(t, op.Volumes[0].Secret)
	assert.Equal(t, "db-credentials", op.Volumes[0].Secret.SecretName)
	assert.Equal(t, "scratch", op.Volumes[1].Name)
	require.NotNil(t, op.Volumes[1].EmptyDir)

	require.Len(t, op.Container.VolumeMounts, 2)
	assert.True(t, op.Container.VolumeMounts[0].ReadOnly)
	assert.Equal(t, "/secret/db", op.Container.VolumeMounts[0].MountPath)
	assert.False(t, op.Container.VolumeMounts[1].ReadOnly)
	assert.Equal(t, "/scratch", op.Container.VolumeMounts[1].MountPath)
}

func TestOpWithGCPAuth(t *testing.T) {
	t.Parallel()

	pipe := hml.NewPipeline("demo")
	op, err := pipe.RegisterNamed("op", nopOp)
	require.NoError(t, err)

	op.WithGCPAuth("user-gcp-sa")

	require.Len(t, op.Volumes, 1)
	require.NotNil(t, op.Volumes[0].Secret)
	assert.Equal(t, "user-gcp-sa", op.Volumes[0].Secret.SecretName)

	require.Len(t, op.Container.VolumeMounts, 1)
	assert.Equal(t, "/secret/gcp-credentials", op.Container.VolumeMounts[0].MountPath)

	keyPath := "/secret/gcp-credentials/user-gcp-sa.json"
	assert.Contains(t, op.Container.Env, corev1.EnvVar{Name: "GOOGLE_APPLICATION_CREDENTIALS", Value: keyPath})
	assert.Contains(t, op.Container.Env, corev1.EnvVar{Name: "CLOUDSDK_AUTH_CREDENTIAL_FILE_OVERRIDE", Value: keyPath})
}

func TestOpInvoke(t *testing.T) {
	t.Parallel()

	pipe := hml.NewPipeline("demo")

	prevOp, err := pipe.RegisterNamed("prev_op", nopOp)
	require.NoError(t, err)

	var got map[string]any
	op, err := pipe.RegisterNamed("op", func(ctx context.Context, args map[string]any) error {
		got = args

		return nil
	},
		hml.Value("data", "s3://bucket/x"),
		hml.Value("rounds", 200),
		hml.FromParam("rate", &hml.Param{Name: "rate", Value: "0.1"}),
		hml.FromOutput("training", prevOp),
	)
	require.NoError(t, err)

	err = op.Invoke(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "s3://bucket/x", got["data"])
	assert.Equal(t, 200, got["rounds"])
	assert.Equal(t, "0.1", got["rate"])
	assert.Same(t, prevOp, got["training"])
}
