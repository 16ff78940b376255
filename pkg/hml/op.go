package hml

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	corev1 "k8s.io/api/core/v1"

	"github.com/growingdata/hml-go/internal/k8sutil"
)

// OpFunc is the function an operation wraps. Invoke calls it with the
// operation's bound argument values; inside the orchestrated workflow the
// same function is reached through the generated command line instead.
type OpFunc func(ctx context.Context, args map[string]any) error

// Op is one step of a pipeline, mapped to a container invocation. It is
// created once at registration and immutable afterwards except for the
// fluent With* configuration calls, which mutate the container spec and
// return the receiver for chaining.
type Op struct {
	// Name is the operation's identity, derived from the registered function.
	Name string
	// ID is the cluster-name-safe form of Name.
	ID string
	// Arguments is the command-line argument sequence the executor passes to
	// the operation's container.
	Arguments []string
	// Container is the operation's container spec.
	Container corev1.Container
	// Volumes are the pod volumes backing the container's mounts.
	Volumes []corev1.Volume

	pipeline *Pipeline
	fn       OpFunc
	inputs   []Input
	bound    []*Param
}

// Register registers fn as an operation of the currently active pipeline.
// It fails with ErrNoActivePipeline when Enter has not been called: an
// operation must never end up bound to nothing.
func Register(fn OpFunc, inputs ...Input) (*Op, error) {
	pipe := Current()
	if pipe == nil {
		log.Error().Msg("unable to register op, Enter has not been called")

		return nil, ErrNoActivePipeline
	}

	return pipe.Register(fn, inputs...)
}

// Register registers fn as an operation of this pipeline. The operation
// name is derived from the function name.
func (p *Pipeline) Register(fn OpFunc, inputs ...Input) (*Op, error) {
	if fn == nil {
		return nil, ErrFuncMustBeSet
	}

	return p.RegisterNamed(funcName(fn), fn, inputs...)
}

// RegisterNamed registers fn under an explicit name. Registration is not
// idempotent: registering the same function twice produces two distinct
// operations with distinct identifiers.
func (p *Pipeline) RegisterNamed(name string, fn OpFunc, inputs ...Input) (*Op, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}
	if fn == nil {
		return nil, ErrFuncMustBeSet
	}

	// A repeated name gets a numeric suffix: everything keyed by ID (the
	// graph, the runner, the drawer) relies on identifiers being unique
	// within the pipeline.
	id := k8sutil.SanitizeName(name)
	for n := 2; ; n++ {
		if _, ok := p.Op(id); !ok {
			break
		}
		id = fmt.Sprintf("%s-%d", k8sutil.SanitizeName(name), n)
	}

	op := &Op{
		Name:     name,
		ID:       id,
		pipeline: p,
		fn:       fn,
		inputs:   inputs,
		Arguments: []string{
			"pipelines", p.Name, name,
		},
	}

	err := p.addOp(op)
	if err != nil {
		return nil, err
	}

	err = op.bindInputs()
	if err != nil {
		return nil, err
	}

	op.Container = corev1.Container{
		Name:    op.ID,
		Image:   p.imageURL,
		Command: p.entrypoint,
		Args:    op.Arguments,
	}

	return op, nil
}

// bindInputs appends one --name/token pair per input, in input order, and
// records the bound parameters. Input order is observable in the emitted
// command line and must be preserved exactly.
func (o *Op) bindInputs() error {
	pipe := o.pipeline

	for _, in := range o.inputs {
		var param *Param

		switch in.kind {
		case paramInput:
			param = in.param
			pipe.logger.Info().
				Str("op", o.Name).
				Str("input", in.Name).
				Str("param", param.Name).
				Msg("binding input from pipeline parameter")

			o.Arguments = append(o.Arguments, "--"+in.Name, param.Placeholder())

		case outputInput:
			param = &Param{Name: in.Name, OpName: in.source.ID}
			pipe.logger.Info().
				Str("op", o.Name).
				Str("input", in.Name).
				Str("source", in.source.ID).
				Msg("binding input from op output")

			o.Arguments = append(o.Arguments, "--"+in.Name, param.Placeholder())

			err := pipe.addDependency(in.source, o)
			if err != nil {
				return err
			}

		default:
			// Anything else is a literal: register a new pipeline-level
			// parameter carrying its string form.
			param = &Param{Name: in.Name, Value: fmt.Sprint(in.value)}
			pipe.params = append(pipe.params, param)
			pipe.logger.Info().
				Str("op", o.Name).
				Str("input", in.Name).
				Str("value", param.Value).
				Msg("binding input value")

			o.Arguments = append(o.Arguments, "--"+in.Name, param.Placeholder())
		}

		o.bound = append(o.bound, param)
	}

	return nil
}

// Inputs returns the bound parameters in binding order.
func (o *Op) Inputs() []*Param {
	return o.bound
}

// String returns the sanitized identifier, so an op handle used as an
// argument value renders as the op it refers to.
func (o *Op) String() string {
	return o.ID
}

// Invoke calls the wrapped function directly with the original bound
// values, bypassing the argument-list mechanism. Literal inputs pass their
// value, parameter inputs their parameter value, and task-output inputs the
// source *Op handle.
func (o *Op) Invoke(ctx context.Context) error {
	return o.fn(ctx, o.argValues())
}

func (o *Op) argValues() map[string]any {
	args := make(map[string]any, len(o.inputs))
	for _, in := range o.inputs {
		switch in.kind {
		case paramInput:
			args[in.Name] = in.param.Value
		case outputInput:
			args[in.Name] = in.source
		default:
			args[in.Name] = in.value
		}
	}

	return args
}

// WithImage sets the container image reference.
func (o *Op) WithImage(containerImageURL string) *Op {
	o.Container.Image = containerImageURL

	return o
}

// WithCommand overrides the container command and argument list wholesale.
func (o *Op) WithCommand(command string, args ...string) *Op {
	o.Container.Command = []string{command}
	o.Container.Args = args

	return o
}

// WithSecret mounts the named secret read-only at mountPath.
func (o *Op) WithSecret(secretName, mountPath string) *Op {
	o.Volumes = append(o.Volumes, k8sutil.SecretVolume(secretName))
	o.Container.VolumeMounts = append(o.Container.VolumeMounts, k8sutil.ReadOnlyMount(secretName, mountPath))

	return o
}

const gcpCredentialsPath = "/secret/gcp-credentials"

// WithGCPAuth mounts the service-account secret and points the Google SDK
// credential variables at the mounted key file, making it the default
// identity for the operation's runtime.
func (o *Op) WithGCPAuth(secretName string) *Op {
	keyPath := fmt.Sprintf("%s/%s.json", gcpCredentialsPath, secretName)

	return o.WithSecret(secretName, gcpCredentialsPath).
		WithEnv("GOOGLE_APPLICATION_CREDENTIALS", keyPath).
		WithEnv("CLOUDSDK_AUTH_CREDENTIAL_FILE_OVERRIDE", keyPath)
}

// WithEnv sets an environment variable on the container, converting the
// value to its string form.
func (o *Op) WithEnv(name string, value any) *Op {
	o.Container.Env = append(o.Container.Env, corev1.EnvVar{
		Name:  name,
		Value: fmt.Sprint(value),
	})

	return o
}

// WithEmptyDir mounts an empty writable scratch volume at mountPath.
func (o *Op) WithEmptyDir(name, mountPath string) *Op {
	o.Volumes = append(o.Volumes, k8sutil.EmptyDirVolume(name))
	o.Container.VolumeMounts = append(o.Container.VolumeMounts, k8sutil.Mount(name, mountPath))

	return o
}

// funcName derives an operation name from a function symbol, trimming the
// package path and the method-value suffix.
func funcName(fn OpFunc) string {
	name := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}

	return strings.TrimSuffix(name, "-fm")
}
