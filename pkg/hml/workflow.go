package hml

import (
	"io"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/yaml"
)

// ParamSpec is a pipeline-level parameter in the compiled workflow.
type ParamSpec struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// TaskSpec is the step descriptor handed to the external workflow builder:
// step name, container image, command and ordered argument list, plus the
// cluster resource bindings accumulated by the fluent configuration calls.
// The argument list carries the executor's templating tokens verbatim.
type TaskSpec struct {
	Name         string               `json:"name"`
	Image        string               `json:"image,omitempty"`
	Command      []string             `json:"command,omitempty"`
	Arguments    []string             `json:"arguments,omitempty"`
	Env          []corev1.EnvVar      `json:"env,omitempty"`
	Volumes      []corev1.Volume      `json:"volumes,omitempty"`
	VolumeMounts []corev1.VolumeMount `json:"volumeMounts,omitempty"`
	Dependencies []string             `json:"dependencies,omitempty"`
	Inputs       []ParamSpec          `json:"inputs,omitempty"`
}

// WorkflowSpec is the compiled form of a pipeline.
type WorkflowSpec struct {
	Name       string      `json:"name"`
	Parameters []ParamSpec `json:"parameters,omitempty"`
	Tasks      []TaskSpec  `json:"tasks"`
}

// Compile produces the workflow descriptor for submission to the external
// builder. Tasks appear in registration order, which is always a valid
// topological order because an operation can only reference outputs of
// operations registered before it.
func (p *Pipeline) Compile() (*WorkflowSpec, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	spec := &WorkflowSpec{
		Name:  p.Name,
		Tasks: make([]TaskSpec, 0, len(p.ops)),
	}

	for _, param := range p.params {
		spec.Parameters = append(spec.Parameters, ParamSpec{Name: param.Name, Value: param.Value})
	}

	for _, op := range p.ops {
		deps, err := p.dependencies(op)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to resolve dependencies of op %s", op.ID)
		}

		task := TaskSpec{
			Name:         op.ID,
			Image:        op.Container.Image,
			Command:      op.Container.Command,
			Arguments:    op.Container.Args,
			Env:          op.Container.Env,
			Volumes:      op.Volumes,
			VolumeMounts: op.Container.VolumeMounts,
			Dependencies: deps,
		}

		for _, param := range op.Inputs() {
			task.Inputs = append(task.Inputs, ParamSpec{Name: param.Name, Value: param.Value})
		}

		spec.Tasks = append(spec.Tasks, task)
	}

	return spec, nil
}

// WriteYAML encodes the workflow as YAML. Encoding goes through the JSON
// field tags so the volume and environment shapes match the cluster
// platform's schema.
func (w *WorkflowSpec) WriteYAML(out io.Writer) error {
	raw, err := yaml.Marshal(w)
	if err != nil {
		return errors.Wrapf(err, "unable to marshal workflow %s", w.Name)
	}

	_, err = out.Write(raw)
	if err != nil {
		return errors.Wrapf(err, "unable to write workflow %s", w.Name)
	}

	return nil
}
