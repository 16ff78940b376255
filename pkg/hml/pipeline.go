package hml

import (
	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Pipeline is a named, ordered collection of operations forming a workflow
// graph. Operations are appended by registration and the dependency graph
// grows an edge for every task-output reference between them.
type Pipeline struct {
	Name string

	imageURL   string
	entrypoint []string
	ops        []*Op
	params     []*Param
	graph      graph.Graph[string, string]
	logger     zerolog.Logger
}

type PipelineOption func(p *Pipeline)

// PipelineImage sets the default container image for registered operations.
func PipelineImage(imageURL string) PipelineOption {
	return func(p *Pipeline) {
		p.imageURL = imageURL
	}
}

// PipelineEntrypoint sets the default container command for registered
// operations, normally the installed entrypoint of this application.
func PipelineEntrypoint(command ...string) PipelineOption {
	return func(p *Pipeline) {
		p.entrypoint = command
	}
}

// PipelineLogger replaces the default logger.
func PipelineLogger(logger zerolog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a new pipeline.
func NewPipeline(name string, opts ...PipelineOption) *Pipeline {
	pipe := &Pipeline{
		Name:   name,
		graph:  graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles()),
		logger: log.Logger,
	}

	for _, opt := range opts {
		opt(pipe)
	}

	return pipe
}

// Ops returns the registered operations in registration order.
func (p *Pipeline) Ops() []*Op {
	return p.ops
}

// Params returns every pipeline-level parameter registered so far.
func (p *Pipeline) Params() []*Param {
	return p.params
}

// Op returns the operation with the given sanitized identifier.
func (p *Pipeline) Op(id string) (*Op, bool) {
	for _, op := range p.ops {
		if op.ID == id {
			return op, true
		}
	}

	return nil, false
}

func (p *Pipeline) addOp(op *Op) error {
	err := p.graph.AddVertex(op.ID)
	if err != nil {
		return errors.Wrapf(err, "unable to add op %s to the pipeline graph", op.ID)
	}

	p.ops = append(p.ops, op)

	return nil
}

func (p *Pipeline) addDependency(source, target *Op) error {
	err := p.graph.AddEdge(source.ID, target.ID)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add dependency from %s to %s", source.ID, target.ID)
	}

	return nil
}

// dependencies returns the sanitized identifiers of the ops the given op
// depends on, in a stable order.
func (p *Pipeline) dependencies(op *Op) ([]string, error) {
	predecessors, err := p.graph.PredecessorMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to build the predecessor map")
	}

	deps := make([]string, 0, len(predecessors[op.ID]))
	for _, candidate := range p.ops {
		if _, ok := predecessors[op.ID][candidate.ID]; ok {
			deps = append(deps, candidate.ID)
		}
	}

	return deps, nil
}
