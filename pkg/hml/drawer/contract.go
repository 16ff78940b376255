package drawer

import (
	"github.com/growingdata/hml-go/pkg/hml/measure"
)

// Drawer renders a pipeline's op graph.
type Drawer interface {
	// AddOp adds an op vertex to the graph.
	AddOp(opID string) error
	// AddDependency adds an edge from a source op to the op consuming its
	// output.
	AddDependency(sourceID, targetID string) error
	// AddMeasure decorates the graph with metrics from a local run.
	AddMeasure(msr measure.Measure) error
	// Draw writes the graph to its destination file.
	Draw() error
}
