// Package drawer renders pipeline op graphs as Graphviz DOT files, suitable
// for piping through dot to produce an SVG.
package drawer

import (
	"os"
	"sort"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/growingdata/hml-go/pkg/hml/measure"
)

// DOTDrawer is a drawer that creates a DOT file with the op graph.
type DOTDrawer struct {
	graph       graph.Graph[string, string]
	ops         map[string]struct{}
	dotFileName string
}

// NewDOTDrawer creates a new DOT drawer.
func NewDOTDrawer(dotFileName string) *DOTDrawer {
	return &DOTDrawer{
		dotFileName: dotFileName,
		graph:       graph.New(graph.StringHash, graph.Directed()),
		ops:         make(map[string]struct{}),
	}
}

// AddOp adds an op to the graph.
func (d *DOTDrawer) AddOp(opID string) error {
	err := d.graph.AddVertex(opID)
	if err != nil {
		return errors.Wrap(err, "unable to add vertex")
	}

	d.ops[opID] = struct{}{}

	return nil
}

// AddDependency adds an edge between a source op and its consumer.
func (d *DOTDrawer) AddDependency(sourceID, targetID string) error {
	err := d.graph.AddEdge(sourceID, targetID)
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", sourceID, targetID)
	}

	return nil
}

// Draw creates a DOT file with the op graph.
func (d *DOTDrawer) Draw() error {
	file, err := os.Create(d.dotFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.dotFileName)
	}
	defer file.Close()

	err = dot(d.graph, file)
	if err != nil {
		return errors.Wrapf(err, "unable to render dot file %s", d.dotFileName)
	}

	return nil
}

const maxRGB = 240

// AddMeasure labels each op with its average invocation duration and colors
// it on a blue-to-red scale, slowest op reddest.
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	durations := []time.Duration{}
	for _, mt := range msr.AllMetrics() {
		if mt.AVGDuration() == 0 {
			continue
		}
		durations = append(durations, mt.AVGDuration())
	}
	if len(durations) == 0 {
		return nil
	}

	sort.Slice(durations, func(i, j int) bool {
		return durations[i] > durations[j]
	})

	maxValue := durations[0]
	minValue := durations[len(durations)-1]

	for opID, mt := range msr.AllMetrics() {
		avg := mt.AVGDuration()
		if avg == 0 {
			continue
		}

		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(avg-minValue) / float64(maxValue-minValue)
		}

		red := maxRGB * fraction
		blue := -maxRGB*fraction + maxRGB

		opColor, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
		if err != nil {
			return errors.Wrap(err, "unable to get colour")
		}

		_, properties, err := d.graph.VertexWithProperties(opID)
		if err != nil {
			return errors.Wrapf(err, "unable to get vertex properties for %s", opID)
		}

		properties.Attributes["xlabel"] = avg.String()
		properties.Attributes["color"] = opColor.ToHEX().String()
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
