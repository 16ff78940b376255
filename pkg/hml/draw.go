package hml

import (
	"github.com/pkg/errors"

	"github.com/growingdata/hml-go/pkg/hml/drawer"
	"github.com/growingdata/hml-go/pkg/hml/measure"
)

// Draw renders the pipeline's op graph with the given drawer. When msr is
// not nil the graph is decorated with metrics from a local run first.
func (p *Pipeline) Draw(d drawer.Drawer, msr measure.Measure) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	for _, op := range p.ops {
		err := d.AddOp(op.ID)
		if err != nil {
			return errors.Wrapf(err, "unable to draw op %s", op.ID)
		}
	}

	for _, op := range p.ops {
		deps, err := p.dependencies(op)
		if err != nil {
			return err
		}

		for _, dep := range deps {
			err = d.AddDependency(dep, op.ID)
			if err != nil {
				return errors.Wrapf(err, "unable to draw dependency %s -> %s", dep, op.ID)
			}
		}
	}

	if msr != nil {
		err := d.AddMeasure(msr)
		if err != nil {
			return errors.Wrap(err, "unable to add measure to drawer")
		}
	}

	err := d.Draw()
	if err != nil {
		return errors.Wrapf(err, "unable to draw pipeline %s", p.Name)
	}

	return nil
}
