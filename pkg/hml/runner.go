package hml

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/growingdata/hml-go/pkg/hml/measure"
)

// Runner executes the registered functions of a pipeline directly, without
// the orchestration platform. Independent ops run concurrently up to a
// bound; an op only starts once every op it references has finished.
type Runner struct {
	concurrency int
	measure     measure.Measure
}

type RunnerOption func(r *Runner)

// RunnerConcurrency bounds the number of ops executing at once.
func RunnerConcurrency(concurrent int) RunnerOption {
	return func(r *Runner) {
		r.concurrency = concurrent
	}
}

// RunnerMeasure records per-op durations into m.
func RunnerMeasure(m measure.Measure) RunnerOption {
	return func(r *Runner) {
		r.measure = m
	}
}

// Run invokes every op of the pipeline in dependency order and waits for
// them to finish. It returns the first error and cancels the remaining ops.
func Run(ctx context.Context, p *Pipeline, opts ...RunnerOption) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	runner := &Runner{concurrency: 1}
	for _, opt := range opts {
		opt(runner)
	}
	if runner.concurrency == 0 {
		runner.concurrency = 1
	}

	runID := uuid.NewString()
	logger := p.logger.With().Str("pipeline", p.Name).Str("run_id", runID).Logger()
	logger.Info().Int("ops", len(p.ops)).Msg("starting local run")

	predecessors, err := p.graph.PredecessorMap()
	if err != nil {
		return errors.Wrap(err, "unable to build the predecessor map")
	}

	done := make(map[string]chan struct{}, len(p.ops))
	for _, op := range p.ops {
		done[op.ID] = make(chan struct{})
	}

	startTime := time.Now()
	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(runner.concurrency)

	// Launch in registration order: an op can only reference outputs of ops
	// registered before it, so its dependencies are always launched first
	// and the bounded group cannot deadlock.
	for _, op := range p.ops {
		localOp := op

		var mt measure.Metric
		if runner.measure != nil {
			mt = runner.measure.AddMetric(localOp.ID)
		}

		errGrp.Go(func() error {
			for dep := range predecessors[localOp.ID] {
				select {
				case <-dCtx.Done():
					return errors.Wrapf(dCtx.Err(), "op %s", localOp.ID)
				case <-done[dep]:
				}
			}

			logger.Info().Str("op", localOp.ID).Msg("invoking op")

			start := time.Now()
			err := localOp.Invoke(dCtx)
			if mt != nil {
				mt.AddDuration(time.Since(start))
			}
			if err != nil {
				return errors.Wrapf(err, "op %s", localOp.ID)
			}

			close(done[localOp.ID])

			return nil
		})
	}

	err = errGrp.Wait()
	if runner.measure != nil {
		runner.measure.SetTotalDuration(time.Since(startTime))
	}
	if err != nil {
		return err
	}

	logger.Info().Dur("elapsed", time.Since(startTime)).Msg("local run finished")

	return nil
}
