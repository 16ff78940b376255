package measure

import "time"

// Measure collects metrics for the ops of one local pipeline run.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
	SetTotalDuration(endDuration time.Duration)
	GetTotalDuration() time.Duration
}

// Metric tracks invocation durations of a single op.
type Metric interface {
	AddDuration(elapsed time.Duration)
	AVGDuration() time.Duration
	Invocations() int64
}
