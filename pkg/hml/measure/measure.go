// Package measure tracks op durations during local pipeline runs.
package measure

import (
	"sync"
	"time"
)

type DefaultMeasure struct {
	mu          sync.Mutex
	ops         map[string]Metric
	endDuration time.Duration
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		ops: make(map[string]Metric),
	}
}

func (m *DefaultMeasure) AddMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt := &DefaultMetric{mu: &sync.Mutex{}}
	m.ops[name] = mt

	return mt
}

func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ops[name]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ops
}

func (m *DefaultMeasure) SetTotalDuration(endDuration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.endDuration = endDuration
}

func (m *DefaultMeasure) GetTotalDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.endDuration
}

var _ Measure = (*DefaultMeasure)(nil)
