package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prilive-com/gatego/gate"
)

// loadMetrics derives a synthetic CPU figure from recent successful
// calls, so sustained load pushes the autoscaler over its high
// watermark and idle periods drop it below the low one.
type loadMetrics struct {
	mu    sync.Mutex
	times []time.Time
}

func newLoadMetrics() *loadMetrics {
	return &loadMetrics{}
}

func (m *loadMetrics) observe() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.times = append(m.times, time.Now())
}

func (m *loadMetrics) Sample(ctx context.Context) (gate.UtilizationSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-time.Minute)
	kept := m.times[:0]
	for _, t := range m.times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	m.times = kept

	// ~4 successful calls/s saturates the synthetic CPU.
	cpu := float64(len(kept)) / 240 * 100
	if cpu > 100 {
		cpu = 100
	}

	return gate.UtilizationSample{
		CPU: cpu,
		At:  time.Now(),
	}, nil
}

// simOrchestrator keeps an in-memory replica set so scaling directives
// have something to act on.
type simOrchestrator struct {
	mu       sync.Mutex
	replicas []gate.Replica
}

func newSimOrchestrator(n int) *simOrchestrator {
	o := &simOrchestrator{}
	o.resize(n)
	return o
}

func (o *simOrchestrator) ScaleTo(ctx context.Context, replicas int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resize(replicas)
	return nil
}

func (o *simOrchestrator) Replicas(ctx context.Context) ([]gate.Replica, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]gate.Replica, len(o.replicas))
	copy(out, o.replicas)
	return out, nil
}

func (o *simOrchestrator) resize(n int) {
	o.replicas = o.replicas[:0]
	for i := 0; i < n; i++ {
		o.replicas = append(o.replicas, gate.Replica{
			ID:      fmt.Sprintf("checkout-%d", i+1),
			Address: fmt.Sprintf("10.0.0.%d:8080", i+1),
		})
	}
}
