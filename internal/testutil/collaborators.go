package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prilive-com/gatego/gate"
)

// StaticMetrics is a metrics source that always returns the same sample.
type StaticMetrics struct {
	mu  sync.Mutex
	cpu float64
	mem float64
}

// NewStaticMetrics creates a source pinned to the given CPU percentage.
func NewStaticMetrics(cpu float64) *StaticMetrics {
	return &StaticMetrics{cpu: cpu, mem: cpu}
}

// Sample returns the configured utilization reading.
func (m *StaticMetrics) Sample(ctx context.Context) (gate.UtilizationSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gate.UtilizationSample{CPU: m.cpu, Memory: m.mem, At: time.Now()}, nil
}

// SetCPU changes the reported CPU percentage.
func (m *StaticMetrics) SetCPU(cpu float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cpu = cpu
}

// FakeOrchestrator records scale directives and serves replica membership.
type FakeOrchestrator struct {
	mu       sync.Mutex
	replicas []gate.Replica
	scaleLog []int
}

// NewFakeOrchestrator creates an orchestrator with n initial replicas.
func NewFakeOrchestrator(n int) *FakeOrchestrator {
	o := &FakeOrchestrator{}
	o.setReplicas(n)
	return o
}

// ScaleTo records the directive and adjusts membership.
func (o *FakeOrchestrator) ScaleTo(ctx context.Context, replicas int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scaleLog = append(o.scaleLog, replicas)
	o.setReplicasLocked(replicas)
	return nil
}

// Replicas returns the current membership.
func (o *FakeOrchestrator) Replicas(ctx context.Context) ([]gate.Replica, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]gate.Replica{}, o.replicas...), nil
}

// ScaleLog returns the recorded scale directives in order.
func (o *FakeOrchestrator) ScaleLog() []int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]int{}, o.scaleLog...)
}

func (o *FakeOrchestrator) setReplicas(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.setReplicasLocked(n)
}

func (o *FakeOrchestrator) setReplicasLocked(n int) {
	o.replicas = o.replicas[:0]
	for i := 0; i < n; i++ {
		o.replicas = append(o.replicas, gate.Replica{
			ID:      fmt.Sprintf("replica-%d", i),
			Address: fmt.Sprintf("10.0.0.%d:8080", i+1),
		})
	}
}
