package router

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/prilive-com/gatego/gate"
	"github.com/prilive-com/gatego/internal/metrics"
	"github.com/prilive-com/gatego/internal/validate"
)

// MembershipSource reports the live replica set. The orchestration
// collaborator satisfies this.
type MembershipSource interface {
	Replicas(ctx context.Context) ([]gate.Replica, error)
}

// Router distributes inbound traffic round-robin across the current
// replica set. Membership swaps are atomic with respect to Pick.
type Router struct {
	service  string
	logger   *slog.Logger
	mu       sync.RWMutex
	replicas []gate.Replica
	next     atomic.Uint64
}

// Option configures the Router.
type Option func(*Router)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// New creates a Router for the named service.
func New(service string, opts ...Option) (*Router, error) {
	if err := validate.Name("service", service); err != nil {
		return nil, fmt.Errorf("%w: %w", gate.ErrInvalidConfig, err)
	}

	r := &Router{service: service}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r, nil
}

// SetReplicas replaces the replica set.
func (r *Router) SetReplicas(replicas []gate.Replica) {
	copied := append([]gate.Replica{}, replicas...)

	r.mu.Lock()
	r.replicas = copied
	r.mu.Unlock()

	r.logger.Debug("replica set updated",
		"service", r.service,
		"replicas", len(copied),
	)
}

// Sync refreshes membership from the orchestration collaborator.
func (r *Router) Sync(ctx context.Context, source MembershipSource) error {
	replicas, err := source.Replicas(ctx)
	if err != nil {
		return fmt.Errorf("gatego: %s: membership refresh: %w", r.service, err)
	}
	r.SetReplicas(replicas)
	return nil
}

// Pick returns the next replica in round-robin order.
func (r *Router) Pick() (gate.Replica, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.replicas) == 0 {
		return gate.Replica{}, gate.ErrNoReplicas
	}

	idx := (r.next.Add(1) - 1) % uint64(len(r.replicas))
	replica := r.replicas[idx]

	metrics.RoutedTotal.WithLabelValues(r.service, replica.ID).Inc()
	return replica, nil
}

// Len returns the current replica count.
func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.replicas)
}
