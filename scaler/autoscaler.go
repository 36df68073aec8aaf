package scaler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prilive-com/gatego/gate"
	"github.com/prilive-com/gatego/internal/metrics"
	"github.com/prilive-com/gatego/internal/syncutil"
	"github.com/prilive-com/gatego/internal/validate"
)

// MetricsSource supplies utilization readings from the monitoring
// collaborator.
type MetricsSource interface {
	Sample(ctx context.Context) (gate.UtilizationSample, error)
}

// Orchestrator applies scale directives and reports replica membership.
// Implementations talk to the container scheduler; the protocol is
// theirs to choose.
type Orchestrator interface {
	ScaleTo(ctx context.Context, replicas int) error
	Replicas(ctx context.Context) ([]gate.Replica, error)
}

// Clock abstracts time for cooldown accounting.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// AutoScaler evaluates a service's utilization on a periodic schedule
// and keeps its replica count inside configured bounds. Replica state is
// owned here and mutated only through applied decisions, under the
// scaler's lock.
type AutoScaler struct {
	service      string
	config       Config
	logger       *slog.Logger
	source       MetricsSource
	orchestrator Orchestrator
	clock        Clock
	onDecision   func(gate.ScalingDecision)

	mu        sync.Mutex
	state     gate.ReplicaSetState
	lastScale time.Time

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// Option configures the AutoScaler.
type Option func(*AutoScaler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *AutoScaler) {
		a.logger = logger
	}
}

// WithClock sets a custom clock (useful for testing cooldown).
func WithClock(clock Clock) Option {
	return func(a *AutoScaler) {
		a.clock = clock
	}
}

// WithWatermarks sets the scale-up and scale-down thresholds.
func WithWatermarks(high, low float64) Option {
	return func(a *AutoScaler) {
		a.config.HighWatermark = high
		a.config.LowWatermark = low
	}
}

// WithBounds sets the replica bounds.
func WithBounds(min, max int) Option {
	return func(a *AutoScaler) {
		a.config.MinReplicas = min
		a.config.MaxReplicas = max
	}
}

// WithCooldown sets the minimum gap between applied scale actions.
func WithCooldown(d time.Duration) Option {
	return func(a *AutoScaler) {
		a.config.Cooldown = d
	}
}

// WithInterval sets the evaluation tick period.
func WithInterval(d time.Duration) Option {
	return func(a *AutoScaler) {
		a.config.Interval = d
	}
}

// WithDecisionHook registers an observer invoked with every decision,
// including NoOps.
func WithDecisionHook(hook func(gate.ScalingDecision)) Option {
	return func(a *AutoScaler) {
		a.onDecision = hook
	}
}

// New creates an AutoScaler for the named service.
func New(service string, source MetricsSource, orchestrator Orchestrator, opts ...Option) (*AutoScaler, error) {
	return NewFromConfig(service, DefaultConfig(), source, orchestrator, opts...)
}

// NewFromConfig creates an AutoScaler from cfg.
func NewFromConfig(service string, cfg Config, source MetricsSource, orchestrator Orchestrator, opts ...Option) (*AutoScaler, error) {
	if err := validate.Name("service", service); err != nil {
		return nil, fmt.Errorf("%w: %w", gate.ErrInvalidConfig, err)
	}

	a := &AutoScaler{
		service:      service,
		config:       cfg,
		source:       source,
		orchestrator: orchestrator,
	}

	for _, opt := range opts {
		opt(a)
	}

	if err := a.config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", gate.ErrInvalidConfig, err)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.clock == nil {
		a.clock = realClock{}
	}

	a.state = gate.ReplicaSetState{
		Current: a.config.MinReplicas,
		Min:     a.config.MinReplicas,
		Max:     a.config.MaxReplicas,
	}

	return a, nil
}

// Service returns the scaled service's name.
func (a *AutoScaler) Service() string {
	return a.service
}

// State returns the current replica set state.
func (a *AutoScaler) State() gate.ReplicaSetState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Evaluate computes a scaling decision from one utilization sample.
// The decision respects replica bounds and the cooldown window; it does
// not mutate state until applied.
func (a *AutoScaler) Evaluate(sample gate.UtilizationSample) gate.ScalingDecision {
	a.mu.Lock()
	defer a.mu.Unlock()

	decision := a.evaluateLocked(sample)
	if a.onDecision != nil {
		a.onDecision(decision)
	}
	return decision
}

func (a *AutoScaler) evaluateLocked(sample gate.UtilizationSample) gate.ScalingDecision {
	noop := func(reason string) gate.ScalingDecision {
		return gate.ScalingDecision{
			Direction:      gate.NoOp,
			TargetReplicas: a.state.Current,
			Reason:         reason,
		}
	}

	util := sample.CPU

	switch {
	case util > a.config.HighWatermark && a.state.Current < a.state.Max:
		if a.inCooldown() {
			return noop("cooldown")
		}
		return gate.ScalingDecision{
			Direction:      gate.ScaleUp,
			TargetReplicas: a.state.Clamp(a.state.Current + a.config.Step),
			Reason:         fmt.Sprintf("utilization %.1f%% above %.1f%%", util, a.config.HighWatermark),
		}
	case util < a.config.LowWatermark && a.state.Current > a.state.Min:
		if a.inCooldown() {
			return noop("cooldown")
		}
		return gate.ScalingDecision{
			Direction:      gate.ScaleDown,
			TargetReplicas: a.state.Clamp(a.state.Current - a.config.Step),
			Reason:         fmt.Sprintf("utilization %.1f%% below %.1f%%", util, a.config.LowWatermark),
		}
	default:
		return noop("within watermarks")
	}
}

func (a *AutoScaler) inCooldown() bool {
	return !a.lastScale.IsZero() && a.clock.Now().Sub(a.lastScale) < a.config.Cooldown
}

// Apply executes a decision against the orchestrator and records the
// new replica state. NoOp decisions return immediately.
func (a *AutoScaler) Apply(ctx context.Context, decision gate.ScalingDecision) error {
	if decision.Direction == gate.NoOp {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	target := a.state.Clamp(decision.TargetReplicas)
	if err := a.orchestrator.ScaleTo(ctx, target); err != nil {
		return fmt.Errorf("gatego: %s: scale to %d: %w", a.service, target, err)
	}

	a.state.Current = target
	a.lastScale = a.clock.Now()

	metrics.RecordScaleEvent(a.service, decision.Direction.String(), target)
	a.logger.Info("scale action applied",
		"service", a.service,
		"direction", decision.Direction.String(),
		"replicas", target,
		"reason", decision.Reason,
	)

	return nil
}

// Tick performs one sample-evaluate-apply cycle.
func (a *AutoScaler) Tick(ctx context.Context) error {
	sample, err := a.source.Sample(ctx)
	if err != nil {
		return fmt.Errorf("gatego: %s: utilization sample: %w", a.service, err)
	}

	metrics.RecordUtilization(a.service, sample.CPU, sample.Memory)

	return a.Apply(ctx, a.Evaluate(sample))
}

// Start begins periodic evaluation. It returns immediately; the loop
// runs until Stop is called or ctx is cancelled.
func (a *AutoScaler) Start(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return gate.ErrAlreadyRunning
	}

	a.syncReplicas(ctx)
	a.stopCh = make(chan struct{})

	syncutil.Go(&a.wg, func() {
		ticker := time.NewTicker(a.config.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-a.stopCh:
				return
			case <-ticker.C:
				if err := a.Tick(ctx); err != nil {
					a.logger.Warn("evaluation tick failed",
						"service", a.service,
						"error", err,
					)
				}
			}
		}
	})

	return nil
}

// Stop halts the evaluation loop and waits for it to exit.
func (a *AutoScaler) Stop() error {
	if !a.running.CompareAndSwap(true, false) {
		return gate.ErrNotRunning
	}

	close(a.stopCh)
	a.wg.Wait()
	return nil
}

// syncReplicas aligns owned state with actual membership at startup.
func (a *AutoScaler) syncReplicas(ctx context.Context) {
	replicas, err := a.orchestrator.Replicas(ctx)
	if err != nil {
		a.logger.Warn("replica sync failed, keeping configured minimum",
			"service", a.service,
			"error", err,
		)
		return
	}
	if len(replicas) == 0 {
		return
	}

	a.mu.Lock()
	a.state.Current = a.state.Clamp(len(replicas))
	a.mu.Unlock()

	metrics.ReplicasCurrent.WithLabelValues(a.service).Set(float64(len(replicas)))
}
