package gatego

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prilive-com/gatego/dependency"
	"github.com/prilive-com/gatego/gate"
	"github.com/prilive-com/gatego/internal/resilience"
	"github.com/prilive-com/gatego/internal/syncutil"
	"github.com/prilive-com/gatego/router"
	"github.com/prilive-com/gatego/scaler"
)

// Gateway is the unified service-boundary client combining guarded
// dependency calls, adaptive scaling and replica routing.
type Gateway struct {
	service string
	logger  *slog.Logger
	config  gatewayConfig

	mu           sync.RWMutex
	dependencies map[string]*dependency.Client
	limiters     *resilience.LimiterSet

	scaler *scaler.AutoScaler
	router *router.Router

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

type gatewayConfig struct {
	// Dependency defaults applied to every registered client
	dependencyConfig dependency.Config

	// Scaling
	scalerConfig scaler.Config
	source       scaler.MetricsSource
	orchestrator scaler.Orchestrator

	// Router membership refresh period
	syncInterval time.Duration

	// Logger
	logger *slog.Logger
}

// Option configures the Gateway.
type Option func(*gatewayConfig)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *gatewayConfig) {
		c.logger = logger
	}
}

// WithDependencyDefaults sets the configuration applied to every
// dependency client the gateway creates.
func WithDependencyDefaults(cfg dependency.Config) Option {
	return func(c *gatewayConfig) {
		c.dependencyConfig = cfg
	}
}

// WithRetries sets the default total attempts per dependency call.
func WithRetries(maxAttempts int) Option {
	return func(c *gatewayConfig) {
		c.dependencyConfig.MaxAttempts = maxAttempts
	}
}

// WithRateLimit sets default admission-control parameters.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *gatewayConfig) {
		c.dependencyConfig.RPS = rps
		c.dependencyConfig.Burst = burst
	}
}

// WithCallTimeout sets the default per-attempt timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(c *gatewayConfig) {
		c.dependencyConfig.CallTimeout = d
	}
}

// WithScaling attaches the monitoring and orchestration collaborators
// and enables the autoscaler.
func WithScaling(source scaler.MetricsSource, orchestrator scaler.Orchestrator) Option {
	return func(c *gatewayConfig) {
		c.source = source
		c.orchestrator = orchestrator
	}
}

// WithScalerConfig overrides autoscaler settings.
func WithScalerConfig(cfg scaler.Config) Option {
	return func(c *gatewayConfig) {
		c.scalerConfig = cfg
	}
}

// WithSyncInterval sets the router membership refresh period.
func WithSyncInterval(d time.Duration) Option {
	return func(c *gatewayConfig) {
		c.syncInterval = d
	}
}

// New creates a Gateway for the named service.
func New(service string, opts ...Option) (*Gateway, error) {
	cfg := gatewayConfig{
		dependencyConfig: dependency.DefaultConfig(),
		scalerConfig:     scaler.DefaultConfig(),
		syncInterval:     15 * time.Second,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	rt, err := router.New(service, router.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	g := &Gateway{
		service:      service,
		logger:       logger,
		config:       cfg,
		dependencies: make(map[string]*dependency.Client),
		limiters: resilience.NewLimiterSet(resilience.LimiterConfig{
			RPS:   cfg.dependencyConfig.RPS,
			Burst: cfg.dependencyConfig.Burst,
		}),
		router: rt,
	}

	if cfg.source != nil && cfg.orchestrator != nil {
		g.scaler, err = scaler.NewFromConfig(service, cfg.scalerConfig, cfg.source, cfg.orchestrator,
			scaler.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Dependency returns the guarded client for name, creating it with the
// gateway defaults on first use. Per-dependency options apply only at
// creation.
func (g *Gateway) Dependency(name string, opts ...dependency.Option) (*dependency.Client, error) {
	g.mu.RLock()
	client, exists := g.dependencies[name]
	g.mu.RUnlock()

	if exists {
		return client, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if client, exists = g.dependencies[name]; exists {
		return client, nil
	}

	base := []dependency.Option{
		dependency.WithLogger(g.logger),
		dependency.WithLimiter(g.limiters.Get(name)),
	}
	client, err := dependency.NewFromConfig(name, g.config.dependencyConfig, append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	g.dependencies[name] = client
	return client, nil
}

// Call runs fn through the named dependency's protection chain.
func (g *Gateway) Call(ctx context.Context, name string, fn dependency.CallFunc) error {
	client, err := g.Dependency(name)
	if err != nil {
		return err
	}
	return client.Call(ctx, fn)
}

// Route returns the next replica for inbound traffic.
func (g *Gateway) Route() (gate.Replica, error) {
	return g.router.Pick()
}

// Router returns the gateway's router.
func (g *Gateway) Router() *router.Router {
	return g.router
}

// Scaler returns the autoscaler, or nil when scaling is not configured.
func (g *Gateway) Scaler() *scaler.AutoScaler {
	return g.scaler
}

// Start begins the autoscaler loop and periodic router membership
// refresh. It returns immediately.
func (g *Gateway) Start(ctx context.Context) error {
	if !g.running.CompareAndSwap(false, true) {
		return gate.ErrAlreadyRunning
	}

	g.stopCh = make(chan struct{})

	if g.scaler != nil {
		if err := g.scaler.Start(ctx); err != nil {
			g.running.Store(false)
			return fmt.Errorf("gatego: start scaler: %w", err)
		}
	}

	if g.config.orchestrator != nil {
		if err := g.router.Sync(ctx, g.config.orchestrator); err != nil {
			g.logger.Warn("initial membership sync failed", "error", err)
		}

		syncutil.Go(&g.wg, func() {
			ticker := time.NewTicker(g.config.syncInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-g.stopCh:
					return
				case <-ticker.C:
					if err := g.router.Sync(ctx, g.config.orchestrator); err != nil {
						g.logger.Warn("membership sync failed", "error", err)
					}
				}
			}
		})
	}

	return nil
}

// Close stops background loops and waits for them to exit.
// Close is safe to call multiple times.
func (g *Gateway) Close() error {
	if !g.running.CompareAndSwap(true, false) {
		return nil
	}

	close(g.stopCh)
	g.wg.Wait()

	if g.scaler != nil {
		if err := g.scaler.Stop(); err != nil && err != gate.ErrNotRunning {
			return err
		}
	}
	return nil
}
