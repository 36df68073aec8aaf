// Command gatego-demo runs the gateway against a simulated flaky
// upstream so the protection chain, autoscaler and metrics can be
// observed locally.
//
// Endpoints:
//   - http://localhost:8081/orders  — flaky upstream (30% failures)
//   - http://localhost:9090/metrics — Prometheus metrics
//
// Stop with Ctrl+C.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/prilive-com/gatego"
	"github.com/prilive-com/gatego/dependency"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics := newLoadMetrics()
	orchestrator := newSimOrchestrator(1)

	cfg := dependency.DefaultConfig()
	cfg.CallTimeout = 500 * time.Millisecond

	gw, err := gatego.New("checkout",
		gatego.WithLogger(logger),
		gatego.WithDependencyDefaults(cfg),
		gatego.WithScaling(metrics, orchestrator),
		gatego.WithSyncInterval(5*time.Second),
	)
	if err != nil {
		log.Fatalf("Failed to create gateway: %v", err)
	}
	defer gw.Close()

	if err := gw.Start(ctx); err != nil {
		log.Fatalf("Failed to start gateway: %v", err)
	}

	orders, err := gw.Dependency("orders",
		dependency.WithFallback(func(ctx context.Context, cause error) (any, error) {
			logger.Warn("serving cached orders", "cause", cause)
			return []byte(`{"orders":[],"cached":true}`), nil
		}),
	)
	if err != nil {
		log.Fatalf("Failed to create dependency: %v", err)
	}

	target := dependency.NewHTTPTarget("orders", "http://localhost:8081", nil)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return runUpstream(gctx, logger) })
	g.Go(func() error { return runMetricsServer(gctx, logger, orders) })
	g.Go(func() error { return runLoad(gctx, logger, orders, target, metrics) })

	logger.Info("demo started",
		"upstream", "http://localhost:8081/orders",
		"metrics", "http://localhost:9090/metrics")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("demo failed: %v", err)
	}
	logger.Info("shutting down")
}

// runUpstream serves a flaky orders endpoint: 30% of requests fail
// with 502 and every request carries some latency.
func runUpstream(ctx context.Context, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Duration(rand.Intn(100)) * time.Millisecond)
		if rand.Float64() < 0.3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"orders":[{"id":1},{"id":2}]}`))
	})

	srv := &http.Server{Addr: ":8081", Handler: mux}
	return serve(ctx, logger, "upstream", srv)
}

func runMetricsServer(ctx context.Context, logger *slog.Logger, orders *dependency.Client) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(healthResponse{
			Status:      "ok",
			Dependency:  orders.Name(),
			BreakerOpen: orders.Open(),
			Breaker:     orders.BreakerState(),
		})
	})

	srv := &http.Server{Addr: ":9090", Handler: mux}
	return serve(ctx, logger, "metrics", srv)
}

type healthResponse struct {
	Status      string `json:"status"`
	Dependency  string `json:"dependency"`
	BreakerOpen bool   `json:"breaker_open"`
	Breaker     string `json:"breaker_state"`
}

func serve(ctx context.Context, logger *slog.Logger, name string, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown failed", "server", name, "error", err)
		}
		return ctx.Err()
	}
}

// runLoad issues guarded calls in a tight loop and feeds the observed
// request rate back into the simulated utilization metric.
func runLoad(ctx context.Context, logger *slog.Logger, orders *dependency.Client, target *dependency.HTTPTarget, metrics *loadMetrics) error {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			body, err := dependency.Invoke(orders, ctx, target.Get("/orders"))
			if err != nil {
				logger.Debug("call failed", "error", err)
				continue
			}
			metrics.observe()
			logger.Debug("call succeeded", "bytes", len(body))
		}
	}
}
