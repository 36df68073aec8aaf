// Package gatego provides a resilient service-boundary gateway for Go.
//
// gatego combines guarded outbound calls (rate limiting, retries,
// circuit breaking, fallbacks), reactive autoscaling and replica
// routing into a single library.
//
// # Quick Start
//
//	gw, err := gatego.New("checkout",
//	    gatego.WithRetries(3),
//	    gatego.WithRateLimit(50, 25),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gw.Close()
//
//	orders, _ := gw.Dependency("orders")
//	err = orders.Call(ctx, func(ctx context.Context) error {
//	    return fetchOrder(ctx, id)
//	})
//
// # Separate Packages
//
// For services that only need one capability:
//
//	// Only guarded dependency calls
//	import "github.com/prilive-com/gatego/dependency"
//	client, _ := dependency.New("orders")
//
//	// Only autoscaling
//	import "github.com/prilive-com/gatego/scaler"
//	as, _ := scaler.New("checkout", source, orchestrator)
//
//	// Only round-robin routing
//	import "github.com/prilive-com/gatego/router"
//	rt, _ := router.New("checkout")
//
// # Shared Types
//
// Domain types and the error taxonomy live in the gate subpackage:
//
//	import "github.com/prilive-com/gatego/gate"
//	var res gate.CallResult
//	var kind gate.ErrorKind
//
// # Features
//
//   - Circuit breaker with sony/gobreaker
//   - Token-bucket admission control with golang.org/x/time/rate
//   - Retry with exponential backoff and crypto jitter
//   - Fallbacks for rejected and short-circuited calls
//   - Watermark autoscaling with cooldown and replica bounds
//   - Round-robin replica routing
//   - Prometheus metrics
//   - Structured logging with slog
//   - Go 1.22+ features: integer range loops, improved generics
package gatego
