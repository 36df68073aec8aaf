// Package dependency provides a resilient client for calls across a
// service boundary.
//
// Every call runs through a fixed protection chain: token-bucket
// admission control, then a bounded retry loop where each attempt is
// independently timeout-bounded and circuit-breaker-guarded. Rejected
// calls (rate limited or open circuit) resolve through an optional
// fallback instead of reaching the dependency.
//
// # Usage
//
//	client, err := dependency.New("orders",
//	    dependency.WithRateLimit(50, 25),
//	    dependency.WithRetries(3),
//	    dependency.WithTimeout(2*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	order, err := dependency.Invoke(client, ctx, fetchOrder)
//
// # HTTP dependencies
//
// HTTPTarget builds call functions for HTTP endpoints with transport
// and status failures pre-classified:
//
//	target := dependency.NewHTTPTarget("orders", "http://orders:8080", nil)
//	body, err := dependency.Invoke(client, ctx, target.Get("/orders/42"))
package dependency
