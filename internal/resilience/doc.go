// Package resilience provides circuit breaker, rate limiting, retry and
// timeout primitives. Uses sony/gobreaker for circuit breaking and
// golang.org/x/time/rate for rate limiting.
package resilience
