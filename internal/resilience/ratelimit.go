package resilience

import (
	"sync"

	"golang.org/x/time/rate"
)

// LimiterConfig holds admission-control configuration.
type LimiterConfig struct {
	RPS   float64 // Refill rate in tokens per second
	Burst int     // Bucket capacity
}

// DefaultLimiterConfig returns sensible defaults for a service boundary.
func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		RPS:   50,
		Burst: 25,
	}
}

// Limiter is token-bucket admission control for one dependency.
// Acquire never blocks; denied calls must fail fast.
type Limiter struct {
	bucket *rate.Limiter
}

// NewLimiter creates an admission limiter from cfg.
func NewLimiter(cfg LimiterConfig) *Limiter {
	return &Limiter{
		bucket: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
	}
}

// Acquire reports whether one call is admitted right now.
func (l *Limiter) Acquire() bool {
	return l.bucket.Allow()
}

// Tokens returns the current token count, for monitoring.
func (l *Limiter) Tokens() float64 {
	return l.bucket.Tokens()
}

// SetLimit updates the refill rate and capacity.
func (l *Limiter) SetLimit(rps float64, burst int) {
	l.bucket.SetLimit(rate.Limit(rps))
	l.bucket.SetBurst(burst)
}

// LimiterSet manages one Limiter per dependency name.
type LimiterSet struct {
	mu       sync.RWMutex
	limiters map[string]*Limiter
	cfg      LimiterConfig
}

// NewLimiterSet creates a LimiterSet using cfg for new entries.
func NewLimiterSet(cfg LimiterConfig) *LimiterSet {
	return &LimiterSet{
		limiters: make(map[string]*Limiter),
		cfg:      cfg,
	}
}

// Get returns the limiter for name, creating it on first use.
func (s *LimiterSet) Get(name string) *Limiter {
	s.mu.RLock()
	limiter, exists := s.limiters[name]
	s.mu.RUnlock()

	if exists {
		return limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = s.limiters[name]; exists {
		return limiter
	}

	limiter = NewLimiter(s.cfg)
	s.limiters[name] = limiter
	return limiter
}

// Len returns the number of tracked limiters.
func (s *LimiterSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.limiters)
}
