package gate

import (
	"errors"
	"fmt"
)

// Sentinel errors - use with errors.Is()
var (
	// Call-path errors
	ErrRateLimited    = errors.New("gatego: rate limit exceeded")
	ErrTimeout        = errors.New("gatego: call timed out")
	ErrRetryExhausted = errors.New("gatego: retries exhausted")
	ErrCircuitOpen    = errors.New("gatego: circuit breaker open")

	// Routing errors
	ErrNoReplicas = errors.New("gatego: no replicas available")

	// Lifecycle errors
	ErrAlreadyRunning = errors.New("gatego: already running")
	ErrNotRunning     = errors.New("gatego: not running")

	// Validation errors
	ErrInvalidConfig = errors.New("gatego: invalid configuration")
)

// CallError represents a failed dependency call.
// Use errors.As() to extract details, errors.Is() to match sentinels.
type CallError struct {
	Kind       ErrorKind
	Dependency string
	Err        error
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gatego: %s: %s call failed: %v", e.Dependency, e.Kind, e.Err)
	}
	return fmt.Sprintf("gatego: %s: %s call failed", e.Dependency, e.Kind)
}

// Unwrap returns the underlying error, or the sentinel matching the
// error kind when no cause was recorded. Supports errors.Is().
func (e *CallError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return sentinelForKind(e.Kind)
}

// Retryable reports whether this failure may succeed on retry.
func (e *CallError) Retryable() bool {
	return e.Kind.Retryable()
}

// NewCallError creates a CallError for the given dependency and kind.
func NewCallError(dependency string, kind ErrorKind, err error) *CallError {
	return &CallError{
		Kind:       kind,
		Dependency: dependency,
		Err:        err,
	}
}

// KindOf classifies err into an ErrorKind, preferring an explicit
// CallError kind, then sentinel matches. Unclassified errors are
// treated as internal (retryable) failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}

	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr.Kind
	}

	switch {
	case errors.Is(err, ErrTimeout):
		return ErrorKindTimeout
	case errors.Is(err, ErrRateLimited):
		return ErrorKindRateLimited
	case errors.Is(err, ErrCircuitOpen):
		return ErrorKindUnavailable
	}

	return ErrorKindInternal
}

func sentinelForKind(kind ErrorKind) error {
	switch kind {
	case ErrorKindTimeout:
		return ErrTimeout
	case ErrorKindRateLimited:
		return ErrRateLimited
	default:
		return nil
	}
}
