package gate

import "time"

// ErrorKind classifies a call failure for retry and breaker accounting.
type ErrorKind int

const (
	// ErrorKindNone means the call succeeded.
	ErrorKindNone ErrorKind = iota

	// ErrorKindTimeout means the attempt exceeded its deadline.
	ErrorKindTimeout

	// ErrorKindRateLimited means admission control rejected the call
	// before any work was attempted.
	ErrorKindRateLimited

	// ErrorKindUnavailable means the dependency refused or dropped the
	// connection (service down, connection reset).
	ErrorKindUnavailable

	// ErrorKindMalformed means the request itself was invalid.
	// Retrying an identical request cannot succeed.
	ErrorKindMalformed

	// ErrorKindInternal means the dependency reported a server-side
	// failure that may be transient.
	ErrorKindInternal
)

// String returns a human-readable kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "none"
	case ErrorKindTimeout:
		return "timeout"
	case ErrorKindRateLimited:
		return "rate_limited"
	case ErrorKindUnavailable:
		return "unavailable"
	case ErrorKindMalformed:
		return "malformed"
	case ErrorKindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Retryable reports whether a failure of this kind may succeed on retry.
// Malformed requests never do; rate-limited calls are rejected before any
// work happens and retrying immediately only adds pressure.
func (k ErrorKind) Retryable() bool {
	switch k {
	case ErrorKindTimeout, ErrorKindUnavailable, ErrorKindInternal:
		return true
	default:
		return false
	}
}

// CallResult records the outcome of a single dependency call attempt.
type CallResult struct {
	Success   bool
	Latency   time.Duration
	ErrorKind ErrorKind
}

// Direction is the direction of a scaling decision.
type Direction int

const (
	// NoOp leaves the replica count unchanged.
	NoOp Direction = iota

	// ScaleUp adds replicas.
	ScaleUp

	// ScaleDown removes replicas.
	ScaleDown
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case ScaleUp:
		return "scale_up"
	case ScaleDown:
		return "scale_down"
	default:
		return "noop"
	}
}

// ScalingDecision is computed fresh on every autoscaler evaluation tick.
// It is never persisted.
type ScalingDecision struct {
	Direction      Direction
	TargetReplicas int

	// Reason explains the decision for logs and scale-event records.
	Reason string
}

// ReplicaSetState is the autoscaler-owned view of a service's replicas.
// Invariant: Min <= Current <= Max.
type ReplicaSetState struct {
	Current int
	Min     int
	Max     int
}

// Clamp returns n bounded to [Min, Max].
func (s ReplicaSetState) Clamp(n int) int {
	if n < s.Min {
		return s.Min
	}
	if n > s.Max {
		return s.Max
	}
	return n
}

// UtilizationSample is one reading from the monitoring collaborator.
// CPU and Memory are percentages in [0, 100].
type UtilizationSample struct {
	CPU    float64
	Memory float64
	At     time.Time
}

// Replica identifies one instance of a scaled service.
type Replica struct {
	ID      string
	Address string
}
