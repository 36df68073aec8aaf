// Package gate provides core types shared by the dependency, scaler and
// router packages.
//
// This package contains:
//   - Call outcome types (CallResult, ErrorKind)
//   - Scaling types (ScalingDecision, Direction, ReplicaSetState)
//   - Error types and sentinel errors
//
// # Usage
//
//	import "github.com/prilive-com/gatego/gate"
//
//	var res gate.CallResult
//	if errors.Is(err, gate.ErrCircuitOpen) { ... }
package gate
