// Package scaler provides adaptive replica scaling from utilization
// signals.
//
// The AutoScaler pulls samples from a MetricsSource on a periodic
// schedule, compares them against high/low watermarks, and issues
// bounded scale directives to an Orchestrator. A cooldown window
// between applied actions prevents flapping.
//
// # Usage
//
//	scaler, err := scaler.New("checkout", source, orchestrator,
//	    scaler.WithBounds(2, 12),
//	    scaler.WithWatermarks(80, 30),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	scaler.Start(ctx)
//	defer scaler.Stop()
package scaler
