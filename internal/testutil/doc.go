// Package testutil provides testing utilities for gatego.
//
// This package is intended for internal testing only and should not be
// imported by external packages.
//
// # Fake Sleeper
//
// FakeSleeper records sleep calls without actually sleeping:
//
//	sleeper := &testutil.FakeSleeper{}
//	// Pass to client via WithSleeper option
//	assert.Equal(t, 200*time.Millisecond, sleeper.LastCall())
//
// # Fake Clock
//
// FakeClock is manually advanced, for cooldown tests:
//
//	clock := testutil.NewFakeClock(time.Now())
//	clock.Advance(time.Minute)
//
// # Collaborator fakes
//
// StaticMetrics and FakeOrchestrator stand in for the monitoring and
// orchestration collaborators of the autoscaler.
package testutil
