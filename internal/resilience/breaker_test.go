package resilience_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prilive-com/gatego/internal/resilience"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failingCall() (string, error) { return "", errors.New("dependency down") }

func TestBreaker_OpensOnFailureRatio(t *testing.T) {
	cb := resilience.NewBreaker[string](resilience.BreakerConfig{
		Name:         "orders",
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  10,
	})

	// 4 successes, then 6 failures: ratio 0.6 over 10 calls.
	for n := 0; n < 4; n++ {
		_, err := cb.Execute(func() (string, error) { return "ok", nil })
		require.NoError(t, err)
	}
	for n := 0; n < 6; n++ {
		_, _ = cb.Execute(failingCall)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())

	// Next call is short-circuited without invoking the dependency.
	invoked := false
	_, err := cb.Execute(func() (string, error) {
		invoked = true
		return "ok", nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, invoked)
}

func TestBreaker_StaysClosedBelowMinRequests(t *testing.T) {
	cb := resilience.NewBreaker[string](resilience.BreakerConfig{
		Name:         "orders",
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  10,
	})

	for n := 0; n < 5; n++ {
		_, _ = cb.Execute(failingCall)
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestBreaker_ConsecutiveFailuresTrip(t *testing.T) {
	cb := resilience.NewBreaker[string](resilience.BreakerConfig{
		Name:         "orders",
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.9,
		MinRequests:  100,
		Consecutive:  3,
	})

	for n := 0; n < 3; n++ {
		_, _ = cb.Execute(failingCall)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestBreaker_HalfOpenSingleTrial(t *testing.T) {
	cb := resilience.NewBreaker[string](resilience.BreakerConfig{
		Name:         "orders",
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      50 * time.Millisecond,
		FailureRatio: 0.5,
		MinRequests:  2,
	})

	for n := 0; n < 4; n++ {
		_, _ = cb.Execute(failingCall)
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	// Cooldown elapses; exactly one trial is admitted.
	time.Sleep(80 * time.Millisecond)

	_, err := cb.Execute(func() (string, error) { return "recovered", nil })
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestBreaker_TrialFailureReopens(t *testing.T) {
	cb := resilience.NewBreaker[string](resilience.BreakerConfig{
		Name:         "orders",
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      50 * time.Millisecond,
		FailureRatio: 0.5,
		MinRequests:  2,
	})

	for n := 0; n < 4; n++ {
		_, _ = cb.Execute(failingCall)
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	time.Sleep(80 * time.Millisecond)

	_, _ = cb.Execute(failingCall)
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestBreaker_IsSuccessfulClassification(t *testing.T) {
	errClient := errors.New("malformed request")

	cb := resilience.NewBreaker[string](resilience.BreakerConfig{
		Name:         "orders",
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
		IsSuccessful: func(err error) bool {
			// Caller mistakes do not indicate a failing dependency.
			return err == nil || errors.Is(err, errClient)
		},
	})

	for n := 0; n < 10; n++ {
		_, _ = cb.Execute(func() (string, error) { return "", errClient })
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
