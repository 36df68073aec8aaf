package gatego

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/gatego/dependency"
	"github.com/prilive-com/gatego/gate"
	"github.com/prilive-com/gatego/internal/testutil"
)

func TestNew_InvalidService(t *testing.T) {
	_, err := New("bad name!")
	require.Error(t, err)
}

func TestDependency_CachedPerName(t *testing.T) {
	gw, err := New("checkout")
	require.NoError(t, err)
	defer gw.Close()

	first, err := gw.Dependency("orders")
	require.NoError(t, err)

	second, err := gw.Dependency("orders")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestDependency_DefaultsApplied(t *testing.T) {
	cfg := dependency.DefaultConfig()
	cfg.MaxAttempts = 1

	gw, err := New("checkout", WithDependencyDefaults(cfg))
	require.NoError(t, err)
	defer gw.Close()

	client, err := gw.Dependency("orders", dependency.WithSleeper(&testutil.FakeSleeper{}))
	require.NoError(t, err)

	var calls int
	err = client.Call(context.Background(), func(ctx context.Context) error {
		calls++
		return gate.NewCallError("orders", gate.ErrorKindUnavailable, errors.New("down"))
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "MaxAttempts=1 means a single invocation")
}

func TestDependency_GatewayOwnedAdmission(t *testing.T) {
	cfg := dependency.DefaultConfig()
	cfg.RPS = 0.001
	cfg.Burst = 1

	gw, err := New("checkout", WithDependencyDefaults(cfg))
	require.NoError(t, err)
	defer gw.Close()

	require.NoError(t, gw.Call(context.Background(), "orders", func(ctx context.Context) error {
		return nil
	}))

	// Bucket exhausted: the second call is denied without invoking.
	invoked := false
	err = gw.Call(context.Background(), "orders", func(ctx context.Context) error {
		invoked = true
		return nil
	})

	assert.ErrorIs(t, err, gate.ErrRateLimited)
	assert.False(t, invoked)
}

func TestCall_Delegates(t *testing.T) {
	gw, err := New("checkout")
	require.NoError(t, err)
	defer gw.Close()

	err = gw.Call(context.Background(), "orders", func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestRoute_NoReplicas(t *testing.T) {
	gw, err := New("checkout")
	require.NoError(t, err)
	defer gw.Close()

	_, err = gw.Route()
	assert.ErrorIs(t, err, gate.ErrNoReplicas)
}

func TestStart_SyncsMembership(t *testing.T) {
	orch := testutil.NewFakeOrchestrator(3)

	gw, err := New("checkout",
		WithScaling(testutil.NewStaticMetrics(50), orch),
		WithSyncInterval(time.Hour),
	)
	require.NoError(t, err)

	require.NoError(t, gw.Start(context.Background()))
	defer gw.Close()

	assert.Equal(t, 3, gw.Router().Len())

	replica, err := gw.Route()
	require.NoError(t, err)
	assert.NotEmpty(t, replica.ID)
}

func TestStart_Twice(t *testing.T) {
	gw, err := New("checkout")
	require.NoError(t, err)

	require.NoError(t, gw.Start(context.Background()))
	assert.ErrorIs(t, gw.Start(context.Background()), gate.ErrAlreadyRunning)

	require.NoError(t, gw.Close())
}

func TestClose_Idempotent(t *testing.T) {
	gw, err := New("checkout",
		WithScaling(testutil.NewStaticMetrics(50), testutil.NewFakeOrchestrator(2)),
	)
	require.NoError(t, err)

	require.NoError(t, gw.Start(context.Background()))

	// First close should succeed
	assert.NoError(t, gw.Close())

	// Second close should be a no-op, not panic
	assert.NoError(t, gw.Close())

	// Third close should also be a no-op
	assert.NoError(t, gw.Close())
}

func TestClose_BeforeStart(t *testing.T) {
	gw, err := New("checkout")
	require.NoError(t, err)

	assert.NoError(t, gw.Close())
}

func TestClose_Concurrent(t *testing.T) {
	gw, err := New("checkout",
		WithScaling(testutil.NewStaticMetrics(50), testutil.NewFakeOrchestrator(2)),
	)
	require.NoError(t, err)
	require.NoError(t, gw.Start(context.Background()))

	// 100 goroutines closing simultaneously — must not panic
	const goroutines = 100
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			_ = gw.Close()
		}()
	}

	wg.Wait()
}

func TestScaler_NilWithoutCollaborators(t *testing.T) {
	gw, err := New("checkout")
	require.NoError(t, err)
	defer gw.Close()

	assert.Nil(t, gw.Scaler())
}
