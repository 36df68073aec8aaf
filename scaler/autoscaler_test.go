package scaler_test

import (
	"context"
	"testing"
	"time"

	"github.com/prilive-com/gatego/gate"
	"github.com/prilive-com/gatego/internal/testutil"
	"github.com/prilive-com/gatego/scaler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScaler(t *testing.T, opts ...scaler.Option) (*scaler.AutoScaler, *testutil.StaticMetrics, *testutil.FakeOrchestrator, *testutil.FakeClock) {
	t.Helper()

	source := testutil.NewStaticMetrics(50)
	orch := testutil.NewFakeOrchestrator(3)
	clock := testutil.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	base := []scaler.Option{
		scaler.WithBounds(1, 10),
		scaler.WithWatermarks(80, 30),
		scaler.WithCooldown(time.Minute),
		scaler.WithClock(clock),
	}
	s, err := scaler.New("checkout", source, orch, append(base, opts...)...)
	require.NoError(t, err)

	return s, source, orch, clock
}

func sample(cpu float64) gate.UtilizationSample {
	return gate.UtilizationSample{CPU: cpu, Memory: cpu, At: time.Now()}
}

func TestEvaluate_ScaleUpAboveHighWatermark(t *testing.T) {
	s, _, _, _ := newTestScaler(t)

	decision := s.Evaluate(sample(92))

	assert.Equal(t, gate.ScaleUp, decision.Direction)
	assert.Equal(t, 2, decision.TargetReplicas)
}

func TestEvaluate_ScaleDownBelowLowWatermark(t *testing.T) {
	s, _, orch, clock := newTestScaler(t)

	// Raise current above min first.
	require.NoError(t, s.Apply(context.Background(), gate.ScalingDecision{
		Direction:      gate.ScaleUp,
		TargetReplicas: 4,
	}))
	require.Equal(t, []int{4}, orch.ScaleLog())

	clock.Advance(2 * time.Minute)

	decision := s.Evaluate(sample(10))
	assert.Equal(t, gate.ScaleDown, decision.Direction)
	assert.Equal(t, 3, decision.TargetReplicas)
}

func TestEvaluate_NoOpWithinWatermarks(t *testing.T) {
	s, _, _, _ := newTestScaler(t)

	decision := s.Evaluate(sample(50))

	assert.Equal(t, gate.NoOp, decision.Direction)
	assert.Equal(t, 1, decision.TargetReplicas)
}

func TestEvaluate_NeverExceedsBounds(t *testing.T) {
	s, _, _, clock := newTestScaler(t, scaler.WithBounds(2, 3))

	ctx := context.Background()

	// Push repeatedly past the max.
	for n := 0; n < 5; n++ {
		clock.Advance(2 * time.Minute)
		decision := s.Evaluate(sample(95))
		require.GreaterOrEqual(t, decision.TargetReplicas, 2)
		require.LessOrEqual(t, decision.TargetReplicas, 3)
		require.NoError(t, s.Apply(ctx, decision))
	}
	assert.Equal(t, 3, s.State().Current)

	// And past the min.
	for n := 0; n < 5; n++ {
		clock.Advance(2 * time.Minute)
		decision := s.Evaluate(sample(5))
		require.GreaterOrEqual(t, decision.TargetReplicas, 2)
		require.LessOrEqual(t, decision.TargetReplicas, 3)
		require.NoError(t, s.Apply(ctx, decision))
	}
	assert.Equal(t, 2, s.State().Current)
}

func TestEvaluate_CooldownSuppressesFlapping(t *testing.T) {
	s, _, _, clock := newTestScaler(t)
	ctx := context.Background()

	decision := s.Evaluate(sample(95))
	require.Equal(t, gate.ScaleUp, decision.Direction)
	require.NoError(t, s.Apply(ctx, decision))

	// Immediately after an action, both directions are suppressed.
	assert.Equal(t, gate.NoOp, s.Evaluate(sample(95)).Direction)
	assert.Equal(t, gate.NoOp, s.Evaluate(sample(5)).Direction)

	// Cooldown elapses; actions resume.
	clock.Advance(61 * time.Second)
	assert.Equal(t, gate.ScaleDown, s.Evaluate(sample(5)).Direction)
}

func TestApply_RecordsDirective(t *testing.T) {
	s, _, orch, _ := newTestScaler(t)

	decision := s.Evaluate(sample(95))
	require.NoError(t, s.Apply(context.Background(), decision))

	assert.Equal(t, []int{2}, orch.ScaleLog())
	assert.Equal(t, 2, s.State().Current)
}

func TestApply_NoOpSkipsOrchestrator(t *testing.T) {
	s, _, orch, _ := newTestScaler(t)

	require.NoError(t, s.Apply(context.Background(), gate.ScalingDecision{Direction: gate.NoOp}))
	assert.Empty(t, orch.ScaleLog())
}

func TestTick_SampleEvaluateApply(t *testing.T) {
	s, source, orch, _ := newTestScaler(t)

	source.SetCPU(95)
	require.NoError(t, s.Tick(context.Background()))

	assert.Equal(t, []int{2}, orch.ScaleLog())
}

func TestStart_SyncsReplicasAndGuardsRestart(t *testing.T) {
	s, _, _, _ := newTestScaler(t, scaler.WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.ErrorIs(t, s.Start(ctx), gate.ErrAlreadyRunning)

	// Membership had 3 replicas; owned state follows it.
	assert.Equal(t, 3, s.State().Current)

	require.NoError(t, s.Stop())
	assert.ErrorIs(t, s.Stop(), gate.ErrNotRunning)
}

func TestNewFromConfig_Validates(t *testing.T) {
	source := testutil.NewStaticMetrics(50)
	orch := testutil.NewFakeOrchestrator(1)

	cfg := scaler.DefaultConfig()
	cfg.LowWatermark = 90 // above high

	_, err := scaler.NewFromConfig("checkout", cfg, source, orch)
	assert.ErrorIs(t, err, gate.ErrInvalidConfig)
}
