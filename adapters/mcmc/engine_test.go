package mcmc

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"r0fit/domain/run"
)

// gaussianTarget is a minimal model with a known posterior.
type gaussianTarget struct {
	mu, sigma float64
}

func (g gaussianTarget) Name() string         { return "gaussian-target" }
func (g gaussianTarget) Dim() int             { return 1 }
func (g gaussianTarget) ParamNames() []string { return []string{"x"} }
func (g gaussianTarget) InitialPoint() []float64 {
	return []float64{g.mu + 3}
}
func (g gaussianTarget) LogPosterior(theta []float64) float64 {
	z := (theta[0] - g.mu) / g.sigma
	return -0.5 * z * z
}

type badInitTarget struct{ gaussianTarget }

func (badInitTarget) LogPosterior(theta []float64) float64 { return math.Inf(-1) }

func testConfig() run.SamplerConfig {
	return run.SamplerConfig{
		Chains:  2,
		BurnIn:  1000,
		Samples: 6000,
		Thin:    1,
		Seed:    12345,
	}
}

func TestEngine_RecoversGaussianTarget(t *testing.T) {
	e := New(nil)
	chains, err := e.Sample(context.Background(), gaussianTarget{mu: 2, sigma: 1}, testConfig())
	require.NoError(t, err)

	require.Equal(t, 2, chains.NumChains())
	assert.Equal(t, 12000, chains.NumDraws())

	summaries, err := chains.Summarize(nil)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.InDelta(t, 2.0, s.Mean, 0.15)
	assert.InDelta(t, 1.0, s.SD, 0.15)
	assert.Less(t, s.Rhat, 1.1)
	assert.Greater(t, s.ESS, 200.0)
}

func TestEngine_Deterministic(t *testing.T) {
	cfg := testConfig()
	cfg.Samples = 500

	e := New(nil)
	first, err := e.Sample(context.Background(), gaussianTarget{mu: 0, sigma: 2}, cfg)
	require.NoError(t, err)
	second, err := e.Sample(context.Background(), gaussianTarget{mu: 0, sigma: 2}, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Draws, second.Draws)
}

func TestEngine_Thinning(t *testing.T) {
	cfg := testConfig()
	cfg.Chains = 1
	cfg.Samples = 100
	cfg.Thin = 5

	e := New(nil)
	chains, err := e.Sample(context.Background(), gaussianTarget{mu: 0, sigma: 1}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 100, chains.NumDraws())
}

func TestEngine_RejectsInvalidConfig(t *testing.T) {
	e := New(nil)
	cfg := testConfig()
	cfg.Chains = 0
	_, err := e.Sample(context.Background(), gaussianTarget{mu: 0, sigma: 1}, cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Thin = 0
	_, err = e.Sample(context.Background(), gaussianTarget{mu: 0, sigma: 1}, cfg)
	assert.Error(t, err)
}

func TestEngine_NonFiniteInitialPoint(t *testing.T) {
	e := New(nil)
	_, err := e.Sample(context.Background(), badInitTarget{}, testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not finite")
}

func TestEngine_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig()
	cfg.BurnIn = 100000
	cfg.Samples = 100000

	e := New(nil)
	_, err := e.Sample(ctx, gaussianTarget{mu: 0, sigma: 1}, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}
