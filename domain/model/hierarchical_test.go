package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"r0fit/domain/surveillance"
)

func testTable(t *testing.T) *surveillance.Table {
	t.Helper()
	var obs []surveillance.Observation
	for j := 1; j <= 2; j++ {
		for w := 0; w < 5; w++ {
			obs = append(obs, surveillance.Observation{
				Department: j,
				Week:       w,
				Cases:      math.Exp(2 + 0.3*float64(w)),
			})
		}
	}
	table, err := surveillance.NewTable(obs)
	require.NoError(t, err)
	return table
}

func TestHierarchical_ParamLayout(t *testing.T) {
	m := NewHierarchical(testTable(t))

	assert.Equal(t, 4+3*2, m.Dim())
	names := m.ParamNames()
	require.Len(t, names, m.Dim())
	assert.Equal(t, "beta_mu", names[0])
	assert.Equal(t, "beta_sigma", names[1])
	assert.Equal(t, "sigma", names[2])
	assert.Equal(t, "si_mu", names[3])
	assert.Equal(t, "alpha[1]", names[m.AlphaIndex(1)])
	assert.Equal(t, "beta[2]", names[m.BetaIndex(2)])
	assert.Equal(t, "si[1]", names[m.SIIndex(1)])
}

func TestHierarchical_InitialPointIsFinite(t *testing.T) {
	m := NewHierarchical(testTable(t))
	theta := m.InitialPoint()
	require.Len(t, theta, m.Dim())

	lp := m.LogPosterior(theta)
	assert.False(t, math.IsInf(lp, 0), "log posterior at init: %v", lp)
	assert.False(t, math.IsNaN(lp))

	// Noise-free data: OLS inits should sit on the generating values.
	assert.InDelta(t, 0.3, theta[m.BetaIndex(1)], 1e-9)
	assert.InDelta(t, 0.3, theta[idxBetaMu], 1e-9)
	assert.InDelta(t, 2.0, theta[m.AlphaIndex(1)], 1e-9)
}

func TestHierarchical_LogPosteriorOutsideSupport(t *testing.T) {
	m := NewHierarchical(testTable(t))
	base := m.InitialPoint()

	cases := []struct {
		name  string
		mutil func(theta []float64)
	}{
		{"negative sigma", func(th []float64) { th[idxSigma] = -0.1 }},
		{"sigma above bound", func(th []float64) { th[idxSigma] = 11 }},
		{"negative beta_sigma", func(th []float64) { th[idxBetaSigma] = -1 }},
		{"si below 10 days", func(th []float64) { th[m.SIIndex(1)] = 9.5 }},
		{"si above 23 days", func(th []float64) { th[m.SIIndex(2)] = 23.5 }},
		{"si_mu out of bounds", func(th []float64) { th[idxSIMu] = 40 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			theta := append([]float64(nil), base...)
			tc.mutil(theta)
			assert.True(t, math.IsInf(m.LogPosterior(theta), -1))
		})
	}
}

func TestHierarchical_PoolingPullsTowardHyperMean(t *testing.T) {
	m := NewHierarchical(testTable(t))
	theta := m.InitialPoint()

	// Moving beta[1] away from beta_mu and the data must lower the posterior.
	lpAt := m.LogPosterior(theta)
	theta[m.BetaIndex(1)] += 5 * theta[idxBetaSigma]
	lpAway := m.LogPosterior(theta)
	assert.Greater(t, lpAt, lpAway)
}

func TestHierarchical_Mu(t *testing.T) {
	m := NewHierarchical(testTable(t))
	theta := m.InitialPoint()

	o := surveillance.Observation{Department: 2, Week: 3, Cases: 1}
	want := theta[m.AlphaIndex(2)] + 3*theta[m.BetaIndex(2)]
	assert.InDelta(t, want, m.Mu(theta, o), 1e-12)
}

func TestHierarchical_Replicate(t *testing.T) {
	m := NewHierarchical(testTable(t))
	theta := m.InitialPoint()
	rng := rand.New(rand.NewSource(7))

	obsSSR, repSSR := m.Replicate(theta, rng)
	assert.GreaterOrEqual(t, obsSSR, 0.0)
	assert.Greater(t, repSSR, 0.0)

	// Observed SSR is deterministic in theta.
	obsSSR2, _ := m.Replicate(theta, rand.New(rand.NewSource(8)))
	assert.InDelta(t, obsSSR, obsSSR2, 1e-12)
}
