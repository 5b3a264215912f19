package model

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"r0fit/domain/surveillance"
)

// ANOVA is the one-way model relating estimated R0 to climate class:
//
//	y[i] ~ Normal(a0 + a[g[i]], sigma)
//
// with the sum-to-zero constraint a[1] = -sum(a[2..K]), so only a[2..K] are
// sampled. Parameter layout: a0, sigma, a[2..K].
type ANOVA struct {
	y     []float64
	group []int // 0-based class per observation
	k     int
}

// NewANOVA builds the model from climate records.
func NewANOVA(records []surveillance.ClimateRecord) (*ANOVA, error) {
	k, err := surveillance.ValidateClimate(records)
	if err != nil {
		return nil, err
	}
	m := &ANOVA{k: k}
	for _, r := range records {
		m.y = append(m.y, r.R0)
		m.group = append(m.group, r.Climate-1)
	}
	return m, nil
}

func (m *ANOVA) Name() string { return "climate-anova" }

// Classes returns the number of climate classes K.
func (m *ANOVA) Classes() int { return m.k }

func (m *ANOVA) Dim() int { return 2 + (m.k - 1) }

func (m *ANOVA) ParamNames() []string {
	names := []string{"a0", "sigma"}
	for j := 2; j <= m.k; j++ {
		names = append(names, fmt.Sprintf("a[%d]", j))
	}
	return names
}

// Effects expands a draw into the full effect vector a[1..K], applying the
// sum-to-zero constraint.
func (m *ANOVA) Effects(theta []float64) []float64 {
	effects := make([]float64, m.k)
	sum := 0.0
	for j := 2; j <= m.k; j++ {
		effects[j-1] = theta[j]
		sum += theta[j]
	}
	effects[0] = -sum
	return effects
}

func (m *ANOVA) InitialPoint() []float64 {
	grand := stat.Mean(m.y, nil)

	groupSum := make([]float64, m.k)
	groupN := make([]float64, m.k)
	for i, g := range m.group {
		groupSum[g] += m.y[i]
		groupN[g]++
	}

	theta := make([]float64, m.Dim())
	theta[0] = grand
	theta[1] = clamp(stat.StdDev(m.y, nil), 0.05, sigmaMax/2)
	for j := 2; j <= m.k; j++ {
		if groupN[j-1] > 0 {
			theta[j] = groupSum[j-1]/groupN[j-1] - grand
		}
	}
	return theta
}

func (m *ANOVA) LogPosterior(theta []float64) float64 {
	a0 := theta[0]
	sigma := theta[1]
	if sigma <= 0 || sigma >= sigmaMax {
		return math.Inf(-1)
	}

	diffuse := distuv.Normal{Mu: 0, Sigma: diffuseSD}
	lp := diffuse.LogProb(a0)
	for j := 2; j <= m.k; j++ {
		lp += diffuse.LogProb(theta[j])
	}

	effects := m.Effects(theta)
	for i, g := range m.group {
		mu := a0 + effects[g]
		lp += distuv.Normal{Mu: mu, Sigma: sigma}.LogProb(m.y[i])
	}
	return lp
}

// Replicate draws a posterior-predictive replicate for the goodness-of-fit
// check, mirroring Hierarchical.Replicate.
func (m *ANOVA) Replicate(theta []float64, rng *rand.Rand) (obsSSR, repSSR float64) {
	sigma := theta[1]
	effects := m.Effects(theta)
	for i, g := range m.group {
		mu := theta[0] + effects[g]
		r := m.y[i] - mu
		obsSSR += r * r
		rep := sigma * rng.NormFloat64()
		repSSR += rep * rep
	}
	return obsSSR, repSSR
}
