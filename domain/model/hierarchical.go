package model

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"r0fit/domain/surveillance"
)

// Prior bounds. Serial interval bounds are in days; slopes are per week.
const (
	SerialIntervalMin = 10.0
	SerialIntervalMax = 23.0

	sigmaMax     = 10.0
	betaSigmaMax = 10.0
	diffuseSD    = 1000.0
)

// Hierarchical is the partial-pooling log-linear growth model.
//
//	ln_y[i] ~ Normal(alpha[dept[i]] + beta[dept[i]]*week[i], sigma)
//	beta[j] ~ Normal(beta_mu, beta_sigma)          (shared hyper-prior)
//	alpha[j] ~ Normal(observed_intercept[j], sigma) (anchored to week-0 data)
//	si[j], si_mu ~ Uniform(10, 23) days             (serial interval)
//
// Parameter layout: beta_mu, beta_sigma, sigma, si_mu, then alpha[1..J],
// beta[1..J], si[1..J].
type Hierarchical struct {
	table *surveillance.Table

	lnY   []float64
	weeks []float64
	dept  []int // 0-based department index per observation
}

const (
	idxBetaMu    = 0
	idxBetaSigma = 1
	idxSigma     = 2
	idxSIMu      = 3
	numGlobal    = 4
)

// NewHierarchical builds the model over a validated observation table.
func NewHierarchical(table *surveillance.Table) *Hierarchical {
	n := table.Len()
	m := &Hierarchical{
		table: table,
		lnY:   make([]float64, n),
		weeks: make([]float64, n),
		dept:  make([]int, n),
	}
	for i, o := range table.Observations {
		m.lnY[i] = o.LnCases()
		m.weeks[i] = float64(o.Week)
		m.dept[i] = o.Department - 1
	}
	return m
}

func (m *Hierarchical) Name() string { return "hierarchical-r0" }

// Departments returns the number of departments J.
func (m *Hierarchical) Departments() int { return m.table.Departments }

func (m *Hierarchical) Dim() int { return numGlobal + 3*m.table.Departments }

// AlphaIndex returns the position of alpha[j] (1-based department).
func (m *Hierarchical) AlphaIndex(j int) int { return numGlobal + (j - 1) }

// BetaIndex returns the position of beta[j] (1-based department).
func (m *Hierarchical) BetaIndex(j int) int { return numGlobal + m.table.Departments + (j - 1) }

// SIIndex returns the position of si[j] (1-based department).
func (m *Hierarchical) SIIndex(j int) int { return numGlobal + 2*m.table.Departments + (j - 1) }

func (m *Hierarchical) ParamNames() []string {
	names := make([]string, m.Dim())
	names[idxBetaMu] = "beta_mu"
	names[idxBetaSigma] = "beta_sigma"
	names[idxSigma] = "sigma"
	names[idxSIMu] = "si_mu"
	for j := 1; j <= m.table.Departments; j++ {
		names[m.AlphaIndex(j)] = fmt.Sprintf("alpha[%d]", j)
		names[m.BetaIndex(j)] = fmt.Sprintf("beta[%d]", j)
		names[m.SIIndex(j)] = fmt.Sprintf("si[%d]", j)
	}
	return names
}

// InitialPoint uses per-department OLS for slopes, the observed intercepts
// for alpha, and the serial-interval prior midpoint.
func (m *Hierarchical) InitialPoint() []float64 {
	j := m.table.Departments
	theta := make([]float64, m.Dim())

	betas := make([]float64, j)
	var ssr float64
	var nRes int
	for d := 1; d <= j; d++ {
		var xs, ys []float64
		for _, o := range m.table.ByDepartment(d) {
			xs = append(xs, float64(o.Week))
			ys = append(ys, o.LnCases())
		}
		a, b := stat.LinearRegression(xs, ys, nil, false)
		if math.IsNaN(b) {
			a, b = m.table.Intercepts[d-1], 0
		}
		betas[d-1] = b
		theta[m.AlphaIndex(d)] = m.table.Intercepts[d-1]
		theta[m.BetaIndex(d)] = b
		theta[m.SIIndex(d)] = (SerialIntervalMin + SerialIntervalMax) / 2
		for i, x := range xs {
			r := ys[i] - (a + b*x)
			ssr += r * r
			nRes++
		}
	}

	theta[idxBetaMu] = stat.Mean(betas, nil)
	theta[idxBetaSigma] = clamp(stat.StdDev(betas, nil), 0.05, betaSigmaMax/2)
	sigma := 0.5
	if nRes > len(betas)*2 {
		sigma = math.Sqrt(ssr / float64(nRes-2*len(betas)))
	}
	theta[idxSigma] = clamp(sigma, 0.01, sigmaMax/2)
	theta[idxSIMu] = (SerialIntervalMin + SerialIntervalMax) / 2
	return theta
}

func (m *Hierarchical) LogPosterior(theta []float64) float64 {
	betaMu := theta[idxBetaMu]
	betaSigma := theta[idxBetaSigma]
	sigma := theta[idxSigma]

	if betaSigma <= 0 || betaSigma >= betaSigmaMax {
		return math.Inf(-1)
	}
	if sigma <= 0 || sigma >= sigmaMax {
		return math.Inf(-1)
	}
	if !inSIBounds(theta[idxSIMu]) {
		return math.Inf(-1)
	}
	for j := 1; j <= m.table.Departments; j++ {
		if !inSIBounds(theta[m.SIIndex(j)]) {
			return math.Inf(-1)
		}
	}

	lp := distuv.Normal{Mu: 0, Sigma: diffuseSD}.LogProb(betaMu)

	hyper := distuv.Normal{Mu: betaMu, Sigma: betaSigma}
	for j := 1; j <= m.table.Departments; j++ {
		lp += hyper.LogProb(theta[m.BetaIndex(j)])
		anchor := distuv.Normal{Mu: m.table.Intercepts[j-1], Sigma: sigma}
		lp += anchor.LogProb(theta[m.AlphaIndex(j)])
	}

	for i := range m.lnY {
		mu := theta[m.AlphaIndex(m.dept[i]+1)] + theta[m.BetaIndex(m.dept[i]+1)]*m.weeks[i]
		lp += distuv.Normal{Mu: mu, Sigma: sigma}.LogProb(m.lnY[i])
	}
	return lp
}

// Mu returns the fitted mean for one observation under a parameter draw.
func (m *Hierarchical) Mu(theta []float64, o surveillance.Observation) float64 {
	return theta[m.AlphaIndex(o.Department)] + theta[m.BetaIndex(o.Department)]*float64(o.Week)
}

// Replicate draws a posterior-predictive replicate of the data and returns
// the observed and replicated sums of squared residuals around the fitted
// means.
func (m *Hierarchical) Replicate(theta []float64, rng *rand.Rand) (obsSSR, repSSR float64) {
	sigma := theta[idxSigma]
	for i := range m.lnY {
		d := m.dept[i] + 1
		mu := theta[m.AlphaIndex(d)] + theta[m.BetaIndex(d)]*m.weeks[i]
		r := m.lnY[i] - mu
		obsSSR += r * r
		rep := sigma * rng.NormFloat64()
		repSSR += rep * rep
	}
	return obsSSR, repSSR
}

func inSIBounds(si float64) bool {
	return si > SerialIntervalMin && si < SerialIntervalMax
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
