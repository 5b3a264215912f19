// Package posterior holds MCMC output: per-chain parameter draws, summary
// statistics, convergence diagnostics and the posterior-predictive check.
package posterior

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"r0fit/internal/errors"
)

// Chains holds retained posterior draws, kept per chain so convergence
// diagnostics can compare between-chain and within-chain variation.
// Draws is indexed chain -> iteration -> parameter.
type Chains struct {
	Names []string      `json:"names"`
	Draws [][][]float64 `json:"draws"`
}

// Index returns the position of a named parameter, or -1.
func (c *Chains) Index(name string) int {
	for i, n := range c.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// NumChains returns the number of chains.
func (c *Chains) NumChains() int { return len(c.Draws) }

// NumDraws returns the total number of retained draws across chains.
func (c *Chains) NumDraws() int {
	n := 0
	for _, ch := range c.Draws {
		n += len(ch)
	}
	return n
}

// Series returns the draws of one named parameter, per chain.
func (c *Chains) Series(name string) ([][]float64, error) {
	idx := c.Index(name)
	if idx < 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown parameter %q", name))
	}
	out := make([][]float64, len(c.Draws))
	for ci, ch := range c.Draws {
		s := make([]float64, len(ch))
		for i, theta := range ch {
			s[i] = theta[idx]
		}
		out[ci] = s
	}
	return out, nil
}

// Pooled returns all draws of one named parameter with chains concatenated.
func (c *Chains) Pooled(name string) ([]float64, error) {
	series, err := c.Series(name)
	if err != nil {
		return nil, err
	}
	pooled := make([]float64, 0, c.NumDraws())
	for _, s := range series {
		pooled = append(pooled, s...)
	}
	return pooled, nil
}

// EachDraw calls fn once per retained draw across all chains.
func (c *Chains) EachDraw(fn func(theta []float64)) {
	for _, ch := range c.Draws {
		for _, theta := range ch {
			fn(theta)
		}
	}
}

// Summary describes the pooled posterior of one monitored parameter.
type Summary struct {
	Name   string  `json:"name"`
	Mean   float64 `json:"mean"`
	SD     float64 `json:"sd"`
	Lower  float64 `json:"lower"`  // 2.5th percentile
	Median float64 `json:"median"` // 50th percentile
	Upper  float64 `json:"upper"`  // 97.5th percentile
	Rhat   float64 `json:"rhat"`
	ESS    float64 `json:"ess"`
}

// Summarize computes summaries for the named parameters; an empty list means
// all parameters.
func (c *Chains) Summarize(names []string) ([]Summary, error) {
	if len(names) == 0 {
		names = c.Names
	}
	out := make([]Summary, 0, len(names))
	for _, name := range names {
		series, err := c.Series(name)
		if err != nil {
			return nil, err
		}
		s, err := SummarizeSeries(name, series)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// SummarizeSeries summarizes per-chain draws of a single (possibly derived)
// quantity.
func SummarizeSeries(name string, series [][]float64) (Summary, error) {
	pooled := make([]float64, 0)
	for _, s := range series {
		pooled = append(pooled, s...)
	}
	if len(pooled) == 0 {
		return Summary{}, errors.InvalidInput(fmt.Sprintf("no draws for %q", name))
	}

	mean, err := stats.Mean(pooled)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "mean of %s", name)
	}
	sd, err := stats.StandardDeviationSample(pooled)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "sd of %s", name)
	}
	lower, err := stats.Percentile(pooled, 2.5)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "2.5%% of %s", name)
	}
	median, err := stats.Percentile(pooled, 50)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "median of %s", name)
	}
	upper, err := stats.Percentile(pooled, 97.5)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "97.5%% of %s", name)
	}

	return Summary{
		Name:   name,
		Mean:   mean,
		SD:     sd,
		Lower:  lower,
		Median: median,
		Upper:  upper,
		Rhat:   GelmanRubin(series),
		ESS:    EffectiveSampleSize(series),
	}, nil
}
