// Package epi derives epidemiological quantities from posterior draws.
package epi

import (
	"fmt"

	"r0fit/domain/posterior"
	"r0fit/internal/errors"
)

// DaysPerWeek converts a serial interval in days to weeks.
const DaysPerWeek = 7.0

// Estimate is the reproduction number for one department with its 95%
// credible interval. Department 0 is the aggregate estimate.
type Estimate struct {
	Department int     `json:"department"`
	Point      float64 `json:"point"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
}

// PointR0 applies the deterministic transform from an exponential growth
// slope (per week, on the log scale) and serial interval (days):
//
//	R0 = 1 + beta * si / 7
func PointR0(beta, siDays float64) float64 {
	return 1 + beta*siDays/DaysPerWeek
}

// DeriveEstimates computes per-department R0 posteriors from slope and
// serial-interval draws, plus the aggregate estimate from beta_mu and si_mu.
func DeriveEstimates(c *posterior.Chains, departments int) ([]Estimate, Estimate, error) {
	estimates := make([]Estimate, 0, departments)
	for j := 1; j <= departments; j++ {
		est, err := deriveOne(c, fmt.Sprintf("beta[%d]", j), fmt.Sprintf("si[%d]", j), j)
		if err != nil {
			return nil, Estimate{}, err
		}
		estimates = append(estimates, est)
	}

	agg, err := deriveOne(c, "beta_mu", "si_mu", 0)
	if err != nil {
		return nil, Estimate{}, err
	}
	return estimates, agg, nil
}

func deriveOne(c *posterior.Chains, betaName, siName string, dept int) (Estimate, error) {
	betas, err := c.Series(betaName)
	if err != nil {
		return Estimate{}, errors.Wrapf(err, "deriving R0 for department %d", dept)
	}
	sis, err := c.Series(siName)
	if err != nil {
		return Estimate{}, errors.Wrapf(err, "deriving R0 for department %d", dept)
	}

	r0 := make([][]float64, len(betas))
	for ci := range betas {
		r0[ci] = make([]float64, len(betas[ci]))
		for i := range betas[ci] {
			r0[ci][i] = PointR0(betas[ci][i], sis[ci][i])
		}
	}

	s, err := posterior.SummarizeSeries(fmt.Sprintf("R0[%d]", dept), r0)
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{Department: dept, Point: s.Mean, Lower: s.Lower, Upper: s.Upper}, nil
}
