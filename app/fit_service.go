// Package app orchestrates the analysis pipeline: ingested table in,
// completed run manifest out.
package app

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"r0fit/domain/core"
	"r0fit/domain/epi"
	"r0fit/domain/model"
	"r0fit/domain/posterior"
	"r0fit/domain/run"
	"r0fit/domain/surveillance"
	"r0fit/internal"
	"r0fit/internal/errors"
	"r0fit/ports"
)

// ppCheckSeedOffset keeps the posterior-predictive RNG stream distinct from
// the chain streams.
const ppCheckSeedOffset = 7777

// FitService runs the hierarchical R0 estimation end to end.
type FitService struct {
	sampler ports.Sampler
	log     *internal.Logger
}

// NewFitService creates the fit orchestrator.
func NewFitService(sampler ports.Sampler, logger *internal.Logger) *FitService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &FitService{sampler: sampler, log: logger}
}

// Fit fits the hierarchical model to the table and assembles the run
// manifest: summaries, goodness-of-fit p-value, R0 estimates and fitted
// values.
func (s *FitService) Fit(ctx context.Context, table *surveillance.Table, cfg run.SamplerConfig) (*run.Result, error) {
	m := model.NewHierarchical(table)
	s.log.Info("fitting %s: %d departments, %d observations", m.Name(), table.Departments, table.Len())

	chains, err := s.sampler.Sample(ctx, m, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "sampling hierarchical model")
	}

	summaries, err := chains.Summarize(cfg.Monitor)
	if err != nil {
		return nil, err
	}

	pval, err := posterior.PValue(chains, m, rand.New(rand.NewSource(cfg.Seed+ppCheckSeedOffset)))
	if err != nil {
		return nil, err
	}
	s.log.Info("posterior-predictive p-value: %.3f", pval)

	r0s, agg, err := epi.DeriveEstimates(chains, table.Departments)
	if err != nil {
		return nil, err
	}

	predicted, err := fittedValues(chains, m, table)
	if err != nil {
		return nil, err
	}

	result := &run.Result{
		ID:          core.NewRunID(),
		CreatedAt:   time.Now().UTC(),
		Model:       m.Name(),
		Config:      cfg,
		Summaries:   summaries,
		PValue:      pval,
		Converged:   allConverged(summaries),
		R0:          r0s,
		R0Aggregate: &agg,
		Predicted:   predicted,
	}
	if !result.Converged {
		s.log.Warn("run %s: at least one parameter has R-hat > %.2f", result.ID, posterior.RhatThreshold)
	}
	return result, nil
}

func fittedValues(chains *posterior.Chains, m *model.Hierarchical, table *surveillance.Table) ([]run.PredictedValue, error) {
	predicted := make([]run.PredictedValue, 0, table.Len())
	for _, o := range table.Observations {
		series := make([][]float64, len(chains.Draws))
		for ci, ch := range chains.Draws {
			series[ci] = make([]float64, len(ch))
			for i, theta := range ch {
				series[ci][i] = m.Mu(theta, o)
			}
		}
		s, err := posterior.SummarizeSeries(fmt.Sprintf("mu[%d,%d]", o.Department, o.Week), series)
		if err != nil {
			return nil, err
		}
		predicted = append(predicted, run.PredictedValue{
			Department: o.Department,
			Week:       o.Week,
			Observed:   o.LnCases(),
			Fitted:     s.Mean,
			Lower:      s.Lower,
			Upper:      s.Upper,
		})
	}
	return predicted, nil
}

func allConverged(summaries []posterior.Summary) bool {
	for _, s := range summaries {
		if math.IsNaN(s.Rhat) {
			continue
		}
		if s.Rhat > posterior.RhatThreshold {
			return false
		}
	}
	return true
}
