// Package testkit provides seeded synthetic outbreak data and an in-memory
// run repository, used by tests and by `r0fit fit --synthetic`.
package testkit

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"

	"r0fit/domain/core"
	"r0fit/domain/run"
	"r0fit/domain/surveillance"
	"r0fit/internal/errors"
	"r0fit/ports"
)

// OutbreakConfig parameterizes the synthetic generator. Case counts follow
// the fitted model exactly: ln(y) = alpha[j] + beta[j]*week + Normal(0, Sigma).
type OutbreakConfig struct {
	Departments int
	Weeks       int
	BetaMu      float64
	BetaSigma   float64 // 0 gives every department exactly BetaMu
	Sigma       float64
	Intercept   float64 // mean log case count at week 0
	Seed        int64

	// Betas overrides the drawn department slopes when non-nil.
	Betas []float64
}

// DefaultOutbreakConfig mirrors the end-to-end recovery scenario:
// three departments, ten weeks, beta_mu 0.3, sigma 0.1.
func DefaultOutbreakConfig() OutbreakConfig {
	return OutbreakConfig{
		Departments: 3,
		Weeks:       10,
		BetaMu:      0.3,
		BetaSigma:   0.0,
		Sigma:       0.1,
		Intercept:   math.Log(20),
		Seed:        42,
	}
}

// GenerateOutbreak produces a validated observation table from known
// parameters.
func GenerateOutbreak(cfg OutbreakConfig) (*surveillance.Table, error) {
	if cfg.Departments < 1 || cfg.Weeks < 2 {
		return nil, errors.InvalidInput("need at least one department and two weeks")
	}
	if cfg.Betas != nil && len(cfg.Betas) != cfg.Departments {
		return nil, errors.InvalidInput("Betas must have one slope per department")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	betas := make([]float64, cfg.Departments)
	for j := range betas {
		if cfg.Betas != nil {
			betas[j] = cfg.Betas[j]
		} else {
			betas[j] = cfg.BetaMu + cfg.BetaSigma*rng.NormFloat64()
		}
	}

	var obs []surveillance.Observation
	for j := 1; j <= cfg.Departments; j++ {
		alpha := cfg.Intercept + 0.2*rng.NormFloat64()
		for w := 0; w < cfg.Weeks; w++ {
			lnY := alpha + betas[j-1]*float64(w) + cfg.Sigma*rng.NormFloat64()
			obs = append(obs, surveillance.Observation{
				Department: j,
				Week:       w,
				Cases:      math.Exp(lnY),
			})
		}
	}
	return surveillance.NewTable(obs)
}

// InMemoryRunRepository implements ports.RunRepository without a database.
type InMemoryRunRepository struct {
	mu   sync.RWMutex
	runs map[core.RunID]*run.Result
}

// NewInMemoryRunRepository creates an empty repository.
func NewInMemoryRunRepository() *InMemoryRunRepository {
	return &InMemoryRunRepository{runs: make(map[core.RunID]*run.Result)}
}

var _ ports.RunRepository = (*InMemoryRunRepository)(nil)

func (r *InMemoryRunRepository) Save(_ context.Context, result *run.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *result
	r.runs[result.ID] = &cp
	return nil
}

func (r *InMemoryRunRepository) Get(_ context.Context, id core.RunID) (*run.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.runs[id]
	if !ok {
		return nil, errors.NotFound("run " + id.String())
	}
	cp := *result
	return &cp, nil
}

func (r *InMemoryRunRepository) List(_ context.Context) ([]run.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listings := make([]run.Listing, 0, len(r.runs))
	for _, res := range r.runs {
		listings = append(listings, run.Listing{
			ID:        res.ID,
			CreatedAt: res.CreatedAt,
			Model:     res.Model,
			PValue:    res.PValue,
			Converged: res.Converged,
		})
	}
	sort.Slice(listings, func(i, j int) bool {
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
	return listings, nil
}
