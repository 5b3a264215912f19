// Package run defines the manifest of one estimation run: sampler
// configuration in, posterior summaries and derived estimates out.
package run

import (
	"time"

	"r0fit/domain/core"
	"r0fit/domain/epi"
	"r0fit/domain/posterior"
	"r0fit/internal/errors"
)

// SamplerConfig is the full configuration surface of the MCMC engine.
type SamplerConfig struct {
	Chains  int      `json:"chains"`
	BurnIn  int      `json:"burn_in"`
	Samples int      `json:"samples"` // retained draws per chain, after thinning
	Thin    int      `json:"thin"`
	Seed    int64    `json:"seed"`
	Monitor []string `json:"monitor,omitempty"` // empty means all parameters
}

// DefaultSamplerConfig mirrors the settings used for the published estimates.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		Chains:  3,
		BurnIn:  2000,
		Samples: 4000,
		Thin:    1,
		Seed:    20260826,
	}
}

// Validate checks the configuration surface.
func (c SamplerConfig) Validate() error {
	if c.Chains < 1 {
		return errors.ConfigInvalid("chains must be >= 1")
	}
	if c.BurnIn < 0 {
		return errors.ConfigInvalid("burn-in must be >= 0")
	}
	if c.Samples < 1 {
		return errors.ConfigInvalid("samples must be >= 1")
	}
	if c.Thin < 1 {
		return errors.ConfigInvalid("thinning interval must be >= 1")
	}
	return nil
}

// PredictedValue is the posterior fitted mean and interval for one
// observation.
type PredictedValue struct {
	Department int     `json:"department"`
	Week       int     `json:"week"`
	Observed   float64 `json:"observed"` // log scale
	Fitted     float64 `json:"fitted"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
}

// Result is the manifest of one completed run.
type Result struct {
	ID        core.RunID          `json:"id"`
	CreatedAt time.Time           `json:"created_at"`
	Model     string              `json:"model"`
	Config    SamplerConfig       `json:"config"`
	Summaries []posterior.Summary `json:"summaries"`
	PValue    float64             `json:"p_value"`
	Converged bool                `json:"converged"`

	// Hierarchical model only.
	R0          []epi.Estimate   `json:"r0,omitempty"`
	R0Aggregate *epi.Estimate    `json:"r0_aggregate,omitempty"`
	Predicted   []PredictedValue `json:"predicted,omitempty"`

	// ANOVA model only: posterior means of the full effect vector a[1..K].
	ClimateEffects []float64 `json:"climate_effects,omitempty"`
}

// Listing is the compact view of a stored run.
type Listing struct {
	ID        core.RunID `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	Model     string     `json:"model" db:"model"`
	PValue    float64    `json:"p_value" db:"p_value"`
	Converged bool       `json:"converged" db:"converged"`
}
