package ports

import (
	"context"

	"r0fit/domain/model"
	"r0fit/domain/posterior"
	"r0fit/domain/run"
)

// Sampler is the boundary to the MCMC engine. It consumes a model and a
// sampling configuration and produces per-chain posterior draws. Failures
// (non-finite posterior, dead chains) surface as errors; there is no retry.
type Sampler interface {
	Sample(ctx context.Context, m model.Model, cfg run.SamplerConfig) (*posterior.Chains, error)
}
