// Package mcmc implements the sampling engine behind ports.Sampler: an
// adaptive random-walk Metropolis sampler updating one coordinate at a time.
// Step sizes adapt during burn-in only, so the retained draws come from a
// fixed-kernel chain.
package mcmc

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"r0fit/domain/model"
	"r0fit/domain/posterior"
	"r0fit/domain/run"
	"r0fit/internal"
	"r0fit/internal/errors"
)

const (
	targetAcceptance = 0.44 // optimal for one-dimensional updates
	adaptBatch       = 50
	chainSeedStride  = 1_000_003
)

// Engine is an adaptive Metropolis-within-Gibbs sampler.
type Engine struct {
	log *internal.Logger
}

// New creates a sampling engine.
func New(logger *internal.Logger) *Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{log: logger}
}

// Sample runs cfg.Chains independent chains in parallel and returns their
// retained draws. Chain c uses seed cfg.Seed + c*chainSeedStride, so results
// are reproducible for a fixed configuration.
func (e *Engine) Sample(ctx context.Context, m model.Model, cfg run.SamplerConfig) (*posterior.Chains, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	init := m.InitialPoint()
	if len(init) != m.Dim() {
		return nil, errors.SamplerError(fmt.Sprintf("model %s: initial point has %d components, want %d", m.Name(), len(init), m.Dim()))
	}
	if lp := m.LogPosterior(init); math.IsInf(lp, -1) || math.IsNaN(lp) {
		return nil, errors.SamplerError(fmt.Sprintf("model %s: log-posterior is not finite at the initial point", m.Name()))
	}

	e.log.Info("sampling %s: %d chains, burn-in %d, %d samples, thin %d, seed %d",
		m.Name(), cfg.Chains, cfg.BurnIn, cfg.Samples, cfg.Thin, cfg.Seed)

	draws := make([][][]float64, cfg.Chains)
	g, ctx := errgroup.WithContext(ctx)
	for c := 0; c < cfg.Chains; c++ {
		c := c
		g.Go(func() error {
			kept, err := e.runChain(ctx, m, cfg, c, init)
			if err != nil {
				return err
			}
			draws[c] = kept
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &posterior.Chains{Names: m.ParamNames(), Draws: draws}, nil
}

func (e *Engine) runChain(ctx context.Context, m model.Model, cfg run.SamplerConfig, chain int, init []float64) ([][]float64, error) {
	rng := rand.New(rand.NewSource(cfg.Seed + chainSeedStride*int64(chain)))

	theta := overdisperse(m, init, chain, rng)
	lp := m.LogPosterior(theta)
	dim := len(theta)

	steps := make([]float64, dim)
	for d := range steps {
		steps[d] = 0.1*math.Abs(init[d]) + 0.05
	}

	kept := make([][]float64, 0, cfg.Samples)
	batchAccepts := make([]int, dim)
	postAccepts := 0
	total := cfg.BurnIn + cfg.Samples*cfg.Thin

	for iter := 0; iter < total; iter++ {
		if iter%512 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		for d := 0; d < dim; d++ {
			old := theta[d]
			theta[d] = old + steps[d]*rng.NormFloat64()
			lpNew := m.LogPosterior(theta)
			if lpNew >= lp || math.Log(rng.Float64()) < lpNew-lp {
				lp = lpNew
				batchAccepts[d]++
				if iter >= cfg.BurnIn {
					postAccepts++
				}
			} else {
				theta[d] = old
			}
		}

		if iter < cfg.BurnIn && (iter+1)%adaptBatch == 0 {
			adapt(steps, batchAccepts, (iter+1)/adaptBatch)
		}

		if iter >= cfg.BurnIn && (iter-cfg.BurnIn)%cfg.Thin == 0 {
			draw := make([]float64, dim)
			copy(draw, theta)
			kept = append(kept, draw)
		}
	}

	if postAccepts == 0 {
		return nil, errors.SamplerError(fmt.Sprintf("model %s: chain %d accepted no moves after burn-in", m.Name(), chain))
	}
	e.log.Debug("chain %d: %.1f%% post-burn-in acceptance",
		chain, 100*float64(postAccepts)/float64(cfg.Samples*cfg.Thin*dim))
	return kept, nil
}

// adapt nudges per-coordinate step sizes toward the target acceptance rate
// on the log scale, with a decaying gain so adaptation settles.
func adapt(steps []float64, batchAccepts []int, batch int) {
	gain := math.Min(0.25, 1/math.Sqrt(float64(batch)))
	for d := range steps {
		rate := float64(batchAccepts[d]) / adaptBatch
		if rate > targetAcceptance {
			steps[d] *= math.Exp(gain)
		} else {
			steps[d] *= math.Exp(-gain)
		}
		batchAccepts[d] = 0
	}
}

// overdisperse jitters the shared initial point so chains start apart, which
// keeps the Gelman-Rubin diagnostic honest. Chain 0 starts exactly at the
// model's initial point; jitters that fall outside prior support are
// discarded.
func overdisperse(m model.Model, init []float64, chain int, rng *rand.Rand) []float64 {
	theta := make([]float64, len(init))
	copy(theta, init)
	if chain == 0 {
		return theta
	}
	for try := 0; try < 20; try++ {
		cand := make([]float64, len(init))
		for d := range init {
			cand[d] = init[d] + (0.05*math.Abs(init[d])+0.02)*rng.NormFloat64()
		}
		if lp := m.LogPosterior(cand); !math.IsInf(lp, -1) && !math.IsNaN(lp) {
			return cand
		}
	}
	return theta
}
