package posterior

import (
	"math/rand"

	"r0fit/internal/errors"
)

// Replicator is implemented by models that can draw a posterior-predictive
// replicate of the data. Both returns are sums of squared residuals around
// the fitted means: one for the observed data, one for the replicate.
type Replicator interface {
	Replicate(theta []float64, rng *rand.Rand) (obsSSR, repSSR float64)
}

// PValue computes the Bayesian posterior-predictive p-value: the posterior
// mean of the indicator that a replicate discrepancy exceeds the observed
// one. A well-specified model yields a value near 0.5.
func PValue(c *Chains, m Replicator, rng *rand.Rand) (float64, error) {
	total := c.NumDraws()
	if total == 0 {
		return 0, errors.InvalidInput("no posterior draws")
	}
	exceed := 0
	c.EachDraw(func(theta []float64) {
		obs, rep := m.Replicate(theta, rng)
		if rep > obs {
			exceed++
		}
	})
	return float64(exceed) / float64(total), nil
}
