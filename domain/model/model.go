// Package model declares the Bayesian models as log-posterior densities over
// a flat parameter vector with named components. The sampler engine only
// sees this interface; everything model-specific (priors, likelihood,
// posterior-predictive replication) lives here.
package model

// Model is a posterior density the MCMC engine can sample from.
type Model interface {
	// Name identifies the model in run manifests and reports.
	Name() string

	// Dim returns the length of the parameter vector.
	Dim() int

	// ParamNames returns one name per parameter, BUGS-style ("beta[2]").
	ParamNames() []string

	// InitialPoint returns a starting vector with finite log-posterior.
	InitialPoint() []float64

	// LogPosterior evaluates the unnormalized log posterior density.
	// Returns -Inf outside prior support.
	LogPosterior(theta []float64) float64
}
