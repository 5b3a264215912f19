// Package cmd wires the command-line interface around the analysis pipeline.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"r0fit/domain/run"
	"r0fit/internal"
	"r0fit/internal/config"
)

var (
	flagChains  int
	flagBurnIn  int
	flagSamples int
	flagThin    int
	flagSeed    int64
	flagMonitor []string
)

var rootCmd = &cobra.Command{
	Use:   "r0fit",
	Short: "Bayesian hierarchical estimation of outbreak reproduction numbers",
	Long: `r0fit fits a hierarchical log-linear growth model to weekly cumulative
case counts per department with MCMC, derives R0 estimates with credible
intervals, and runs a one-way ANOVA of estimated R0 against climate class.`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagChains, "chains", 0, "number of MCMC chains")
	rootCmd.PersistentFlags().IntVar(&flagBurnIn, "burnin", -1, "burn-in iterations per chain")
	rootCmd.PersistentFlags().IntVar(&flagSamples, "samples", 0, "retained draws per chain")
	rootCmd.PersistentFlags().IntVar(&flagThin, "thin", 0, "thinning interval")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "random seed")
	rootCmd.PersistentFlags().StringSliceVar(&flagMonitor, "monitor", nil, "parameter names to summarize (default all)")

	rootCmd.AddCommand(newFitCmd(), newAnovaCmd(), newServeCmd())
}

// loadConfig merges environment configuration with flag overrides.
func loadConfig() (*config.Config, run.SamplerConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, run.SamplerConfig{}, err
	}
	sc := cfg.Sampler
	if flagChains > 0 {
		sc.Chains = flagChains
	}
	if flagBurnIn >= 0 {
		sc.BurnIn = flagBurnIn
	}
	if flagSamples > 0 {
		sc.Samples = flagSamples
	}
	if flagThin > 0 {
		sc.Thin = flagThin
	}
	if flagSeed != 0 {
		sc.Seed = flagSeed
	}
	if len(flagMonitor) > 0 {
		sc.Monitor = flagMonitor
	}
	if err := sc.Validate(); err != nil {
		return nil, run.SamplerConfig{}, err
	}
	return cfg, sc, nil
}

func logger() *internal.Logger {
	return internal.DefaultLogger
}
