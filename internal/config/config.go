package config

import (
	"os"
	"strconv"

	"r0fit/domain/run"
	"r0fit/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Sampler  run.SamplerConfig
	Database DatabaseConfig
	Server   ServerConfig
	Output   OutputConfig
}

// DatabaseConfig holds the optional run-ledger connection settings
type DatabaseConfig struct {
	URL string // empty disables persistence
}

// ServerConfig holds results-server settings
type ServerConfig struct {
	Port string
}

// OutputConfig holds file output settings
type OutputConfig struct {
	Dir string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Sampler: run.DefaultSamplerConfig(),
		Database: DatabaseConfig{
			URL: os.Getenv("R0FIT_DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: getEnv("R0FIT_PORT", "8080"),
		},
		Output: OutputConfig{
			Dir: getEnv("R0FIT_OUTPUT_DIR", "."),
		},
	}

	var err error
	if cfg.Sampler.Chains, err = getEnvInt("R0FIT_CHAINS", cfg.Sampler.Chains); err != nil {
		return nil, err
	}
	if cfg.Sampler.BurnIn, err = getEnvInt("R0FIT_BURNIN", cfg.Sampler.BurnIn); err != nil {
		return nil, err
	}
	if cfg.Sampler.Samples, err = getEnvInt("R0FIT_SAMPLES", cfg.Sampler.Samples); err != nil {
		return nil, err
	}
	if cfg.Sampler.Thin, err = getEnvInt("R0FIT_THIN", cfg.Sampler.Thin); err != nil {
		return nil, err
	}
	if cfg.Sampler.Seed, err = getEnvInt64("R0FIT_SEED", cfg.Sampler.Seed); err != nil {
		return nil, err
	}

	if err := cfg.Sampler.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid sampler configuration")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer, got " + v)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer, got " + v)
	}
	return n, nil
}
