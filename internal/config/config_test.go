package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Sampler.Chains)
	assert.Equal(t, 2000, cfg.Sampler.BurnIn)
	assert.Equal(t, 4000, cfg.Sampler.Samples)
	assert.Equal(t, 1, cfg.Sampler.Thin)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ".", cfg.Output.Dir)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("R0FIT_CHAINS", "5")
	t.Setenv("R0FIT_SAMPLES", "100")
	t.Setenv("R0FIT_SEED", "777")
	t.Setenv("R0FIT_PORT", "9999")
	t.Setenv("R0FIT_DATABASE_URL", "postgres://localhost/r0fit")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Sampler.Chains)
	assert.Equal(t, 100, cfg.Sampler.Samples)
	assert.Equal(t, int64(777), cfg.Sampler.Seed)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/r0fit", cfg.Database.URL)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("R0FIT_CHAINS", "many")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidSamplerConfig(t *testing.T) {
	t.Setenv("R0FIT_CHAINS", "0")
	_, err := Load()
	assert.Error(t, err)
}
