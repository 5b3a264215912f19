package testkit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"r0fit/domain/core"
	"r0fit/domain/run"
)

func TestGenerateOutbreak_Shape(t *testing.T) {
	cfg := DefaultOutbreakConfig()
	table, err := GenerateOutbreak(cfg)
	require.NoError(t, err)

	assert.Equal(t, cfg.Departments, table.Departments)
	assert.Equal(t, cfg.Departments*cfg.Weeks, table.Len())

	// Week-0 intercepts exist for every department by construction.
	require.Len(t, table.Intercepts, cfg.Departments)
}

func TestGenerateOutbreak_DeterministicBySeed(t *testing.T) {
	a, err := GenerateOutbreak(DefaultOutbreakConfig())
	require.NoError(t, err)
	b, err := GenerateOutbreak(DefaultOutbreakConfig())
	require.NoError(t, err)
	assert.Equal(t, a.Observations, b.Observations)

	cfg := DefaultOutbreakConfig()
	cfg.Seed = 99
	c, err := GenerateOutbreak(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a.Observations, c.Observations)
}

func TestGenerateOutbreak_ExplicitBetas(t *testing.T) {
	cfg := DefaultOutbreakConfig()
	cfg.Sigma = 0 // noise-free: slopes are exact
	cfg.Betas = []float64{0.1, 0.2, 0.3}

	table, err := GenerateOutbreak(cfg)
	require.NoError(t, err)

	for j := 1; j <= 3; j++ {
		obs := table.ByDepartment(j)
		slope := (obs[1].LnCases() - obs[0].LnCases())
		assert.InDelta(t, cfg.Betas[j-1], slope, 1e-9)
	}
}

func TestGenerateOutbreak_Validation(t *testing.T) {
	cfg := DefaultOutbreakConfig()
	cfg.Weeks = 1
	_, err := GenerateOutbreak(cfg)
	assert.Error(t, err)

	cfg = DefaultOutbreakConfig()
	cfg.Betas = []float64{0.1}
	_, err = GenerateOutbreak(cfg)
	assert.Error(t, err)
}

func TestInMemoryRunRepository(t *testing.T) {
	repo := NewInMemoryRunRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, core.RunID("missing"))
	assert.Error(t, err)

	first := &run.Result{ID: core.NewRunID(), CreatedAt: time.Now().Add(-time.Hour), Model: "hierarchical-r0", PValue: 0.48}
	second := &run.Result{ID: core.NewRunID(), CreatedAt: time.Now(), Model: "climate-anova", PValue: 0.52}
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Model, got.Model)

	listings, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, second.ID, listings[0].ID) // newest first
}
