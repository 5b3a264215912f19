package ports

import (
	"context"

	"r0fit/domain/core"
	"r0fit/domain/run"
)

// RunRepository persists completed run manifests for later inspection.
type RunRepository interface {
	Save(ctx context.Context, result *run.Result) error
	Get(ctx context.Context, id core.RunID) (*run.Result, error)
	List(ctx context.Context) ([]run.Listing, error)
}
