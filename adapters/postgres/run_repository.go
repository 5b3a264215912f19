// Package postgres persists run manifests in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"r0fit/domain/core"
	"r0fit/domain/run"
	"r0fit/internal/errors"
	"r0fit/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         UUID PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	model      TEXT NOT NULL,
	p_value    DOUBLE PRECISION NOT NULL,
	converged  BOOLEAN NOT NULL,
	result     JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_created_at_idx ON runs (created_at DESC);
`

// RunRepositoryImpl implements ports.RunRepository for PostgreSQL.
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// Connect opens a connection pool and ensures the schema exists.
func Connect(dsn string) (*RunRepositoryImpl, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, errors.DatabaseError("connect to postgres", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.DatabaseError("ensure runs schema", err)
	}
	return &RunRepositoryImpl{db: db}, nil
}

// NewRunRepository wraps an existing connection.
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// Close releases the connection pool.
func (r *RunRepositoryImpl) Close() error {
	return r.db.Close()
}

// Save stores a run manifest; saving the same id again replaces it.
func (r *RunRepositoryImpl) Save(ctx context.Context, result *run.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "marshal run result")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, model, p_value, converged, result)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			created_at = EXCLUDED.created_at,
			model = EXCLUDED.model,
			p_value = EXCLUDED.p_value,
			converged = EXCLUDED.converged,
			result = EXCLUDED.result`,
		result.ID.String(), result.CreatedAt, result.Model, result.PValue, result.Converged, payload)
	if err != nil {
		return errors.DatabaseError("save run", err)
	}
	return nil
}

// Get retrieves a run manifest by id.
func (r *RunRepositoryImpl) Get(ctx context.Context, id core.RunID) (*run.Result, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT result FROM runs WHERE id = $1`, id.String()).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("run " + id.String())
	}
	if err != nil {
		return nil, errors.DatabaseError("get run", err)
	}

	var result run.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, errors.Wrap(err, "unmarshal run result")
	}
	return &result, nil
}

// List returns compact listings of all stored runs, newest first.
func (r *RunRepositoryImpl) List(ctx context.Context) ([]run.Listing, error) {
	var listings []run.Listing
	err := r.db.SelectContext(ctx, &listings,
		`SELECT id, created_at, model, p_value, converged FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.DatabaseError("list runs", err)
	}
	return listings, nil
}
