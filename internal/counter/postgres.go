package counter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const createCountersTable = `
	CREATE TABLE IF NOT EXISTS counters (
		name  TEXT PRIMARY KEY,
		value BIGINT NOT NULL DEFAULT 0 CHECK (value >= 0)
	)
`

// Querier is the subset of *pgxpool.Pool used by PostgresCounter.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Counter = (*PostgresCounter)(nil)

// PostgresCounter keeps one row per named counter. The increment is a single
// upsert, so the row lock taken by PostgreSQL serializes concurrent callers
// across processes.
type PostgresCounter struct {
	db   Querier
	name string
}

func NewPostgresCounter(db Querier, name string) *PostgresCounter {
	return &PostgresCounter{db: db, name: name}
}

func (c *PostgresCounter) Migrate(ctx context.Context) error {
	if _, err := c.db.Exec(ctx, createCountersTable); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func (c *PostgresCounter) Up(ctx context.Context) (int64, error) {
	var v int64
	err := c.db.QueryRow(ctx, `
		INSERT INTO counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		RETURNING value
	`, c.name).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("upsert counter: %w", err)
	}
	return v, nil
}

func (c *PostgresCounter) Get(ctx context.Context) (int64, error) {
	var v int64
	err := c.db.QueryRow(ctx, `SELECT value FROM counters WHERE name = $1`, c.name).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("select counter: %w", err)
	}
	return v, nil
}
