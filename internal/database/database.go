// Package database provides PostgreSQL connection pool construction.
//
// The pool registers pgvector types on every connection so vector columns
// can be bound and scanned natively throughout the application.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
)

const (
	// healthCheckPeriod is how often idle connections are checked.
	healthCheckPeriod = 1 * time.Minute

	// maxConnIdleTime is how long a connection can sit idle before closing.
	maxConnIdleTime = 5 * time.Minute
)

// Open creates a pgx connection pool from the given DSN and verifies
// connectivity. The caller owns the returned pool and must Close it.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolCfg.HealthCheckPeriod = healthCheckPeriod
	poolCfg.MaxConnIdleTime = maxConnIdleTime

	// Register the pgvector codec so []float32 vectors round-trip natively.
	// The extension must exist before the vector type can be loaded, so it is
	// enabled here as well as in schema setup (both are idempotent).
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if _, err := conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
			return fmt.Errorf("enabling pgvector extension: %w", err)
		}
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}
