// Package database provides the data access layers for PostgreSQL and
// Redis. PostgreSQL holds the persistent relational data (users,
// accounts, profiles, exercises, workouts, sets, measurements); Redis
// backs rate limiting and the exercise library cache.
//
// Connection management includes automatic retry with exponential
// backoff so the service tolerates a database container that is still
// starting up.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iancarlosortega/gym-tracker/pkg/config"
	"github.com/iancarlosortega/gym-tracker/pkg/utils"

	_ "github.com/lib/pq"
)

// ErrNotFound is returned by lookup methods when no row matches.
// Callers branch on it with errors.Is.
var ErrNotFound = errors.New("not found")

// Querier is an interface for executing SQL queries. It abstracts
// *sql.DB and *sql.Tx so the same query code works both inside and
// outside transactions.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// TxFunc is a function that runs within a database transaction. The
// transaction is committed on nil return and rolled back on error or
// panic.
type TxFunc func(tx *sql.Tx) error

// PostgresDB wraps a pooled PostgreSQL connection. The handle is
// created once at startup and injected into every component that needs
// it; nothing in the codebase reaches for a package-level connection.
type PostgresDB struct {
	db *sql.DB
}

// NewPostgresDB opens a PostgreSQL connection from the configured URL
// with automatic retry (exponential backoff, 5 attempts within 30s).
//
// Pool settings: MaxOpenConns from configuration, MaxIdleConns at half
// that, ConnMaxLifetime one hour.
func NewPostgresDB(cfg *config.DatabaseConfig) (*PostgresDB, error) {
	var db *sql.DB
	var connErr error

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := utils.Retry(ctx, utils.DatabaseRetryConfig(), func() error {
		var err error
		db, err = sql.Open("postgres", cfg.URL)
		if err != nil {
			connErr = err
			log.Warn().Err(err).Msg("Failed to open database connection, retrying...")
			return err
		}

		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetMaxIdleConns(cfg.MaxConns / 2)
		db.SetConnMaxLifetime(time.Hour)

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pingCancel()

		if err := db.PingContext(pingCtx); err != nil {
			connErr = err
			log.Warn().Err(err).Msg("Failed to ping database, retrying...")
			db.Close()
			return err
		}

		return nil
	})

	if err != nil {
		if connErr != nil {
			return nil, fmt.Errorf("failed to connect to database after retries: %w", connErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().Msg("Successfully connected to PostgreSQL")

	return &PostgresDB{db: db}, nil
}

// Close closes the database connection and releases all resources.
func (p *PostgresDB) Close() error {
	return p.db.Close()
}

// Ping checks if the database connection is alive. Used by the
// readiness endpoint.
func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// WithTransaction executes fn within a database transaction, rolling
// back on error or panic and committing otherwise.
//
// Example:
//
//	err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
//	    if err := insertWorkout(ctx, tx, w); err != nil {
//	        return err
//	    }
//	    return insertSets(ctx, tx, sets)
//	})
func (p *PostgresDB) WithTransaction(ctx context.Context, fn TxFunc) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
