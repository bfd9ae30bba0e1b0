// Package db is the PostgreSQL backend.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/atharvakonge/portfolio-ledger/internal/config"
	"github.com/atharvakonge/portfolio-ledger/internal/logging"
	"github.com/atharvakonge/portfolio-ledger/internal/storage"
)

// Store implements storage.Manager on a PostgreSQL pool.
type Store struct {
	db     *sql.DB
	logger *logging.Logger
}

var _ storage.Manager = (*Store)(nil)

// Open connects to the database described by cfg and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *logging.Logger) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	logger.Info().
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("Database connected")
	return New(db, logger), nil
}

// New wraps an existing pool.
func New(db *sql.DB, logger *logging.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// DB exposes the pool, for tests and maintenance tooling.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Users() storage.UserStore             { return userStore{s.db} }
func (s *Store) Assets() storage.AssetStore           { return assetStore{s.db} }
func (s *Store) Blog() storage.BlogStore              { return blogStore{s.db} }
func (s *Store) Suggestions() storage.SuggestionStore { return suggestionStore{s.db} }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes database connection
func (s *Store) Close() error {
	err := s.db.Close()
	s.logger.Info().Msg("Database connection closed")
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
