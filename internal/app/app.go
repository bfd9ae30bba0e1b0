// Package app assembles the services shared by the server and the admin CLI.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/atharvakonge/portfolio-ledger/internal/auth"
	"github.com/atharvakonge/portfolio-ledger/internal/config"
	"github.com/atharvakonge/portfolio-ledger/internal/db"
	"github.com/atharvakonge/portfolio-ledger/internal/ledger"
	"github.com/atharvakonge/portfolio-ledger/internal/logging"
	"github.com/atharvakonge/portfolio-ledger/internal/memstore"
	"github.com/atharvakonge/portfolio-ledger/internal/storage"
)

// OpenStore opens the configured backend. Postgres is migrated to the latest
// schema before it is returned.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger *logging.Logger) (storage.Manager, error) {
	switch strings.ToLower(cfg.Driver) {
	case "memory":
		logger.Warn().Msg("Using in-memory storage, data is lost on exit")
		return memstore.New(), nil
	case "postgres", "":
		store, err := db.Open(ctx, cfg, logger.Component("db"))
		if err != nil {
			return nil, err
		}
		applied, err := store.Migrate(ctx)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		for _, name := range applied {
			logger.Info().Str("migration", name).Msg("Applied migration")
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Services bundles the domain services built on one store.
type Services struct {
	Store  storage.Manager
	Ledger *ledger.Service
	Auth   *auth.Service
}

// NewServices wires the ledger and account services onto store.
func NewServices(cfg *config.Config, store storage.Manager, logger *logging.Logger) *Services {
	return &Services{
		Store: store,
		Ledger: ledger.NewService(store,
			ledger.WithMaxRetries(cfg.Ledger.MaxRetries),
			ledger.WithLogger(logger.Component("ledger")),
		),
		Auth: auth.NewService(store.Users(), auth.NewIssuer(cfg.Auth), logger.Component("auth")),
	}
}
