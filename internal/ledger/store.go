package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// Store is the transactional storage the ledger runs its units of work on.
type Store interface {
	// WithinTx runs fn in one all-or-nothing storage transaction. A non-nil
	// error from fn rolls back every write made through tx. Serialization
	// failures are reported as models.ErrConflict.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	// Holdings lists the user's active assets with their transaction counts,
	// read from committed state.
	Holdings(ctx context.Context, userID uuid.UUID) ([]Holding, error)
}

// Tx is the view of the store inside a unit of work.
//
// LockAsset must block concurrent lockers of the same asset until the
// enclosing transaction ends and must not block lockers of other assets.
type Tx interface {
	LockAsset(ctx context.Context, userID, assetID uuid.UUID) (*models.Asset, error)
	FindTransaction(ctx context.Context, userID, txID uuid.UUID) (*models.Transaction, error)
	LockTransaction(ctx context.Context, userID, txID uuid.UUID) (*models.Transaction, error)
	InsertTransaction(ctx context.Context, t *models.Transaction) error
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, txID uuid.UUID) error
	AssetTransactions(ctx context.Context, assetID uuid.UUID) ([]models.Transaction, error)
	SaveAggregate(ctx context.Context, assetID uuid.UUID, agg Aggregate) error
}
