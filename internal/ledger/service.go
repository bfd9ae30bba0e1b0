package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/logging"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// ErrInvalidTransaction is returned for transactions the ledger refuses to record.
var ErrInvalidTransaction = errors.New("invalid transaction")

// DefaultMaxRetries bounds how often a conflicting unit of work is replayed.
const DefaultMaxRetries = 3

// Service records transactions and keeps asset aggregates consistent.
type Service struct {
	store      Store
	logger     *logging.Logger
	maxRetries int
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMaxRetries sets how many times a conflicting unit is retried.
func WithMaxRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a ledger service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		logger:     logging.NewSilent(),
		maxRetries: DefaultMaxRetries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordTransaction validates in, stores it against the user's asset and
// recomputes that asset, atomically.
func (s *Service) RecordTransaction(ctx context.Context, userID uuid.UUID, in models.TransactionCreate) (*models.Transaction, error) {
	t := &models.Transaction{
		ID:              uuid.New(),
		AssetID:         in.AssetID,
		UserID:          userID,
		TransactionType: in.TransactionType,
		Quantity:        in.Quantity,
		UnitPrice:       in.UnitPrice,
		Fees:            in.Fees,
		Date:            in.Date,
		Notes:           in.Notes,
	}
	if err := validate(t); err != nil {
		return nil, err
	}

	err := s.run(ctx, "record", func(tx Tx) error {
		if _, err := tx.LockAsset(ctx, userID, t.AssetID); err != nil {
			return err
		}
		t.CreatedAt = s.now().UTC()
		if err := tx.InsertTransaction(ctx, t); err != nil {
			return err
		}
		return recompute(ctx, tx, t.AssetID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", t.ID.String()).
		Str("asset_id", t.AssetID.String()).
		Str("type", string(t.TransactionType)).
		Msg("Transaction recorded")
	return t, nil
}

// ModifyTransaction applies a partial update. When the update moves the
// transaction to another asset both assets are recomputed.
func (s *Service) ModifyTransaction(ctx context.Context, userID, txID uuid.UUID, upd models.TransactionUpdate) (*models.Transaction, error) {
	var out *models.Transaction
	err := s.run(ctx, "modify", func(tx Tx) error {
		current, err := tx.FindTransaction(ctx, userID, txID)
		if err != nil {
			return err
		}
		oldAsset := current.AssetID
		newAsset := oldAsset
		if upd.AssetID != nil {
			newAsset = *upd.AssetID
		}

		for _, id := range lockOrder(oldAsset, newAsset) {
			if _, err := tx.LockAsset(ctx, userID, id); err != nil {
				return err
			}
		}

		// Re-read under the asset lock; a concurrent move means our lock set is stale.
		locked, err := tx.LockTransaction(ctx, userID, txID)
		if err != nil {
			return err
		}
		if locked.AssetID != oldAsset {
			return fmt.Errorf("transaction %s moved concurrently: %w", txID, models.ErrConflict)
		}

		upd.Apply(locked)
		if err := validate(locked); err != nil {
			return err
		}
		if err := tx.UpdateTransaction(ctx, locked); err != nil {
			return err
		}
		for _, id := range lockOrder(oldAsset, newAsset) {
			if err := recompute(ctx, tx, id); err != nil {
				return err
			}
		}
		out = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveTransaction deletes a transaction and recomputes its asset.
func (s *Service) RemoveTransaction(ctx context.Context, userID, txID uuid.UUID) error {
	return s.run(ctx, "remove", func(tx Tx) error {
		current, err := tx.FindTransaction(ctx, userID, txID)
		if err != nil {
			return err
		}
		if _, err := tx.LockAsset(ctx, userID, current.AssetID); err != nil {
			return err
		}
		locked, err := tx.LockTransaction(ctx, userID, txID)
		if err != nil {
			return err
		}
		if locked.AssetID != current.AssetID {
			return fmt.Errorf("transaction %s moved concurrently: %w", txID, models.ErrConflict)
		}
		if err := tx.DeleteTransaction(ctx, txID); err != nil {
			return err
		}
		return recompute(ctx, tx, current.AssetID)
	})
}

// RecalculateAsset recomputes one asset from its stored history. Running it
// on an already consistent asset changes nothing but updated_at.
func (s *Service) RecalculateAsset(ctx context.Context, userID, assetID uuid.UUID) (Aggregate, error) {
	var agg Aggregate
	err := s.run(ctx, "recalculate", func(tx Tx) error {
		if _, err := tx.LockAsset(ctx, userID, assetID); err != nil {
			return err
		}
		txs, err := tx.AssetTransactions(ctx, assetID)
		if err != nil {
			return err
		}
		agg = Recalculate(txs)
		return tx.SaveAggregate(ctx, assetID, agg)
	})
	return agg, err
}

// PortfolioSummary reports the user's totals over active assets.
func (s *Service) PortfolioSummary(ctx context.Context, userID uuid.UUID) (models.PortfolioSummary, error) {
	holdings, err := s.store.Holdings(ctx, userID)
	if err != nil {
		return models.PortfolioSummary{}, fmt.Errorf("load holdings: %w", err)
	}
	return Summarize(holdings), nil
}

// PortfolioAllocation reports the user's invested value per asset type.
func (s *Service) PortfolioAllocation(ctx context.Context, userID uuid.UUID) ([]models.AllocationItem, error) {
	holdings, err := s.store.Holdings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load holdings: %w", err)
	}
	return Allocate(holdings), nil
}

// run executes one unit of work, replaying it on conflict.
func (s *Service) run(ctx context.Context, op string, fn func(tx Tx) error) error {
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		err = s.store.WithinTx(ctx, fn)
		if !errors.Is(err, models.ErrConflict) {
			return err
		}
		s.logger.Warn().
			Str("op", op).
			Int("attempt", attempt+1).
			Err(err).
			Msg("Ledger unit conflicted")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

func recompute(ctx context.Context, tx Tx, assetID uuid.UUID) error {
	txs, err := tx.AssetTransactions(ctx, assetID)
	if err != nil {
		return fmt.Errorf("load transactions of asset %s: %w", assetID, err)
	}
	if err := tx.SaveAggregate(ctx, assetID, Recalculate(txs)); err != nil {
		return fmt.Errorf("save aggregate of asset %s: %w", assetID, err)
	}
	return nil
}

// lockOrder returns the distinct ids in ascending byte order.
func lockOrder(a, b uuid.UUID) []uuid.UUID {
	switch c := bytes.Compare(a[:], b[:]); {
	case c == 0:
		return []uuid.UUID{a}
	case c < 0:
		return []uuid.UUID{a, b}
	default:
		return []uuid.UUID{b, a}
	}
}

func validate(t *models.Transaction) error {
	switch {
	case !t.TransactionType.Valid():
		return fmt.Errorf("%w: transaction_type must be BUY or SELL", ErrInvalidTransaction)
	case !t.Quantity.IsPositive():
		return fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidTransaction)
	case t.UnitPrice.IsNegative():
		return fmt.Errorf("%w: unit_price must not be negative", ErrInvalidTransaction)
	case t.Fees.IsNegative():
		return fmt.Errorf("%w: fees must not be negative", ErrInvalidTransaction)
	case t.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalidTransaction)
	}
	return nil
}
