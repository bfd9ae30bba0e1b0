package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/ledger"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// WithinTx runs fn inside one database transaction. Row locks taken through
// the ledger.Tx are held until commit or rollback.
func (s *Store) WithinTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", translate(err))
	}
	defer tx.Rollback()

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return translate(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", translate(err))
	}
	return nil
}

// Holdings reads the user's active assets with their transaction counts.
func (s *Store) Holdings(ctx context.Context, userID uuid.UUID) ([]ledger.Holding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.asset_type, a.quantity, a.average_price, COUNT(t.id)
		FROM assets a
		LEFT JOIN transactions t ON t.asset_id = a.id
		WHERE a.user_id = $1 AND a.is_active
		GROUP BY a.id`, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []ledger.Holding
	for rows.Next() {
		var h ledger.Holding
		if err := rows.Scan(&h.AssetType, &h.Quantity, &h.AveragePrice, &h.TransactionCount); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ledgerTx implements ledger.Tx on a *sql.Tx.
type ledgerTx struct {
	tx *sql.Tx
}

func (t *ledgerTx) LockAsset(ctx context.Context, userID, assetID uuid.UUID) (*models.Asset, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		assetID, userID)
	a, err := scanAsset(row)
	if err != nil {
		return nil, notFound(err, "asset "+assetID.String())
	}
	return a, nil
}

func (t *ledgerTx) FindTransaction(ctx context.Context, userID, txID uuid.UUID) (*models.Transaction, error) {
	return getTransaction(ctx, t.tx, userID, txID, "")
}

func (t *ledgerTx) LockTransaction(ctx context.Context, userID, txID uuid.UUID) (*models.Transaction, error) {
	return getTransaction(ctx, t.tx, userID, txID, " FOR UPDATE")
}

func (t *ledgerTx) InsertTransaction(ctx context.Context, tr *models.Transaction) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO transactions
			(id, asset_id, user_id, transaction_type, quantity, unit_price, fees, date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tr.ID, tr.AssetID, tr.UserID, tr.TransactionType,
		tr.Quantity, tr.UnitPrice, tr.Fees, tr.Date, tr.Notes, tr.CreatedAt,
	)
	return translate(err)
}

func (t *ledgerTx) UpdateTransaction(ctx context.Context, tr *models.Transaction) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE transactions
		SET asset_id = $2, transaction_type = $3, quantity = $4, unit_price = $5,
		    fees = $6, date = $7, notes = $8
		WHERE id = $1`,
		tr.ID, tr.AssetID, tr.TransactionType, tr.Quantity, tr.UnitPrice,
		tr.Fees, tr.Date, tr.Notes,
	)
	if err != nil {
		return translate(err)
	}
	return expectOne(res, "transaction "+tr.ID.String())
}

func (t *ledgerTx) DeleteTransaction(ctx context.Context, txID uuid.UUID) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, txID)
	if err != nil {
		return translate(err)
	}
	return expectOne(res, "transaction "+txID.String())
}

func (t *ledgerTx) AssetTransactions(ctx context.Context, assetID uuid.UUID) ([]models.Transaction, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE asset_id = $1`, assetID)
	if err != nil {
		return nil, translate(err)
	}
	return scanTransactions(rows)
}

func (t *ledgerTx) SaveAggregate(ctx context.Context, assetID uuid.UUID, agg ledger.Aggregate) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE assets SET quantity = $2, average_price = $3, updated_at = NOW()
		WHERE id = $1`,
		assetID, agg.Quantity, agg.AveragePrice,
	)
	if err != nil {
		return translate(err)
	}
	return expectOne(res, "asset "+assetID.String())
}

func expectOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return nil
}
