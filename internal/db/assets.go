package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
	"github.com/atharvakonge/portfolio-ledger/internal/storage"
)

const assetColumns = `id, user_id, ticker, name, asset_type, sector, quantity, average_price, is_active, created_at, updated_at`

const transactionColumns = `id, asset_id, user_id, transaction_type, quantity, unit_price, fees, date, notes, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*models.Asset, error) {
	var a models.Asset
	err := row.Scan(
		&a.ID, &a.UserID, &a.Ticker, &a.Name, &a.AssetType, &a.Sector,
		&a.Quantity, &a.AveragePrice, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID, &t.AssetID, &t.UserID, &t.TransactionType, &t.Quantity,
		&t.UnitPrice, &t.Fees, &t.Date, &t.Notes, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	defer rows.Close()
	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func getTransaction(ctx context.Context, q querier, userID, txID uuid.UUID, suffix string) (*models.Transaction, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`+suffix,
		txID, userID)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, notFound(err, "transaction "+txID.String())
	}
	return t, nil
}

type assetStore struct {
	db *sql.DB
}

func (s assetStore) ListAssets(ctx context.Context, userID uuid.UUID) ([]models.Asset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE user_id = $1 ORDER BY ticker`, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s assetStore) GetAsset(ctx context.Context, userID, assetID uuid.UUID) (*models.Asset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = $1 AND user_id = $2`, assetID, userID)
	a, err := scanAsset(row)
	if err != nil {
		return nil, notFound(err, "asset "+assetID.String())
	}
	return a, nil
}

func (s assetStore) CreateAsset(ctx context.Context, a *models.Asset) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO assets
			(id, user_id, ticker, name, asset_type, sector, quantity, average_price, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		a.ID, a.UserID, a.Ticker, a.Name, a.AssetType, a.Sector,
		a.Quantity, a.AveragePrice, a.IsActive,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return translate(err)
}

func (s assetStore) UpdateAsset(ctx context.Context, userID, assetID uuid.UUID, upd models.AssetUpdate) (*models.Asset, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		assetID, userID)
	a, err := scanAsset(row)
	if err != nil {
		return nil, notFound(err, "asset "+assetID.String())
	}

	upd.Apply(a)
	err = tx.QueryRowContext(ctx, `
		UPDATE assets
		SET ticker = $2, name = $3, asset_type = $4, sector = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.Ticker, a.Name, a.AssetType, a.Sector, a.IsActive,
	).Scan(&a.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, translate(err)
	}
	return a, nil
}

func (s assetStore) DeleteAsset(ctx context.Context, userID, assetID uuid.UUID) error {
	// Transactions go with the asset through ON DELETE CASCADE.
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM assets WHERE id = $1 AND user_id = $2`, assetID, userID)
	if err != nil {
		return translate(err)
	}
	return expectOne(res, "asset "+assetID.String())
}

func (s assetStore) AllAssetIDs(ctx context.Context) ([]storage.AssetRef, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id FROM assets ORDER BY id`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []storage.AssetRef
	for rows.Next() {
		var ref storage.AssetRef
		if err := rows.Scan(&ref.AssetID, &ref.UserID); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (s assetStore) ListTransactions(ctx context.Context, userID uuid.UUID, assetID *uuid.UUID) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}
	if assetID != nil {
		query += ` AND asset_id = $2`
		args = append(args, *assetID)
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", translate(err))
	}
	return scanTransactions(rows)
}

func (s assetStore) GetTransaction(ctx context.Context, userID, txID uuid.UUID) (*models.Transaction, error) {
	return getTransaction(ctx, s.db, userID, txID, "")
}
