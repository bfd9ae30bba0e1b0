package memstore

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
	"github.com/atharvakonge/portfolio-ledger/internal/storage"
)

type assetStore struct {
	s *Store
}

func (a assetStore) ListAssets(_ context.Context, userID uuid.UUID) ([]models.Asset, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	var out []models.Asset
	for _, asset := range a.s.assets {
		if asset.UserID == userID {
			out = append(out, *asset)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out, nil
}

func (a assetStore) GetAsset(_ context.Context, userID, assetID uuid.UUID) (*models.Asset, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	asset, ok := a.s.assets[assetID]
	if !ok || asset.UserID != userID {
		return nil, fmt.Errorf("asset %s: %w", assetID, models.ErrNotFound)
	}
	cp := *asset
	return &cp, nil
}

func (a assetStore) CreateAsset(_ context.Context, asset *models.Asset) error {
	s := a.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[asset.UserID]; !ok {
		return fmt.Errorf("user %s: %w", asset.UserID, models.ErrNotFound)
	}
	if _, ok := s.assets[asset.ID]; ok {
		return fmt.Errorf("asset %s: %w", asset.ID, models.ErrAlreadyExists)
	}
	now := s.now()
	asset.CreatedAt, asset.UpdatedAt = now, now
	cp := *asset
	s.assets[asset.ID] = &cp
	return nil
}

// UpdateAsset and DeleteAsset take the asset lock so they never interleave
// with a ledger unit of work on the same asset.
func (a assetStore) UpdateAsset(ctx context.Context, userID, assetID uuid.UUID, upd models.AssetUpdate) (*models.Asset, error) {
	if err := a.s.locks.Lock(ctx, assetID); err != nil {
		return nil, err
	}
	defer a.s.locks.Unlock(assetID)

	s := a.s
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[assetID]
	if !ok || asset.UserID != userID {
		return nil, fmt.Errorf("asset %s: %w", assetID, models.ErrNotFound)
	}
	upd.Apply(asset)
	asset.UpdatedAt = s.now()
	cp := *asset
	return &cp, nil
}

func (a assetStore) DeleteAsset(ctx context.Context, userID, assetID uuid.UUID) error {
	if err := a.s.locks.Lock(ctx, assetID); err != nil {
		return err
	}
	defer a.s.locks.Unlock(assetID)

	s := a.s
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[assetID]
	if !ok || asset.UserID != userID {
		return fmt.Errorf("asset %s: %w", assetID, models.ErrNotFound)
	}
	delete(s.assets, assetID)
	for id, t := range s.transactions {
		if t.AssetID == assetID {
			delete(s.transactions, id)
		}
	}
	return nil
}

func (a assetStore) AllAssetIDs(_ context.Context) ([]storage.AssetRef, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	out := make([]storage.AssetRef, 0, len(a.s.assets))
	for _, asset := range a.s.assets {
		out = append(out, storage.AssetRef{AssetID: asset.ID, UserID: asset.UserID})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].AssetID[:], out[j].AssetID[:]) < 0
	})
	return out, nil
}

func (a assetStore) ListTransactions(_ context.Context, userID uuid.UUID, assetID *uuid.UUID) ([]models.Transaction, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	var out []models.Transaction
	for _, t := range a.s.transactions {
		if t.UserID != userID {
			continue
		}
		if assetID != nil && t.AssetID != *assetID {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (a assetStore) GetTransaction(_ context.Context, userID, txID uuid.UUID) (*models.Transaction, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	t, ok := a.s.transactions[txID]
	if !ok || t.UserID != userID {
		return nil, fmt.Errorf("transaction %s: %w", txID, models.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}
