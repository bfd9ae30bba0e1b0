package memstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/ledger"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// WithinTx stages every write made through the ledger.Tx and publishes them
// in one step when fn succeeds. Asset locks are released afterwards either way.
func (s *Store) WithinTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	tx := &memTx{
		s:    s,
		held: make(map[uuid.UUID]bool),
		txs:  make(map[uuid.UUID]*models.Transaction),
		aggs: make(map[uuid.UUID]ledger.Aggregate),
	}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// Holdings reads committed state only.
func (s *Store) Holdings(_ context.Context, userID uuid.UUID) ([]ledger.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[uuid.UUID]int)
	for _, t := range s.transactions {
		counts[t.AssetID]++
	}

	var out []ledger.Holding
	for _, a := range s.assets {
		if a.UserID != userID || !a.IsActive {
			continue
		}
		out = append(out, ledger.Holding{
			AssetType:        a.AssetType,
			Quantity:         a.Quantity,
			AveragePrice:     a.AveragePrice,
			TransactionCount: counts[a.ID],
		})
	}
	return out, nil
}

// memTx overlays staged writes on the committed maps. A nil entry in txs
// marks a deletion.
type memTx struct {
	s    *Store
	held map[uuid.UUID]bool
	txs  map[uuid.UUID]*models.Transaction
	aggs map[uuid.UUID]ledger.Aggregate
}

func (t *memTx) LockAsset(ctx context.Context, userID, assetID uuid.UUID) (*models.Asset, error) {
	if !t.held[assetID] {
		if err := t.s.locks.Lock(ctx, assetID); err != nil {
			return nil, err
		}
		t.held[assetID] = true
	}

	t.s.mu.RLock()
	a, ok := t.s.assets[assetID]
	var cp models.Asset
	if ok {
		cp = *a
	}
	t.s.mu.RUnlock()

	if !ok || cp.UserID != userID {
		return nil, fmt.Errorf("asset %s: %w", assetID, models.ErrNotFound)
	}
	if agg, ok := t.aggs[assetID]; ok {
		cp.Quantity, cp.AveragePrice = agg.Quantity, agg.AveragePrice
	}
	return &cp, nil
}

func (t *memTx) lookup(txID uuid.UUID) (*models.Transaction, bool) {
	if staged, ok := t.txs[txID]; ok {
		if staged == nil {
			return nil, false
		}
		cp := *staged
		return &cp, true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	committed, ok := t.s.transactions[txID]
	if !ok {
		return nil, false
	}
	cp := *committed
	return &cp, true
}

func (t *memTx) FindTransaction(_ context.Context, userID, txID uuid.UUID) (*models.Transaction, error) {
	tr, ok := t.lookup(txID)
	if !ok || tr.UserID != userID {
		return nil, fmt.Errorf("transaction %s: %w", txID, models.ErrNotFound)
	}
	return tr, nil
}

// LockTransaction is a plain read here: every writer of a transaction holds
// the lock of the asset it belongs to, which the caller already owns.
func (t *memTx) LockTransaction(ctx context.Context, userID, txID uuid.UUID) (*models.Transaction, error) {
	return t.FindTransaction(ctx, userID, txID)
}

func (t *memTx) InsertTransaction(_ context.Context, tr *models.Transaction) error {
	if _, exists := t.lookup(tr.ID); exists {
		return fmt.Errorf("transaction %s: %w", tr.ID, models.ErrAlreadyExists)
	}
	if !t.assetExists(tr.AssetID) {
		return fmt.Errorf("asset %s: %w", tr.AssetID, models.ErrNotFound)
	}
	cp := *tr
	t.txs[tr.ID] = &cp
	return nil
}

func (t *memTx) UpdateTransaction(_ context.Context, tr *models.Transaction) error {
	if _, exists := t.lookup(tr.ID); !exists {
		return fmt.Errorf("transaction %s: %w", tr.ID, models.ErrNotFound)
	}
	if !t.assetExists(tr.AssetID) {
		return fmt.Errorf("asset %s: %w", tr.AssetID, models.ErrNotFound)
	}
	cp := *tr
	t.txs[tr.ID] = &cp
	return nil
}

func (t *memTx) DeleteTransaction(_ context.Context, txID uuid.UUID) error {
	if _, exists := t.lookup(txID); !exists {
		return fmt.Errorf("transaction %s: %w", txID, models.ErrNotFound)
	}
	t.txs[txID] = nil
	return nil
}

func (t *memTx) AssetTransactions(_ context.Context, assetID uuid.UUID) ([]models.Transaction, error) {
	var out []models.Transaction

	t.s.mu.RLock()
	for id, tr := range t.s.transactions {
		if _, staged := t.txs[id]; staged {
			continue
		}
		if tr.AssetID == assetID {
			out = append(out, *tr)
		}
	}
	t.s.mu.RUnlock()

	for _, tr := range t.txs {
		if tr != nil && tr.AssetID == assetID {
			out = append(out, *tr)
		}
	}
	return out, nil
}

func (t *memTx) SaveAggregate(_ context.Context, assetID uuid.UUID, agg ledger.Aggregate) error {
	if !t.assetExists(assetID) {
		return fmt.Errorf("asset %s: %w", assetID, models.ErrNotFound)
	}
	t.aggs[assetID] = agg
	return nil
}

func (t *memTx) assetExists(id uuid.UUID) bool {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	_, ok := t.s.assets[id]
	return ok
}

func (t *memTx) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for id, tr := range t.txs {
		if tr == nil {
			delete(t.s.transactions, id)
			continue
		}
		t.s.transactions[id] = tr
	}
	now := t.s.now()
	for id, agg := range t.aggs {
		if a, ok := t.s.assets[id]; ok {
			a.Quantity = agg.Quantity
			a.AveragePrice = agg.AveragePrice
			a.UpdatedAt = now
		}
	}
}

func (t *memTx) release() {
	for id := range t.held {
		t.s.locks.Unlock(id)
	}
}
