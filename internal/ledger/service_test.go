package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharvakonge/portfolio-ledger/internal/ledger"
	"github.com/atharvakonge/portfolio-ledger/internal/memstore"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

var day = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func newAsset(t *testing.T, s *memstore.Store, userID uuid.UUID, ticker string, kind models.AssetType) uuid.UUID {
	t.Helper()
	a := &models.Asset{ID: uuid.New(), UserID: userID, Ticker: ticker, Name: ticker, AssetType: kind, IsActive: true}
	require.NoError(t, s.Assets().CreateAsset(context.Background(), a))
	return a.ID
}

func newUser(t *testing.T, s *memstore.Store) uuid.UUID {
	t.Helper()
	u := &models.User{ID: uuid.New(), Email: uuid.NewString() + "@test.com", IsActive: true}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u.ID
}

func create(assetID uuid.UUID, kind models.TransactionType, qty, price string) models.TransactionCreate {
	return models.TransactionCreate{
		AssetID:         assetID,
		TransactionType: kind,
		Quantity:        decimal.RequireFromString(qty),
		UnitPrice:       decimal.RequireFromString(price),
		Date:            day,
	}
}

func assertAsset(t *testing.T, s *memstore.Store, userID, assetID uuid.UUID, qty, avg string) {
	t.Helper()
	a, err := s.Assets().GetAsset(context.Background(), userID, assetID)
	require.NoError(t, err)
	assert.True(t, a.Quantity.Equal(decimal.RequireFromString(qty)), "quantity = %s, want %s", a.Quantity, qty)
	assert.True(t, a.AveragePrice.Equal(decimal.RequireFromString(avg)), "average = %s, want %s", a.AveragePrice, avg)
}

func TestLedgerScenarios(t *testing.T) {
	s := memstore.New()
	svc := ledger.NewService(s)
	ctx := context.Background()
	userID := newUser(t, s)
	assetID := newAsset(t, s, userID, "PETR4", models.AssetTypeStock)

	first, err := svc.RecordTransaction(ctx, userID, create(assetID, models.TransactionBuy, "10", "100"))
	require.NoError(t, err)
	assertAsset(t, s, userID, assetID, "10", "100")

	_, err = svc.RecordTransaction(ctx, userID, create(assetID, models.TransactionBuy, "10", "200"))
	require.NoError(t, err)
	assertAsset(t, s, userID, assetID, "20", "150")

	require.NoError(t, svc.RemoveTransaction(ctx, userID, first.ID))
	assertAsset(t, s, userID, assetID, "10", "200")

	_, err = svc.RecordTransaction(ctx, userID, create(assetID, models.TransactionSell, "5", "999"))
	require.NoError(t, err)
	assertAsset(t, s, userID, assetID, "5", "200")

	_, err = svc.RecordTransaction(ctx, userID, create(assetID, models.TransactionSell, "15", "1"))
	require.NoError(t, err)
	assertAsset(t, s, userID, assetID, "-10", "0")
}

func TestRecordRejectsInvalid(t *testing.T) {
	s := memstore.New()
	svc := ledger.NewService(s)
	ctx := context.Background()
	userID := newUser(t, s)
	assetID := newAsset(t, s, userID, "VALE3", models.AssetTypeStock)

	bad := []models.TransactionCreate{
		create(assetID, "HOLD", "1", "1"),
		create(assetID, models.TransactionBuy, "0", "1"),
		create(assetID, models.TransactionBuy, "-1", "1"),
		create(assetID, models.TransactionBuy, "1", "-1"),
	}
	noDate := create(assetID, models.TransactionBuy, "1", "1")
	noDate.Date = time.Time{}
	bad = append(bad, noDate)

	for i, in := range bad {
		_, err := svc.RecordTransaction(ctx, userID, in)
		assert.ErrorIs(t, err, ledger.ErrInvalidTransaction, "case %d", i)
	}

	txs, err := s.Assets().ListTransactions(ctx, userID, nil)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestOwnershipEnforced(t *testing.T) {
	s := memstore.New()
	svc := ledger.NewService(s)
	ctx := context.Background()
	owner := newUser(t, s)
	intruder := newUser(t, s)
	assetID := newAsset(t, s, owner, "ITSA4", models.AssetTypeStock)

	_, err := svc.RecordTransaction(ctx, intruder, create(assetID, models.TransactionBuy, "1", "1"))
	assert.ErrorIs(t, err, models.ErrNotFound)

	tr, err := svc.RecordTransaction(ctx, owner, create(assetID, models.TransactionBuy, "1", "1"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RemoveTransaction(ctx, intruder, tr.ID), models.ErrNotFound)
	_, err = svc.ModifyTransaction(ctx, intruder, tr.ID, models.TransactionUpdate{})
	assert.ErrorIs(t, err, models.ErrNotFound)

	foreign := newAsset(t, s, intruder, "ABEV3", models.AssetTypeStock)
	_, err = svc.ModifyTransaction(ctx, owner, tr.ID, models.TransactionUpdate{AssetID: &foreign})
	assert.ErrorIs(t, err, models.ErrNotFound, "cannot move onto another user's asset")
	assertAsset(t, s, owner, assetID, "1", "1")
}

func TestModifyMovesBetweenAssets(t *testing.T) {
	s := memstore.New()
	svc := ledger.NewService(s)
	ctx := context.Background()
	userID := newUser(t, s)
	from := newAsset(t, s, userID, "BBDC4", models.AssetTypeStock)
	to := newAsset(t, s, userID, "BBDC3", models.AssetTypeStock)

	_, err := svc.RecordTransaction(ctx, userID, create(from, models.TransactionBuy, "4", "10"))
	require.NoError(t, err)
	moved, err := svc.RecordTransaction(ctx, userID, create(from, models.TransactionBuy, "6", "20"))
	require.NoError(t, err)
	assertAsset(t, s, userID, from, "10", "16")

	qty := decimal.NewFromInt(2)
	got, err := svc.ModifyTransaction(ctx, userID, moved.ID, models.TransactionUpdate{AssetID: &to, Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, to, got.AssetID)

	assertAsset(t, s, userID, from, "4", "10")
	assertAsset(t, s, userID, to, "2", "20")
}

func TestModifyRejectsInvalidUpdate(t *testing.T) {
	s := memstore.New()
	svc := ledger.NewService(s)
	ctx := context.Background()
	userID := newUser(t, s)
	assetID := newAsset(t, s, userID, "MGLU3", models.AssetTypeStock)

	tr, err := svc.RecordTransaction(ctx, userID, create(assetID, models.TransactionBuy, "3", "7"))
	require.NoError(t, err)

	zero := decimal.Zero
	_, err = svc.ModifyTransaction(ctx, userID, tr.ID, models.TransactionUpdate{Quantity: &zero})
	assert.ErrorIs(t, err, ledger.ErrInvalidTransaction)

	stored, err := s.Assets().GetTransaction(ctx, userID, tr.ID)
	require.NoError(t, err)
	assert.True(t, stored.Quantity.Equal(decimal.NewFromInt(3)))
	assertAsset(t, s, userID, assetID, "3", "7")
}

// failingStore fails SaveAggregate so the unit must roll back.
type failingStore struct {
	*memstore.Store
}

type failingTx struct {
	ledger.Tx
}

var errDisk = errors.New("disk full")

func (f failingStore) WithinTx(ctx context.Context, fn func(ledger.Tx) error) error {
	return f.Store.WithinTx(ctx, func(tx ledger.Tx) error {
		return fn(failingTx{tx})
	})
}

func (failingTx) SaveAggregate(context.Context, uuid.UUID, ledger.Aggregate) error {
	return errDisk
}

func TestRecomputeFailureRollsBackMutation(t *testing.T) {
	s := memstore.New()
	svc := ledger.NewService(failingStore{s})
	ctx := context.Background()
	userID := newUser(t, s)
	assetID := newAsset(t, s, userID, "WEGE3", models.AssetTypeStock)

	_, err := svc.RecordTransaction(ctx, userID, create(assetID, models.TransactionBuy, "1", "1"))
	require.ErrorIs(t, err, errDisk)

	txs, err := s.Assets().ListTransactions(ctx, userID, &assetID)
	require.NoError(t, err)
	assert.Empty(t, txs, "transaction must not survive a failed recompute")
	assertAsset(t, s, userID, assetID, "0", "0")
}

// conflictingStore reports a conflict for the first n units.
type conflictingStore struct {
	*memstore.Store
	mu    sync.Mutex
	fails int
	calls int
}

func (c *conflictingStore) WithinTx(ctx context.Context, fn func(ledger.Tx) error) error {
	c.mu.Lock()
	c.calls++
	fail := c.calls <= c.fails
	c.mu.Unlock()
	if fail {
		return fmt.Errorf("serialization failure: %w", models.ErrConflict)
	}
	return c.Store.WithinTx(ctx, fn)
}

func TestConflictRetried(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	userID := newUser(t, s)
	assetID := newAsset(t, s, userID, "RENT3", models.AssetTypeStock)

	store := &conflictingStore{Store: s, fails: 2}
	svc := ledger.NewService(store, ledger.WithMaxRetries(3))
	_, err := svc.RecordTransaction(ctx, userID, create(assetID, models.TransactionBuy, "1", "5"))
	require.NoError(t, err)
	assert.Equal(t, 3, store.calls)

	store = &conflictingStore{Store: s, fails: 10}
	svc = ledger.NewService(store, ledger.WithMaxRetries(1))
	_, err = svc.RecordTransaction(ctx, userID, create(assetID, models.TransactionBuy, "1", "5"))
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, 2, store.calls)
}

func TestConcurrentRecordsSerialise(t *testing.T) {
	s := memstore.New()
	svc := ledger.NewService(s)
	ctx := context.Background()
	userID := newUser(t, s)
	assetID := newAsset(t, s, userID, "SUZB3", models.AssetTypeStock)
	other := newAsset(t, s, userID, "KLBN11", models.AssetTypeStock)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(price int64) {
			defer wg.Done()
			_, err := svc.RecordTransaction(ctx, userID, models.TransactionCreate{
				AssetID: assetID, TransactionType: models.TransactionBuy,
				Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(price), Date: day,
			})
			assert.NoError(t, err)
		}(int64(i + 1))
		go func() {
			defer wg.Done()
			_, err := svc.RecordTransaction(ctx, userID, create(other, models.TransactionBuy, "2", "3"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Sum of 1..50 over 50 units.
	assertAsset(t, s, userID, assetID, "50", "25.5")
	assertAsset(t, s, userID, other, "100", "3")
}

func TestRecalculateAssetRepairsDrift(t *testing.T) {
	s := memstore.New()
	svc := ledger.NewService(s)
	ctx := context.Background()
	userID := newUser(t, s)
	assetID := newAsset(t, s, userID, "EGIE3", models.AssetTypeStock)

	_, err := svc.RecordTransaction(ctx, userID, create(assetID, models.TransactionBuy, "8", "12.5"))
	require.NoError(t, err)

	// Corrupt the aggregate behind the ledger's back.
	require.NoError(t, s.WithinTx(ctx, func(tx ledger.Tx) error {
		if _, err := tx.LockAsset(ctx, userID, assetID); err != nil {
			return err
		}
		return tx.SaveAggregate(ctx, assetID, ledger.Aggregate{Quantity: decimal.NewFromInt(99), AveragePrice: decimal.NewFromInt(1)})
	}))

	agg, err := svc.RecalculateAsset(ctx, userID, assetID)
	require.NoError(t, err)
	assert.True(t, agg.Equal(ledger.Aggregate{Quantity: decimal.NewFromInt(8), AveragePrice: decimal.RequireFromString("12.5")}))
	assertAsset(t, s, userID, assetID, "8", "12.5")

	again, err := svc.RecalculateAsset(ctx, userID, assetID)
	require.NoError(t, err)
	assert.True(t, agg.Equal(again))
}

func TestDashboardAggregates(t *testing.T) {
	s := memstore.New()
	svc := ledger.NewService(s)
	ctx := context.Background()
	userID := newUser(t, s)
	stock := newAsset(t, s, userID, "PETR4", models.AssetTypeStock)
	newAsset(t, s, userID, "HGLG11", models.AssetTypeFII)
	inactive := newAsset(t, s, userID, "OIBR3", models.AssetTypeStock)

	_, err := svc.RecordTransaction(ctx, userID, create(stock, models.TransactionBuy, "10", "100"))
	require.NoError(t, err)
	_, err = svc.RecordTransaction(ctx, userID, create(inactive, models.TransactionBuy, "1000", "1"))
	require.NoError(t, err)
	off := false
	_, err = s.Assets().UpdateAsset(ctx, userID, inactive, models.AssetUpdate{IsActive: &off})
	require.NoError(t, err)

	summary, err := svc.PortfolioSummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalAssets)
	assert.Equal(t, 1, summary.TotalTransactions)
	assert.True(t, summary.TotalInvested.Equal(decimal.NewFromInt(1000)))

	items, err := svc.PortfolioAllocation(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.AssetTypeStock, items[0].AssetType)
	assert.Equal(t, 100.0, items[0].Percentage)
	assert.Equal(t, models.AssetTypeFII, items[1].AssetType)
	assert.Equal(t, 0.0, items[1].Percentage)

	empty, err := svc.PortfolioSummary(ctx, newUser(t, s))
	require.NoError(t, err)
	assert.Zero(t, empty.TotalAssets)
	assert.True(t, empty.TotalInvested.IsZero())
}
