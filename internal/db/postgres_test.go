package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharvakonge/portfolio-ledger/internal/ledger"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

func buy(assetID uuid.UUID, qty, price string) models.TransactionCreate {
	return models.TransactionCreate{
		AssetID:         assetID,
		TransactionType: models.TransactionBuy,
		Quantity:        decimal.RequireFromString(qty),
		UnitPrice:       decimal.RequireFromString(price),
		Date:            time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := SetupTestDB(t)

	applied, err := store.Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied, "second run should apply nothing")
}

func TestLedgerOverPostgres(t *testing.T) {
	store := SetupTestDB(t)
	ctx := context.Background()
	svc := ledger.NewService(store)

	userID := CreateTestUser(t, store, "ledger")
	assetID := CreateTestAsset(t, store, userID, "PETR4")

	_, err := svc.RecordTransaction(ctx, userID, buy(assetID, "10", "100"))
	require.NoError(t, err)
	_, err = svc.RecordTransaction(ctx, userID, buy(assetID, "10", "200"))
	require.NoError(t, err)
	sell := buy(assetID, "5", "300")
	sell.TransactionType = models.TransactionSell
	_, err = svc.RecordTransaction(ctx, userID, sell)
	require.NoError(t, err)

	a, err := store.Assets().GetAsset(ctx, userID, assetID)
	require.NoError(t, err)
	assert.True(t, a.Quantity.Equal(decimal.NewFromInt(15)), "quantity = %s", a.Quantity)
	assert.True(t, a.AveragePrice.Equal(decimal.NewFromInt(150)), "average = %s", a.AveragePrice)

	summary, err := svc.PortfolioSummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalAssets)
	assert.Equal(t, 3, summary.TotalTransactions)
	assert.True(t, summary.TotalInvested.Equal(decimal.NewFromInt(2250)))
}

func TestWithinTxRollsBack(t *testing.T) {
	store := SetupTestDB(t)
	ctx := context.Background()

	userID := CreateTestUser(t, store, "rollback")
	assetID := CreateTestAsset(t, store, userID, "VALE3")
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(tx ledger.Tx) error {
		if _, err := tx.LockAsset(ctx, userID, assetID); err != nil {
			return err
		}
		if err := tx.InsertTransaction(ctx, &models.Transaction{
			ID: uuid.New(), AssetID: assetID, UserID: userID,
			TransactionType: models.TransactionBuy,
			Quantity:        decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1),
			Date: time.Now(), CreatedAt: time.Now(),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	txs, err := store.Assets().ListTransactions(ctx, userID, &assetID)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestConcurrentRecordsOnOneAsset(t *testing.T) {
	store := SetupTestDB(t)
	ctx := context.Background()
	svc := ledger.NewService(store)

	userID := CreateTestUser(t, store, "concurrent")
	assetID := CreateTestAsset(t, store, userID, "ITUB4")

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordTransaction(ctx, userID, buy(assetID, "1", "10"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	a, err := store.Assets().GetAsset(ctx, userID, assetID)
	require.NoError(t, err)
	assert.True(t, a.Quantity.Equal(decimal.NewFromInt(n)), "quantity = %s", a.Quantity)
}

func TestForeignOwnershipIsNotFound(t *testing.T) {
	store := SetupTestDB(t)
	ctx := context.Background()
	svc := ledger.NewService(store)

	owner := CreateTestUser(t, store, "owner")
	other := CreateTestUser(t, store, "other")
	assetID := CreateTestAsset(t, store, owner, "BBAS3")

	_, err := svc.RecordTransaction(ctx, other, buy(assetID, "1", "1"))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDuplicateEmailAndVote(t *testing.T) {
	store := SetupTestDB(t)
	ctx := context.Background()

	u := &models.User{ID: uuid.New(), Email: "dup@test.com", HashedPassword: "x", IsActive: true}
	require.NoError(t, store.Users().CreateUser(ctx, u))
	again := &models.User{ID: uuid.New(), Email: "DUP@test.com", HashedPassword: "x", IsActive: true}
	assert.ErrorIs(t, store.Users().CreateUser(ctx, again), models.ErrAlreadyExists)

	sg := &models.Suggestion{ID: uuid.New(), UserID: u.ID, Title: "t", Description: "d", Kind: models.SuggestionIdea}
	require.NoError(t, store.Suggestions().CreateSuggestion(ctx, sg))
	require.NoError(t, store.Suggestions().Vote(ctx, sg.ID, u.ID))
	assert.ErrorIs(t, store.Suggestions().Vote(ctx, sg.ID, u.ID), models.ErrAlreadyExists)
	assert.ErrorIs(t, store.Suggestions().Vote(ctx, uuid.New(), u.ID), models.ErrNotFound)

	list, err := store.Suggestions().ListSuggestions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Votes)
}

func TestDeleteAssetCascades(t *testing.T) {
	store := SetupTestDB(t)
	ctx := context.Background()
	svc := ledger.NewService(store)

	userID := CreateTestUser(t, store, "cascade")
	assetID := CreateTestAsset(t, store, userID, "WEGE3")
	_, err := svc.RecordTransaction(ctx, userID, buy(assetID, "2", "30"))
	require.NoError(t, err)

	require.NoError(t, store.Assets().DeleteAsset(ctx, userID, assetID))
	txs, err := store.Assets().ListTransactions(ctx, userID, nil)
	require.NoError(t, err)
	assert.Empty(t, txs)
}
