package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharvakonge/portfolio-ledger/internal/ledger"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

func seed(t *testing.T) (*Store, uuid.UUID, uuid.UUID) {
	t.Helper()
	s := New()
	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Email: "Owner@Example.com", IsActive: true}
	require.NoError(t, s.Users().CreateUser(ctx, user))
	asset := &models.Asset{ID: uuid.New(), UserID: user.ID, Ticker: "PETR4", Name: "Petrobras", AssetType: models.AssetTypeStock, IsActive: true}
	require.NoError(t, s.Assets().CreateAsset(ctx, asset))
	return s, user.ID, asset.ID
}

func TestAssetLocksIndependent(t *testing.T) {
	locks := NewAssetLocks()
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, locks.Lock(ctx, a))
	// A different asset must not wait on a.
	require.NoError(t, locks.Lock(ctx, b))

	timeout, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, locks.Lock(timeout, a), context.DeadlineExceeded)

	locks.Unlock(a)
	require.NoError(t, locks.Lock(ctx, a))
	locks.Unlock(a)
	locks.Unlock(b)
	locks.Unlock(b) // releasing a free lock is a no-op
}

func TestWithinTxDiscardsOnError(t *testing.T) {
	s, userID, assetID := seed(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx ledger.Tx) error {
		if _, err := tx.LockAsset(ctx, userID, assetID); err != nil {
			return err
		}
		tr := &models.Transaction{ID: uuid.New(), AssetID: assetID, UserID: userID, TransactionType: models.TransactionBuy, Quantity: decimal.NewFromInt(1)}
		require.NoError(t, tx.InsertTransaction(ctx, tr))
		require.NoError(t, tx.SaveAggregate(ctx, assetID, ledger.Aggregate{Quantity: decimal.NewFromInt(1)}))

		staged, err := tx.AssetTransactions(ctx, assetID)
		require.NoError(t, err)
		assert.Len(t, staged, 1, "writes are visible inside the unit")
		return boom
	})
	require.ErrorIs(t, err, boom)

	txs, err := s.Assets().ListTransactions(ctx, userID, nil)
	require.NoError(t, err)
	assert.Empty(t, txs)
	a, err := s.Assets().GetAsset(ctx, userID, assetID)
	require.NoError(t, err)
	assert.True(t, a.Quantity.IsZero())

	// The lock was released with the failed unit.
	require.NoError(t, s.locks.Lock(ctx, assetID))
	s.locks.Unlock(assetID)
}

func TestWithinTxCommits(t *testing.T) {
	s, userID, assetID := seed(t)
	ctx := context.Background()
	trID := uuid.New()

	err := s.WithinTx(ctx, func(tx ledger.Tx) error {
		if _, err := tx.LockAsset(ctx, userID, assetID); err != nil {
			return err
		}
		tr := &models.Transaction{ID: trID, AssetID: assetID, UserID: userID, TransactionType: models.TransactionBuy, Quantity: decimal.NewFromInt(2)}
		if err := tx.InsertTransaction(ctx, tr); err != nil {
			return err
		}
		return tx.SaveAggregate(ctx, assetID, ledger.Aggregate{Quantity: decimal.NewFromInt(2), AveragePrice: decimal.NewFromInt(5)})
	})
	require.NoError(t, err)

	got, err := s.Assets().GetTransaction(ctx, userID, trID)
	require.NoError(t, err)
	assert.Equal(t, assetID, got.AssetID)

	holdings, err := s.Holdings(ctx, userID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, 1, holdings[0].TransactionCount)
	assert.True(t, holdings[0].AveragePrice.Equal(decimal.NewFromInt(5)))
}

func TestLockAssetChecksOwner(t *testing.T) {
	s, _, assetID := seed(t)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx ledger.Tx) error {
		_, err := tx.LockAsset(ctx, uuid.New(), assetID)
		return err
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUsersAndVotes(t *testing.T) {
	s, userID, _ := seed(t)
	ctx := context.Background()

	dup := &models.User{ID: uuid.New(), Email: "owner@example.com"}
	assert.ErrorIs(t, s.Users().CreateUser(ctx, dup), models.ErrAlreadyExists)

	u, err := s.Users().GetUserByEmail(ctx, "OWNER@example.com")
	require.NoError(t, err)
	assert.Equal(t, userID, u.ID)

	name := "Ana"
	p, err := s.Users().UpdateProfile(ctx, userID, models.ProfileUpdate{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana", *p.FullName)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return base })
	older := &models.Suggestion{ID: uuid.New(), UserID: userID, Title: "a", Description: "a", Kind: models.SuggestionIdea}
	require.NoError(t, s.Suggestions().CreateSuggestion(ctx, older))
	s.SetClock(func() time.Time { return base.Add(time.Hour) })
	newer := &models.Suggestion{ID: uuid.New(), UserID: userID, Title: "b", Description: "b", Kind: models.SuggestionBug}
	require.NoError(t, s.Suggestions().CreateSuggestion(ctx, newer))

	list, err := s.Suggestions().ListSuggestions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID, "newest first on equal votes")

	require.NoError(t, s.Suggestions().Vote(ctx, older.ID, userID))
	assert.ErrorIs(t, s.Suggestions().Vote(ctx, older.ID, userID), models.ErrAlreadyExists)
	assert.ErrorIs(t, s.Suggestions().Vote(ctx, uuid.New(), userID), models.ErrNotFound)

	list, err = s.Suggestions().ListSuggestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, older.ID, list[0].ID, "votes first")
	assert.Equal(t, 1, list[0].Votes)
}

func TestBlogOrdering(t *testing.T) {
	s := New()
	ctx := context.Background()
	day := func(d int) *time.Time {
		ts := time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}

	posts := []*models.BlogPost{
		{ID: uuid.New(), Slug: "old", Published: true, PublishedAt: day(1)},
		{ID: uuid.New(), Slug: "undated", Published: true},
		{ID: uuid.New(), Slug: "new", Published: true, PublishedAt: day(9)},
		{ID: uuid.New(), Slug: "draft", Published: false, PublishedAt: day(20)},
	}
	for _, p := range posts {
		require.NoError(t, s.Blog().CreatePost(ctx, p))
	}
	assert.ErrorIs(t, s.Blog().CreatePost(ctx, &models.BlogPost{ID: uuid.New(), Slug: "old"}), models.ErrAlreadyExists)

	list, err := s.Blog().ListPublishedPosts(ctx, 20)
	require.NoError(t, err)
	var slugs []string
	for _, p := range list {
		slugs = append(slugs, p.Slug)
	}
	assert.Equal(t, []string{"new", "old", "undated"}, slugs)

	_, err = s.Blog().GetPublishedPost(ctx, "draft")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
