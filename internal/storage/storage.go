// Package storage declares the persistence contracts shared by the
// Postgres and in-memory backends.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/ledger"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// UserStore persists users and their profiles.
type UserStore interface {
	// CreateUser stores u and its profile together. A taken email yields
	// models.ErrAlreadyExists.
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetPassword(ctx context.Context, id uuid.UUID, hash string) error
	SetSuperuser(ctx context.Context, id uuid.UUID, superuser bool) error
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Profile, error)
}

// AssetStore is the CRUD surface over assets and the read side of transactions.
// Aggregate fields are only ever written by the ledger.
type AssetStore interface {
	ListAssets(ctx context.Context, userID uuid.UUID) ([]models.Asset, error)
	GetAsset(ctx context.Context, userID, assetID uuid.UUID) (*models.Asset, error)
	CreateAsset(ctx context.Context, a *models.Asset) error
	UpdateAsset(ctx context.Context, userID, assetID uuid.UUID, upd models.AssetUpdate) (*models.Asset, error)
	// DeleteAsset removes the asset and all of its transactions.
	DeleteAsset(ctx context.Context, userID, assetID uuid.UUID) error
	// AllAssetIDs lists every asset with its owner, for maintenance jobs.
	AllAssetIDs(ctx context.Context) ([]AssetRef, error)

	ListTransactions(ctx context.Context, userID uuid.UUID, assetID *uuid.UUID) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, userID, txID uuid.UUID) (*models.Transaction, error)
}

// AssetRef identifies an asset and its owner.
type AssetRef struct {
	AssetID uuid.UUID
	UserID  uuid.UUID
}

// BlogStore persists blog posts.
type BlogStore interface {
	ListPublishedPosts(ctx context.Context, limit int) ([]models.BlogPost, error)
	GetPublishedPost(ctx context.Context, slug string) (*models.BlogPost, error)
	CreatePost(ctx context.Context, p *models.BlogPost) error
}

// SuggestionStore persists suggestions and their votes.
type SuggestionStore interface {
	// ListSuggestions orders by votes, then newest first.
	ListSuggestions(ctx context.Context) ([]models.Suggestion, error)
	CreateSuggestion(ctx context.Context, s *models.Suggestion) error
	// Vote records one vote per user. Unknown suggestion yields
	// models.ErrNotFound, a repeated vote models.ErrAlreadyExists.
	Vote(ctx context.Context, suggestionID, userID uuid.UUID) error
}

// Manager bundles every store a running server needs.
type Manager interface {
	ledger.Store
	Users() UserStore
	Assets() AssetStore
	Blog() BlogStore
	Suggestions() SuggestionStore
	Ping(ctx context.Context) error
	Close() error
}
