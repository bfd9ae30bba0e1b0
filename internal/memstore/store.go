// Package memstore is an in-process storage backend. It honours the same
// contracts as the Postgres store and backs the test suites and the
// "memory" database driver.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
	"github.com/atharvakonge/portfolio-ledger/internal/storage"
)

// Store keeps every record in maps guarded by one RWMutex. Ledger units of
// work additionally hold per-asset locks for their whole duration.
type Store struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]*models.User
	emails       map[string]uuid.UUID
	profiles     map[uuid.UUID]*models.Profile
	assets       map[uuid.UUID]*models.Asset
	transactions map[uuid.UUID]*models.Transaction
	posts        map[uuid.UUID]*models.BlogPost
	suggestions  map[uuid.UUID]*models.Suggestion
	votes        map[uuid.UUID]map[uuid.UUID]struct{}

	locks *AssetLocks
	now   func() time.Time
}

var _ storage.Manager = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:        make(map[uuid.UUID]*models.User),
		emails:       make(map[string]uuid.UUID),
		profiles:     make(map[uuid.UUID]*models.Profile),
		assets:       make(map[uuid.UUID]*models.Asset),
		transactions: make(map[uuid.UUID]*models.Transaction),
		posts:        make(map[uuid.UUID]*models.BlogPost),
		suggestions:  make(map[uuid.UUID]*models.Suggestion),
		votes:        make(map[uuid.UUID]map[uuid.UUID]struct{}),
		locks:        NewAssetLocks(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() storage.UserStore             { return userStore{s} }
func (s *Store) Assets() storage.AssetStore           { return assetStore{s} }
func (s *Store) Blog() storage.BlogStore              { return blogStore{s} }
func (s *Store) Suggestions() storage.SuggestionStore { return suggestionStore{s} }

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

// SetClock overrides the timestamp source, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
