package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/atharvakonge/portfolio-ledger/internal/logging"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

var (
	pgOnce  sync.Once
	pgDSN   string
	pgError error
)

// startPostgres starts one postgres container per test process.
func startPostgres(t *testing.T) string {
	t.Helper()

	pgOnce.Do(func() {
		ctx := context.Background()

		req := testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "ledger",
				"POSTGRES_PASSWORD": "ledger",
				"POSTGRES_DB":       "ledger_test",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(60 * time.Second),
		}

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			pgError = fmt.Errorf("start postgres container: %w", err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			container.Terminate(ctx)
			pgError = fmt.Errorf("get postgres host: %w", err)
			return
		}
		port, err := container.MappedPort(ctx, "5432/tcp")
		if err != nil {
			container.Terminate(ctx)
			pgError = fmt.Errorf("get postgres port: %w", err)
			return
		}

		pgDSN = fmt.Sprintf(
			"host=%s port=%s user=ledger password=ledger dbname=ledger_test sslmode=disable",
			host, port.Port(),
		)
	})

	if pgError != nil {
		t.Fatalf("postgres container failed: %v", pgError)
	}
	return pgDSN
}

// SetupTestDB returns a migrated store on the shared container.
func SetupTestDB(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	conn, err := sql.Open("postgres", startPostgres(t))
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err = conn.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	store := New(conn, logging.NewSilent())
	if _, err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { CleanupTestDB(t, store) })
	return store
}

// CleanupTestDB cleans up test data
func CleanupTestDB(t *testing.T, s *Store) {
	tables := []string{"suggestion_votes", "suggestions", "blog_posts", "transactions", "assets", "profiles", "users"}
	for _, table := range tables {
		if _, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("Warning: Failed to cleanup table %s: %v", table, err)
		}
	}
	s.db.Close()
}

// CreateTestUser creates a test user and returns its id
func CreateTestUser(t *testing.T, s *Store, name string) uuid.UUID {
	t.Helper()
	u := &models.User{
		ID:             uuid.New(),
		Email:          fmt.Sprintf("%s_%d@test.com", name, time.Now().UnixNano()),
		HashedPassword: "x",
		IsActive:       true,
	}
	if err := s.Users().CreateUser(context.Background(), u); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u.ID
}

// CreateTestAsset creates an empty STOCK asset for userID
func CreateTestAsset(t *testing.T, s *Store, userID uuid.UUID, ticker string) uuid.UUID {
	t.Helper()
	a := &models.Asset{
		ID:        uuid.New(),
		UserID:    userID,
		Ticker:    ticker,
		Name:      ticker,
		AssetType: models.AssetTypeStock,
		IsActive:  true,
	}
	if err := s.Assets().CreateAsset(context.Background(), a); err != nil {
		t.Fatalf("Failed to create test asset: %v", err)
	}
	return a.ID
}
