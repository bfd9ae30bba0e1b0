package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharvakonge/portfolio-ledger/internal/config"
	"github.com/atharvakonge/portfolio-ledger/internal/logging"
	"github.com/atharvakonge/portfolio-ledger/internal/memstore"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

func testConfig() config.AuthConfig {
	return config.AuthConfig{SecretKey: "test-secret", AccessTokenExpiry: "15m", RefreshTokenExpiry: "1h", PasswordResetExpiry: "10m"}
}

func newTestService(t *testing.T) (*Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return NewService(store.Users(), NewIssuer(testConfig()), logging.NewSilent()), store
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "S3cret"))

	long := strings.Repeat("a", 100)
	hash, err = HashPassword(long)
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, long))
}

func TestIssuerVerify(t *testing.T) {
	issuer := NewIssuer(testConfig())
	id := uuid.New()

	token, err := issuer.Issue(id, AccessToken)
	require.NoError(t, err)

	got, err := issuer.Verify(token, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = issuer.Verify(token, RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "type claim must match")

	_, err = issuer.Verify(token+"x", AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewIssuer(config.AuthConfig{SecretKey: "other"})
	_, err = other.Verify(token, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "foreign signature")
}

func TestIssuerExpiry(t *testing.T) {
	issuer := NewIssuer(testConfig())
	start := time.Now()
	issuer.now = func() time.Time { return start }

	token, err := issuer.Issue(uuid.New(), ResetToken)
	require.NoError(t, err)

	issuer.now = func() time.Time { return start.Add(11 * time.Minute) }
	_, err = issuer.Verify(token, ResetToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccountFlows(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, models.UserCreate{Email: " Ana@Example.com", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsSuperuser)

	_, err = svc.Register(ctx, models.UserCreate{Email: "ana@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	profile, err := store.Users().GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", profile.Email)

	_, err = svc.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	pair, err := svc.Login(ctx, "ANA@example.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)
	stored, err := store.Users().GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "access token is not a refresh token")
	refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	me, err := svc.Authenticate(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)

	reset, err := svc.RequestPasswordReset(ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, reset)
	missing, err := svc.RequestPasswordReset(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = svc.ResetPassword(ctx, pair.RefreshToken, "pw2")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.ResetPassword(ctx, *reset, "pw2")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "ana@example.com", "pw2")
	require.NoError(t, err)

	me, err = store.Users().GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.ChangePassword(ctx, me, "pw1", "pw3"), ErrInvalidCredentials)
	require.NoError(t, svc.ChangePassword(ctx, me, "pw2", "pw3"))
	_, err = svc.Login(ctx, "ana@example.com", "pw3")
	require.NoError(t, err)
}

func TestEnsureSuperuser(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	u, err := svc.EnsureSuperuser(ctx, config.SuperuserConfig{})
	require.NoError(t, err)
	assert.Nil(t, u, "disabled without credentials")

	cfg := config.SuperuserConfig{Email: "admin@example.com", Password: "root", FullName: "Admin"}
	u, err = svc.EnsureSuperuser(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, u.IsSuperuser)

	cfg.Password = "rotated"
	again, err := svc.EnsureSuperuser(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	stored, err := store.Users().GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSuperuser)
	assert.True(t, CheckPassword(stored.HashedPassword, "rotated"))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, models.UserCreate{Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "bob@example.com", "pw")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", RequireUser(svc), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": CurrentUser(c).Email})
	})
	router.GET("/admin", RequireUser(svc), RequireSuperuser(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic " + pair.AccessToken, http.StatusUnauthorized},
		{"refresh token", "/me", "Bearer " + pair.RefreshToken, http.StatusUnauthorized},
		{"access token", "/me", "Bearer " + pair.AccessToken, http.StatusOK},
		{"not superuser", "/admin", "Bearer " + pair.AccessToken, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}
