package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/config"
	"github.com/atharvakonge/portfolio-ledger/internal/logging"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
	"github.com/atharvakonge/portfolio-ledger/internal/storage"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveUser       = errors.New("inactive user")
)

// Service implements the account flows on top of a UserStore.
type Service struct {
	users  storage.UserStore
	tokens *Issuer
	logger *logging.Logger
}

func NewService(users storage.UserStore, tokens *Issuer, logger *logging.Logger) *Service {
	return &Service{users: users, tokens: tokens, logger: logger}
}

// Tokens exposes the issuer used by the middleware.
func (s *Service) Tokens() *Issuer { return s.tokens }

// Register creates an active, non-superuser account.
func (s *Service) Register(ctx context.Context, in models.UserCreate) (*models.User, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		ID:             uuid.New(),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		HashedPassword: hash,
		FullName:       in.FullName,
		IsActive:       true,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, models.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.logger.Info().Str("user_id", u.ID.String()).Msg("User registered")
	return u, nil
}

// Login checks credentials and returns a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (models.Token, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return models.Token{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Token{}, err
	}
	if !CheckPassword(u.HashedPassword, password) {
		return models.Token{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return models.Token{}, ErrInactiveUser
	}

	if err := s.users.TouchLogin(ctx, u.ID, time.Now().UTC()); err != nil {
		s.logger.Warn().Err(err).Str("user_id", u.ID.String()).Msg("Failed to record login")
	}
	return s.tokens.IssuePair(u.ID)
}

// Refresh trades a refresh token for a new pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (models.Token, error) {
	u, err := s.userFromToken(ctx, refreshToken, RefreshToken)
	if err != nil {
		return models.Token{}, err
	}
	return s.tokens.IssuePair(u.ID)
}

// Authenticate resolves an access token to an active user.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	return s.userFromToken(ctx, accessToken, AccessToken)
}

// RequestPasswordReset returns a reset token, or nil when no active account
// uses email. The caller cannot tell the two apart by status.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (*string, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, nil
	}
	token, err := s.tokens.Issue(u.ID, ResetToken)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// ResetPassword sets a new password from a reset token and logs the user in.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) (models.Token, error) {
	u, err := s.userFromToken(ctx, resetToken, ResetToken)
	if err != nil {
		return models.Token{}, err
	}
	if err := s.setPassword(ctx, u.ID, newPassword); err != nil {
		return models.Token{}, err
	}
	return s.tokens.IssuePair(u.ID)
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, u *models.User, current, next string) error {
	if !CheckPassword(u.HashedPassword, current) {
		return ErrInvalidCredentials
	}
	return s.setPassword(ctx, u.ID, next)
}

// EnsureSuperuser creates the configured administrator, or promotes and
// re-keys an existing account with that email.
func (s *Service) EnsureSuperuser(ctx context.Context, cfg config.SuperuserConfig) (*models.User, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	u, err := s.users.GetUserByEmail(ctx, cfg.Email)
	switch {
	case errors.Is(err, models.ErrNotFound):
		var name *string
		if cfg.FullName != "" {
			name = &cfg.FullName
		}
		u, err = s.Register(ctx, models.UserCreate{Email: cfg.Email, Password: cfg.Password, FullName: name})
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := s.setPassword(ctx, u.ID, cfg.Password); err != nil {
			return nil, err
		}
	}

	if err := s.users.SetSuperuser(ctx, u.ID, true); err != nil {
		return nil, err
	}
	u.IsSuperuser = true
	s.logger.Info().Str("email", u.Email).Msg("Superuser ensured")
	return u, nil
}

func (s *Service) setPassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.SetPassword(ctx, id, hash)
}

func (s *Service) userFromToken(ctx context.Context, token string, kind TokenType) (*models.User, error) {
	id, err := s.tokens.Verify(token, kind)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetUser(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown user", ErrInvalidToken)
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return u, nil
}
