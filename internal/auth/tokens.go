// Package auth issues and verifies JWTs, hashes passwords and guards routes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/config"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// TokenType is carried in the "type" claim so a token of one kind is never
// accepted where another is expected.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
	ResetToken   TokenType = "reset"
)

// ErrInvalidToken covers malformed, expired, forged and wrong-type tokens.
var ErrInvalidToken = errors.New("could not validate credentials")

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret []byte
	ttl    map[TokenType]time.Duration
	now    func() time.Time
}

// NewIssuer builds an issuer from the auth configuration.
func NewIssuer(cfg config.AuthConfig) *Issuer {
	return &Issuer{
		secret: []byte(cfg.SecretKey),
		ttl: map[TokenType]time.Duration{
			AccessToken:  cfg.GetAccessTokenExpiry(),
			RefreshToken: cfg.GetRefreshTokenExpiry(),
			ResetToken:   cfg.GetPasswordResetExpiry(),
		},
		now: time.Now,
	}
}

// Issue signs a token of kind for userID.
func (i *Issuer) Issue(userID uuid.UUID, kind TokenType) (string, error) {
	ttl, ok := i.ttl[kind]
	if !ok {
		return "", fmt.Errorf("unknown token type %q", kind)
	}
	now := i.now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"type": string(kind),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// IssuePair returns a fresh access and refresh token.
func (i *Issuer) IssuePair(userID uuid.UUID) (models.Token, error) {
	access, err := i.Issue(userID, AccessToken)
	if err != nil {
		return models.Token{}, err
	}
	refresh, err := i.Issue(userID, RefreshToken)
	if err != nil {
		return models.Token{}, err
	}
	return models.Token{AccessToken: access, TokenType: "bearer", RefreshToken: refresh}, nil
}

// Verify checks signature, expiry and type and returns the subject.
func (i *Issuer) Verify(tokenString string, kind TokenType) (uuid.UUID, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if t, _ := claims["type"].(string); t != string(kind) {
		return uuid.Nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, kind)
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}
