package memstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

type userStore struct {
	s *Store
}

func (u userStore) CreateUser(_ context.Context, user *models.User) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := s.emails[email]; taken {
		return fmt.Errorf("user %s: %w", email, models.ErrAlreadyExists)
	}
	if _, taken := s.users[user.ID]; taken {
		return fmt.Errorf("user %s: %w", user.ID, models.ErrAlreadyExists)
	}

	now := s.now()
	user.Email = email
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	s.users[user.ID] = &cp
	s.emails[email] = user.ID
	s.profiles[user.ID] = &models.Profile{
		ID:        user.ID,
		Email:     email,
		FullName:  user.FullName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (u userStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	cp := *user
	return &cp, nil
}

func (u userStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u.s.mu.RLock()
	id, ok := u.s.emails[strings.ToLower(email)]
	u.s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
	}
	return u.GetUser(ctx, id)
}

func (u userStore) mutate(id uuid.UUID, fn func(*models.User)) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	fn(user)
	return nil
}

func (u userStore) SetPassword(_ context.Context, id uuid.UUID, hash string) error {
	return u.mutate(id, func(user *models.User) {
		user.HashedPassword = hash
		user.UpdatedAt = u.s.now()
	})
}

func (u userStore) SetSuperuser(_ context.Context, id uuid.UUID, superuser bool) error {
	return u.mutate(id, func(user *models.User) {
		user.IsSuperuser = superuser
		user.UpdatedAt = u.s.now()
	})
}

func (u userStore) TouchLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	return u.mutate(id, func(user *models.User) {
		user.LastLoginAt = &at
	})
}

func (u userStore) GetProfile(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	p, ok := u.s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, models.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (u userStore) UpdateProfile(_ context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Profile, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, models.ErrNotFound)
	}
	if upd.FullName != nil {
		p.FullName = upd.FullName
		if user, ok := s.users[id]; ok {
			user.FullName = upd.FullName
		}
	}
	if upd.AvatarURL != nil {
		p.AvatarURL = upd.AvatarURL
	}
	p.UpdatedAt = s.now()
	cp := *p
	return &cp, nil
}
