package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

const userColumns = `id, email, hashed_password, full_name, is_active, is_superuser, last_login_at, created_at, updated_at`

type userStore struct {
	db *sql.DB
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.HashedPassword, &u.FullName, &u.IsActive,
		&u.IsSuperuser, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts the user and its profile in one transaction.
func (s userStore) CreateUser(ctx context.Context, u *models.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (id, email, hashed_password, full_name, is_active, is_superuser)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		u.ID, strings.ToLower(u.Email), u.HashedPassword, u.FullName, u.IsActive, u.IsSuperuser,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return translate(err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO profiles (id, email, full_name) VALUES ($1, $2, $3)`,
		u.ID, strings.ToLower(u.Email), u.FullName,
	); err != nil {
		return translate(err)
	}

	u.Email = strings.ToLower(u.Email)
	return translate(tx.Commit())
}

func (s userStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "user "+id.String())
	}
	return u, nil
}

func (s userStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
	if err != nil {
		return nil, notFound(err, "user "+email)
	}
	return u, nil
}

func (s userStore) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET hashed_password = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return translate(err)
	}
	return expectOne(res, "user "+id.String())
}

func (s userStore) SetSuperuser(ctx context.Context, id uuid.UUID, superuser bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_superuser = $2, updated_at = NOW() WHERE id = $1`, id, superuser)
	if err != nil {
		return translate(err)
	}
	return expectOne(res, "user "+id.String())
}

func (s userStore) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return translate(err)
	}
	return expectOne(res, "user "+id.String())
}

const profileColumns = `id, email, full_name, avatar_url, created_at, updated_at`

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	if err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s userStore) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "profile "+id.String())
	}
	return p, nil
}

// UpdateProfile writes the non-nil fields. The full name is mirrored onto the user.
func (s userStore) UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Profile, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := scanProfile(tx.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "profile "+id.String())
	}
	if upd.FullName != nil {
		p.FullName = upd.FullName
	}
	if upd.AvatarURL != nil {
		p.AvatarURL = upd.AvatarURL
	}

	if err := tx.QueryRowContext(ctx, `
		UPDATE profiles SET full_name = $2, avatar_url = $3, updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`,
		id, p.FullName, p.AvatarURL,
	).Scan(&p.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	if upd.FullName != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET full_name = $2, updated_at = NOW() WHERE id = $1`, id, p.FullName,
		); err != nil {
			return nil, translate(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, translate(err)
	}
	return p, nil
}
