package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

const blogColumns = `id, author_id, title, slug, content, excerpt, category, cover_image, published, published_at, created_at, updated_at`

type blogStore struct {
	db *sql.DB
}

func scanPost(row rowScanner) (*models.BlogPost, error) {
	var p models.BlogPost
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.Category,
		&p.CoverImage, &p.Published, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s blogStore) ListPublishedPosts(ctx context.Context, limit int) ([]models.BlogPost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+blogColumns+` FROM blog_posts
		WHERE published
		ORDER BY published_at DESC NULLS LAST
		LIMIT $1`, limit)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []models.BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s blogStore) GetPublishedPost(ctx context.Context, slug string) (*models.BlogPost, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+blogColumns+` FROM blog_posts WHERE slug = $1 AND published`, slug))
	if err != nil {
		return nil, notFound(err, "post "+slug)
	}
	return p, nil
}

func (s blogStore) CreatePost(ctx context.Context, p *models.BlogPost) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO blog_posts
			(id, author_id, title, slug, content, excerpt, category, cover_image, published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		p.ID, p.AuthorID, p.Title, p.Slug, p.Content, p.Excerpt, p.Category,
		p.CoverImage, p.Published, p.PublishedAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}

type suggestionStore struct {
	db *sql.DB
}

func (s suggestionStore) ListSuggestions(ctx context.Context) ([]models.Suggestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.title, s.description, s.kind, s.created_at, COUNT(v.user_id) AS votes
		FROM suggestions s
		LEFT JOIN suggestion_votes v ON v.suggestion_id = s.id
		GROUP BY s.id
		ORDER BY votes DESC, s.created_at DESC`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []models.Suggestion
	for rows.Next() {
		var sg models.Suggestion
		if err := rows.Scan(&sg.ID, &sg.UserID, &sg.Title, &sg.Description, &sg.Kind, &sg.CreatedAt, &sg.Votes); err != nil {
			return nil, err
		}
		out = append(out, sg)
	}
	return out, rows.Err()
}

func (s suggestionStore) CreateSuggestion(ctx context.Context, sg *models.Suggestion) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO suggestions (id, user_id, title, description, kind)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		sg.ID, sg.UserID, sg.Title, sg.Description, sg.Kind,
	).Scan(&sg.CreatedAt)
	return translate(err)
}

func (s suggestionStore) Vote(ctx context.Context, suggestionID, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO suggestion_votes (suggestion_id, user_id) VALUES ($1, $2)`,
		suggestionID, userID)
	return translate(err)
}
