package models

import (
	"time"

	"github.com/google/uuid"
)

// BlogPost is an article shown on the public blog once published
type BlogPost struct {
	ID          uuid.UUID  `json:"id"`
	AuthorID    *uuid.UUID `json:"author_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Excerpt     *string    `json:"excerpt"`
	Category    string     `json:"category"`
	CoverImage  *string    `json:"cover_image"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BlogPostSummary is the listing view of a post, without its content
type BlogPostSummary struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     *string    `json:"excerpt"`
	Category    string     `json:"category"`
	CoverImage  *string    `json:"cover_image"`
	PublishedAt *time.Time `json:"published_at"`
}

// Summary strips the content of p.
func (p BlogPost) Summary() BlogPostSummary {
	return BlogPostSummary{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Category:    p.Category,
		CoverImage:  p.CoverImage,
		PublishedAt: p.PublishedAt,
	}
}

type BlogPostCreate struct {
	Title      string  `json:"title" binding:"required,max=255"`
	Slug       string  `json:"slug" binding:"required,max=255"`
	Content    string  `json:"content" binding:"required"`
	Excerpt    *string `json:"excerpt"`
	Category   string  `json:"category" binding:"required,max=64"`
	CoverImage *string `json:"cover_image" binding:"omitempty,max=255"`
	Published  bool    `json:"published"`
}

// SuggestionKind is "ideia" or "bug"
type SuggestionKind string

const (
	SuggestionIdea SuggestionKind = "ideia"
	SuggestionBug  SuggestionKind = "bug"
)

func (k SuggestionKind) Valid() bool {
	return k == SuggestionIdea || k == SuggestionBug
}

// Suggestion is a feature request or bug report with its vote count
type Suggestion struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Kind        SuggestionKind `json:"kind"`
	Votes       int            `json:"votes"`
	CreatedAt   time.Time      `json:"created_at"`
}

type SuggestionCreate struct {
	Title       string         `json:"title" binding:"required,max=255"`
	Description string         `json:"description" binding:"required"`
	Kind        SuggestionKind `json:"kind" binding:"required,oneof=ideia bug"`
}
