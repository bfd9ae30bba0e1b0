package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

type blogStore struct {
	s *Store
}

func (b blogStore) ListPublishedPosts(_ context.Context, limit int) ([]models.BlogPost, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()

	var out []models.BlogPost
	for _, p := range b.s.posts {
		if p.Published {
			out = append(out, *p)
		}
	}
	// published_at DESC NULLS LAST
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].PublishedAt, out[j].PublishedAt
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		}
		return pi.After(*pj)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (b blogStore) GetPublishedPost(_ context.Context, slug string) (*models.BlogPost, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	for _, p := range b.s.posts {
		if p.Slug == slug && p.Published {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("post %s: %w", slug, models.ErrNotFound)
}

func (b blogStore) CreatePost(_ context.Context, p *models.BlogPost) error {
	s := b.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.posts {
		if existing.Slug == p.Slug {
			return fmt.Errorf("post %s: %w", p.Slug, models.ErrAlreadyExists)
		}
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	s.posts[p.ID] = &cp
	return nil
}

type suggestionStore struct {
	s *Store
}

func (g suggestionStore) ListSuggestions(_ context.Context) ([]models.Suggestion, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()

	out := make([]models.Suggestion, 0, len(g.s.suggestions))
	for id, sg := range g.s.suggestions {
		cp := *sg
		cp.Votes = len(g.s.votes[id])
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Votes != out[j].Votes {
			return out[i].Votes > out[j].Votes
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (g suggestionStore) CreateSuggestion(_ context.Context, sg *models.Suggestion) error {
	s := g.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[sg.UserID]; !ok {
		return fmt.Errorf("user %s: %w", sg.UserID, models.ErrNotFound)
	}
	sg.CreatedAt = s.now()
	cp := *sg
	s.suggestions[sg.ID] = &cp
	return nil
}

func (g suggestionStore) Vote(_ context.Context, suggestionID, userID uuid.UUID) error {
	s := g.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.suggestions[suggestionID]; !ok {
		return fmt.Errorf("suggestion %s: %w", suggestionID, models.ErrNotFound)
	}
	voters := s.votes[suggestionID]
	if voters == nil {
		voters = make(map[uuid.UUID]struct{})
		s.votes[suggestionID] = voters
	}
	if _, voted := voters[userID]; voted {
		return fmt.Errorf("vote on %s: %w", suggestionID, models.ErrAlreadyExists)
	}
	voters[userID] = struct{}{}
	return nil
}
