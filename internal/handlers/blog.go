package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

const blogPageSize = 20

// ListPosts handles GET /api/v1/blog
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.store.Blog().ListPublishedPosts(c.Request.Context(), blogPageSize)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]models.BlogPostSummary, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Summary())
	}
	c.JSON(http.StatusOK, out)
}

// GetPost handles GET /api/v1/blog/:slug
func (h *Handler) GetPost(c *gin.Context) {
	p, err := h.store.Blog().GetPublishedPost(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreatePost handles POST /api/v1/blog
func (h *Handler) CreatePost(c *gin.Context) {
	var req models.BlogPostCreate
	if !bind(c, &req) {
		return
	}

	author := currentUserID(c)
	p := &models.BlogPost{
		ID:         uuid.New(),
		AuthorID:   &author,
		Title:      req.Title,
		Slug:       req.Slug,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		Category:   req.Category,
		CoverImage: req.CoverImage,
		Published:  req.Published,
	}
	if p.Published {
		now := time.Now().UTC()
		p.PublishedAt = &now
	}

	err := h.store.Blog().CreatePost(c.Request.Context(), p)
	if errors.Is(err, models.ErrAlreadyExists) {
		c.JSON(http.StatusConflict, gin.H{"error": "slug already in use"})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}
