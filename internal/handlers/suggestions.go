package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// ListSuggestions handles GET /api/v1/suggestions
func (h *Handler) ListSuggestions(c *gin.Context) {
	items, err := h.store.Suggestions().ListSuggestions(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if items == nil {
		items = []models.Suggestion{}
	}
	c.JSON(http.StatusOK, items)
}

// CreateSuggestion handles POST /api/v1/suggestions
func (h *Handler) CreateSuggestion(c *gin.Context) {
	var req models.SuggestionCreate
	if !bind(c, &req) {
		return
	}

	s := &models.Suggestion{
		ID:          uuid.New(),
		UserID:      currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Kind:        req.Kind,
	}
	if err := h.store.Suggestions().CreateSuggestion(c.Request.Context(), s); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// VoteSuggestion handles POST /api/v1/suggestions/:id/vote
func (h *Handler) VoteSuggestion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	err := h.store.Suggestions().Vote(c.Request.Context(), id, currentUserID(c))
	if errors.Is(err, models.ErrAlreadyExists) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "already voted"})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
