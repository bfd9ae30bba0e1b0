package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// ListTransactions handles GET /api/v1/transactions?asset_id=
func (h *Handler) ListTransactions(c *gin.Context) {
	var assetID *uuid.UUID
	if raw := c.Query("asset_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid asset_id"})
			return
		}
		assetID = &id
	}

	txs, err := h.store.Assets().ListTransactions(c.Request.Context(), currentUserID(c), assetID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	c.JSON(http.StatusOK, txs)
}

// CreateTransaction handles POST /api/v1/transactions
func (h *Handler) CreateTransaction(c *gin.Context) {
	var req models.TransactionCreate
	if !bind(c, &req) {
		return
	}

	t, err := h.ledger.RecordTransaction(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *Handler) GetTransaction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	t, err := h.store.Assets().GetTransaction(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// UpdateTransaction handles PATCH /api/v1/transactions/:id
func (h *Handler) UpdateTransaction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.TransactionUpdate
	if !bind(c, &req) {
		return
	}

	t, err := h.ledger.ModifyTransaction(c.Request.Context(), currentUserID(c), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *Handler) DeleteTransaction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.ledger.RemoveTransaction(c.Request.Context(), currentUserID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
