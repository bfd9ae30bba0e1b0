package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atharvakonge/portfolio-ledger/internal/ledger"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// ListAssets handles GET /api/v1/assets
func (h *Handler) ListAssets(c *gin.Context) {
	assets, err := h.store.Assets().ListAssets(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if assets == nil {
		assets = []models.Asset{}
	}
	c.JSON(http.StatusOK, assets)
}

// CreateAsset handles POST /api/v1/assets
func (h *Handler) CreateAsset(c *gin.Context) {
	var req models.AssetCreate
	if !bind(c, &req) {
		return
	}
	if !req.AssetType.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid asset_type"})
		return
	}

	a := &models.Asset{
		ID:           uuid.New(),
		UserID:       currentUserID(c),
		Ticker:       req.Ticker,
		Name:         req.Name,
		AssetType:    req.AssetType,
		Sector:       req.Sector,
		Quantity:     decimal.Zero,
		AveragePrice: decimal.Zero,
		IsActive:     true,
	}
	if req.Quantity != nil {
		a.Quantity = req.Quantity.Round(ledger.StoragePlaces)
	}
	if req.AveragePrice != nil {
		a.AveragePrice = req.AveragePrice.Round(ledger.StoragePlaces)
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}

	if err := h.store.Assets().CreateAsset(c.Request.Context(), a); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// GetAsset handles GET /api/v1/assets/:id
func (h *Handler) GetAsset(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	a, err := h.store.Assets().GetAsset(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// UpdateAsset handles PATCH /api/v1/assets/:id
func (h *Handler) UpdateAsset(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.AssetUpdate
	if !bind(c, &req) {
		return
	}
	if req.AssetType != nil && !req.AssetType.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid asset_type"})
		return
	}

	a, err := h.store.Assets().UpdateAsset(c.Request.Context(), currentUserID(c), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// DeleteAsset handles DELETE /api/v1/assets/:id
func (h *Handler) DeleteAsset(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.store.Assets().DeleteAsset(c.Request.Context(), currentUserID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
