package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// DashboardSummary handles GET /api/v1/dashboard/summary
func (h *Handler) DashboardSummary(c *gin.Context) {
	summary, err := h.ledger.PortfolioSummary(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DashboardAllocation handles GET /api/v1/dashboard/allocation
func (h *Handler) DashboardAllocation(c *gin.Context) {
	items, err := h.ledger.PortfolioAllocation(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if items == nil {
		items = []models.AllocationItem{}
	}
	c.JSON(http.StatusOK, models.AllocationResponse{Items: items})
}
