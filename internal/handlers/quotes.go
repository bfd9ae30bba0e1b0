package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
	"github.com/atharvakonge/portfolio-ledger/internal/quotes"
)

// bindQuoteInputs decodes a non-empty list of quote inputs.
func bindQuoteInputs(c *gin.Context) ([]models.QuoteInput, bool) {
	var inputs []models.QuoteInput
	if !bind(c, &inputs) {
		return nil, false
	}
	if len(inputs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one quote is required"})
		return nil, false
	}
	return inputs, true
}

// BatchQuotes handles POST /api/v1/quotes/batch
func (h *Handler) BatchQuotes(c *gin.Context) {
	inputs, ok := bindQuoteInputs(c)
	if !ok {
		return
	}
	out := h.quotes.FetchAll(c.Request.Context(), inputs)
	if out == nil {
		out = []models.Quote{}
	}
	c.JSON(http.StatusOK, out)
}

// SubmitQuoteJob handles POST /api/v1/quotes/jobs
func (h *Handler) SubmitQuoteJob(c *gin.Context) {
	inputs, ok := bindQuoteInputs(c)
	if !ok {
		return
	}

	id, err := h.jobs.Submit(inputs)
	if errors.Is(err, quotes.ErrQueueFull) || errors.Is(err, quotes.ErrQueueClosed) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.QuoteJobResponse{TaskID: id})
}

// QuoteJobStatus handles GET /api/v1/quotes/jobs/:id
func (h *Handler) QuoteJobStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.jobs.Status(c.Param("id")))
}
