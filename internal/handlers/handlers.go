// Package handlers exposes the HTTP API on gin.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/auth"
	"github.com/atharvakonge/portfolio-ledger/internal/ledger"
	"github.com/atharvakonge/portfolio-ledger/internal/logging"
	"github.com/atharvakonge/portfolio-ledger/internal/media"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
	"github.com/atharvakonge/portfolio-ledger/internal/quotes"
	"github.com/atharvakonge/portfolio-ledger/internal/storage"
)

// Handler carries the services every endpoint needs.
type Handler struct {
	store  storage.Manager
	ledger *ledger.Service
	auth   *auth.Service
	quotes quotes.Batcher
	jobs   *quotes.JobQueue
	media  *media.Store
	logger *logging.Logger
}

// Deps lists the collaborators of a Handler.
type Deps struct {
	Store  storage.Manager
	Ledger *ledger.Service
	Auth   *auth.Service
	Quotes quotes.Batcher
	Jobs   *quotes.JobQueue
	Media  *media.Store
	Logger *logging.Logger
}

func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = logging.NewSilent()
	}
	return &Handler{
		store:  d.Store,
		ledger: d.Ledger,
		auth:   d.Auth,
		quotes: d.Quotes,
		jobs:   d.Jobs,
		media:  d.Media,
		logger: logger.Component("http"),
	}
}

// writeError maps service errors to status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "Internal server error"

	switch {
	case errors.Is(err, ledger.ErrInvalidTransaction):
		status, msg = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, models.ErrNotFound):
		status, msg = http.StatusNotFound, "Not found"
	case errors.Is(err, models.ErrConflict):
		status, msg = http.StatusConflict, "Concurrent modification, retry the request"
	case errors.Is(err, models.ErrAlreadyExists):
		status, msg = http.StatusConflict, "Already exists"
	case errors.Is(err, auth.ErrEmailTaken):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrInvalidToken):
		c.Header("WWW-Authenticate", "Bearer")
		status, msg = http.StatusUnauthorized, auth.ErrInvalidToken.Error()
	case errors.Is(err, auth.ErrInactiveUser):
		c.Header("WWW-Authenticate", "Bearer")
		status, msg = http.StatusUnauthorized, auth.ErrInactiveUser.Error()
	}

	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("correlation_id", c.Writer.Header().Get(correlationHeader)).
			Msg("Request failed")
	}
	c.JSON(status, gin.H{"error": msg})
}

// bind decodes the JSON body, answering 422 on failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// paramID parses a UUID path parameter. A malformed id cannot name an
// existing row, so it reads as 404.
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return uuid.Nil, false
	}
	return id, true
}

func currentUserID(c *gin.Context) uuid.UUID {
	return auth.CurrentUser(c).ID
}
