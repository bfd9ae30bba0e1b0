package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atharvakonge/portfolio-ledger/internal/auth"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// Register handles POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req models.UserCreate
	if !bind(c, &req) {
		return
	}

	u, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// loginForm is the OAuth2 password grant form.
type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// Login handles POST /api/v1/auth/token
func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), form.Username, form.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	case errors.Is(err, auth.ErrInactiveUser):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if !bind(c, &req) {
		return
	}

	token, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// RequestPasswordReset handles POST /api/v1/auth/request-password-reset
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req models.PasswordResetRequest
	if !bind(c, &req) {
		return
	}

	token, err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PasswordResetResponse{ResetToken: token})
}

// ResetPassword handles POST /api/v1/auth/reset-password
func (h *Handler) ResetPassword(c *gin.Context) {
	var req models.PasswordResetPayload
	if !bind(c, &req) {
		return
	}

	token, err := h.auth.ResetPassword(c.Request.Context(), req.ResetToken, req.NewPassword)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// ChangePassword handles POST /api/v1/auth/change-password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req models.PasswordChangePayload
	if !bind(c, &req) {
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), auth.CurrentUser(c), req.CurrentPassword, req.NewPassword)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current password is incorrect"})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
