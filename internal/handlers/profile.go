package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atharvakonge/portfolio-ledger/internal/media"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// GetProfile handles GET /api/v1/profile/me
func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.store.Users().GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProfile handles PATCH /api/v1/profile/me
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if !bind(c, &req) {
		return
	}

	p, err := h.store.Users().UpdateProfile(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UploadAvatar handles POST /api/v1/profile/me/avatar
func (h *Handler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer f.Close()

	userID := currentUserID(c)
	url, err := h.media.SaveAvatar(userID, fh.Header.Get("Content-Type"), f)
	switch {
	case errors.Is(err, media.ErrUnsupportedType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file format"})
		return
	case errors.Is(err, media.ErrTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds the size limit"})
		return
	case err != nil:
		h.writeError(c, err)
		return
	}

	if _, err := h.store.Users().UpdateProfile(c.Request.Context(), userID, models.ProfileUpdate{AvatarURL: &url}); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}
