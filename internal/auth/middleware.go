package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

const userKey = "auth.user"

// RequireUser rejects requests without a valid bearer access token and
// stores the authenticated user on the context.
func RequireUser(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			unauthorized(c, "not authenticated")
			return
		}

		u, err := svc.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidToken):
				unauthorized(c, ErrInvalidToken.Error())
			case errors.Is(err, ErrInactiveUser):
				unauthorized(c, ErrInactiveUser.Error())
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
			}
			return
		}

		c.Set(userKey, u)
		c.Next()
	}
}

// RequireSuperuser must run after RequireUser.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := CurrentUser(c); u == nil || !u.IsSuperuser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not enough privileges"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireUser, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
