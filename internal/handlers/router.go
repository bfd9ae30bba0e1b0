package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atharvakonge/portfolio-ledger/internal/auth"
	"github.com/atharvakonge/portfolio-ledger/internal/config"
)

// devOrigins are allowed in addition to the configured ones outside production.
var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handler, cfg *config.Config) *gin.Engine {
	origins := append([]string{}, cfg.Server.CORSOrigins...)
	if !cfg.IsProduction() {
		origins = append(origins, devOrigins...)
	}

	router := gin.New()
	router.Use(CorrelationID())
	router.Use(Recovery(h.logger))
	router.Use(RequestLogger(h.logger))
	router.Use(CORS(origins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.media != nil {
		router.Static(h.media.URL(), h.media.Root())
	}

	api := router.Group("/api/v1")
	api.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": "v1", "message": "Portfolio ledger API is running"})
	})

	// Public routes
	api.POST("/auth/register", h.Register)
	api.POST("/auth/token", h.Login)
	api.POST("/auth/refresh", h.Refresh)
	api.POST("/auth/request-password-reset", h.RequestPasswordReset)
	api.POST("/auth/reset-password", h.ResetPassword)
	api.GET("/blog", h.ListPosts)
	api.GET("/blog/:slug", h.GetPost)
	api.GET("/suggestions", h.ListSuggestions)
	// Browsers cannot set Authorization on a websocket upgrade.
	api.GET("/quotes/jobs/:id/ws", h.StreamQuoteJob)

	authed := api.Group("", auth.RequireUser(h.auth))
	{
		authed.POST("/auth/change-password", h.ChangePassword)

		authed.GET("/profile/me", h.GetProfile)
		authed.PATCH("/profile/me", h.UpdateProfile)
		authed.POST("/profile/me/avatar", h.UploadAvatar)

		authed.GET("/assets", h.ListAssets)
		authed.POST("/assets", h.CreateAsset)
		authed.GET("/assets/:id", h.GetAsset)
		authed.PATCH("/assets/:id", h.UpdateAsset)
		authed.DELETE("/assets/:id", h.DeleteAsset)

		authed.GET("/transactions", h.ListTransactions)
		authed.POST("/transactions", h.CreateTransaction)
		authed.GET("/transactions/:id", h.GetTransaction)
		authed.PATCH("/transactions/:id", h.UpdateTransaction)
		authed.DELETE("/transactions/:id", h.DeleteTransaction)

		authed.GET("/dashboard/summary", h.DashboardSummary)
		authed.GET("/dashboard/allocation", h.DashboardAllocation)

		authed.POST("/blog", auth.RequireSuperuser(), h.CreatePost)

		authed.POST("/suggestions", h.CreateSuggestion)
		authed.POST("/suggestions/:id/vote", h.VoteSuggestion)

		authed.POST("/quotes/batch", h.BatchQuotes)
		authed.POST("/quotes/jobs", h.SubmitQuoteJob)
		authed.GET("/quotes/jobs/:id", h.QuoteJobStatus)
	}

	return router
}
