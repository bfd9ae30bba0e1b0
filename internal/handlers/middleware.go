package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/logging"
)

const correlationHeader = "X-Correlation-ID"

// Recovery catches panics and returns 500.
func Recovery(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error().
					Str("panic", fmt.Sprintf("%v", rec)).
					Str("path", c.Request.URL.Path).
					Str("correlation_id", c.Writer.Header().Get(correlationHeader)).
					Msg("Panic recovered in HTTP handler")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
		}()
		c.Next()
	}
}

// CORS allows the configured origins. An empty list allows none; "*" allows all.
func CORS(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowed["*"] || allowed[origin]) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-Correlation-ID")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// CorrelationID extracts or generates a correlation ID.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		corrID := c.GetHeader("X-Request-ID")
		if corrID == "" {
			corrID = c.GetHeader(correlationHeader)
		}
		if corrID == "" {
			corrID = uuid.New().String()[:8]
		}
		c.Header(correlationHeader, corrID)
		c.Next()
	}
}

// RequestLogger logs HTTP requests.
func RequestLogger(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Debug()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Info()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("duration", time.Since(start)).
			Str("correlation_id", c.Writer.Header().Get(correlationHeader)).
			Msg("HTTP request")
	}
}
