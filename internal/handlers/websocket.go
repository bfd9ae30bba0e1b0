package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// jobPollInterval is how often a connected client's job status is checked.
var jobPollInterval = 500 * time.Millisecond

const wsWriteWait = 5 * time.Second

// WebSocket upgrader. CORS is enforced by the middleware for XHR. Job ids are
// random and unguessable, so any origin may stream one.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamQuoteJob handles GET /api/v1/quotes/jobs/:id/ws, pushing the job
// status every time it changes and closing once it is terminal.
func (h *Handler) StreamQuoteJob(c *gin.Context) {
	id := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("task_id", id).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	// The client never sends anything. Reading surfaces its close frame.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(jobPollInterval)
	defer ticker.Stop()

	var last models.JobStatus
	for {
		st := h.jobs.Status(id)
		if st.Status != last {
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(st); err != nil {
				h.logger.Debug().Err(err).Str("task_id", id).Msg("WebSocket write failed")
				return
			}
			last = st.Status
		}
		if st.Status.Terminal() {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(st.Status))
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
			return
		}

		select {
		case <-ticker.C:
		case <-gone:
			return
		}
	}
}
