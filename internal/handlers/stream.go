package handlers

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/release-planner/internal/store"
)

const keepAliveInterval = 25 * time.Second

type StreamHandler struct {
	hub *store.Hub
}

func NewStreamHandler(hub *store.Hub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// Changes streams collection change events as server-sent events until the
// client goes away.
func (h *StreamHandler) Changes(c *gin.Context) {
	events, stop := h.hub.Listen()
	defer stop()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("change", ev)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}
