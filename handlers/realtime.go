package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coffeetron832/cautious-couscous/internal/collab"
)

// RealtimeHandler adapts the transport-agnostic collab manager to HTTP:
// outbound room events are delivered over an SSE stream, inbound edits
// arrive as plain POSTs referencing the session id announced on the stream.
type RealtimeHandler struct {
	mgr *collab.Manager
}

func RegisterRealtimeRoutes(r *gin.Engine, mgr *collab.Manager) {
	h := &RealtimeHandler{mgr: mgr}

	r.GET("/api/documents/:id/stream", h.Stream)
	r.POST("/api/sessions/:id/edit", h.Edit)
}

// Stream attaches a new session to the document's room and relays its
// outbound queue as SSE events. The first event carries the session id the
// client needs for posting edits. When the client goes away the disconnect
// transition runs and the room is notified.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	docID := c.Param("id")
	alias := c.Query("alias")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	s := h.mgr.Connect()
	defer h.mgr.Close(s)

	c.SSEvent(collab.EventSession, s.ID)
	c.Writer.Flush()

	h.mgr.Join(s, docID, alias)

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case msg, ok := <-s.Events():
			if !ok {
				return
			}
			c.SSEvent(msg.Event, msg.Data)
			c.Writer.Flush()
		}
	}
}

// Edit drives the edit transition for a live session. The body may carry an
// empty string; clearing the document is a valid edit.
func (h *RealtimeHandler) Edit(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, ok := h.mgr.Session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	// an edit for a session that never joined is ignored
	h.mgr.Edit(s, req.Content)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
