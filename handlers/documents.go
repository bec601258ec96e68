package handlers

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/coffeetron832/cautious-couscous/internal/archive"
	"github.com/coffeetron832/cautious-couscous/internal/document"
	"github.com/coffeetron832/cautious-couscous/internal/transcript"
	"github.com/coffeetron832/cautious-couscous/pkg/logger"
	"github.com/coffeetron832/cautious-couscous/pkg/metrics"
)

// DocumentHandler serves the request/response side of the service: document
// creation, meta lookup and transcript export/import. Live editing goes
// through the realtime handler instead.
type DocumentHandler struct {
	store *document.Store
	cache *archive.Cache // nil when Redis is not configured
}

// RegisterDocumentRoutes wires the document endpoints. cache may be nil.
func RegisterDocumentRoutes(r *gin.Engine, store *document.Store, cache *archive.Cache) {
	h := &DocumentHandler{store: store, cache: cache}

	r.GET("/new", h.NewDocument)
	r.POST("/api/documents", h.CreateDocument)
	r.GET("/api/documents/:id", h.GetDocument)
	r.GET("/export/:id", h.ExportDocument)
	r.POST("/import", h.ImportDocument)
}

// NewDocument creates an empty document and redirects to its editor path,
// the flow behind the "new document" button.
func (h *DocumentHandler) NewDocument(c *gin.Context) {
	d := document.New(document.NewID())
	h.store.Put(d)
	c.Redirect(http.StatusFound, "/doc/"+d.ID)
}

// CreateDocument accepts an optional { title } body and returns { id, title }.
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	d := document.New(document.NewID())
	if strings.TrimSpace(req.Title) != "" {
		d.Title = strings.TrimSpace(req.Title)
	}
	h.store.Put(d)
	c.JSON(http.StatusCreated, gin.H{"id": d.ID, "title": d.Title})
}

// GetDocument returns the document meta plus current content. Participants
// are exposed as the deduplicated alias list only; the underlying connection
// ids double as edit-session credentials and never leave their own stream.
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	d, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	snap := d.Snapshot()
	participants := lo.Uniq(lo.Values(snap.Participants))
	sort.Strings(participants)
	c.JSON(http.StatusOK, gin.H{
		"id":           snap.ID,
		"title":        snap.Title,
		"authors":      snap.Authors,
		"created_at":   snap.CreatedAt,
		"content":      snap.Content,
		"participants": participants,
		"settings":     snap.Settings,
	})
}

// ExportDocument renders the document as a .pntn transcript download.
func (h *DocumentHandler) ExportDocument(c *gin.Context) {
	id := c.Param("id")
	d, err := h.store.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	snap := d.Snapshot()

	var text string
	if h.cache != nil {
		if entry, err := h.cache.Load(c.Request.Context(), id, snap.Revision); err != nil {
			logger.Warnf("export cache read failed for %s: %v", id, err)
		} else if entry != nil {
			text = entry.Transcript
		}
	}
	if text == "" {
		text = transcript.Serialize(snap)
		if h.cache != nil {
			if err := h.cache.Save(c.Request.Context(), id, snap.Revision, text); err != nil {
				logger.Warnf("export cache write failed for %s: %v", id, err)
			}
		}
	}

	metrics.ExportsServed.Inc()
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pntn"`, sanitizeFilename(snap.Title)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// ImportDocument parses an uploaded .pntn file and stores it under a fresh
// id. The temporary upload is removed whether or not the parse succeeds.
func (h *DocumentHandler) ImportDocument(c *gin.Context) {
	upload, err := c.FormFile("pntnfile")
	if err != nil {
		metrics.Imports.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing pntnfile field"})
		return
	}

	tmp, err := os.CreateTemp("", "pntn-upload-*")
	if err != nil {
		metrics.Imports.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "could not store upload"})
		return
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(upload, tmpPath); err != nil {
		metrics.Imports.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "could not store upload"})
		return
	}
	raw, err := os.ReadFile(tmpPath)
	if err != nil {
		metrics.Imports.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "could not read upload"})
		return
	}

	snap, err := transcript.Parse(string(raw))
	if err != nil {
		metrics.Imports.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid file"})
		return
	}

	d := document.FromSnapshot(document.NewID(), snap)
	h.store.Put(d)
	metrics.Imports.WithLabelValues("ok").Inc()
	logger.Infof("imported transcript %q as %s", d.Title, d.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "docId": d.ID})
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func sanitizeFilename(title string) string {
	name := unsafeFilenameChars.ReplaceAllString(title, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "documento"
	}
	return name
}
