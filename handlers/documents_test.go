package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/coffeetron832/cautious-couscous/internal/document"
)

func newDocumentRouter() (*gin.Engine, *document.Store) {
	g := gin.New()
	store := document.NewStore()
	RegisterDocumentRoutes(g, store, nil)
	return g, store
}

func TestCreateDocument(t *testing.T) {
	g, store := newDocumentRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(`{"title":"Apuntes"}`))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var cr map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cr))
	require.NotEmpty(t, cr["id"])
	require.Equal(t, "Apuntes", cr["title"])

	d, err := store.Get(cr["id"])
	require.NoError(t, err)
	require.Equal(t, "Apuntes", d.Title)
}

func TestCreateDocumentWithoutBody(t *testing.T) {
	g, _ := newDocumentRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", nil)
	g.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), document.DefaultTitle)
}

func TestNewRedirects(t *testing.T) {
	g, store := newDocumentRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/new", nil)
	g.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	loc := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/doc/"))
	_, err := store.Get(strings.TrimPrefix(loc, "/doc/"))
	require.NoError(t, err)
}

func TestGetDocument(t *testing.T) {
	g, store := newDocumentRouter()
	d := document.New(document.NewID())
	d.Title = "Notas"
	d.SetContent("hola")
	store.Put(d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/documents/"+d.ID, nil)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Notas")
	require.Contains(t, w.Body.String(), "hola")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/documents/missing", nil)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDocumentListsAliasesNotConnectionIDs(t *testing.T) {
	g, store := newDocumentRouter()
	d := document.New(document.NewID())
	d.RecordJoin("conn_abc123", "Beto")
	d.RecordJoin("conn_def456", "Ana")
	d.RecordJoin("conn_ghi789", "Ana")
	store.Put(d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/documents/"+d.ID, nil)
	g.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, `"participants":["Ana","Beto"]`)
	require.NotContains(t, body, "conn_abc123")
	require.NotContains(t, body, "conn_def456")
	require.NotContains(t, body, "conn_ghi789")
}

func TestExportDocument(t *testing.T) {
	g, store := newDocumentRouter()
	d := document.New(document.NewID())
	d.Title = "Mi Documento!"
	d.RecordJoin("c1", "Ana")
	d.SetContent("línea uno")
	store.Put(d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/export/"+d.ID, nil)
	g.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), `filename="Mi-Documento.pntn"`)
	body := w.Body.String()
	require.True(t, strings.HasPrefix(body, "#PNTN-DOC v1.1\n"))
	require.Contains(t, body, "title: Mi Documento!")
	require.Contains(t, body, "authors: Ana")
	require.Contains(t, body, "línea uno")
}

func TestExportUnknownDocument(t *testing.T) {
	g, _ := newDocumentRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/export/nope", nil)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportWithoutActivityHasPlaceholder(t *testing.T) {
	g, store := newDocumentRouter()
	d := document.New(document.NewID())
	store.Put(d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/export/"+d.ID, nil)
	g.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	_, log, found := strings.Cut(w.Body.String(), "log:\n")
	require.True(t, found)
	require.Equal(t, "(sin actividad registrada)\n", log)
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestImportDocument(t *testing.T) {
	g, store := newDocumentRouter()

	text := "#PNTN-DOC v1.1\n" +
		"title: Test\n" +
		"authors: Ana, Beto\n" +
		"created: 2026-01-15T10:30:00Z\n" +
		"---\n" +
		"line1\nline2\n" +
		"---\n" +
		"log:\n"
	body, contentType := multipartUpload(t, "pntnfile", "test.pntn", text)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", contentType)
	g.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool   `json:"success"`
		DocID   string `json:"docId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	d, err := store.Get(resp.DocID)
	require.NoError(t, err)
	snap := d.Snapshot()
	require.Equal(t, "Test", snap.Title)
	require.Equal(t, []string{"Ana", "Beto"}, snap.Authors)
	require.Equal(t, "line1\nline2", snap.Content)
}

func TestImportRejectsBadHeader(t *testing.T) {
	g, store := newDocumentRouter()

	body, contentType := multipartUpload(t, "pntnfile", "bad.pntn", "not a transcript\n---\n---\n")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", contentType)
	g.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid file")
	require.Equal(t, 0, store.Len())
}

func TestImportMissingField(t *testing.T) {
	g, _ := newDocumentRouter()

	body, contentType := multipartUpload(t, "otherfield", "x.pntn", "#PNTN-DOC v1.1\n---\n---\n")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", contentType)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportThenExportRoundTrip(t *testing.T) {
	g, _ := newDocumentRouter()

	text := "#PNTN-DOC v1.1\n" +
		"title: Ciclo\n" +
		"authors: Ana\n" +
		"created: 2026-01-15T10:30:00Z\n" +
		"---\n" +
		"contenido\n" +
		"---\n" +
		"log:\n" +
		"[2026-01-15T10:31:00Z] Ana se unió al documento\n"
	body, contentType := multipartUpload(t, "pntnfile", "ciclo.pntn", text)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", contentType)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		DocID string `json:"docId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/export/%s", resp.DocID), nil)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	out := w.Body.String()
	require.Contains(t, out, "title: Ciclo")
	require.Contains(t, out, "created: 2026-01-15T10:30:00Z")
	require.Contains(t, out, "contenido")
	// the imported raw log survives re-export verbatim
	require.Contains(t, out, "[2026-01-15T10:31:00Z] Ana se unió al documento")
}
