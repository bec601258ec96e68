package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>cautious-couscous — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the collaborative document endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "cautious-couscous", "version": "v1.1" },
  "paths": {
    "/new": {
      "get": { "summary": "Create an empty document and redirect to its editor path", "responses": { "302": { "description": "redirect to /doc/{id}" } } }
    },
    "/api/documents": {
      "post": { "summary": "Create a document", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"}}}}}}, "responses": { "201": { "description": "id and title of the new document" } } }
    },
    "/api/documents/{id}": {
      "get": { "summary": "Document meta and current content", "responses": { "200": { "description": "document" }, "404": { "description": "unknown id" } } }
    },
    "/api/documents/{id}/stream": {
      "get": { "summary": "Attach to the document room (SSE). First event is the session id; then assignedAlias, docMeta, update, participants and activitySnapshot events.", "responses": { "200": { "description": "event stream" } } }
    },
    "/api/sessions/{id}/edit": {
      "post": { "summary": "Replace the document content from a live session", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"content":{"type":"string"}}}}}}, "responses": { "202": { "description": "edit accepted" }, "404": { "description": "unknown session" } } }
    },
    "/export/{id}": {
      "get": { "summary": "Download the document as a .pntn transcript", "responses": { "200": { "description": "transcript text" }, "404": { "description": "unknown id" } } }
    },
    "/import": {
      "post": { "summary": "Import a .pntn transcript (multipart field pntnfile)", "responses": { "200": { "description": "success with the new docId" }, "400": { "description": "invalid file" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
