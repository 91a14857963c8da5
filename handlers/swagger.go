package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>blog-admin — Swagger</title>
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

// Minimal OpenAPI document describing the admin API surface.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "blog-admin", "version": "v0.1.0" },
  "paths": {
    "/token": {
      "post": {
        "summary": "Login with admin credentials",
        "requestBody": { "content": { "application/x-www-form-urlencoded": { "schema": {"type":"object","properties":{"username":{"type":"string"},"password":{"type":"string"}},"required":["username","password"]}}}},
        "responses": { "200": { "description": "access token returned" }, "401": { "description": "bad credentials" }, "429": { "description": "account locked, see Retry-After" } }
      }
    },
    "/logout": {
      "post": { "summary": "Revoke the presented access token", "responses": { "200": { "description": "logged out" }, "401": { "description": "invalid token" } } }
    },
    "/api/admin/posts": {
      "get": { "summary": "List post metadata, newest first", "responses": { "200": { "description": "metadata list" } } },
      "post": {
        "summary": "Create a post",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"},"content":{"type":"string"},"published":{"type":"string"},"tags":{"type":"array","items":{"type":"string"}},"draft":{"type":"boolean"}},"required":["title","content"]}}}},
        "responses": { "201": { "description": "created" }, "400": { "description": "validation failed" } }
      }
    },
    "/api/admin/posts/{slug}": {
      "get": { "summary": "Read a full post", "responses": { "200": { "description": "post" }, "404": { "description": "not found" } } },
      "put": { "summary": "Replace a post", "responses": { "200": { "description": "updated" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a post", "responses": { "200": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/api/admin/rebuild": {
      "post": { "summary": "Trigger a site rebuild", "responses": { "200": { "description": "rebuilt" }, "500": { "description": "build failed" } } }
    },
    "/api/admin/assets": {
      "post": { "summary": "Upload an asset (multipart field 'file')", "responses": { "201": { "description": "stored" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
