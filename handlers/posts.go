package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linglong/blog-admin/internal/config"
	"github.com/linglong/blog-admin/internal/posts"
	"github.com/linglong/blog-admin/pkg/middleware"
)

// PostsHandler exposes the content CRUD and rebuild endpoints. All
// routes require a valid bearer token.
type PostsHandler struct {
	cfg   *config.Config
	store *posts.Store
}

func NewPostsHandler(cfg *config.Config, store *posts.Store) *PostsHandler {
	return &PostsHandler{cfg: cfg, store: store}
}

func (h *PostsHandler) Register(r *gin.Engine) {
	admin := r.Group("/api/admin", middleware.AuthMiddleware(h.cfg))
	{
		admin.GET("/posts", h.List)
		admin.POST("/posts", h.Create)
		admin.GET("/posts/:slug", h.Get)
		admin.PUT("/posts/:slug", h.Update)
		admin.DELETE("/posts/:slug", h.Delete)
		admin.POST("/rebuild", h.Rebuild)
	}
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"success": status < 400, "message": message, "data": data})
}

// mutationMessage folds the rebuild outcome into the response. The
// mutation itself succeeded either way, so a failed build downgrades to
// a warning instead of an error status.
func mutationMessage(verb string, res *posts.Result) string {
	if res.BuildErr != nil {
		return fmt.Sprintf("Post %s but site rebuild failed: %v", verb, res.BuildErr)
	}
	return fmt.Sprintf("Post %s successfully", verb)
}

func (h *PostsHandler) List(c *gin.Context) {
	metas, err := h.store.ListMetadata()
	if err != nil {
		respond(c, http.StatusInternalServerError, "failed to list posts", nil)
		return
	}
	respond(c, http.StatusOK, "", metas)
}

func (h *PostsHandler) Get(c *gin.Context) {
	post, ok := h.store.GetBySlug(c.Param("slug"))
	if !ok {
		respond(c, http.StatusNotFound, "post not found", nil)
		return
	}
	respond(c, http.StatusOK, "", post)
}

func (h *PostsHandler) Create(c *gin.Context) {
	var p posts.Post
	if err := c.ShouldBindJSON(&p); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	res, err := h.store.Create(c.Request.Context(), &p)
	if err != nil {
		h.mutationError(c, err)
		return
	}
	respond(c, http.StatusCreated, mutationMessage("created", res), gin.H{"slug": res.Slug})
}

func (h *PostsHandler) Update(c *gin.Context) {
	var p posts.Post
	if err := c.ShouldBindJSON(&p); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	res, err := h.store.Update(c.Request.Context(), c.Param("slug"), &p)
	if err != nil {
		h.mutationError(c, err)
		return
	}
	respond(c, http.StatusOK, mutationMessage("updated", res), gin.H{"slug": res.Slug})
}

func (h *PostsHandler) Delete(c *gin.Context) {
	res, err := h.store.Delete(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.mutationError(c, err)
		return
	}
	respond(c, http.StatusOK, mutationMessage("deleted", res), gin.H{"slug": res.Slug})
}

// Rebuild triggers the site build without a content change, for
// recovering from a previously failed build.
func (h *PostsHandler) Rebuild(c *gin.Context) {
	if err := h.store.Rebuild(c.Request.Context()); err != nil {
		respond(c, http.StatusInternalServerError, fmt.Sprintf("site rebuild failed: %v", err), nil)
		return
	}
	respond(c, http.StatusOK, "site rebuilt", nil)
}

func (h *PostsHandler) mutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, posts.ErrValidation):
		respond(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, posts.ErrNotFound):
		respond(c, http.StatusNotFound, err.Error(), nil)
	default:
		respond(c, http.StatusInternalServerError, "operation failed", nil)
	}
}
