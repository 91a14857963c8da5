package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/linglong/blog-admin/internal/config"
	"github.com/linglong/blog-admin/internal/posts"
	"github.com/linglong/blog-admin/internal/tokens"
)

type stubBuilder struct {
	calls int
	err   error
}

func (b *stubBuilder) Rebuild(ctx context.Context) error {
	b.calls++
	return b.err
}

type postsEnv struct {
	router  *gin.Engine
	store   *posts.Store
	builder *stubBuilder
	token   string
}

func newPostsEnv(t *testing.T) *postsEnv {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "posts-handler-secret-32-bytes-xxx"

	builder := &stubBuilder{}
	store := posts.NewStore(posts.NewMemoryStorage(), builder)

	r := gin.New()
	NewPostsHandler(cfg, store).Register(r)

	tok, err := tokens.GenerateAccessToken(cfg, "admin", time.Minute)
	require.NoError(t, err)
	return &postsEnv{router: r, store: store, builder: builder, token: tok}
}

func (e *postsEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+e.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPosts_RequireAuth(t *testing.T) {
	e := newPostsEnv(t)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPosts_CreateAndGet(t *testing.T) {
	e := newPostsEnv(t)

	w := e.do(t, http.MethodPost, "/api/admin/posts", map[string]interface{}{
		"title":   "Hello World",
		"content": "# Heading\n\nBody text.",
		"tags":    []string{"go", "blog"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := envelope(t, w)
	require.Equal(t, true, body["success"])
	require.Equal(t, "Hello-World", body["data"].(map[string]interface{})["slug"])
	require.Equal(t, 1, e.builder.calls)

	w = e.do(t, http.MethodGet, "/api/admin/posts/Hello-World", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := envelope(t, w)["data"].(map[string]interface{})
	require.Equal(t, "Hello World", data["title"])
	require.Equal(t, "# Heading\n\nBody text.", data["content"])
	require.NotEmpty(t, data["published"])
}

func TestPosts_CreateValidation(t *testing.T) {
	e := newPostsEnv(t)

	w := e.do(t, http.MethodPost, "/api/admin/posts", map[string]interface{}{
		"title":   "   ",
		"content": "body",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, false, envelope(t, w)["success"])
	require.Equal(t, 0, e.builder.calls)
}

func TestPosts_List(t *testing.T) {
	e := newPostsEnv(t)
	_, err := e.store.Create(context.Background(), &posts.Post{
		Metadata: posts.Metadata{Title: "First"}, Content: "a",
	})
	require.NoError(t, err)
	_, err = e.store.Create(context.Background(), &posts.Post{
		Metadata: posts.Metadata{Title: "Second"}, Content: "b",
	})
	require.NoError(t, err)

	w := e.do(t, http.MethodGet, "/api/admin/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := envelope(t, w)["data"].([]interface{})
	require.Len(t, list, 2)
	// listing carries metadata only, no body field
	require.NotContains(t, list[0].(map[string]interface{}), "content")
}

func TestPosts_UpdateReplacesDocument(t *testing.T) {
	e := newPostsEnv(t)
	_, err := e.store.Create(context.Background(), &posts.Post{
		Metadata: posts.Metadata{Title: "Old", Description: "keep me?"}, Content: "old",
	})
	require.NoError(t, err)

	w := e.do(t, http.MethodPut, "/api/admin/posts/Old", map[string]interface{}{
		"title":   "Old",
		"content": "new body",
	})
	require.Equal(t, http.StatusOK, w.Code)

	got, ok := e.store.GetBySlug("Old")
	require.True(t, ok)
	require.Equal(t, "new body", got.Content)
	require.Empty(t, got.Description)
}

func TestPosts_UpdateMissing(t *testing.T) {
	e := newPostsEnv(t)
	w := e.do(t, http.MethodPut, "/api/admin/posts/ghost", map[string]interface{}{
		"title": "x", "content": "y",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, 0, e.builder.calls)
}

func TestPosts_Delete(t *testing.T) {
	e := newPostsEnv(t)
	_, err := e.store.Create(context.Background(), &posts.Post{
		Metadata: posts.Metadata{Title: "Gone"}, Content: "x",
	})
	require.NoError(t, err)
	e.builder.calls = 0

	w := e.do(t, http.MethodDelete, "/api/admin/posts/Gone", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, e.builder.calls)

	_, ok := e.store.GetBySlug("Gone")
	require.False(t, ok)

	w = e.do(t, http.MethodDelete, "/api/admin/posts/Gone", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPosts_BuildFailureIsAWarningNotAnError(t *testing.T) {
	e := newPostsEnv(t)
	e.builder.err = errors.New("pnpm exploded")

	w := e.do(t, http.MethodPost, "/api/admin/posts", map[string]interface{}{
		"title": "Still Saved", "content": "body",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := envelope(t, w)
	require.Equal(t, true, body["success"])
	require.Contains(t, body["message"], "rebuild failed")

	_, ok := e.store.GetBySlug("Still-Saved")
	require.True(t, ok)
}

func TestPosts_ManualRebuild(t *testing.T) {
	e := newPostsEnv(t)

	w := e.do(t, http.MethodPost, "/api/admin/rebuild", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, e.builder.calls)

	e.builder.err = errors.New("boom")
	w = e.do(t, http.MethodPost, "/api/admin/rebuild", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, false, envelope(t, w)["success"])
}
