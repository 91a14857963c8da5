package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linglong/blog-admin/internal/config"
	"github.com/linglong/blog-admin/pkg/logger"
	"github.com/linglong/blog-admin/pkg/middleware"
)

// maxAssetSize caps a single upload at 20 MiB.
const maxAssetSize = 20 << 20

// Uploader stores an asset and returns a URL the post frontmatter can
// reference. Implemented by the object storage client; faked in tests.
type Uploader interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// AssetsHandler accepts multipart uploads for post covers and images.
type AssetsHandler struct {
	cfg      *config.Config
	uploader Uploader
}

func NewAssetsHandler(cfg *config.Config, u Uploader) *AssetsHandler {
	return &AssetsHandler{cfg: cfg, uploader: u}
}

func (h *AssetsHandler) Register(r *gin.Engine) {
	r.POST("/api/admin/assets", middleware.AuthMiddleware(h.cfg), h.Upload)
}

func (h *AssetsHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		respond(c, http.StatusBadRequest, "multipart field 'file' is required", nil)
		return
	}
	if fh.Size > maxAssetSize {
		respond(c, http.StatusRequestEntityTooLarge, "file too large", nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		respond(c, http.StatusInternalServerError, "failed to read upload", nil)
		return
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key, err := h.uploader.Upload(c.Request.Context(), fh.Filename, f, fh.Size, contentType)
	if err != nil {
		logger.Errorf("asset upload failed: %v", err)
		respond(c, http.StatusInternalServerError, "upload failed", nil)
		return
	}

	link, err := h.uploader.PresignedURL(c.Request.Context(), key, 7*24*time.Hour)
	if err != nil {
		logger.Errorf("presigning asset %q failed: %v", key, err)
		// the object is stored; hand back the key without a link
		respond(c, http.StatusCreated, "uploaded", gin.H{"key": key})
		return
	}
	respond(c, http.StatusCreated, "uploaded", gin.H{"key": key, "url": link})
}
