package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/skill-tracker/internal/blob"
	"github.com/SAP-F-2025/skill-tracker/internal/utils"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

// maxUploadSize bounds a single multipart upload.
const maxUploadSize = 20 << 20

// BlobStore is the part of *blob.Storage the upload endpoints use.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, contentType, suggestedName string) (blob.UploadResult, error)
	Download(ctx context.Context, path string) ([]byte, error)
	PublicURL(path string) string
}

type UploadHandler struct {
	BaseHandler
	store BlobStore
}

func NewUploadHandler(store BlobStore, v *validator.Validator, logger utils.Logger) *UploadHandler {
	return &UploadHandler{
		BaseHandler: NewBaseHandler(logger, v),
		store:       store,
	}
}

type UploadResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Upload stores a multipart "file" field and returns its stored path, to be
// referenced from materials, banners and chat messages.
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing file", Details: err.Error()})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.handleServiceError(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.handleServiceError(c, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(data).String()
	}

	res, err := h.store.Upload(c.Request.Context(), data, contentType, fh.Filename)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, UploadResponse{
		Path: res.Path,
		URL:  h.store.PublicURL(res.Path),
		Name: fh.Filename,
		Type: contentType,
	})
}

// Download serves a stored blob.
// @Router /files/{path} [get]
func (h *UploadHandler) Download(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("path"), "/")
	data, err := h.store.Download(c.Request.Context(), path)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}
