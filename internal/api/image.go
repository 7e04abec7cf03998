package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recetario/backend/internal/apperr"
	"github.com/pageza/recetario/backend/internal/storage"
)

// ImageHandler serves images from the in-process store, for runs without
// a bucket.
type ImageHandler struct {
	images *storage.Memory
}

func NewImageHandler(images *storage.Memory) *ImageHandler {
	return &ImageHandler{images: images}
}

func (h *ImageHandler) Serve(c *gin.Context) {
	data, contentType, ok := h.images.Get("images/" + c.Param("name"))
	if !ok {
		_ = c.Error(fmt.Errorf("image %s: %w", c.Param("name"), apperr.ErrNotFound))
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, contentType, data)
}
