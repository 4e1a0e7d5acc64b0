package handlers

import (
	"net/http"
	"os"
	"strings"

	"folio/pkg/services"

	"github.com/gin-gonic/gin"
)

// ServeMedia serves files under the media directory.
func (h *Handler) ServeMedia(c *gin.Context) {
	targetPath := strings.TrimPrefix(c.Param("filepath"), "/")
	if targetPath == "" || h.mediaDir == "" {
		h.NoRoute(c)
		return
	}

	fullPath := services.SafeJoin(h.mediaDir, "", targetPath)
	if fullPath == "" {
		c.Status(http.StatusBadRequest)
		return
	}
	if info, err := os.Stat(fullPath); err != nil || info.IsDir() {
		h.NoRoute(c)
		return
	}
	c.File(fullPath)
}
