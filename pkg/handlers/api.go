package handlers

import (
	"errors"
	"net/http"

	"folio/pkg/services"

	"github.com/gin-gonic/gin"
)

func apiStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrContentTypeNotFound), errors.Is(err, services.ErrItemNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// ListContent returns the filtered items of a content type.
func (h *Handler) ListContent(c *gin.Context) {
	ct, err := h.store.ContentType(c.Param("type"))
	if err != nil {
		c.JSON(apiStatus(err), gin.H{"error": err.Error()})
		return
	}
	var q services.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
		return
	}
	ix, err := h.store.Index(c.Request.Context(), ct.Name)
	if err != nil {
		c.JSON(apiStatus(err), gin.H{"error": "Failed to load content: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, services.Query(ix, q))
}

func (h *Handler) GetContent(c *gin.Context) {
	item, err := h.store.Item(c.Request.Context(), c.Param("type"), c.Param("id"))
	if err != nil {
		c.JSON(apiStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// GetConfig returns the active site configuration.
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Site())
}
