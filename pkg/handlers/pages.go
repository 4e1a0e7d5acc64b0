package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"folio/pkg/models"
	"folio/pkg/render"
	"folio/pkg/seo"
	"folio/pkg/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) Home(c *gin.Context) {
	sections := h.Renderer().Home(c.Request.Context())
	c.HTML(http.StatusOK, "home.html", gin.H{
		"Layout":   h.layout(c, "", ""),
		"Sections": sections,
	})
}

// Section serves a top-level section page or a content list page.
func (h *Handler) Section(c *gin.Context) {
	rt, ok := h.lookup(c.Param("section"))
	if !ok {
		h.NoRoute(c)
		return
	}
	if rt.page {
		h.page(c, rt)
		return
	}
	h.list(c, rt)
}

func (h *Handler) page(c *gin.Context, rt route) {
	body := h.Renderer().Page(c.Request.Context(), rt.node)
	c.HTML(http.StatusOK, "page.html", gin.H{
		"Layout": h.layout(c, rt.title, ""),
		"Body":   body,
	})
}

func (h *Handler) list(c *gin.Context, rt route) {
	ct := rt.ct
	var q services.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		zap.L().Debug("ignoring malformed list query", zap.Error(err))
	}

	ix, err := h.store.Index(c.Request.Context(), ct.Name)
	if err != nil {
		h.errorPage(c, http.StatusInternalServerError, fmt.Errorf("could not load %s: %w", rt.title, err))
		return
	}
	res := services.Query(ix, q)

	st := settings(c)
	if v := c.Query("view"); v != "" {
		if mode, ok := models.ParseViewMode(v); ok {
			if err := st.SetViewMode(ct.Name, mode); err != nil {
				zap.L().Warn("failed to persist view mode", zap.Error(err))
			}
		}
	}
	mode := st.ViewMode(ct.Name)

	r := h.Renderer()
	items := make([]render.ItemView, 0, len(res.Items))
	for i := range res.Items {
		items = append(items, r.RenderItem(ct, &res.Items[i], mode.ItemView()))
	}

	c.HTML(http.StatusOK, "list.html", gin.H{
		"Layout":      h.layout(c, rt.title, ""),
		"ContentType": ct.Name,
		"Path":        "/" + ct.RoutePath(),
		"RawQuery":    c.Request.URL.Query(),
		"Query":       q,
		"Years":       res.Years,
		"Mode":        mode,
		"Items":       items,
		"Total":       res.Total,
	})
}

// Detail serves the page of one content item.
func (h *Handler) Detail(c *gin.Context) {
	rt, ok := h.lookup(c.Param("section"))
	if !ok || rt.page {
		h.NoRoute(c)
		return
	}
	ct := rt.ct
	ctx := c.Request.Context()
	listURL := "/" + ct.RoutePath()

	item, err := h.store.Item(ctx, ct.Name, c.Param("id"))
	if errors.Is(err, services.ErrItemNotFound) {
		h.notFound(c, fmt.Sprintf("No entry %q in %s.", c.Param("id"), rt.title), listURL, "Back to "+rt.title)
		return
	}
	if err != nil {
		h.errorPage(c, http.StatusInternalServerError, fmt.Errorf("could not load %s: %w", rt.title, err))
		return
	}

	view := h.Renderer().RenderItem(ct, &item, models.ViewDetail)
	var body template.HTML
	if src, ok := h.store.DetailMarkdown(ctx, ct, &item); ok {
		body = h.md.RenderSafe(src)
	}

	l := h.layout(c, item.Title, item.Summary())
	if ct.StaticPages {
		baseURL := h.store.Site().Site.BaseURL
		l.Meta = seo.CitationMeta(baseURL, &item)
		if js, err := seo.ScholarlyArticle(baseURL, render.ItemURL(ct, &item), &item); err == nil {
			l.JSONLD = js
		} else {
			zap.L().Warn("json-ld failed", zap.String("id", item.ID), zap.Error(err))
		}
	}

	c.HTML(http.StatusOK, "detail.html", gin.H{
		"Layout":    l,
		"Item":      view,
		"Body":      body,
		"ListURL":   listURL,
		"ListTitle": rt.title,
	})
}

// NoRoute resolves short URLs and otherwise renders the not-found page.
func (h *Handler) NoRoute(c *gin.Context) {
	path := strings.Trim(c.Request.URL.Path, "/")
	if target, ok := h.redirectTarget(c, path); ok {
		c.Redirect(http.StatusFound, target)
		return
	}
	h.notFound(c, "The page you are looking for does not exist.", "", "")
}

// redirectTarget checks configured redirects, then item short URLs.
func (h *Handler) redirectTarget(c *gin.Context, path string) (string, bool) {
	if path == "" {
		return "", false
	}
	site := h.store.Site()
	for from, to := range site.Redirects {
		if strings.Trim(from, "/") == path {
			return to, true
		}
	}

	names := make([]string, 0, len(site.ContentTypes))
	for name := range site.ContentTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ct, _ := site.ContentType(name)
		items, err := h.store.Items(c.Request.Context(), name)
		if err != nil {
			zap.L().Debug("skipping content type for short urls", zap.String("type", name), zap.Error(err))
			continue
		}
		for i := range items {
			if items[i].ShortURL != "" && strings.Trim(items[i].ShortURL, "/") == path {
				return render.ItemURL(ct, &items[i]), true
			}
		}
	}
	return "", false
}

// SetTheme stores the visitor's theme and returns to the submitting page.
func (h *Handler) SetTheme(c *gin.Context) {
	theme := services.Theme(c.PostForm("theme"))
	if err := settings(c).SetTheme(theme); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	back := c.PostForm("return")
	if !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") {
		back = "/"
	}
	c.Redirect(http.StatusSeeOther, back)
}
