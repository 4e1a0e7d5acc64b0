package handlers

import (
	"html/template"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"

	"folio/pkg/models"
	"folio/pkg/render"
	"folio/pkg/seo"
	"folio/pkg/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the portfolio pages and the content API.
type Handler struct {
	store    *services.ContentStore
	md       *services.Markdown
	mediaDir string
	renderer atomic.Pointer[render.Renderer]
}

func New(store *services.ContentStore, md *services.Markdown, mediaDir string) *Handler {
	h := &Handler{store: store, md: md, mediaDir: mediaDir}
	h.Reload()
	return h
}

// Reload rebuilds the section tree from the store's current site configuration.
func (h *Handler) Reload() {
	h.renderer.Store(render.NewRenderer(h.store.Site(), h.store, h.md))
}

func (h *Handler) Renderer() *render.Renderer {
	return h.renderer.Load()
}

func (h *Handler) Store() *services.ContentStore {
	return h.store
}

type navLink struct {
	Title  string
	URL    string
	Active bool
}

// layoutData feeds the shared header and footer.
type layoutData struct {
	Site        models.SiteInfo
	Nav         []navLink
	Title       string
	Description string
	Canonical   string
	Path        string
	Theme       services.Theme
	Meta        []seo.Meta
	JSONLD      template.JS
}

func settings(c *gin.Context) *services.Settings {
	return services.NewSettings(services.SessionStore{Session: sessions.Default(c)})
}

func (h *Handler) layout(c *gin.Context, title, description string) *layoutData {
	site := h.store.Site()
	if description == "" {
		description = site.Site.Description
	}
	l := &layoutData{
		Site:        site.Site,
		Title:       title,
		Description: seo.Shorten(description, seo.MaxShortLength),
		Path:        c.Request.URL.RequestURI(),
		Theme:       settings(c).Theme(),
	}
	if site.Site.BaseURL != "" {
		l.Canonical = seo.AbsoluteURL(site.Site.BaseURL, c.Request.URL.Path)
	}
	current := c.Request.URL.Path
	tree := h.Renderer().Tree()
	for _, id := range tree.Roots() {
		s := tree.Node(id).Section
		if s.RoutePath() == "" {
			continue
		}
		url := "/" + s.RoutePath()
		l.Nav = append(l.Nav, navLink{
			Title:  h.sectionTitle(s),
			URL:    url,
			Active: current == url || strings.HasPrefix(current, url+"/"),
		})
	}
	return l
}

func (h *Handler) sectionTitle(s models.Section) string {
	if s.Title != "" {
		return s.Title
	}
	if s.ContentType != "" {
		if ct, ok := h.store.Site().ContentType(s.ContentType); ok && ct.Title != "" {
			return ct.Title
		}
	}
	return render.Humanize(s.ID)
}

func contentTitle(ct models.ContentTypeConfig) string {
	if ct.Title != "" {
		return ct.Title
	}
	return render.Humanize(ct.Name)
}

// route is what the first path segment of a request resolves to.
type route struct {
	node  render.NodeID
	page  bool
	ct    models.ContentTypeConfig
	title string
}

// lookup resolves path against top-level section routes, then content type routes.
func (h *Handler) lookup(path string) (route, bool) {
	site := h.store.Site()
	tree := h.Renderer().Tree()
	if id, ok := tree.RootByPath(path); ok {
		s := tree.Node(id).Section
		if s.ContentType != "" {
			if ct, ok := site.ContentType(s.ContentType); ok {
				return route{ct: ct, title: h.sectionTitle(s)}, true
			}
		}
		return route{node: id, page: true, title: h.sectionTitle(s)}, true
	}
	names := make([]string, 0, len(site.ContentTypes))
	for name := range site.ContentTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ct, _ := site.ContentType(name)
		if ct.RoutePath() == path {
			return route{ct: ct, title: contentTitle(ct)}, true
		}
	}
	return route{}, false
}

func (h *Handler) notFound(c *gin.Context, message, backURL, backLabel string) {
	if backURL == "" {
		backURL, backLabel = "/", "Return home"
	}
	c.HTML(http.StatusNotFound, "notfound.html", gin.H{
		"Layout":    h.layout(c, "Not found", ""),
		"Message":   message,
		"BackURL":   backURL,
		"BackLabel": backLabel,
	})
}

func (h *Handler) errorPage(c *gin.Context, status int, err error) {
	zap.L().Error("page failed",
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.Error(err))
	c.HTML(status, "error.html", gin.H{
		"Layout":  h.layout(c, "Error", ""),
		"Message": err.Error(),
	})
}
