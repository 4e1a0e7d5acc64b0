// Package build pre-renders the site into a static directory.
package build

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"folio/pkg/handlers"
	"folio/pkg/models"
	"folio/pkg/render"
	"folio/pkg/seo"
	"folio/pkg/services"
	"folio/web"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	sitemapFile    = "sitemap.xml"
	shortTextsFile = "shortened-texts.json"
	notFoundFile   = "404.html"
)

type Options struct {
	OutputDir      string
	SiteConfigPath string
	DataRoot       string
	MediaDir       string
	Concurrency    int
}

// Page is one pre-rendered route.
type Page struct {
	Path    string
	Kind    seo.PageKind
	LastMod time.Time
}

type Result struct {
	Pages      int
	Redirects  int
	ShortTexts int
	Reused     int
}

// Builder renders every route through the HTTP engine in-process.
type Builder struct {
	handler *handlers.Handler
	engine  http.Handler
	opts    Options
}

func New(h *handlers.Handler, engine http.Handler, opts Options) *Builder {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Builder{handler: h, engine: engine, opts: opts}
}

func (b *Builder) site() *models.SiteConfig {
	return b.handler.Store().Site()
}

// lastMod is the commit or modification time of a local source, zero otherwise.
func (b *Builder) lastMod(path string) time.Time {
	if path == "" || services.IsRemote(path) {
		return time.Time{}
	}
	t, err := services.LastModified(path)
	if err != nil {
		zap.L().Debug("no modification time", zap.String("path", path), zap.Error(err))
		return time.Time{}
	}
	return t
}

func (b *Builder) dataPath(source string) string {
	if services.IsRemote(source) {
		return ""
	}
	return services.SafeJoin(b.opts.DataRoot, "", source)
}

// contentTypes lists configured content types in name order.
func (b *Builder) contentTypes() []models.ContentTypeConfig {
	site := b.site()
	names := make([]string, 0, len(site.ContentTypes))
	for name := range site.ContentTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]models.ContentTypeConfig, 0, len(names))
	for _, n := range names {
		ct, _ := site.ContentType(n)
		out = append(out, ct)
	}
	return out
}

// Routes enumerates the home page, section pages, list pages and item pages. A
// content type that fails to load fails the build.
func (b *Builder) Routes(ctx context.Context) ([]Page, error) {
	configMod := b.lastMod(b.opts.SiteConfigPath)
	pages := []Page{{Path: "/", Kind: seo.PageHome, LastMod: configMod}}
	seen := map[string]bool{"/": true}
	add := func(p Page) {
		if !seen[p.Path] {
			seen[p.Path] = true
			pages = append(pages, p)
		}
	}

	tree := b.handler.Renderer().Tree()
	for _, id := range tree.Roots() {
		s := tree.Node(id).Section
		if s.RoutePath() == "" || s.ContentType != "" {
			continue
		}
		add(Page{Path: "/" + s.RoutePath(), Kind: seo.PageSection, LastMod: configMod})
	}

	for _, ct := range b.contentTypes() {
		items, err := b.handler.Store().Items(ctx, ct.Name)
		if err != nil {
			return nil, fmt.Errorf("content type %s: %w", ct.Name, err)
		}
		mod := b.lastMod(b.dataPath(ct.DataSource))
		add(Page{Path: "/" + ct.RoutePath(), Kind: seo.PageSection, LastMod: mod})
		for i := range items {
			add(Page{Path: render.ItemURL(ct, &items[i]), Kind: seo.PageItem, LastMod: mod})
		}
	}
	return pages, nil
}

// Redirects maps short paths to their targets: configured redirects and item
// short URLs.
func (b *Builder) Redirects(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	for from, to := range b.site().Redirects {
		if from = strings.Trim(from, "/"); from != "" {
			out[from] = to
		}
	}
	for _, ct := range b.contentTypes() {
		items, err := b.handler.Store().Items(ctx, ct.Name)
		if err != nil {
			return nil, err
		}
		for i := range items {
			if short := strings.Trim(items[i].ShortURL, "/"); short != "" {
				if _, dup := out[short]; dup {
					zap.L().Warn("duplicate short url", zap.String("path", short), zap.String("id", items[i].ID))
					continue
				}
				out[short] = render.ItemURL(ct, &items[i])
			}
		}
	}
	return out, nil
}

func (b *Builder) Run(ctx context.Context) (Result, error) {
	var res Result
	out := b.opts.OutputDir
	if err := os.MkdirAll(out, 0o755); err != nil {
		return res, fmt.Errorf("create output directory: %w", err)
	}

	pages, err := b.Routes(ctx)
	if err != nil {
		return res, err
	}
	zap.L().Info("rendering pages", zap.Int("pages", len(pages)), zap.Int("concurrency", b.opts.Concurrency))

	var rendered atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Concurrency)
	for _, p := range pages {
		g.Go(func() error {
			body, err := b.renderPath(gctx, p.Path, http.StatusOK)
			if err != nil {
				return err
			}
			if err := writeFile(filepath.Join(out, filepath.FromSlash(p.Path), "index.html"), body); err != nil {
				return err
			}
			rendered.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	res.Pages = int(rendered.Load())

	if body, err := b.renderPath(ctx, "/"+notFoundFile+"-missing", http.StatusNotFound); err == nil {
		if err := writeFile(filepath.Join(out, notFoundFile), body); err != nil {
			return res, err
		}
	} else {
		zap.L().Warn("could not render not-found page", zap.Error(err))
	}

	redirects, err := b.Redirects(ctx)
	if err != nil {
		return res, err
	}
	for from, to := range redirects {
		if err := writeRedirect(filepath.Join(out, filepath.FromSlash(from), "index.html"), to); err != nil {
			return res, err
		}
	}
	res.Redirects = len(redirects)

	if err := copyFS(web.Static(), filepath.Join(out, "static")); err != nil {
		return res, fmt.Errorf("copy static assets: %w", err)
	}
	if b.opts.MediaDir != "" {
		if _, err := os.Stat(b.opts.MediaDir); err == nil {
			if err := copyFS(os.DirFS(b.opts.MediaDir), filepath.Join(out, "media")); err != nil {
				return res, fmt.Errorf("copy media: %w", err)
			}
		}
	}

	if err := b.writeSitemap(pages); err != nil {
		return res, err
	}
	n, reused, err := b.writeShortTexts(ctx)
	if err != nil {
		return res, err
	}
	res.ShortTexts, res.Reused = n, reused
	return res, nil
}

// renderPath serves path through the engine and checks the status.
func (b *Builder) renderPath(ctx context.Context, path string, want int) ([]byte, error) {
	req := httptest.NewRequest(http.MethodGet, path, nil).WithContext(ctx)
	w := httptest.NewRecorder()
	b.engine.ServeHTTP(w, req)
	if w.Code != want {
		return nil, fmt.Errorf("render %s: status %d", path, w.Code)
	}
	return w.Body.Bytes(), nil
}

func (b *Builder) writeSitemap(pages []Page) error {
	sm := seo.NewSitemap(b.site().Site.BaseURL)
	for _, p := range pages {
		sm.Add(p.Path, p.Kind, p.LastMod)
	}
	f, err := os.Create(filepath.Join(b.opts.OutputDir, sitemapFile))
	if err != nil {
		return fmt.Errorf("create sitemap: %w", err)
	}
	defer f.Close()
	if _, err := sm.WriteTo(f); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}
	return nil
}

// writeShortTexts refreshes the shortened description cache, reusing entries
// whose source text is unchanged.
func (b *Builder) writeShortTexts(ctx context.Context) (int, int, error) {
	path := filepath.Join(b.opts.OutputDir, shortTextsFile)
	texts, err := seo.LoadShortTexts(path)
	if err != nil {
		zap.L().Warn("discarding unreadable short text cache", zap.Error(err))
		texts = seo.ShortTexts{}
	}
	keep := make(map[string]bool)
	reused := 0
	for _, ct := range b.contentTypes() {
		items, err := b.handler.Store().Items(ctx, ct.Name)
		if err != nil {
			return 0, 0, err
		}
		for i := range items {
			src := items[i].Summary()
			if src == "" {
				continue
			}
			key := seo.ShortTextKey(ct.Name, items[i].ID)
			keep[key] = true
			if _, ok := texts.Update(key, src); ok {
				reused++
			}
		}
	}
	texts.Prune(keep)
	if err := texts.Save(path); err != nil {
		return 0, 0, fmt.Errorf("write %s: %w", shortTextsFile, err)
	}
	return len(texts), reused, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

var redirectPage = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><title>Redirecting</title>
<meta http-equiv="refresh" content="0; url={{.}}"><link rel="canonical" href="{{.}}"></head>
<body><p>Redirecting to <a href="{{.}}">{{.}}</a>.</p></body></html>
`))

func writeRedirect(path, target string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return redirectPage.Execute(f, target)
}

// copyFS copies every regular file of src under dst.
func copyFS(src fs.FS, dst string) error {
	return fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		in, err := src.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		outFile, err := os.Create(target)
		if err != nil {
			return err
		}
		if _, err := io.Copy(outFile, in); err != nil {
			outFile.Close()
			return err
		}
		return outFile.Close()
	})
}
