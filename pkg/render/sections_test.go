package render

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"testing"

	"folio/pkg/models"
	"folio/pkg/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func intp(i int) *int { return &i }

type stubItems struct {
	items map[string][]models.ContentItem
	err   error
}

func (s stubItems) ContentType(name string) (models.ContentTypeConfig, error) {
	if _, ok := s.items[name]; !ok {
		return models.ContentTypeConfig{}, services.ErrContentTypeNotFound
	}
	return models.ContentTypeConfig{Name: name, Title: "Publications", Path: "/publications"}, nil
}

func (s stubItems) Items(_ context.Context, name string) ([]models.ContentItem, error) {
	return s.items[name], s.err
}

func TestOrderSubsections(t *testing.T) {
	subs := models.Subsections{
		{Key: "a", Section: models.Section{}},
		{Key: "b", Section: models.Section{Order: intp(2)}},
		{Key: "c", Section: models.Section{ID: "custom"}},
		{Key: "d", Section: models.Section{Order: intp(1)}},
		{Key: "e", Section: models.Section{Order: intp(2)}},
	}
	got := OrderSubsections("root", "root", subs)
	var ids, doms []string
	for _, c := range got {
		ids = append(ids, c.Section.ID)
		doms = append(doms, c.DOMID)
		assert.Equal(t, "root", c.ParentID)
	}
	assert.Equal(t, []string{"d", "b", "e", "a", "custom"}, ids)
	assert.Equal(t, "root-d", doms[0])
	assert.Equal(t, "root-custom", doms[4])
}

func TestSubsectionsKeepDeclarationOrder(t *testing.T) {
	var s models.Section
	require.NoError(t, yaml.Unmarshal([]byte(`
id: about
subsections:
  zeta: {template: Markdown, content: z}
  alpha: {template: Markdown, content: a}
  mid: {template: Markdown, content: m}
`), &s))
	tree := BuildTree([]models.Section{s})
	root := tree.Node(tree.Roots()[0])
	var ids []string
	for _, c := range root.Children {
		ids = append(ids, tree.Node(c).DOMID)
	}
	assert.Equal(t, []string{"about-zeta", "about-alpha", "about-mid"}, ids)
}

func TestResolveStates(t *testing.T) {
	tree := BuildTree([]models.Section{
		{ID: "group", Template: "About", Subsections: models.Subsections{{Key: "x", Section: models.Section{Template: "Markdown"}}}},
		{ID: "bare"},
		{ID: "unknown", Template: "Gallery"},
		{ID: "md", Template: "Markdown", Content: "hello"},
	})
	roots := tree.Roots()
	assert.Equal(t, StateSubsections, Resolve(tree.Node(roots[0])).State)
	assert.Equal(t, StateEmpty, Resolve(tree.Node(roots[1])).State)
	assert.Equal(t, StateMissingTemplate, Resolve(tree.Node(roots[2])).State)

	res := Resolve(tree.Node(roots[3]))
	assert.Equal(t, StateTemplate, res.State)
	assert.Equal(t, map[string]any{"text": "hello"}, res.Content)
}

func newRenderer(sections []models.Section, items ItemsProvider) *Renderer {
	site := &models.SiteConfig{Sections: sections}
	return NewRenderer(site, items, services.NewMarkdown())
}

func render(t *testing.T, r *Renderer, id string) string {
	t.Helper()
	n, ok := r.Tree().Root(id)
	require.True(t, ok, id)
	return string(r.RenderNode(context.Background(), n))
}

func TestRenderMissingTemplate(t *testing.T) {
	r := newRenderer([]models.Section{{ID: "gallery", Template: "Gallery"}}, stubItems{})
	out := render(t, r, "gallery")
	assert.Contains(t, out, `class="section-error"`)
	assert.Contains(t, out, "Gallery")
	assert.Contains(t, out, "gallery")
}

func TestRenderEmptySectionRendersNothing(t *testing.T) {
	r := newRenderer([]models.Section{{ID: "bare"}}, stubItems{})
	assert.Empty(t, render(t, r, "bare"))

	n, _ := r.Tree().Root("bare")
	assert.Contains(t, string(r.Page(context.Background(), n)), "No subsections configured for bare")
}

func TestRenderMarkdownSection(t *testing.T) {
	r := newRenderer([]models.Section{{ID: "bio", Template: "Markdown", Content: "Hi *there*"}}, stubItems{})
	out := render(t, r, "bio")
	assert.Contains(t, out, `id="bio"`)
	assert.Contains(t, out, "<em>there</em>")
}

func TestRenderNestedSubsections(t *testing.T) {
	r := newRenderer([]models.Section{{
		ID:    "about",
		Title: "About",
		Subsections: models.Subsections{
			{Key: "second", Section: models.Section{Template: "Markdown", Content: "two", Order: intp(2)}},
			{Key: "first", Section: models.Section{Template: "Markdown", Content: "one", Order: intp(1)}},
		},
	}}, stubItems{})
	out := render(t, r, "about")
	assert.Contains(t, out, `id="about-first"`)
	assert.Less(t, strings.Index(out, "about-first"), strings.Index(out, "about-second"))
}

func TestRenderRefCycle(t *testing.T) {
	r := newRenderer([]models.Section{
		{ID: "a", Subsections: models.Subsections{{Key: "to-b", Section: models.Section{Ref: "b"}}}},
		{ID: "b", Subsections: models.Subsections{{Key: "to-a", Section: models.Section{Ref: "a"}}}},
		{ID: "self", Ref: "self"},
		{ID: "dangling", Ref: "nowhere"},
	}, stubItems{})

	out := render(t, r, "a")
	assert.Contains(t, out, "cycle")

	assert.Contains(t, render(t, r, "self"), "cycle")
	assert.Contains(t, render(t, r, "dangling"), "unknown section")
}

func TestRenderRefIncludesTarget(t *testing.T) {
	r := newRenderer([]models.Section{
		{ID: "bio", Template: "Markdown", Content: "shared text"},
		{ID: "home", Subsections: models.Subsections{{Key: "intro", Section: models.Section{Ref: "bio"}}}},
	}, stubItems{})
	out := render(t, r, "home")
	assert.Contains(t, out, `id="home-intro"`)
	assert.Contains(t, out, "shared text")
}

func TestRenderRefPrefixesChildDOMIDs(t *testing.T) {
	r := newRenderer([]models.Section{
		{ID: "bio", Subsections: models.Subsections{
			{Key: "x", Section: models.Section{Template: "Markdown", Content: "nested"}},
		}},
		{ID: "home", Subsections: models.Subsections{{Key: "intro", Section: models.Section{Ref: "bio"}}}},
	}, stubItems{})

	out := render(t, r, "home")
	assert.Contains(t, out, `id="home-intro-x"`)
	assert.NotContains(t, out, `id="bio-x"`)

	assert.Contains(t, render(t, r, "bio"), `id="bio-x"`)
}

func TestRenderContentPreview(t *testing.T) {
	items := stubItems{items: map[string][]models.ContentItem{
		"pubs": {{ID: "one", Title: "One"}, {ID: "two", Title: "Two"}, {ID: "three", Title: "Three"}},
	}}
	r := newRenderer([]models.Section{
		{ID: "recent", Template: "ContentPreview", Content: map[string]any{"contentType": "pubs", "limit": 2}},
		{ID: "broken", Template: "ContentPreview", Content: map[string]any{"contentType": "nope"}},
	}, items)

	out := render(t, r, "recent")
	assert.Contains(t, out, `href="/publications/one"`)
	assert.Contains(t, out, `href="/publications/two"`)
	assert.NotContains(t, out, "Three")
	assert.Contains(t, out, `href="/publications"`)

	assert.Contains(t, render(t, r, "broken"), "section-error")
}

func TestRenderLoadFailureShowsPanel(t *testing.T) {
	items := stubItems{items: map[string][]models.ContentItem{"pubs": nil}, err: errors.New("boom")}
	r := newRenderer([]models.Section{
		{ID: "recent", Template: "ContentPreview", Content: map[string]any{"contentType": "pubs"}},
	}, items)
	out := render(t, r, "recent")
	assert.Contains(t, out, "Something went wrong")
	assert.Contains(t, out, `id="recent"`)
}

func TestGuardRecoversPanics(t *testing.T) {
	r := newRenderer(nil, stubItems{})
	out := r.guard("x", func() (template.HTML, error) { panic("bad") })
	assert.Contains(t, string(out), "Something went wrong")
}

func TestHomeSkipsExcluded(t *testing.T) {
	r := newRenderer([]models.Section{
		{ID: "bio", Template: "Markdown", Content: "bio"},
		{ID: "hidden", Template: "Markdown", Content: "hidden", ExcludeFromHome: true},
	}, stubItems{})
	home := r.Home(context.Background())
	require.Len(t, home, 1)
	assert.Contains(t, string(home[0]), `id="bio"`)
}
