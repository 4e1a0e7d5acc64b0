package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"

	"folio/pkg/expr"
	"folio/pkg/models"
	"folio/pkg/services"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ItemsProvider gives section templates access to content items.
type ItemsProvider interface {
	ContentType(name string) (models.ContentTypeConfig, error)
	Items(ctx context.Context, contentType string) ([]models.ContentItem, error)
}

// Renderer turns the section tree and content items into HTML fragments.
type Renderer struct {
	site   *models.SiteConfig
	tree   *Tree
	fields *FieldRenderer
	md     *services.Markdown
	items  ItemsProvider
}

func NewRenderer(site *models.SiteConfig, items ItemsProvider, md *services.Markdown) *Renderer {
	return &Renderer{
		site:   site,
		tree:   BuildTree(site.Sections),
		fields: NewFieldRenderer(site, md),
		md:     md,
		items:  items,
	}
}

func (r *Renderer) Tree() *Tree {
	return r.tree
}

func (r *Renderer) Fields() *FieldRenderer {
	return r.fields
}

// Home renders every top-level section not excluded from the home page.
func (r *Renderer) Home(ctx context.Context) []template.HTML {
	var out []template.HTML
	for _, id := range r.tree.Roots() {
		if r.tree.Node(id).Section.ExcludeFromHome {
			continue
		}
		if html := r.RenderNode(ctx, id); html != "" {
			out = append(out, html)
		}
	}
	return out
}

// Page renders a section on its dedicated route. A section with neither template
// nor subsections shows the "no subsections" placeholder.
func (r *Renderer) Page(ctx context.Context, id NodeID) template.HTML {
	n := r.tree.Node(id)
	if n.Section.Ref == "" && Resolve(n).State == StateEmpty {
		return r.execute("section/no-subsections", n)
	}
	return r.RenderNode(ctx, id)
}

func (r *Renderer) RenderNode(ctx context.Context, id NodeID) template.HTML {
	n := r.tree.Node(id)
	seen := map[string]bool{}
	if n.ParentID == "" {
		seen[n.Section.ID] = true
	}
	return r.renderNode(ctx, id, n.DOMID, 0, seen)
}

// renderNode renders node id under domID. Children derive their DOM ids from it,
// so a section included through a ref gets ids prefixed by the including node.
func (r *Renderer) renderNode(ctx context.Context, id NodeID, domID string, depth int, seen map[string]bool) template.HTML {
	self := *r.tree.Node(id)
	self.DOMID = domID
	n := &self
	if depth > MaxSectionDepth {
		return r.errorBlock(n.DOMID, fmt.Sprintf("Section %q exceeds the maximum nesting depth of %d", n.Section.ID, MaxSectionDepth))
	}
	ref := n.Section.Ref
	if ref == "" {
		return r.renderResolved(ctx, n, n, depth, seen)
	}
	if seen[ref] {
		return r.errorBlock(n.DOMID, fmt.Sprintf("Section %q references %q, which forms a cycle", n.Section.ID, ref))
	}
	target, ok := r.tree.Root(ref)
	if !ok {
		return r.errorBlock(n.DOMID, fmt.Sprintf("Section %q references unknown section %q", n.Section.ID, ref))
	}
	next := make(map[string]bool, len(seen)+1)
	for k := range seen {
		next[k] = true
	}
	next[ref] = true
	return r.renderResolved(ctx, n, r.tree.Node(target), depth+1, next)
}

// renderResolved renders src's configuration under self's identity.
func (r *Renderer) renderResolved(ctx context.Context, self, src *Node, depth int, seen map[string]bool) template.HTML {
	res := Resolve(src)
	switch res.State {
	case StateSubsections:
		return r.renderChildren(ctx, self, res.Children, depth, seen)
	case StateEmpty:
		zap.L().Warn("section has no template", zap.String("section", self.Section.ID))
		return ""
	case StateMissingTemplate:
		return r.errorBlock(self.DOMID, fmt.Sprintf("Template %q not found for section %q", src.Section.Template, self.Section.ID))
	case StateTemplate:
		return r.guard(self.DOMID, func() (template.HTML, error) {
			return r.renderTemplate(ctx, self, src, res)
		})
	}
	return ""
}

type childrenData struct {
	Node  *Node
	Title string
	Items []template.HTML
}

func (r *Renderer) renderChildren(ctx context.Context, self *Node, children []NodeID, depth int, seen map[string]bool) template.HTML {
	if len(children) == 0 {
		return r.execute("section/no-subsections", self)
	}
	data := childrenData{Node: self, Title: self.Section.Title}
	for _, c := range children {
		dom := self.DOMID + "-" + r.tree.Node(c).Section.ID
		if html := r.renderNode(ctx, c, dom, depth+1, seen); html != "" {
			data.Items = append(data.Items, html)
		}
	}
	return r.execute("section/subsections", data)
}

// sectionData is handed to the section/* templates.
type sectionData struct {
	ID    string
	DOMID string
	Title string
	Body  any
}

type linkItem struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
	Icon  string `yaml:"icon"`
}

type aboutContent struct {
	Title string     `yaml:"title"`
	Text  string     `yaml:"text"`
	Image string     `yaml:"image"`
	Links []linkItem `yaml:"links"`
}

type markdownContent struct {
	Title string `yaml:"title"`
	Text  string `yaml:"text"`
}

type timelineEntry struct {
	Title       string   `yaml:"title"`
	Subtitle    string   `yaml:"subtitle"`
	Period      string   `yaml:"period"`
	Location    string   `yaml:"location"`
	Description string   `yaml:"description"`
	Details     []string `yaml:"details"`
}

type timelineContent struct {
	Title    string          `yaml:"title"`
	IconType string          `yaml:"iconType"`
	Items    []timelineEntry `yaml:"items"`
}

type previewContent struct {
	Title       string `yaml:"title"`
	ContentType string `yaml:"contentType"`
	Limit       int    `yaml:"limit"`
}

type contactContent struct {
	Title string     `yaml:"title"`
	Text  string     `yaml:"text"`
	Items []linkItem `yaml:"items"`
}

type newsEntry struct {
	Date string `yaml:"date"`
	Text string `yaml:"text"`
}

type newsContent struct {
	Title string      `yaml:"title"`
	Items []newsEntry `yaml:"items"`
}

type timelineView struct {
	IconType string
	Items    []timelineItemView
}

type timelineItemView struct {
	timelineEntry
	HTML template.HTML
}

type previewView struct {
	Items   []ItemView
	MoreURL string
}

type newsItemView struct {
	Date string
	HTML template.HTML
}

func (r *Renderer) renderTemplate(ctx context.Context, self, src *Node, res Resolution) (template.HTML, error) {
	data := sectionData{ID: self.Section.ID, DOMID: self.DOMID}
	title := func(configured string) string {
		switch {
		case configured != "":
			return configured
		case self.Section.Title != "":
			return self.Section.Title
		case src.Section.Title != "":
			return src.Section.Title
		}
		return Humanize(self.Section.ID)
	}

	switch res.Template.Kind {
	case TemplateAbout:
		var c aboutContent
		if err := decodeContent(res.Content, &c); err != nil {
			return "", err
		}
		data.Title = title(c.Title)
		data.Body = struct {
			HTML  template.HTML
			Image string
			Links []linkItem
		}{r.md.RenderSafe(c.Text), c.Image, c.Links}
	case TemplateMarkdown:
		var c markdownContent
		if err := decodeContent(res.Content, &c); err != nil {
			return "", err
		}
		data.Title = c.Title
		data.Body = r.md.RenderSafe(c.Text)
	case TemplateTimeline:
		var c timelineContent
		if err := decodeContent(res.Content, &c); err != nil {
			return "", err
		}
		data.Title = title(c.Title)
		v := timelineView{IconType: c.IconType}
		for _, e := range c.Items {
			v.Items = append(v.Items, timelineItemView{timelineEntry: e, HTML: r.md.RenderSafe(e.Description)})
		}
		data.Body = v
	case TemplateContentPreview:
		var c previewContent
		if err := decodeContent(res.Content, &c); err != nil {
			return "", err
		}
		ct, err := r.items.ContentType(c.ContentType)
		if err != nil {
			return r.errorBlock(self.DOMID, fmt.Sprintf("Section %q: %v", self.Section.ID, err)), nil
		}
		items, err := r.items.Items(ctx, ct.Name)
		if err != nil {
			return "", err
		}
		limit := c.Limit
		if limit <= 0 {
			limit = 3
		}
		if len(items) > limit {
			items = items[:limit]
		}
		fallback := ct.Title
		if fallback == "" {
			fallback = Humanize(ct.Name)
		}
		if c.Title == "" && self.Section.Title == "" && src.Section.Title == "" {
			c.Title = fallback
		}
		data.Title = title(c.Title)
		v := previewView{MoreURL: "/" + ct.RoutePath()}
		for i := range items {
			v.Items = append(v.Items, r.RenderItem(ct, &items[i], models.ViewCard))
		}
		data.Body = v
	case TemplateContact:
		var c contactContent
		if err := decodeContent(res.Content, &c); err != nil {
			return "", err
		}
		data.Title = title(c.Title)
		data.Body = struct {
			HTML  template.HTML
			Items []linkItem
		}{r.md.RenderSafe(c.Text), c.Items}
	case TemplateNews:
		var c newsContent
		if err := decodeContent(res.Content, &c); err != nil {
			return "", err
		}
		data.Title = title(c.Title)
		var items []newsItemView
		for _, e := range c.Items {
			items = append(items, newsItemView{Date: e.Date, HTML: r.md.RenderSafe(e.Text)})
		}
		data.Body = items
	default:
		return "", fmt.Errorf("template %q has no renderer", res.Template.Name)
	}

	var buf bytes.Buffer
	if err := views().ExecuteTemplate(&buf, res.Template.layout(), data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func decodeContent(content any, out any) error {
	if content == nil {
		return nil
	}
	raw, err := yaml.Marshal(content)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("section content: %w", err)
	}
	return nil
}

// ItemView is a content item rendered for one view.
type ItemView struct {
	ID     string
	URL    string
	Fields []template.HTML
}

// ItemURL is the detail route of an item.
func ItemURL(ct models.ContentTypeConfig, item *models.ContentItem) string {
	return "/" + ct.RoutePath() + "/" + url.PathEscape(item.ID)
}

// RenderItem renders the configured fields of item for view. Content types without
// a field list for the view use DefaultFields.
func (r *Renderer) RenderItem(ct models.ContentTypeConfig, item *models.ContentItem, view models.ViewType) ItemView {
	fields, ok := ct.Fields[view]
	if !ok {
		fields = DefaultFields(view)
	}
	href := ItemURL(ct, item)
	v := ItemView{ID: item.ID, URL: href}
	for _, f := range fields {
		link := ""
		if f.Kind() == models.FieldHeading && view != models.ViewDetail {
			link = href
		}
		if html := r.fields.RenderItemField(f, item, view, link); html != "" {
			v.Fields = append(v.Fields, html)
		}
	}
	return v
}

// DefaultFields is the field list used when a content type configures none.
func DefaultFields(view models.ViewType) []models.FieldConfig {
	fields := []models.FieldConfig{
		{Component: string(models.FieldHeading), Key: "title"},
		{Component: string(models.FieldAuthorList), Key: "authors"},
		{Component: string(models.FieldText), Format: expr.MustFormat("{venue|journal|booktitle|institution} {date|year}"), Variant: "venue"},
		{Component: string(models.FieldAward), Key: "award"},
	}
	switch view {
	case models.ViewDetail:
		fields = append(fields,
			models.FieldConfig{Component: string(models.FieldImage), Key: "image"},
			models.FieldConfig{Component: string(models.FieldMarkdown), Key: "description"},
			models.FieldConfig{Component: string(models.FieldExpandableMarkdown), Key: "abstract", Label: "Abstract",
				Condition: expr.Condition{Alternatives: []expr.Path{{"abstract"}}}},
			models.FieldConfig{Component: string(models.FieldTags), Key: "tags"},
			models.FieldConfig{Component: string(models.FieldLinkButtons), Key: "links"},
		)
	case models.ViewCard:
		fields = append(fields,
			models.FieldConfig{Component: string(models.FieldImage), Key: "image"},
			models.FieldConfig{Component: string(models.FieldTags), Key: "tags"},
			models.FieldConfig{Component: string(models.FieldLinkButtons), Key: "links"},
		)
	default:
		fields = append(fields, models.FieldConfig{Component: string(models.FieldLinkButtons), Key: "links"})
	}
	return fields
}

// guard isolates a section: errors and panics become a retry panel.
func (r *Renderer) guard(domID string, fn func() (template.HTML, error)) (out template.HTML) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("section render panicked", zap.String("section", domID), zap.Any("panic", rec))
			out = r.execute("section/panel", domID)
		}
	}()
	html, err := fn()
	if err != nil {
		zap.L().Error("section render failed", zap.String("section", domID), zap.Error(err))
		return r.execute("section/panel", domID)
	}
	return html
}

type errorData struct {
	DOMID   string
	Message string
}

func (r *Renderer) errorBlock(domID, msg string) template.HTML {
	zap.L().Warn("section configuration error", zap.String("section", domID), zap.String("error", msg))
	return r.execute("section/error", errorData{DOMID: domID, Message: msg})
}

func (r *Renderer) execute(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := views().ExecuteTemplate(&buf, name, data); err != nil {
		zap.L().Error("template execution failed", zap.String("template", name), zap.Error(err))
		return ""
	}
	return template.HTML(buf.String())
}
