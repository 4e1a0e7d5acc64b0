package render

import (
	"bytes"
	"html/template"

	"folio/pkg/expr"
	"folio/pkg/models"
	"folio/pkg/services"

	"go.uber.org/zap"
)

// FieldRenderer renders one configured field of a content item.
type FieldRenderer struct {
	styles  *Styles
	md      *services.Markdown
	tagSets map[string]map[string]string
	owner   string
}

func NewFieldRenderer(site *models.SiteConfig, md *services.Markdown) *FieldRenderer {
	return &FieldRenderer{
		styles:  NewStyles(site.Styles),
		md:      md,
		tagSets: site.TagSets,
		owner:   site.Site.Author,
	}
}

type tagView struct {
	Name  string
	Class string
}

type linkView struct {
	Kind  string
	Label string
	URL   string
}

// leafData is the data handed to the field/* templates.
type leafData struct {
	Class   string
	Label   string
	View    models.ViewType
	Href    string
	Level   int
	Text    string
	Src     string
	Alt     string
	HTML    template.HTML
	Authors []authorPart
	Tags    []tagView
	Links   []linkView
}

// FieldValue resolves the field key on item.
func FieldValue(f models.FieldConfig, item *models.ContentItem) any {
	if f.Key == "" || item == nil {
		return nil
	}
	path, err := expr.ParsePath(f.Key)
	if err != nil {
		return nil
	}
	v, _ := item.Lookup(path)
	return v
}

// RenderItemField resolves the value of f on item and renders it.
func (r *FieldRenderer) RenderItemField(f models.FieldConfig, item *models.ContentItem, view models.ViewType, href string) template.HTML {
	return r.Render(f, FieldValue(f, item), item, view, href)
}

// Render renders value as field f. Fields whose condition fails, or whose value is
// empty without renderEmpty, render nothing. Unknown kinds render as Text.
func (r *FieldRenderer) Render(f models.FieldConfig, value any, item *models.ContentItem, view models.ViewType, href string) template.HTML {
	if item != nil && !f.Condition.Eval(item) {
		return ""
	}
	if !f.Format.IsZero() && item != nil {
		value = f.Format.Apply(item)
	}
	if !expr.Truthy(value) && !f.RenderEmpty {
		return ""
	}
	if f.ViewType != "" {
		view = f.ViewType
	}

	kind := f.Kind()
	data := leafData{
		Class: r.styles.Resolve(kind, view, f),
		Label: f.Label,
		View:  view,
		Href:  href,
	}
	name := "field/" + string(kind)

	switch kind {
	case models.FieldHeading:
		data.Level = HeadingLevel(f, view)
		data.Text = expr.Stringify(value)
	case models.FieldAuthorList:
		data.Authors = authorParts(toList(value, " and "), r.owner)
	case models.FieldTags:
		data.Tags = r.tags(toList(value, ","), f.TagSet)
	case models.FieldAward:
		data.Text = expr.Stringify(value)
	case models.FieldImage:
		data.Src = expr.Stringify(value)
		if item != nil {
			data.Alt = item.Title
		}
	case models.FieldExpandableMarkdown, models.FieldSection, models.FieldMarkdown:
		data.HTML = r.md.RenderSafe(expr.Stringify(value))
	case models.FieldLinkButtons:
		data.Links = toLinks(value)
	case models.FieldText:
		data.Text = expr.Stringify(value)
	default:
		name = "field/" + string(models.FieldText)
		data.Text = expr.Stringify(value)
	}
	return r.execute(name, data)
}

func (r *FieldRenderer) execute(name string, data leafData) template.HTML {
	var buf bytes.Buffer
	if err := views().ExecuteTemplate(&buf, name, data); err != nil {
		zap.L().Error("field render failed", zap.String("template", name), zap.Error(err))
		return template.HTML(template.HTMLEscapeString(data.Text))
	}
	return template.HTML(buf.String())
}

func (r *FieldRenderer) tags(names []string, tagSet string) []tagView {
	set := r.tagSets[tagSet]
	out := make([]tagView, len(names))
	for i, n := range names {
		out[i] = tagView{Name: n, Class: set[n]}
	}
	return out
}

func toList(v any, sep string) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := expr.Stringify(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return models.SplitList(t, sep)
	}
	return nil
}

func toLinks(v any) []linkView {
	links := map[string]string{}
	switch t := v.(type) {
	case map[string]string:
		links = t
	case map[string]any:
		for k, e := range t {
			if s := expr.Stringify(e); s != "" {
				links[k] = s
			}
		}
	case string:
		links["url"] = t
	}
	holder := models.ContentItem{Links: links}
	out := make([]linkView, 0, len(links))
	for _, kind := range holder.LinkKinds() {
		out = append(out, linkView{Kind: kind, Label: LinkLabel(kind), URL: links[kind]})
	}
	return out
}
