package render

import (
	"embed"
	"html/template"
	"sort"
	"sync"

	"folio/pkg/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateKind enumerates the section templates.
type TemplateKind int

const (
	TemplateAbout TemplateKind = iota + 1
	TemplateMarkdown
	TemplateTimeline
	TemplateContentPreview
	TemplateContact
	TemplateNews
)

func (k TemplateKind) String() string {
	switch k {
	case TemplateAbout:
		return "About"
	case TemplateMarkdown:
		return "Markdown"
	case TemplateTimeline:
		return "Timeline"
	case TemplateContentPreview:
		return "ContentPreview"
	case TemplateContact:
		return "Contact"
	case TemplateNews:
		return "News"
	}
	return "Unknown"
}

// Template is a registered section template.
type Template struct {
	Name string
	Kind TemplateKind
}

func (t Template) layout() string {
	return "section/" + t.Kind.String()
}

var registry = func() map[string]Template {
	m := make(map[string]Template)
	for _, k := range []TemplateKind{
		TemplateAbout, TemplateMarkdown, TemplateTimeline,
		TemplateContentPreview, TemplateContact, TemplateNews,
	} {
		m[k.String()] = Template{Name: k.String(), Kind: k}
	}
	return m
}()

func Lookup(name string) (Template, bool) {
	t, ok := registry[name]
	return t, ok
}

func Exists(name string) bool {
	_, ok := registry[name]
	return ok
}

// All returns a copy of the registry.
func All() map[string]Template {
	out := make(map[string]Template, len(registry))
	for k, v := range registry {
		out[k] = v
	}
	return out
}

// Names returns the registered template names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var (
	partialsOnce sync.Once
	partials     *template.Template
)

// views parses the embedded section and field templates on first use.
func views() *template.Template {
	partialsOnce.Do(func() {
		partials = template.Must(template.New("render").Funcs(template.FuncMap{
			"title":     Humanize,
			"viewClass": func(v models.ViewType) string { return "view-" + string(v) },
		}).ParseFS(templateFS, "templates/*.html"))
	})
	return partials
}
