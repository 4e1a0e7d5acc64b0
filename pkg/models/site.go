package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"folio/pkg/expr"

	"gopkg.in/yaml.v3"
)

// SiteConfig is the whole site configuration document.
type SiteConfig struct {
	Site         SiteInfo                     `yaml:"site" json:"site"`
	Sections     []Section                    `yaml:"sections" json:"sections"`
	ContentTypes map[string]ContentTypeConfig `yaml:"contentTypes" json:"contentTypes"`
	Redirects    map[string]string            `yaml:"redirects" json:"redirects,omitempty"`
	Styles       map[string]StyleConfig       `yaml:"styles" json:"styles,omitempty"`
	TagSets      map[string]map[string]string `yaml:"tagSets" json:"tagSets,omitempty"`
}

type SiteInfo struct {
	Title       string `yaml:"title" json:"title"`
	Author      string `yaml:"author" json:"author"`
	Description string `yaml:"description" json:"description"`
	BaseURL     string `yaml:"baseUrl" json:"baseUrl"`
	Image       string `yaml:"image" json:"image,omitempty"`
}

// ContentType returns the named content type configuration.
func (s *SiteConfig) ContentType(name string) (ContentTypeConfig, bool) {
	ct, ok := s.ContentTypes[name]
	if ok {
		ct.Name = name
	}
	return ct, ok
}

// Section is a node of the page configuration tree.
type Section struct {
	ID              string      `yaml:"id" json:"id"`
	Title           string      `yaml:"title" json:"title,omitempty"`
	Path            string      `yaml:"path" json:"path,omitempty"`
	Template        string      `yaml:"template" json:"template,omitempty"`
	Content         any         `yaml:"content" json:"content,omitempty"`
	Subsections     Subsections `yaml:"subsections" json:"subsections,omitempty"`
	Order           *int        `yaml:"order" json:"order,omitempty"`
	ExcludeFromHome bool        `yaml:"excludeFromHome" json:"excludeFromHome,omitempty"`
	ContentType     string      `yaml:"contentType" json:"contentType,omitempty"`
	Ref             string      `yaml:"ref" json:"ref,omitempty"`
}

// RoutePath is the section path without surrounding slashes.
func (s *Section) RoutePath() string {
	return strings.Trim(s.Path, "/")
}

// Subsection is one entry of an ordered subsection map.
type Subsection struct {
	Key     string
	Section Section
}

// Subsections keeps declaration order of the configured mapping.
type Subsections []Subsection

func (s *Subsections) UnmarshalYAML(node *yaml.Node) error {
	var out Subsections
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			var sec Section
			if err := node.Content[i+1].Decode(&sec); err != nil {
				return fmt.Errorf("subsection %q: %w", node.Content[i].Value, err)
			}
			out = append(out, Subsection{Key: node.Content[i].Value, Section: sec})
		}
	case yaml.SequenceNode:
		for i, child := range node.Content {
			var sec Section
			if err := child.Decode(&sec); err != nil {
				return fmt.Errorf("subsection %d: %w", i, err)
			}
			key := sec.ID
			if key == "" {
				key = strconv.Itoa(i)
			}
			out = append(out, Subsection{Key: key, Section: sec})
		}
	case yaml.ScalarNode:
		if node.Tag != "!!null" {
			return fmt.Errorf("subsections: expected mapping, got %q", node.Value)
		}
	default:
		return fmt.Errorf("subsections: unsupported node kind %d", node.Kind)
	}
	*s = out
	return nil
}

// MarshalJSON writes the subsections as an object in declaration order.
func (s Subsections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sub := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(sub.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(sub.Section)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ContentTypeConfig describes one listable content type.
type ContentTypeConfig struct {
	Name           string                     `yaml:"-" json:"name"`
	Title          string                     `yaml:"title" json:"title"`
	DataSource     string                     `yaml:"dataSource" json:"dataSource"`
	DataKind       DataKind                   `yaml:"dataKind" json:"dataKind,omitempty"`
	Path           string                     `yaml:"path" json:"path"`
	Fields         map[ViewType][]FieldConfig `yaml:"fields" json:"fields,omitempty"`
	DetailMarkdown expr.Format                `yaml:"detailMarkdown" json:"-"`
	StaticPages    bool                       `yaml:"staticPages" json:"staticPages,omitempty"`
	SearchKeys     []SearchKey                `yaml:"searchKeys" json:"searchKeys,omitempty"`
}

// RoutePath is the list route of the content type without surrounding slashes.
func (c ContentTypeConfig) RoutePath() string {
	if c.Path != "" {
		return strings.Trim(c.Path, "/")
	}
	return c.Name
}

// Kind resolves the data kind, inferring BibTeX from a .bib extension.
func (c ContentTypeConfig) Kind() DataKind {
	if c.DataKind != "" {
		return c.DataKind
	}
	if strings.HasSuffix(strings.ToLower(c.DataSource), ".bib") {
		return DataKindBibTeX
	}
	return DataKindJSON
}

type DataKind string

const (
	DataKindJSON   DataKind = "json"
	DataKindBibTeX DataKind = "bibtex"
)

// SearchKey is a weighted item field used by the search index.
type SearchKey struct {
	Name   string  `yaml:"name" json:"name"`
	Weight float64 `yaml:"weight" json:"weight"`
}

type ViewType string

const (
	ViewCard   ViewType = "card"
	ViewList   ViewType = "list"
	ViewDetail ViewType = "detail"
)

// ViewMode is the list page layout.
type ViewMode string

const (
	ViewModeGrid ViewMode = "grid"
	ViewModeList ViewMode = "list"
)

// ParseViewMode returns the mode and whether s named a valid one.
func ParseViewMode(s string) (ViewMode, bool) {
	switch ViewMode(s) {
	case ViewModeGrid, ViewModeList:
		return ViewMode(s), true
	}
	return ViewModeGrid, false
}

// ItemView is the field view used for items rendered in this mode.
func (m ViewMode) ItemView() ViewType {
	if m == ViewModeList {
		return ViewList
	}
	return ViewCard
}

type FieldKind string

const (
	FieldHeading            FieldKind = "Heading"
	FieldText               FieldKind = "Text"
	FieldAuthorList         FieldKind = "AuthorList"
	FieldTags               FieldKind = "Tags"
	FieldAward              FieldKind = "Award"
	FieldImage              FieldKind = "Image"
	FieldExpandableMarkdown FieldKind = "ExpandableMarkdown"
	FieldSection            FieldKind = "Section"
	FieldLinkButtons        FieldKind = "LinkButtons"
	FieldMarkdown           FieldKind = "Markdown"
)

// FieldKinds lists every renderable field kind.
var FieldKinds = []FieldKind{
	FieldHeading, FieldText, FieldAuthorList, FieldTags, FieldAward, FieldImage,
	FieldExpandableMarkdown, FieldSection, FieldLinkButtons, FieldMarkdown,
}

// ParseFieldKind maps unknown or empty names to Text.
func ParseFieldKind(s string) FieldKind {
	for _, k := range FieldKinds {
		if string(k) == s {
			return k
		}
	}
	return FieldText
}

// FieldConfig describes how one item attribute is rendered.
type FieldConfig struct {
	Component   string         `yaml:"component" json:"component"`
	Label       string         `yaml:"label" json:"label,omitempty"`
	Key         string         `yaml:"key" json:"key,omitempty"`
	ViewType    ViewType       `yaml:"viewType" json:"viewType,omitempty"`
	TagSet      string         `yaml:"tagSet" json:"tagSet,omitempty"`
	Condition   expr.Condition `yaml:"condition" json:"-"`
	Format      expr.Format    `yaml:"format" json:"-"`
	RenderEmpty bool           `yaml:"renderEmpty" json:"renderEmpty,omitempty"`
	ClassName   string         `yaml:"className" json:"className,omitempty"`
	Variant     string         `yaml:"variant" json:"variant,omitempty"`
	Level       int            `yaml:"level" json:"level,omitempty"`
}

func (f FieldConfig) Kind() FieldKind {
	return ParseFieldKind(f.Component)
}

// StyleConfig overrides the built-in classes of one field kind.
type StyleConfig struct {
	Default  string            `yaml:"default" json:"default,omitempty"`
	Card     string            `yaml:"card" json:"card,omitempty"`
	List     string            `yaml:"list" json:"list,omitempty"`
	Detail   string            `yaml:"detail" json:"detail,omitempty"`
	Variants map[string]string `yaml:"variants" json:"variants,omitempty"`
}

// ForView returns the class configured for view, if any.
func (s StyleConfig) ForView(v ViewType) string {
	switch v {
	case ViewCard:
		return s.Card
	case ViewList:
		return s.List
	case ViewDetail:
		return s.Detail
	}
	return ""
}
