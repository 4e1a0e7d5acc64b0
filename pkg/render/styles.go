package render

import (
	"strconv"

	"folio/pkg/models"
)

var componentDefaults = map[models.FieldKind]string{
	models.FieldHeading:            "field-heading",
	models.FieldText:               "field-text",
	models.FieldAuthorList:         "field-authors",
	models.FieldTags:               "field-tags",
	models.FieldAward:              "field-award",
	models.FieldImage:              "field-image",
	models.FieldExpandableMarkdown: "field-expandable",
	models.FieldSection:            "field-section",
	models.FieldLinkButtons:        "field-links",
	models.FieldMarkdown:           "field-markdown",
}

var viewDefaults = map[models.FieldKind]map[models.ViewType]string{
	models.FieldText: {
		models.ViewCard:   "field-text field-text--card",
		models.ViewList:   "field-text field-text--list",
		models.ViewDetail: "field-text field-text--detail",
	},
	models.FieldAuthorList: {
		models.ViewCard:   "field-authors field-authors--compact",
		models.ViewList:   "field-authors field-authors--compact",
		models.ViewDetail: "field-authors field-authors--detail",
	},
	models.FieldTags: {
		models.ViewCard:   "field-tags field-tags--small",
		models.ViewList:   "field-tags field-tags--inline",
		models.ViewDetail: "field-tags field-tags--detail",
	},
	models.FieldImage: {
		models.ViewCard:   "field-image field-image--card",
		models.ViewList:   "field-image field-image--thumb",
		models.ViewDetail: "field-image field-image--hero",
	},
	models.FieldAward: {
		models.ViewCard:   "field-award field-award--badge",
		models.ViewDetail: "field-award field-award--banner",
	},
	models.FieldLinkButtons: {
		models.ViewCard:   "field-links field-links--small",
		models.ViewList:   "field-links field-links--inline",
		models.ViewDetail: "field-links field-links--large",
	},
	models.FieldExpandableMarkdown: {
		models.ViewDetail: "field-expandable field-expandable--open",
	},
}

// headingStyles is keyed by view, then heading level.
var headingStyles = map[models.ViewType]map[int]string{
	models.ViewCard: {
		2: "field-heading heading-card-2",
		3: "field-heading heading-card-3",
		4: "field-heading heading-card-4",
	},
	models.ViewList: {
		3: "field-heading heading-list-3",
		4: "field-heading heading-list-4",
	},
	models.ViewDetail: {
		1: "field-heading heading-detail-1",
		2: "field-heading heading-detail-2",
		3: "field-heading heading-detail-3",
	},
}

var defaultHeadingLevel = map[models.ViewType]int{
	models.ViewCard:   3,
	models.ViewList:   4,
	models.ViewDetail: 1,
}

var builtinVariants = map[models.FieldKind]map[string]string{
	models.FieldText: {
		"muted":    "field-text field-text--muted",
		"emphasis": "field-text field-text--emphasis",
		"venue":    "field-text field-text--venue",
	},
	models.FieldHeading: {
		"hero": "field-heading heading-hero",
	},
	models.FieldTags: {
		"pill": "field-tags field-tags--pill",
	},
	models.FieldLinkButtons: {
		"outline": "field-links field-links--outline",
	},
}

// Styles resolves the class of a field. Site configuration overrides the built-in
// tables.
type Styles struct {
	overrides map[string]models.StyleConfig
}

func NewStyles(overrides map[string]models.StyleConfig) *Styles {
	return &Styles{overrides: overrides}
}

// HeadingLevel clamps the configured level into 1..6, defaulting per view.
func HeadingLevel(f models.FieldConfig, view models.ViewType) int {
	if f.Level >= 1 && f.Level <= 6 {
		return f.Level
	}
	if l, ok := defaultHeadingLevel[view]; ok {
		return l
	}
	return 3
}

// Resolve applies: explicit className, then named variant, then the view default
// (by level for headings), then the component default.
func (s *Styles) Resolve(kind models.FieldKind, view models.ViewType, f models.FieldConfig) string {
	if f.ClassName != "" {
		return f.ClassName
	}
	override := s.overrides[string(kind)]
	if f.Variant != "" {
		if c, ok := override.Variants[f.Variant]; ok {
			return c
		}
		if c, ok := builtinVariants[kind][f.Variant]; ok {
			return c
		}
	}
	if kind == models.FieldHeading {
		level := HeadingLevel(f, view)
		if c, ok := override.Variants[string(view)+"-"+strconv.Itoa(level)]; ok {
			return c
		}
		if c, ok := headingStyles[view][level]; ok {
			return c
		}
	}
	if c := override.ForView(view); c != "" {
		return c
	}
	if c, ok := viewDefaults[kind][view]; ok {
		return c
	}
	if override.Default != "" {
		return override.Default
	}
	return componentDefaults[kind]
}
