package render

import (
	"testing"

	"folio/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestStylesResolveOrder(t *testing.T) {
	s := NewStyles(map[string]models.StyleConfig{
		"Text": {Default: "t-default", Detail: "t-detail", Variants: map[string]string{"muted": "t-muted"}},
		"Heading": {Variants: map[string]string{"card-2": "h-card-2"}},
	})

	tests := []struct {
		name string
		kind models.FieldKind
		view models.ViewType
		f    models.FieldConfig
		want string
	}{
		{"className wins", models.FieldText, models.ViewCard, models.FieldConfig{ClassName: "x", Variant: "muted"}, "x"},
		{"override variant", models.FieldText, models.ViewCard, models.FieldConfig{Variant: "muted"}, "t-muted"},
		{"builtin variant", models.FieldText, models.ViewCard, models.FieldConfig{Variant: "venue"}, "field-text field-text--venue"},
		{"unknown variant falls through", models.FieldText, models.ViewDetail, models.FieldConfig{Variant: "nope"}, "t-detail"},
		{"override view", models.FieldText, models.ViewDetail, models.FieldConfig{}, "t-detail"},
		{"builtin view", models.FieldText, models.ViewList, models.FieldConfig{}, "field-text field-text--list"},
		{"component default", models.FieldSection, models.ViewCard, models.FieldConfig{}, "field-section"},
		{"heading default level", models.FieldHeading, models.ViewCard, models.FieldConfig{}, "field-heading heading-card-3"},
		{"heading override level", models.FieldHeading, models.ViewCard, models.FieldConfig{Level: 2}, "h-card-2"},
		{"heading unknown level", models.FieldHeading, models.ViewCard, models.FieldConfig{Level: 6}, "field-heading"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Resolve(tt.kind, tt.view, tt.f))
		})
	}
}

func TestHeadingLevel(t *testing.T) {
	assert.Equal(t, 1, HeadingLevel(models.FieldConfig{}, models.ViewDetail))
	assert.Equal(t, 4, HeadingLevel(models.FieldConfig{}, models.ViewList))
	assert.Equal(t, 5, HeadingLevel(models.FieldConfig{Level: 5}, models.ViewCard))
	assert.Equal(t, 3, HeadingLevel(models.FieldConfig{Level: 9}, models.ViewCard))
}
