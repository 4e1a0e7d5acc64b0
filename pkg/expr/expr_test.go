package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var item = MapSource{
	"title": "Graph Databases",
	"year":  "2023",
	"venue": "",
	"links": map[string]string{"pdf": "https://example.org/p.pdf"},
	"tags":  []string{"graphs", "db"},
}

func TestParseCondition(t *testing.T) {
	c, err := ParseCondition("links.pdf|links.code")
	require.NoError(t, err)
	require.Len(t, c.Alternatives, 2)
	assert.Equal(t, Path{"links", "pdf"}, c.Alternatives[0])
	assert.Equal(t, "links.pdf|links.code", c.String())

	_, err = ParseCondition("links.|title")
	assert.ErrorIs(t, err, ErrEmptyPath)

	empty, err := ParseCondition("  ")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}

func TestConditionEval(t *testing.T) {
	tests := []struct {
		cond string
		want bool
	}{
		{"links.pdf", true},
		{"links.code|links.pdf", true},
		{"links.code", false},
		{"venue", false},
		{"venue|tags", true},
		{"missing.deep.path", false},
		{"", true},
	}
	for _, tt := range tests {
		c, err := ParseCondition(tt.cond)
		require.NoError(t, err)
		assert.Equal(t, tt.want, c.Eval(item), tt.cond)
	}
}

func TestFormat(t *testing.T) {
	f, err := ParseFormat("{venue|year} - {title}")
	require.NoError(t, err)
	assert.Equal(t, "2023 - Graph Databases", f.Apply(item))
	assert.Equal(t, "{venue|year} - {title}", f.String())

	f = MustFormat("[{missing}] {tags}")
	assert.Equal(t, "[] graphs, db", f.Apply(item))

	_, err = ParseFormat("{title")
	assert.ErrorIs(t, err, ErrUnterminated)
	_, err = ParseFormat("a {} b")
	assert.ErrorIs(t, err, ErrEmptyPlaceholder)
}

func TestYAMLDecoding(t *testing.T) {
	var cfg struct {
		Condition Condition `yaml:"condition"`
		Format    Format    `yaml:"format"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("condition: a.b|c\nformat: \"{a.b} x\"\n"), &cfg))
	assert.Len(t, cfg.Condition.Alternatives, 2)
	assert.Len(t, cfg.Format.Segments, 2)

	err := yaml.Unmarshal([]byte("format: \"{oops\"\n"), &cfg)
	assert.ErrorIs(t, err, ErrUnterminated)
}

func TestWalk(t *testing.T) {
	root := map[string]any{"a": []any{map[string]any{"b": 1}}}
	v, ok := Walk(root, Path{"a", "0", "b"})
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = Walk(root, Path{"a", "5"})
	assert.False(t, ok)
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(" "))
	assert.False(t, Truthy([]string{}))
	assert.False(t, Truthy(0.0))
	assert.True(t, Truthy("x"))
	assert.True(t, Truthy(true))
}
