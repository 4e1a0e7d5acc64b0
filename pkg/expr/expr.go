// Package expr parses the small expression language used by field configuration:
// dotted paths with pipe-separated alternatives (`links.pdf|links.url`) and format
// templates with `{placeholder}` segments (`{venue|journal} {year}`).
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyPath        = errors.New("empty path")
	ErrUnterminated     = errors.New("unterminated placeholder")
	ErrEmptyPlaceholder = errors.New("empty placeholder")
)

// Source resolves a dotted path into a value.
type Source interface {
	Lookup(path Path) (any, bool)
}

// Path is a dotted path split into its segments.
type Path []string

func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyPath
	}
	parts := strings.Split(s, ".")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("%w: %q", ErrEmptyPath, s)
		}
		parts[i] = p
	}
	return Path(parts), nil
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

func parseAlternatives(s string) ([]Path, error) {
	var alts []Path
	for _, raw := range strings.Split(s, "|") {
		p, err := ParsePath(raw)
		if err != nil {
			return nil, err
		}
		alts = append(alts, p)
	}
	return alts, nil
}

// Condition holds alternative paths; it holds when any of them is truthy.
type Condition struct {
	Alternatives []Path
}

func ParseCondition(s string) (Condition, error) {
	if strings.TrimSpace(s) == "" {
		return Condition{}, nil
	}
	alts, err := parseAlternatives(s)
	if err != nil {
		return Condition{}, fmt.Errorf("condition %q: %w", s, err)
	}
	return Condition{Alternatives: alts}, nil
}

func (c Condition) IsZero() bool {
	return len(c.Alternatives) == 0
}

// Eval reports whether at least one alternative resolves to a truthy value.
// An empty condition always holds.
func (c Condition) Eval(src Source) bool {
	if c.IsZero() {
		return true
	}
	for _, p := range c.Alternatives {
		if v, ok := src.Lookup(p); ok && Truthy(v) {
			return true
		}
	}
	return false
}

func (c Condition) String() string {
	parts := make([]string, len(c.Alternatives))
	for i, p := range c.Alternatives {
		parts[i] = p.String()
	}
	return strings.Join(parts, "|")
}

func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseCondition(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Condition) MarshalYAML() (any, error) {
	return c.String(), nil
}

// Segment is either a literal run of text or a placeholder with alternatives.
type Segment struct {
	Literal      string
	Alternatives []Path
}

func (s Segment) IsPlaceholder() bool {
	return s.Alternatives != nil
}

// Format is a parsed `{path}` template.
type Format struct {
	Segments []Segment
}

func ParseFormat(s string) (Format, error) {
	var f Format
	rest := s
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			f.Segments = append(f.Segments, Segment{Literal: rest})
			break
		}
		if open > 0 {
			f.Segments = append(f.Segments, Segment{Literal: rest[:open]})
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return Format{}, fmt.Errorf("format %q: %w", s, ErrUnterminated)
		}
		inner := rest[open+1 : open+end]
		if strings.TrimSpace(inner) == "" {
			return Format{}, fmt.Errorf("format %q: %w", s, ErrEmptyPlaceholder)
		}
		alts, err := parseAlternatives(inner)
		if err != nil {
			return Format{}, fmt.Errorf("format %q: %w", s, err)
		}
		f.Segments = append(f.Segments, Segment{Alternatives: alts})
		rest = rest[open+end+1:]
	}
	return f, nil
}

// MustFormat is ParseFormat for compile-time constant templates.
func MustFormat(s string) Format {
	f, err := ParseFormat(s)
	if err != nil {
		panic(err)
	}
	return f
}

func (f Format) IsZero() bool {
	return len(f.Segments) == 0
}

// Apply substitutes placeholders. The first truthy alternative wins; a placeholder
// with none degrades to the empty string.
func (f Format) Apply(src Source) string {
	var b strings.Builder
	for _, seg := range f.Segments {
		if !seg.IsPlaceholder() {
			b.WriteString(seg.Literal)
			continue
		}
		for _, p := range seg.Alternatives {
			if v, ok := src.Lookup(p); ok && Truthy(v) {
				b.WriteString(Stringify(v))
				break
			}
		}
	}
	return b.String()
}

func (f Format) String() string {
	var b strings.Builder
	for _, seg := range f.Segments {
		if !seg.IsPlaceholder() {
			b.WriteString(seg.Literal)
			continue
		}
		b.WriteByte('{')
		for i, p := range seg.Alternatives {
			if i > 0 {
				b.WriteByte('|')
			}
			b.WriteString(p.String())
		}
		b.WriteByte('}')
	}
	return b.String()
}

func (f *Format) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f Format) MarshalYAML() (any, error) {
	return f.String(), nil
}

// Walk resolves path against nested maps and slices.
func Walk(root any, path Path) (any, bool) {
	cur := root
	for _, seg := range path {
		switch v := cur.(type) {
		case map[string]any:
			next, ok := v[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case map[string]string:
			next, ok := v[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(v) {
				return nil, false
			}
			cur = v[i]
		case []string:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(v) {
				return nil, false
			}
			cur = v[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// MapSource adapts a plain map to Source.
type MapSource map[string]any

func (m MapSource) Lookup(path Path) (any, bool) {
	return Walk(map[string]any(m), path)
}

func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []string:
		return len(t) > 0
	case []any:
		return len(t) > 0
	case map[string]string:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// Stringify renders a resolved value for text output. Lists are joined with ", ".
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := Stringify(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any, map[string]string:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
