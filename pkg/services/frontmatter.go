package services

import (
	"encoding/json"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ParseFrontMatter splits a markdown document into its front matter and body.
// YAML (---), TOML (+++) and a leading JSON object are recognized; documents
// without front matter are returned whole with a nil map and format "".
func ParseFrontMatter(content []byte) (map[string]any, string, string) {
	str := strings.TrimPrefix(string(content), "\ufeff")
	if fm, body, ok := splitDelimited(str, "---", yaml.Unmarshal); ok {
		return fm, body, "yaml"
	}
	if fm, body, ok := splitDelimited(str, "+++", toml.Unmarshal); ok {
		return fm, body, "toml"
	}
	if strings.HasPrefix(strings.TrimSpace(str), "{") {
		dec := json.NewDecoder(strings.NewReader(str))
		var fm map[string]any
		if err := dec.Decode(&fm); err == nil {
			rest := str[dec.InputOffset():]
			return fm, strings.TrimSpace(rest), "json"
		}
	}
	return nil, strings.TrimSpace(str), ""
}

// splitDelimited reads front matter between two lines consisting of delim alone.
func splitDelimited(str, delim string, unmarshal func([]byte, any) error) (map[string]any, string, bool) {
	first, rest, ok := strings.Cut(str, "\n")
	if !ok || strings.TrimRight(first, "\r") != delim {
		return nil, "", false
	}
	lines := strings.SplitAfter(rest, "\n")
	for i, line := range lines {
		if strings.TrimRight(line, "\r\n") != delim {
			continue
		}
		var fm map[string]any
		if err := unmarshal([]byte(strings.Join(lines[:i], "")), &fm); err != nil {
			return nil, "", false
		}
		return fm, strings.TrimSpace(strings.Join(lines[i+1:], "")), true
	}
	return nil, "", false
}
