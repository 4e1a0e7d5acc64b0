package seo

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// MaxShortLength bounds meta descriptions.
const MaxShortLength = 160

const ellipsis = "…"

// Shorten collapses whitespace and cuts s at a word boundary so the result,
// ellipsis included, has at most max runes.
func Shorten(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:max-1])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:.-") + ellipsis
}

// ShortText is a cached shortened text and the hash of its source.
type ShortText struct {
	Hash string `json:"hash"`
	Text string `json:"text"`
}

// ShortTexts maps "<type>/<id>" to shortened descriptions.
type ShortTexts map[string]ShortText

func ShortTextKey(contentType, id string) string {
	return contentType + "/" + id
}

func hashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// LoadShortTexts reads a previous cache file. A missing file yields an empty cache.
func LoadShortTexts(path string) (ShortTexts, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return ShortTexts{}, nil
	}
	if err != nil {
		return nil, err
	}
	var out ShortTexts
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if out == nil {
		out = ShortTexts{}
	}
	return out, nil
}

// Update stores the shortened form of source under key. When the cached entry
// was made from the same source it is kept and reused reports true.
func (s ShortTexts) Update(key, source string) (text string, reused bool) {
	h := hashText(source)
	if prev, ok := s[key]; ok && prev.Hash == h {
		return prev.Text, true
	}
	text = Shorten(source, MaxShortLength)
	s[key] = ShortText{Hash: h, Text: text}
	return text, false
}

// Prune drops entries whose key is not in keep.
func (s ShortTexts) Prune(keep map[string]bool) {
	for k := range s {
		if !keep[k] {
			delete(s, k)
		}
	}
}

func (s ShortTexts) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
