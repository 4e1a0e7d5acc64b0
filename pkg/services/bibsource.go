package services

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// bibMonths are the month macros every BibTeX style predefines. They are kept as
// written.
var bibMonths = map[string]bool{
	"jan": true, "feb": true, "mar": true, "apr": true, "may": true, "jun": true,
	"jul": true, "aug": true, "sep": true, "oct": true, "nov": true, "dec": true,
}

// NormalizeBibTeX rewrites a BibTeX document so that every field value is a single
// braced literal: @string macros are substituted, # concatenations are joined and
// @string, @comment and @preamble blocks are dropped. A macro that is neither
// defined nor a month is an error.
func NormalizeBibTeX(data []byte) ([]byte, error) {
	s := &bibScanner{src: string(data), macros: make(map[string]string)}
	var out strings.Builder
	for {
		at := strings.IndexByte(s.src[s.pos:], '@')
		if at < 0 {
			break
		}
		s.pos += at + 1
		kind := strings.ToLower(s.ident())
		s.space()
		open := s.peek()
		if kind == "" || (open != '{' && open != '(') {
			// stray @ outside an entry
			continue
		}
		closer := byte('}')
		if open == '(' {
			closer = ')'
		}
		s.pos++

		switch kind {
		case "comment", "preamble":
			if err := s.skip(open, closer); err != nil {
				return nil, err
			}
		case "string":
			s.space()
			name := strings.ToLower(s.ident())
			if name == "" {
				return nil, s.errorf("@string without a name")
			}
			if err := s.expect('='); err != nil {
				return nil, err
			}
			val, err := s.value()
			if err != nil {
				return nil, err
			}
			if err := s.expect(closer); err != nil {
				return nil, err
			}
			s.macros[name] = val
		default:
			if err := s.entry(&out, kind, closer); err != nil {
				return nil, err
			}
		}
	}
	return []byte(out.String()), nil
}

type bibScanner struct {
	src    string
	pos    int
	macros map[string]string
}

func (s *bibScanner) entry(out *strings.Builder, kind string, closer byte) error {
	s.space()
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != ',' && s.src[s.pos] != closer {
		s.pos++
	}
	key := strings.TrimSpace(s.src[start:s.pos])
	if key == "" {
		return s.errorf("@%s without a cite key", kind)
	}

	var fields strings.Builder
	for {
		s.space()
		switch s.peek() {
		case 0:
			return s.errorf("unterminated entry %q", key)
		case closer:
			s.pos++
			if fields.Len() == 0 {
				zap.L().Warn("skipping bibtex entry without fields", zap.String("key", key))
				return nil
			}
			out.WriteString("@" + kind + "{" + key + fields.String() + "\n}\n\n")
			return nil
		case ',':
			s.pos++
			continue
		}
		name := s.ident()
		if name == "" {
			return s.errorf("expected a field name in entry %q", key)
		}
		if err := s.expect('='); err != nil {
			return err
		}
		val, err := s.value()
		if err != nil {
			return fmt.Errorf("entry %q field %s: %w", key, name, err)
		}
		fields.WriteString(",\n  " + name + " = {" + val + "}")
	}
}

// value reads one field value, resolving macros and concatenation.
func (s *bibScanner) value() (string, error) {
	var b strings.Builder
	for {
		s.space()
		switch s.peek() {
		case '{':
			part, err := s.delimited('{', '}')
			if err != nil {
				return "", err
			}
			b.WriteString(part)
		case '"':
			part, err := s.delimited('"', '"')
			if err != nil {
				return "", err
			}
			b.WriteString(part)
		default:
			name := s.ident()
			if name == "" {
				return "", s.errorf("expected a value")
			}
			lower := strings.ToLower(name)
			if v, ok := s.macros[lower]; ok {
				b.WriteString(v)
			} else if isDigits(name) || bibMonths[lower] {
				b.WriteString(name)
			} else {
				return "", fmt.Errorf("%w: %q", ErrUndefinedMacro, name)
			}
		}
		s.space()
		if s.peek() != '#' {
			return b.String(), nil
		}
		s.pos++
	}
}

// delimited reads a braced or quoted literal and returns its inner text. Nested
// braces are kept and must balance.
func (s *bibScanner) delimited(open, closer byte) (string, error) {
	s.pos++
	start, depth := s.pos, 0
	for ; s.pos < len(s.src); s.pos++ {
		c := s.src[s.pos]
		switch {
		case c == closer && depth == 0:
			inner := s.src[start:s.pos]
			s.pos++
			return inner, nil
		case c == '{':
			depth++
		case c == '}':
			if depth == 0 {
				return "", s.errorf("unbalanced braces")
			}
			depth--
		}
	}
	return "", s.errorf("unterminated %c value", open)
}

// skip moves past the block opened just before pos.
func (s *bibScanner) skip(open, closer byte) error {
	for depth := 0; s.pos < len(s.src); s.pos++ {
		switch s.src[s.pos] {
		case open:
			depth++
		case closer:
			if depth == 0 {
				s.pos++
				return nil
			}
			depth--
		}
	}
	return s.errorf("unterminated block")
}

func (s *bibScanner) expect(c byte) error {
	s.space()
	if s.peek() != c {
		return s.errorf("expected %q", c)
	}
	s.pos++
	return nil
}

func (s *bibScanner) peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *bibScanner) space() {
	for s.pos < len(s.src) && strings.IndexByte(" \t\r\n", s.src[s.pos]) >= 0 {
		s.pos++
	}
}

func (s *bibScanner) ident() string {
	start := s.pos
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c <= ' ' || strings.IndexByte(`{}(),=#"@%'`, c) >= 0 {
			break
		}
		s.pos++
	}
	return s.src[start:s.pos]
}

func (s *bibScanner) errorf(format string, args ...any) error {
	line := strings.Count(s.src[:min(s.pos, len(s.src))], "\n") + 1
	return fmt.Errorf("line %d: %s", line, fmt.Sprintf(format, args...))
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
