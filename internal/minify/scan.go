package minify

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
)

// placeholderPattern matches the opaque tokens literals are swapped for while
// the regex passes run. NUL never survives the passes' character classes.
var placeholderPattern = regexp.MustCompile("\x00([0-9]+)\x00")

// regexKeywords may directly precede a JS regular-expression literal.
var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "case": true, "do": true, "else": true,
	"in": true, "of": true, "void": true, "new": true, "delete": true,
	"throw": true, "yield": true, "await": true, "instanceof": true,
}

// scanner strips comments and lifts literals out of source text.
type scanner struct {
	src  string
	js   bool
	out  bytes.Buffer
	lits []string
}

// mask removes comments and replaces string literals (plus JS template and
// regular-expression literals, or CSS url() arguments) with placeholders.
// Block comments become a single space so tokens on either side stay apart.
func mask(src string, js bool) (string, []string) {
	s := &scanner{src: src, js: js}
	s.out.Grow(len(src))
	s.run()
	return s.out.String(), s.lits
}

// restore puts literals back in place of their placeholders.
func restore(masked string, lits []string) string {
	if len(lits) == 0 {
		return masked
	}
	return placeholderPattern.ReplaceAllStringFunc(masked, func(m string) string {
		idx, err := strconv.Atoi(m[1 : len(m)-1])
		if err != nil || idx >= len(lits) {
			return m
		}
		return lits[idx]
	})
}

func (s *scanner) run() {
	src := s.src
	n := len(src)
	i := 0
	for i < n {
		c := src[i]
		switch {
		case c == '/' && i+1 < n && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				i = n
			} else {
				i += 2 + end + 2
			}
			s.out.WriteByte(' ')

		case s.js && c == '/' && i+1 < n && src[i+1] == '/':
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				i = n
			} else {
				i += end
			}

		case c == '"' || c == '\'' || (s.js && c == '`'):
			j := s.quoted(i)
			s.literal(src[i:j])
			i = j

		case s.js && c == '/' && s.regexAllowed():
			j, ok := s.regex(i)
			if !ok {
				s.out.WriteByte(c)
				i++
				continue
			}
			s.literal(src[i:j])
			i = j

		case !s.js && (c == 'u' || c == 'U') && s.isURLStart(i):
			i = s.url(i)

		default:
			s.out.WriteByte(c)
			i++
		}
	}
}

func (s *scanner) literal(text string) {
	s.out.WriteByte(0)
	s.out.WriteString(strconv.Itoa(len(s.lits)))
	s.out.WriteByte(0)
	s.lits = append(s.lits, text)
}

// quoted returns the index just past the string starting at i. Single and
// double quoted strings end at an unescaped newline if unterminated.
func (s *scanner) quoted(i int) int {
	src := s.src
	q := src[i]
	j := i + 1
	for j < len(src) {
		switch src[j] {
		case '\\':
			j += 2
			continue
		case q:
			return j + 1
		case '\n':
			if q != '`' {
				return j
			}
		}
		j++
	}
	return len(src)
}

// regexAllowed reports whether a '/' at the current position starts a
// regular-expression literal rather than a division, judged by the last
// significant byte already emitted.
func (s *scanner) regexAllowed() bool {
	b := bytes.TrimRight(s.out.Bytes(), " \t\r\n")
	if len(b) == 0 {
		return true
	}
	last := b[len(b)-1]
	switch {
	case strings.IndexByte("(,=:[!&|?{};+-*%<>~^", last) >= 0:
		return true
	case isIdentByte(last):
		start := len(b) - 1
		for start > 0 && isIdentByte(b[start-1]) {
			start--
		}
		return regexKeywords[string(b[start:])]
	default:
		return false
	}
}

// regex returns the index past the regular-expression literal at i,
// including flags. ok is false when no closing slash exists on the line.
func (s *scanner) regex(i int) (int, bool) {
	src := s.src
	inClass := false
	j := i + 1
	for j < len(src) {
		switch src[j] {
		case '\\':
			j += 2
			continue
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '\n':
			return 0, false
		case '/':
			if !inClass {
				j++
				for j < len(src) && isIdentByte(src[j]) {
					j++
				}
				return j, true
			}
		}
		j++
	}
	return 0, false
}

func (s *scanner) isURLStart(i int) bool {
	if len(s.src)-i < 4 || !strings.EqualFold(s.src[i:i+4], "url(") {
		return false
	}
	return i == 0 || !isIdentByte(s.src[i-1]) && s.src[i-1] != '-'
}

// url emits "url(" and lifts an unquoted argument out as a literal. Quoted
// arguments are left for the string case of the main loop.
func (s *scanner) url(i int) int {
	src := s.src
	s.out.WriteString(src[i : i+4])
	j := i + 4
	for j < len(src) && isSpace(src[j]) {
		j++
	}
	if j < len(src) && (src[j] == '"' || src[j] == '\'') {
		return j
	}
	end := strings.IndexByte(src[j:], ')')
	if end < 0 {
		s.literal(src[j:])
		return len(src)
	}
	s.literal(strings.TrimRight(src[j:j+end], " \t\r\n\f"))
	return j + end
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c >= 0x80
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
