package pyi

import "fmt"

const tabWidth = 8

// scanner tokenizes one stub file. It produces the logical-line token
// stream Python defines: tokIndent/tokDedent pairs around nested
// blocks, tokNewline at the end of each logical line, and implicit
// line joining inside (), [] and {}.
type scanner struct {
	file string
	src  []byte
	off  int
	line int
	col  int

	parenDepth     int
	indents        []int
	pendingDedents int
	atLineStart    bool

	tok token
	lit string
	pos Pos
	err *ParseError
}

func newScanner(file string, src []byte) *scanner {
	return &scanner{
		file:        file,
		src:         src,
		line:        1,
		col:         1,
		indents:     []int{0},
		atLineStart: true,
	}
}

func (s *scanner) ch() int {
	if s.off >= len(s.src) {
		return -1
	}
	return int(s.src[s.off])
}

func (s *scanner) peekAt(n int) int {
	if s.off+n >= len(s.src) {
		return -1
	}
	return int(s.src[s.off+n])
}

func (s *scanner) advance() {
	if s.off >= len(s.src) {
		return
	}
	if s.src[s.off] == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	s.off++
}

func (s *scanner) errorf(format string, args ...any) {
	if s.err == nil {
		s.err = &ParseError{File: s.file, Pos: Pos{s.line, s.col}, Msg: fmt.Sprintf(format, args...)}
	}
	s.tok = tokEOF
	s.lit = ""
}

func (s *scanner) consumeNewline() {
	if s.ch() == '\r' {
		s.advance()
	}
	if s.ch() == '\n' {
		s.advance()
	}
}

func (s *scanner) skipComment() {
	for {
		c := s.ch()
		if c < 0 || c == '\n' || c == '\r' {
			return
		}
		s.advance()
	}
}

// scanIndent measures the indentation of the next non-blank line and
// emits tokIndent or tokDedent when the level changed. It reports
// whether the caller should go on to scan a regular token.
func (s *scanner) scanIndent() bool {
	for {
		width := 0
		for {
			c := s.ch()
			if c == ' ' {
				width++
			} else if c == '\t' {
				width += tabWidth - width%tabWidth
			} else {
				break
			}
			s.advance()
		}
		c := s.ch()
		if c == '#' {
			s.skipComment()
			c = s.ch()
		}
		if c == '\n' || c == '\r' {
			s.consumeNewline()
			continue
		}
		if c < 0 {
			return true
		}
		s.atLineStart = false
		top := s.indents[len(s.indents)-1]
		switch {
		case width > top:
			s.indents = append(s.indents, width)
			s.tok, s.lit = tokIndent, ""
			s.pos = Pos{s.line, s.col}
			return false
		case width < top:
			for len(s.indents) > 1 && s.indents[len(s.indents)-1] > width {
				s.indents = s.indents[:len(s.indents)-1]
				s.pendingDedents++
			}
			if s.indents[len(s.indents)-1] != width {
				s.errorf("unindent does not match any outer indentation level")
				return false
			}
			s.pendingDedents--
			s.tok, s.lit = tokDedent, ""
			s.pos = Pos{s.line, s.col}
			return false
		}
		return true
	}
}

func (s *scanner) next() {
	if s.err != nil {
		s.tok = tokEOF
		return
	}
	if s.pendingDedents > 0 {
		s.pendingDedents--
		s.tok, s.lit = tokDedent, ""
		s.pos = Pos{s.line, s.col}
		return
	}

redo:
	if s.atLineStart && s.parenDepth == 0 {
		if !s.scanIndent() {
			return
		}
	}

	for {
		c := s.ch()
		if c == ' ' || c == '\t' {
			s.advance()
			continue
		}
		if c == '\\' && (s.peekAt(1) == '\n' || s.peekAt(1) == '\r') {
			s.advance()
			s.consumeNewline()
			continue
		}
		if c == '#' {
			s.skipComment()
			continue
		}
		break
	}

	s.pos = Pos{s.line, s.col}
	c := s.ch()

	if c < 0 {
		if !s.atLineStart {
			s.atLineStart = true
			s.tok, s.lit = tokNewline, ""
			return
		}
		if len(s.indents) > 1 {
			s.indents = s.indents[:len(s.indents)-1]
			s.tok, s.lit = tokDedent, ""
			return
		}
		s.tok, s.lit = tokEOF, ""
		return
	}

	if c == '\n' || c == '\r' {
		s.consumeNewline()
		if s.parenDepth > 0 {
			goto redo
		}
		s.atLineStart = true
		s.tok, s.lit = tokNewline, ""
		return
	}

	switch {
	case isNameStart(c):
		s.scanName()
		if (s.ch() == '\'' || s.ch() == '"') && isStringPrefix(s.lit) {
			s.scanString(hasRawPrefix(s.lit))
		}
		return
	case isDigit(c):
		s.scanNumber()
		return
	case c == '\'' || c == '"':
		s.scanString(false)
		return
	}

	s.advance()
	switch c {
	case '(':
		s.parenDepth++
		s.tok, s.lit = tokLparen, "("
	case ')':
		s.parenDepth--
		s.tok, s.lit = tokRparen, ")"
	case '[':
		s.parenDepth++
		s.tok, s.lit = tokLbrack, "["
	case ']':
		s.parenDepth--
		s.tok, s.lit = tokRbrack, "]"
	case '{':
		s.parenDepth++
		s.tok, s.lit = tokLbrace, "{"
	case '}':
		s.parenDepth--
		s.tok, s.lit = tokRbrace, "}"
	case ':':
		s.tok, s.lit = tokColon, ":"
	case ',':
		s.tok, s.lit = tokComma, ","
	case '=':
		s.tok, s.lit = tokEqual, "="
	case '|':
		s.tok, s.lit = tokPipe, "|"
	case '@':
		s.tok, s.lit = tokAt, "@"
	case '/':
		s.tok, s.lit = tokSlash, "/"
	case '-':
		if s.ch() == '>' {
			s.advance()
			s.tok, s.lit = tokArrow, "->"
		} else {
			s.tok, s.lit = tokMinus, "-"
		}
	case '*':
		if s.ch() == '*' {
			s.advance()
			s.tok, s.lit = tokStarStar, "**"
		} else {
			s.tok, s.lit = tokStar, "*"
		}
	case '.':
		if s.ch() == '.' && s.peekAt(1) == '.' {
			s.advance()
			s.advance()
			s.tok, s.lit = tokEllipsis, "..."
		} else {
			s.tok, s.lit = tokDot, "."
		}
	default:
		s.errorf("unexpected character %q", rune(c))
	}
}

func (s *scanner) scanName() {
	start := s.off
	for isNameStart(s.ch()) || isDigit(s.ch()) {
		s.advance()
	}
	s.tok = tokName
	s.lit = string(s.src[start:s.off])
}

func (s *scanner) scanNumber() {
	start := s.off
	if s.ch() == '0' && (s.peekAt(1) == 'x' || s.peekAt(1) == 'X') {
		s.advance()
		s.advance()
		for isHexDigit(s.ch()) || s.ch() == '_' {
			s.advance()
		}
	} else {
		for isDigit(s.ch()) || s.ch() == '_' {
			s.advance()
		}
		if s.ch() == '.' && s.peekAt(1) != '.' {
			s.advance()
			for isDigit(s.ch()) || s.ch() == '_' {
				s.advance()
			}
		}
		if s.ch() == 'e' || s.ch() == 'E' {
			s.advance()
			if s.ch() == '+' || s.ch() == '-' {
				s.advance()
			}
			for isDigit(s.ch()) {
				s.advance()
			}
		}
	}
	s.tok = tokNumber
	s.lit = string(s.src[start:s.off])
}

// scanString consumes a string literal, including triple-quoted form,
// and leaves the decoded contents in s.lit. Raw strings keep escape
// sequences verbatim.
func (s *scanner) scanString(raw bool) {
	quote := s.ch()
	s.advance()
	triple := false
	if s.ch() == quote {
		if s.peekAt(1) == quote {
			s.advance()
			s.advance()
			triple = true
		} else {
			s.advance()
			s.tok, s.lit = tokString, ""
			return
		}
	}

	var buf []byte
	for {
		c := s.ch()
		if c < 0 {
			s.errorf("string literal not terminated")
			return
		}
		if !triple && (c == '\n' || c == '\r') {
			s.errorf("string literal not terminated")
			return
		}
		if c == quote {
			if !triple {
				s.advance()
				break
			}
			if s.peekAt(1) == quote && s.peekAt(2) == quote {
				s.advance()
				s.advance()
				s.advance()
				break
			}
			buf = append(buf, byte(c))
			s.advance()
			continue
		}
		if c == '\\' && !raw {
			s.advance()
			e := s.ch()
			if e < 0 {
				s.errorf("string literal not terminated")
				return
			}
			switch e {
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			case 'r':
				buf = append(buf, '\r')
			case '\\', '\'', '"':
				buf = append(buf, byte(e))
			case '\n':
				// escaped newline joins the line
			default:
				buf = append(buf, '\\', byte(e))
			}
			s.advance()
			continue
		}
		buf = append(buf, byte(c))
		s.advance()
	}
	s.tok = tokString
	s.lit = string(buf)
}

func isNameStart(c int) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isDigit(c int) bool { return c >= '0' && c <= '9' }

func isHexDigit(c int) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// isStringPrefix reports whether a name directly followed by a quote
// is one of Python's string prefixes rather than an identifier.
func isStringPrefix(lit string) bool {
	if len(lit) == 0 || len(lit) > 2 {
		return false
	}
	for i := 0; i < len(lit); i++ {
		switch lit[i] {
		case 'r', 'R', 'b', 'B', 'u', 'U', 'f', 'F':
		default:
			return false
		}
	}
	return true
}

func hasRawPrefix(lit string) bool {
	for i := 0; i < len(lit); i++ {
		if lit[i] == 'r' || lit[i] == 'R' {
			return true
		}
	}
	return false
}
