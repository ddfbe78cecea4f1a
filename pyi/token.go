// Package pyi parses the Python stub (.pyi) subset used by generated
// scripting-API stub corpora: class declarations with annotated
// attributes, method signatures with defaults and return annotations,
// docstrings, and the small slice of typing syntax those generators
// emit. Function bodies are always stubs; no executable Python is
// handled.
package pyi

import "fmt"

type token int

const (
	tokEOF token = iota
	tokNewline
	tokIndent
	tokDedent
	tokName
	tokNumber
	tokString
	tokColon
	tokComma
	tokEqual
	tokArrow
	tokDot
	tokEllipsis
	tokPipe
	tokStar
	tokStarStar
	tokSlash
	tokMinus
	tokAt
	tokLparen
	tokRparen
	tokLbrack
	tokRbrack
	tokLbrace
	tokRbrace
)

var tokenNames = map[token]string{
	tokEOF:      "end of file",
	tokNewline:  "newline",
	tokIndent:   "indent",
	tokDedent:   "dedent",
	tokName:     "name",
	tokNumber:   "number",
	tokString:   "string",
	tokColon:    "':'",
	tokComma:    "','",
	tokEqual:    "'='",
	tokArrow:    "'->'",
	tokDot:      "'.'",
	tokEllipsis: "'...'",
	tokPipe:     "'|'",
	tokStar:     "'*'",
	tokStarStar: "'**'",
	tokSlash:    "'/'",
	tokMinus:    "'-'",
	tokAt:       "'@'",
	tokLparen:   "'('",
	tokRparen:   "')'",
	tokLbrack:   "'['",
	tokRbrack:   "']'",
	tokLbrace:   "'{'",
	tokRbrace:   "'}'",
}

func (t token) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// ParseError is a scan or parse failure with its source location.
type ParseError struct {
	File string
	Pos  Pos
	Msg  string
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s:%s: %s", e.File, e.Pos, e.Msg)
}
