// Copyright © 2024 The Fuus Army Knife authors

package token

import (
	"fmt"
	"strings"
)

type Token struct {
	Type   Type
	Text   string
	Source *Location
	Span   Span
}

type Type uint

// Type constants used for the fusion lexer/parser.  Whitespace and comments
// are real tokens because the formatter has to reproduce them.
const (
	INVALID Type = iota
	ERROR
	EOF

	WHITESPACE
	LINE_COMMENT
	BLOCK_COMMENT

	// Atomic expressions & literals
	NULL
	BOOL
	INT
	REAL
	TIMESTAMP
	SYMBOL
	QUOTED_SYMBOL
	OPERATOR
	STRING
	LONG_STRING
	ANNOTATION
	BLOB

	// Delimiters
	CLOB_OPEN
	CLOB_CLOSE
	PAREN_L
	PAREN_R
	BRACKET_L
	BRACKET_R
	BRACE_L
	BRACE_R
	COLON
	COMMA

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID:       "invalid",
		ERROR:         "error",
		EOF:           "EOF",
		WHITESPACE:    "whitespace",
		LINE_COMMENT:  "//",
		BLOCK_COMMENT: "/*",
		NULL:          "null",
		BOOL:          "bool",
		INT:           "int",
		REAL:          "real",
		TIMESTAMP:     "timestamp",
		SYMBOL:        "symbol",
		QUOTED_SYMBOL: "quoted-symbol",
		OPERATOR:      "operator",
		STRING:        "string",
		LONG_STRING:   "long-string",
		ANNOTATION:    "annotation",
		BLOB:          "blob",
		CLOB_OPEN:     "{{",
		CLOB_CLOSE:    "}}",
		PAREN_L:       "(",
		PAREN_R:       ")",
		BRACKET_L:     "[",
		BRACKET_R:     "]",
		BRACE_L:       "{",
		BRACE_R:       "}",
		COLON:         ":",
		COMMA:         ",",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// Span is a half-open byte interval [Start, End) of a source text.
type Span struct {
	Start int
	End  int
}

// Len returns the number of bytes covered by s.
func (s Span) Len() int {
	return s.End - s.Start
}

// Text returns the bytes of source covered by s.
func (s Span) Text(source []byte) string {
	return string(source[s.Start:s.End])
}

// Join returns the smallest span covering both s and other.
func (s Span) Join(other Span) Span {
	return Span{Start: min(s.Start, other.Start), End: max(s.End, other.End)}
}

const excerptLen = 40

// Excerpt renders the text covered by s as a quoted, escaped string for
// debug output.  Long spans are cut after 40 bytes.
func (s Span) Excerpt(source []byte) string {
	text := s.Text(source)
	truncated := false
	if len(text) > excerptLen {
		text = text[:excerptLen]
		truncated = true
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	if truncated {
		b.WriteString(`..." (truncated)`)
	} else {
		b.WriteByte('"')
	}
	return b.String()
}

type Location struct {
	File string // a name representing the source stream
	Path string // a physical location which may differ from File
	Pos  int
	Line int // line number (starting at 1 when tracked)
	Col  int // line column number (starting at 1 when tracked)
}

// Locate computes the location of byte offset pos in source.  Columns count
// bytes from the start of the line.
func Locate(file string, source []byte, pos int) *Location {
	if pos > len(source) {
		pos = len(source)
	}
	line, col := 1, 1
	for i := 0; i < pos; i++ {
		if source[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &Location{File: file, Pos: pos, Line: line, Col: col}
}

func (loc *Location) String() string {
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
