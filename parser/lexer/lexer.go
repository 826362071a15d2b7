// Copyright © 2024 The Fuus Army Knife authors

package lexer

import (
	"fmt"
	"strings"

	"github.com/ion-fusion/fuus-army-knife/parser/token"
)

type LexFn func(*Lexer) []*token.Token

const (
	operatorRunes = "!#%&*+-./;<=>?@^`|~"
	base64Runes   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="
)

var nullTypes = []string{
	"bool", "int", "decimal", "float", "timestamp", "symbol", "string",
	"clob", "blob", "list", "sexp", "struct",
}

// Lexer produces fusion tokens.  Whitespace and comments are emitted as
// tokens so that a formatter can reproduce them.
type Lexer struct {
	scanner *token.Scanner
	lex     LexFn
	open    []token.Type // unclosed delimiters
}

func New(s *token.Scanner) *Lexer {
	lex := &Lexer{
		scanner: s,
		lex:     (*Lexer).readToken,
	}
	return lex
}

// ReadToken returns the next token.  After an ERROR or EOF token every
// following call returns EOF.
func (lex *Lexer) ReadToken() []*token.Token {
	return lex.lex(lex)
}

func (lex *Lexer) readToken() []*token.Token {
	if lex.scanner.EOF() {
		return lex.emit(token.EOF, "")
	}
	if err := lex.scanner.Err(); err != nil {
		return lex.emitError(err)
	}
	c, _ := lex.scanner.Peek()
	switch {
	case isSpace(c):
		lex.scanner.AcceptSeq(isSpace)
		return lex.emitText(token.WHITESPACE)
	case lex.scanner.HasPrefix("//"):
		lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' && c != '\r' })
		// One line break: "\r\n", "\r" or "\n".
		lex.scanner.AcceptRune('\r')
		lex.scanner.AcceptRune('\n')
		return lex.emitText(token.LINE_COMMENT)
	case lex.scanner.HasPrefix("/*"):
		return lex.readBlockComment()
	case lex.scanner.HasPrefix("{{"):
		return lex.readLob()
	case lex.scanner.HasPrefix("'''"):
		return lex.readLongString()
	}
	switch c {
	case '(':
		return lex.openToken(token.PAREN_L)
	case ')':
		return lex.closeToken(token.PAREN_R, token.PAREN_L)
	case '[':
		return lex.openToken(token.BRACKET_L)
	case ']':
		return lex.closeToken(token.BRACKET_R, token.BRACKET_L)
	case '{':
		return lex.openToken(token.BRACE_L)
	case '}':
		return lex.closeToken(token.BRACE_R, token.BRACE_L)
	case ':':
		return lex.charToken(token.COLON)
	case ',':
		return lex.charToken(token.COMMA)
	case '"':
		return lex.readString()
	case '\'':
		return lex.readQuotedSymbol()
	}
	switch {
	case isDigit(c) || (c == '-' && isDigit(lex.peekRuneN(1))):
		return lex.readNumeric()
	case isIdentStart(c):
		return lex.readIdentifier()
	case strings.ContainsRune(operatorRunes, c):
		if !lex.inSExpr() {
			return lex.errorf("operator symbol %q outside of s-expression", c)
		}
		return lex.readOperator()
	default:
		return lex.errorf("unexpected text starting with %q", c)
	}
}

func (lex *Lexer) inSExpr() bool {
	return len(lex.open) > 0 && lex.open[len(lex.open)-1] == token.PAREN_L
}

func (lex *Lexer) openToken(typ token.Type) []*token.Token {
	lex.open = append(lex.open, typ)
	return lex.charToken(typ)
}

func (lex *Lexer) closeToken(typ, opening token.Type) []*token.Token {
	// Mismatched delimiters are reported by the parser.
	if n := len(lex.open); n > 0 && lex.open[n-1] == opening {
		lex.open = lex.open[:n-1]
	}
	return lex.charToken(typ)
}

func (lex *Lexer) emit(typ token.Type, text string) []*token.Token {
	loc := lex.scanner.LocStart()
	tok := []*token.Token{{
		Type:   typ,
		Text:   text,
		Source: loc,
		Span:   token.Span{Start: loc.Pos, End: loc.Pos},
	}}
	lex.scanner.Ignore()
	if typ == token.EOF || typ == token.ERROR {
		lex.lex = (*Lexer).readEOF
	}
	return tok
}

func (lex *Lexer) emitText(typ token.Type) []*token.Token {
	return []*token.Token{lex.scanner.EmitToken(typ)}
}

// emitError reports err at the start of the current token.
func (lex *Lexer) emitError(err error) []*token.Token {
	return lex.emit(token.ERROR, err.Error())
}

func (lex *Lexer) errorf(format string, v ...interface{}) []*token.Token {
	return lex.emitError(fmt.Errorf(format, v...))
}

func (lex *Lexer) charToken(typ token.Type) []*token.Token {
	_ = lex.scanner.ScanRune()
	return lex.emitText(typ)
}

func (lex *Lexer) readEOF() []*token.Token {
	loc := lex.scanner.Loc()
	return []*token.Token{{
		Type:   token.EOF,
		Source: loc,
		Span:   token.Span{Start: loc.Pos, End: loc.Pos},
	}}
}

func (lex *Lexer) readBlockComment() []*token.Token {
	lex.scanner.Advance(2)
	for !lex.scanner.AcceptString("*/") {
		if lex.scanner.ScanRune() != nil {
			return lex.errorf("unterminated block comment")
		}
	}
	return lex.emitText(token.BLOCK_COMMENT)
}

// readLob reads the opening of a clob or a complete blob.  A clob contains
// only strings and whitespace while a blob is base64 text.
func (lex *Lexer) readLob() []*token.Token {
	rest := string(lex.scanner.Rest()[2:])
	content := strings.TrimLeft(rest, " \t\r\n\f\v")
	if strings.HasPrefix(content, `"`) || strings.HasPrefix(content, "'''") {
		lex.scanner.Advance(2)
		lex.lex = (*Lexer).readClob
		return lex.emitText(token.CLOB_OPEN)
	}
	end := strings.Index(rest, "}}")
	if end < 0 {
		return lex.errorf("unterminated blob")
	}
	for _, c := range rest[:end] {
		if !isSpace(c) && !strings.ContainsRune(base64Runes, c) {
			return lex.errorf("invalid character %q in blob", c)
		}
	}
	lex.scanner.Advance(2 + end + 2)
	return lex.emitText(token.BLOB)
}

func (lex *Lexer) readClob() []*token.Token {
	if lex.scanner.EOF() {
		return lex.errorf("unterminated clob")
	}
	c, _ := lex.scanner.Peek()
	switch {
	case isSpace(c):
		lex.scanner.AcceptSeq(isSpace)
		return lex.emitText(token.WHITESPACE)
	case lex.scanner.HasPrefix("}}"):
		lex.scanner.Advance(2)
		lex.lex = (*Lexer).readToken
		return lex.emitText(token.CLOB_CLOSE)
	case lex.scanner.HasPrefix("'''"):
		return lex.readLongString()
	case c == '"':
		return lex.readString()
	default:
		return lex.errorf("unexpected text starting with %q in clob", c)
	}
}

func (lex *Lexer) readString() []*token.Token {
	_ = lex.scanner.ScanRune() // opening quote
	for {
		if lex.scanner.ScanRune() != nil {
			return lex.errorf("unterminated string literal")
		}
		switch lex.scanner.Rune() {
		case '"':
			return lex.emitText(token.STRING)
		case '\n', '\r':
			return lex.errorf("unterminated string literal")
		case '\\':
			if lex.scanner.ScanRune() != nil {
				return lex.errorf("unterminated string literal")
			}
		}
	}
}

func (lex *Lexer) readLongString() []*token.Token {
	lex.scanner.Advance(3)
	for !lex.scanner.AcceptString("'''") {
		if lex.scanner.ScanRune() != nil {
			return lex.errorf("unterminated long string literal")
		}
		if lex.scanner.Rune() == '\\' {
			if lex.scanner.ScanRune() != nil {
				return lex.errorf("unterminated long string literal")
			}
		}
	}
	return lex.emitText(token.LONG_STRING)
}

func (lex *Lexer) readQuotedSymbol() []*token.Token {
	_ = lex.scanner.ScanRune() // opening quote
	for {
		if lex.scanner.ScanRune() != nil {
			return lex.errorf("unterminated quoted symbol")
		}
		switch lex.scanner.Rune() {
		case '\'':
			return lex.readAnnotationOr(token.QUOTED_SYMBOL)
		case '\n', '\r':
			return lex.errorf("unterminated quoted symbol")
		case '\\':
			if lex.scanner.ScanRune() != nil {
				return lex.errorf("unterminated quoted symbol")
			}
		}
	}
}

func (lex *Lexer) readIdentifier() []*token.Token {
	lex.scanner.AcceptSeq(isIdent)
	switch text := lex.scanner.Text(); text {
	case "null":
		if lex.scanner.AcceptRune('.') {
			lex.scanner.AcceptSeq(isIdent)
			typ := strings.TrimPrefix(lex.scanner.Text(), "null.")
			if !isNullType(typ) {
				return lex.errorf("invalid null type %q", typ)
			}
		}
		return lex.keyword(token.NULL)
	case "true", "false":
		return lex.keyword(token.BOOL)
	}
	return lex.readAnnotationOr(token.SYMBOL)
}

func (lex *Lexer) keyword(typ token.Type) []*token.Token {
	if n := lex.annotationSuffix(); n > 0 {
		return lex.errorf("keyword %s cannot be used as an annotation", lex.scanner.Text())
	}
	return lex.emitText(typ)
}

// readAnnotationOr emits an ANNOTATION token when the symbol just scanned is
// followed by "::", otherwise a token of type typ.
func (lex *Lexer) readAnnotationOr(typ token.Type) []*token.Token {
	if n := lex.annotationSuffix(); n > 0 {
		lex.scanner.Advance(n)
		return lex.emitText(token.ANNOTATION)
	}
	return lex.emitText(typ)
}

// annotationSuffix returns the length of optional whitespace and "::"
// following the current position, or zero.
func (lex *Lexer) annotationSuffix() int {
	rest := string(lex.scanner.Rest())
	trimmed := strings.TrimLeft(rest, " \t\r\n\f\v")
	if !strings.HasPrefix(trimmed, "::") {
		return 0
	}
	return len(rest) - len(trimmed) + 2
}

func (lex *Lexer) readOperator() []*token.Token {
	for {
		if lex.scanner.HasPrefix("//") || lex.scanner.HasPrefix("/*") {
			break
		}
		if !lex.scanner.AcceptAny(operatorRunes) {
			break
		}
	}
	return lex.emitText(token.OPERATOR)
}

// readNumeric reads a timestamp, real or integer.  The literal must end at a
// delimiter.
func (lex *Lexer) readNumeric() []*token.Token {
	rest := lex.scanner.Rest()
	typ := token.TIMESTAMP
	n := matchTimestamp(rest)
	if n == 0 {
		typ = token.REAL
		n = matchReal(rest)
	}
	if n == 0 {
		typ = token.INT
		n = matchInt(rest)
	}
	if n == 0 {
		return lex.errorf("invalid numeric literal")
	}
	if n < len(rest) && !lex.isStop(rest[n:]) {
		lex.scanner.Advance(n)
		c, _ := lex.scanner.Peek()
		lex.scanner.Ignore()
		return lex.errorf("invalid character %q in numeric literal", c)
	}
	lex.scanner.Advance(n)
	return lex.emitText(typ)
}

// isStop reports whether rest begins with a character allowed to follow a
// numeric literal.
func (lex *Lexer) isStop(rest []byte) bool {
	c := rune(rest[0])
	switch {
	case isSpace(c):
		return true
	case strings.ContainsRune(`()[]{},"'`, c):
		return true
	case strings.HasPrefix(string(rest), "//") || strings.HasPrefix(string(rest), "/*"):
		return true
	case lex.inSExpr() && strings.ContainsRune(operatorRunes, c) && c != '.':
		return true
	}
	return false
}

func (lex *Lexer) peekRuneN(n int) rune {
	r, _ := lex.scanner.PeekN(n)
	return r
}

func isNullType(typ string) bool {
	for _, t := range nullTypes {
		if typ == t {
			return true
		}
	}
	return false
}

func isSpace(c rune) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', '\v':
		return true
	}
	return false
}

func isIdentStart(c rune) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_' || c == '$'
}

func isIdent(c rune) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}
