// Copyright © 2024 The Fuus Army Knife authors

package rdparser

import (
	"fmt"
	"strings"

	"github.com/ion-fusion/fuus-army-knife/ast"
	"github.com/ion-fusion/fuus-army-knife/parser/token"
	"github.com/ion-fusion/fuus-army-knife/strutil"
)

// Parse builds the concrete syntax tree of a fusion source file.  The first
// syntax error aborts parsing and is returned as a *token.LocationError.
func Parse(fileName string, source []byte) ([]*ast.Expr, error) {
	return New(token.NewScanner(fileName, source)).ParseProgram()
}

// Parser is a fusion parser that keeps comments and newlines.
type Parser struct {
	src *TokenSource
}

// NewFromSource initializes and returns a Parser that reads tokens from src.
func NewFromSource(src *TokenSource) *Parser {
	return &Parser{
		src: src,
	}
}

// New initializes and returns a new Parser that reads tokens from scanner.
func New(scanner *token.Scanner) *Parser {
	return NewFromSource(NewTokenSource(scanner))
}

// ParseProgram parses the top level sequence of values, comments and
// newlines of a file.
func (p *Parser) ParseProgram() ([]*ast.Expr, error) {
	var exprs []*ast.Expr
	for {
		exprs = append(exprs, p.parseTrivia()...)
		if p.src.IsEOF() {
			return exprs, nil
		}
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
}

// ParseExpression parses a single, possibly annotated, value.
func (p *Parser) ParseExpression() (*ast.Expr, error) {
	var annotations []string
	for p.Accept(token.ANNOTATION) {
		annotations = append(annotations, p.TokenText())
		p.src.AcceptType(token.WHITESPACE)
	}
	expr, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if len(annotations) > 0 {
		expr.Annotations = annotations
	}
	return expr, nil
}

func (p *Parser) parseValue() (*ast.Expr, error) {
	switch p.PeekType() {
	case token.NULL:
		return p.atomic(ast.Null), nil
	case token.BOOL:
		return p.atomic(ast.Boolean), nil
	case token.INT:
		return p.atomic(ast.Integer), nil
	case token.REAL:
		return p.atomic(ast.Real), nil
	case token.TIMESTAMP:
		return p.atomic(ast.Timestamp), nil
	case token.SYMBOL, token.QUOTED_SYMBOL, token.OPERATOR:
		return p.atomic(ast.Symbol), nil
	case token.STRING:
		p.ReadToken()
		return p.textNode(ast.QuotedString, unquote(p.TokenText(), `"`)), nil
	case token.LONG_STRING:
		p.ReadToken()
		return p.textNode(ast.MultilineString, unquote(p.TokenText(), "'''")), nil
	case token.BLOB:
		p.ReadToken()
		inner := strings.TrimSuffix(strings.TrimPrefix(p.TokenText(), "{{"), "}}")
		return p.textNode(ast.Blob, strings.TrimSpace(inner)), nil
	case token.CLOB_OPEN:
		return p.ParseClob()
	case token.PAREN_L:
		return p.ParseSExpr()
	case token.BRACKET_L:
		return p.ParseList()
	case token.BRACE_L:
		return p.ParseStruct()
	case token.ERROR, token.INVALID:
		p.ReadToken()
		return nil, p.errorf("%s", p.TokenText())
	case token.EOF:
		p.ReadToken()
		return nil, p.errorf("unexpected end of input")
	default:
		p.ReadToken()
		return nil, p.errorf("unexpected token: %v", p.TokenType())
	}
}

func (p *Parser) atomic(kind ast.Kind) *ast.Expr {
	p.ReadToken()
	return p.textNode(kind, p.TokenText())
}

func (p *Parser) textNode(kind ast.Kind, value string) *ast.Expr {
	return &ast.Expr{
		Kind:  kind,
		Span:  p.src.Token.Span,
		Value: value,
	}
}

// ParseSExpr parses "(" value* ")".
func (p *Parser) ParseSExpr() (*ast.Expr, error) {
	if !p.Accept(token.PAREN_L) {
		return nil, p.peekErrorf("expected (")
	}
	open := p.src.Token
	expr := &ast.Expr{Kind: ast.SExpr}
	for {
		expr.Items = append(expr.Items, p.parseTrivia()...)
		if p.src.IsEOF() {
			return nil, p.unmatched(open)
		}
		if p.Accept(token.PAREN_R) {
			break
		}
		x, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		expr.Items = append(expr.Items, x)
	}
	expr.Span = open.Span.Join(p.src.Token.Span)
	return expr, nil
}

// ParseList parses "[" value ("," value)* ","? "]".
func (p *Parser) ParseList() (*ast.Expr, error) {
	if !p.Accept(token.BRACKET_L) {
		return nil, p.peekErrorf("expected [")
	}
	open := p.src.Token
	expr := &ast.Expr{Kind: ast.List}
	expectValue := true
	for {
		expr.Items = append(expr.Items, p.parseTrivia()...)
		switch {
		case p.src.IsEOF():
			return nil, p.unmatched(open)
		case p.Accept(token.BRACKET_R):
			expr.Span = open.Span.Join(p.src.Token.Span)
			return expr, nil
		case p.Accept(token.COMMA):
			if expectValue {
				return nil, p.errorf("unexpected , in list")
			}
			expectValue = true
			continue
		}
		if !expectValue {
			return nil, p.peekErrorf("expected , or ] in list")
		}
		x, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		expr.Items = append(expr.Items, x)
		expectValue = false
	}
}

// ParseStruct parses "{" member ("," member)* ","? "}".  Comments and
// newlines between members are direct children of the struct.
func (p *Parser) ParseStruct() (*ast.Expr, error) {
	if !p.Accept(token.BRACE_L) {
		return nil, p.peekErrorf("expected {")
	}
	open := p.src.Token
	expr := &ast.Expr{Kind: ast.Struct}
	expectMember := true
	for {
		expr.Items = append(expr.Items, p.parseTrivia()...)
		switch {
		case p.src.IsEOF():
			return nil, p.unmatched(open)
		case p.Accept(token.BRACE_R):
			expr.Span = open.Span.Join(p.src.Token.Span)
			return expr, nil
		case p.Accept(token.COMMA):
			if expectMember {
				return nil, p.errorf("unexpected , in struct")
			}
			expectMember = true
			continue
		}
		if !expectMember {
			return nil, p.peekErrorf("expected , or } in struct")
		}
		member, err := p.parseStructMember()
		if err != nil {
			return nil, err
		}
		expr.Items = append(expr.Items, member)
		expectMember = false
	}
}

func (p *Parser) parseStructMember() (*ast.Expr, error) {
	switch p.PeekType() {
	case token.SYMBOL, token.QUOTED_SYMBOL, token.STRING, token.LONG_STRING:
		p.ReadToken()
	case token.ANNOTATION:
		p.ReadToken()
		return nil, p.errorf("struct keys cannot be annotated")
	case token.ERROR:
		p.ReadToken()
		return nil, p.errorf("%s", p.TokenText())
	default:
		return nil, p.peekErrorf("expected struct key")
	}
	key := p.textNode(ast.StructKey, p.TokenText())
	member := &ast.Expr{Kind: ast.StructMember, Items: []*ast.Expr{key}}
	member.Items = append(member.Items, p.parseTrivia()...)
	if !p.Accept(token.COLON) {
		return nil, p.peekErrorf("expected : after struct key %s", key.Value)
	}
	member.Items = append(member.Items, p.parseTrivia()...)
	value, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	member.Items = append(member.Items, value)
	member.Span = key.Span.Join(value.Span)
	return member, nil
}

// ParseClob parses "{{" (string | long string)* "}}".
func (p *Parser) ParseClob() (*ast.Expr, error) {
	if !p.Accept(token.CLOB_OPEN) {
		return nil, p.peekErrorf("expected {{")
	}
	open := p.src.Token
	expr := &ast.Expr{Kind: ast.Clob}
	for {
		p.ReadToken()
		switch p.TokenType() {
		case token.CLOB_CLOSE:
			expr.Span = open.Span.Join(p.src.Token.Span)
			return expr, nil
		case token.WHITESPACE:
			if nl := p.newlines(); nl != nil {
				expr.Items = append(expr.Items, nl)
			}
		case token.STRING:
			expr.Items = append(expr.Items, p.textNode(ast.QuotedString, unquote(p.TokenText(), `"`)))
		case token.LONG_STRING:
			expr.Items = append(expr.Items, p.textNode(ast.MultilineString, unquote(p.TokenText(), "'''")))
		case token.ERROR:
			return nil, p.errorf("%s", p.TokenText())
		case token.EOF:
			return nil, p.unmatched(open)
		default:
			return nil, p.errorf("unexpected token in clob: %v", p.TokenType())
		}
	}
}

// parseTrivia consumes whitespace and comments, returning the nodes the
// formatter keeps for them.
func (p *Parser) parseTrivia() []*ast.Expr {
	var exprs []*ast.Expr
	for {
		switch p.PeekType() {
		case token.WHITESPACE:
			p.ReadToken()
			if nl := p.newlines(); nl != nil {
				exprs = append(exprs, nl)
			}
		case token.LINE_COMMENT:
			p.ReadToken()
			span := p.src.Token.Span
			exprs = append(exprs,
				&ast.Expr{Kind: ast.CommentLine, Span: span, Value: strings.TrimRightFunc(p.TokenText(), isSpace)},
				&ast.Expr{Kind: ast.Newlines, Span: span, Count: 1},
			)
		case token.BLOCK_COMMENT:
			p.ReadToken()
			exprs = append(exprs, &ast.Expr{
				Kind:  ast.CommentBlock,
				Span:  p.src.Token.Span,
				Lines: BlockCommentLines(p.TokenText()),
			})
		default:
			return exprs
		}
	}
}

func (p *Parser) newlines() *ast.Expr {
	n := strutil.CountNewlines(p.TokenText())
	if n == 0 {
		return nil
	}
	return &ast.Expr{Kind: ast.Newlines, Span: p.src.Token.Span, Count: n}
}

// BlockCommentLines splits a block comment into its lines.  Each line is
// trimmed and loses a leading "*" and one space following it.
func BlockCommentLines(comment string) []string {
	comment = strings.TrimSuffix(strings.TrimPrefix(comment, "/*"), "*/")
	lines := strutil.Lines(comment)
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "*") {
			line = strings.TrimPrefix(line[1:], " ")
		}
		lines[i] = line
	}
	return lines
}

func unquote(text, quote string) string {
	return strings.TrimSuffix(strings.TrimPrefix(text, quote), quote)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '\f', '\v':
		return true
	}
	return false
}

func (p *Parser) unmatched(open *token.Token) error {
	return &token.LocationError{
		Err:    fmt.Errorf("unmatched %s", open.Text),
		Source: open.Source,
	}
}

// errorf reports an error at the current token.
func (p *Parser) errorf(format string, v ...interface{}) error {
	return &token.LocationError{
		Err:    fmt.Errorf(format, v...),
		Source: p.Location(),
	}
}

// peekErrorf reports an error at the next token.
func (p *Parser) peekErrorf(format string, v ...interface{}) error {
	if p.PeekType() == token.ERROR {
		p.ReadToken()
		return p.errorf("%s", p.TokenText())
	}
	return &token.LocationError{
		Err:    fmt.Errorf(format, v...),
		Source: p.PeekLocation(),
	}
}

func (p *Parser) Accept(typ ...token.Type) bool {
	return p.src.AcceptType(typ...)
}

func (p *Parser) ReadToken() *token.Token {
	p.src.Scan()
	return p.src.Token
}

func (p *Parser) TokenText() string {
	return p.src.Token.Text
}

func (p *Parser) TokenType() token.Type {
	return p.src.Token.Type
}

func (p *Parser) Location() *token.Location {
	return p.src.Token.Source
}

func (p *Parser) PeekType() token.Type {
	return p.src.Peek().Type
}

func (p *Parser) PeekLocation() *token.Location {
	return p.src.Peek().Source
}
