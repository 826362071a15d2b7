// Copyright © 2024 The Fuus Army Knife authors

package formatter

import (
	"slices"
	"strings"

	"github.com/ion-fusion/fuus-army-knife/ast"
	"github.com/ion-fusion/fuus-army-knife/config"
	"github.com/ion-fusion/fuus-army-knife/ist"
	"github.com/ion-fusion/fuus-army-knife/strutil"
)

// printer renders intermediate syntax trees.  Layout decisions are made from
// the text already written, so the printer never needs to look ahead past
// the items of the node it is visiting.
type printer struct {
	buf strings.Builder
	cfg *config.Config
}

func newPrinter(cfg *config.Config) *printer {
	return &printer{cfg: cfg}
}

// finish returns the output with trailing whitespace stripped from every
// line and every line terminated by a newline.
func (p *printer) finish() string {
	return strutil.TrimLinesEnd(p.buf.String())
}

func (p *printer) out() string {
	return p.buf.String()
}

func (p *printer) cursor() int {
	return strutil.FindCursorPos(p.out())
}

func (p *printer) lastIsOneOf(chars string) bool {
	return strutil.LastIsOneOf(p.out(), chars)
}

func (p *printer) writeNodes(nodes []*ist.Node, indent int) {
	for _, n := range nodes {
		p.writeNode(n, indent)
	}
}

// writeNode writes n.  The indent is the column any newline written for n
// is followed by.  Compound values compute their own indentation.
func (p *printer) writeNode(n *ist.Node, indent int) {
	switch n.Kind {
	case ast.Clob:
		p.writeClob(n, indent)
	case ast.CommentBlock:
		p.writeCommentBlock(n)
	case ast.CommentLine:
		p.writeCommentLine(n, indent)
	case ast.List:
		p.writeList(n)
	case ast.MultilineString:
		p.writeMultilineString(n)
	case ast.Newlines:
		p.writeNewlines(n.Count, indent)
	case ast.SExpr:
		p.writeSExpr(n)
	case ast.Struct:
		p.writeStruct(n)
	case ast.StructKey:
		p.writeStructKey(n)
	default:
		p.writeAtomic(n)
	}
}

func (p *printer) writeAnnotations(n *ist.Node) {
	for _, a := range n.Annotations {
		p.buf.WriteString(a)
	}
}

func (p *printer) writeAtomic(n *ist.Node) {
	p.writeAnnotations(n)
	switch n.Kind {
	case ast.QuotedString:
		p.buf.WriteByte('"')
		p.buf.WriteString(n.Value)
		p.buf.WriteByte('"')
	case ast.Blob:
		p.buf.WriteString("{{")
		if n.Value != "" {
			p.buf.WriteByte(' ')
			p.buf.WriteString(n.Value)
		}
		p.buf.WriteString(" }}")
	default:
		p.buf.WriteString(n.Value)
	}
}

func (p *printer) writeClob(n *ist.Node, indent int) {
	p.writeAnnotations(n)
	p.buf.WriteString("{{")
	cont := indent + 1
	if ist.CountItemsBeforeNewline(n.Items) != 0 {
		cont = p.cursor() + 1
	}
	for _, item := range n.Items {
		if !item.IsNewlines() && !strutil.AlreadyHasWhitespaceBeforeCursor(p.out()) {
			p.buf.WriteByte(' ')
		}
		switch item.Kind {
		case ast.Newlines:
			p.writeNewlines(item.Count, cont)
		case ast.MultilineString:
			p.buf.WriteString("'''")
			p.buf.WriteString(item.Value)
			p.buf.WriteString("'''")
		default:
			p.writeAtomic(item)
		}
	}
	if !strutil.AlreadyHasWhitespaceBeforeCursor(p.out()) {
		p.buf.WriteByte(' ')
	}
	p.buf.WriteString("}}")
}

// writeCommentBlock writes a block comment with continuation lines
// prefixed by a '*' aligned under the opening one.
func (p *printer) writeCommentBlock(n *ist.Node) {
	cont := p.cursor() + 1
	p.buf.WriteString("/*")
	if len(n.Lines) == 1 {
		p.buf.WriteByte(' ')
		p.buf.WriteString(strings.TrimSpace(n.Lines[0]))
		p.buf.WriteByte(' ')
		p.buf.WriteString("*/")
		return
	}
	for i, line := range n.Lines {
		blank := strings.TrimSpace(line) == ""
		if i > 0 && blank && i == len(n.Lines)-1 {
			break
		} else if i > 0 {
			p.buf.WriteString(strutil.Repeat(' ', cont))
			p.buf.WriteByte('*')
		}
		if !blank {
			p.buf.WriteByte(' ')
		}
		p.buf.WriteString(line)
		p.buf.WriteByte('\n')
	}
	if p.lastIsOneOf("\n") {
		p.buf.WriteString(strutil.Repeat(' ', cont))
	}
	p.buf.WriteString("*/")
}

func (p *printer) writeCommentLine(n *ist.Node, indent int) {
	p.buf.WriteString(n.Value)
	p.writeNewlines(0, indent)
}

func (p *printer) writeMultilineString(n *ist.Node) {
	p.writeAnnotations(n)
	cont := p.cursor()
	p.buf.WriteString("'''")
	value := n.Value
	if p.cfg.FormatMultilineStringContents {
		value = strutil.FormatIndentedMultiline(strutil.TrimIndent(value), cont)
	}
	p.buf.WriteString(strings.TrimRight(value, " \t"))
	if p.lastIsOneOf("\n") {
		p.buf.WriteString(strutil.Repeat(' ', cont))
	}
	p.buf.WriteString("'''")
}

func (p *printer) writeNewlines(count, indent int) {
	p.buf.WriteString(strutil.Repeat('\n', count))
	p.buf.WriteString(strutil.Repeat(' ', indent))
}

// spacing reports, for each item of an s-expression, whether a space
// follows it.  Lambda argument lists written as (| a b | body) keep the
// pipes tight against their arguments.
func spacing(items []*ist.Node) []bool {
	isPipe := func(n *ist.Node) bool {
		sym, ok := n.SymbolValue()
		return ok && sym == "|"
	}
	spaces := make([]bool, len(items))
	argList := false
	for i, item := range items {
		notLast := i != len(items)-1
		switch {
		case i == 0 && isPipe(item):
			argList = true
		case i > 0 && argList && isPipe(item):
			spaces[i] = true
		default:
			nextEndsArgList := notLast && argList && isPipe(items[i+1])
			spaces[i] = !nextEndsArgList && notLast && !item.IsNewlines()
		}
	}
	return spaces
}

func (p *printer) writeSExpr(n *ist.Node) {
	p.writeAnnotations(n)
	open := p.cursor()
	p.buf.WriteByte('(')
	if len(n.Items) > 0 {
		cont := ContinuationIndent(p.cfg, n.Items, open)
		spaces := spacing(n.Items)
		for i, item := range n.Items {
			p.writeNode(item, cont)
			if spaces[i] {
				p.buf.WriteByte(' ')
			}
		}
	}
	p.buf.WriteByte(')')
}

func hasValueAfter(items []*ist.Node, i int) bool {
	return slices.ContainsFunc(items[i+1:], (*ist.Node).IsValue)
}

func (p *printer) writeList(n *ist.Node) {
	p.writeAnnotations(n)
	p.buf.WriteByte('[')
	if len(n.Items) > 0 {
		open := p.cursor() - 1
		cont := open + 1
		for i, item := range n.Items {
			if !item.IsNewlines() && p.lastIsOneOf(",") {
				p.buf.WriteByte(' ')
			}
			if item.IsNewlines() && i == len(n.Items)-1 {
				p.writeNode(item, open)
			} else {
				p.writeNode(item, cont)
			}
			if item.IsValue() && hasValueAfter(n.Items, i) {
				p.buf.WriteByte(',')
			}
		}
	}
	p.buf.WriteByte(']')
}

func (p *printer) writeStructKey(n *ist.Node) {
	if !p.lastIsOneOf("\n") {
		p.buf.WriteByte(' ')
	}
	p.buf.WriteString(n.Value)
	p.buf.WriteByte(':')
}

func (p *printer) writeStruct(n *ist.Node) {
	p.writeAnnotations(n)
	empty := p.cursor()
	key := empty + 1
	nested := key + 3
	value := key + 3

	p.buf.WriteByte('{')
	for i, item := range n.Items {
		if item.IsNewlines() {
			indent := empty
			for _, next := range n.Items[i+1:] {
				if !next.IsValue() && !next.IsStructKey() {
					continue
				}
				switch {
				case next.IsStructKey():
					indent = key
				case next.IsStruct():
					indent = nested
				default:
					indent = value
				}
				break
			}
			p.writeNode(item, indent)
			continue
		}
		if p.lastIsOneOf(":/") || item.IsComment() {
			p.buf.WriteByte(' ')
		}
		p.writeNode(item, 0)
		if item.IsValue() && hasValueAfter(n.Items, i) {
			p.buf.WriteByte(',')
		}
	}
	if !p.lastIsOneOf("{} \n") {
		p.buf.WriteByte(' ')
	}
	p.buf.WriteByte('}')
}
