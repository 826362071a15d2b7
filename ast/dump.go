// Copyright © 2024 The Fuus Army Knife authors

package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump writes an indented debug rendering of exprs to w.  Spans are shown as
// excerpts of source.
func Dump(w io.Writer, source []byte, exprs []*Expr) error {
	for _, expr := range exprs {
		if err := dumpExpr(w, source, expr, 0); err != nil {
			return err
		}
	}
	return nil
}

// DumpString returns the Dump rendering of exprs.
func DumpString(source []byte, exprs []*Expr) string {
	var b strings.Builder
	_ = Dump(&b, source, exprs)
	return b.String()
}

func dumpExpr(w io.Writer, source []byte, e *Expr, depth int) error {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(e.Kind.String())
	b.WriteString(" span=")
	b.WriteString(e.Span.Excerpt(source))
	if len(e.Annotations) > 0 {
		b.WriteString(" annotations=")
		b.WriteString(quoteList(e.Annotations))
	}
	switch {
	case e.Kind == Newlines:
		fmt.Fprintf(&b, " count=%d", e.Count)
	case e.Kind == CommentBlock:
		b.WriteString(" lines=")
		b.WriteString(quoteList(e.Lines))
	case e.Kind.IsAtomic(), e.Kind == CommentLine, e.Kind == MultilineString, e.Kind == StructKey:
		b.WriteString(" value=")
		b.WriteString(strconv.Quote(e.Value))
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	for _, item := range e.Items {
		if err := dumpExpr(w, source, item, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func quoteList(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
