// Copyright © 2024 The Fuus Army Knife authors

package ist

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ion-fusion/fuus-army-knife/ast"
)

// Dump writes an indented debug rendering of tree to w.  Compound nodes
// show their newline count and the number of items before the first
// newline.
func Dump(w io.Writer, source []byte, tree *Tree) error {
	for _, n := range tree.Exprs {
		if err := dumpNode(w, source, n, 0); err != nil {
			return err
		}
	}
	return nil
}

// DumpString returns the Dump rendering of tree.
func DumpString(source []byte, tree *Tree) string {
	var b strings.Builder
	_ = Dump(&b, source, tree)
	return b.String()
}

func dumpNode(w io.Writer, source []byte, n *Node, depth int) error {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Kind.String())
	b.WriteString(" span=")
	b.WriteString(n.Span.Excerpt(source))
	if len(n.Annotations) > 0 {
		quoted := make([]string, len(n.Annotations))
		for i, a := range n.Annotations {
			quoted[i] = strconv.Quote(a)
		}
		b.WriteString(" annotations=[" + strings.Join(quoted, ", ") + "]")
	}
	switch {
	case n.Kind == ast.Newlines:
		fmt.Fprintf(&b, " count=%d", n.Count)
	case n.Kind == ast.CommentBlock:
		quoted := make([]string, len(n.Lines))
		for i, l := range n.Lines {
			quoted[i] = strconv.Quote(l)
		}
		b.WriteString(" lines=[" + strings.Join(quoted, ", ") + "]")
	case n.IsCompound() || n.Kind == ast.Clob:
		fmt.Fprintf(&b, " newlines=%d before_newline=%d", n.CountNewlines(), CountItemsBeforeNewline(n.Items))
	default:
		b.WriteString(" value=")
		b.WriteString(strconv.Quote(n.Value))
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	for _, item := range n.Items {
		if err := dumpNode(w, source, item, depth+1); err != nil {
			return err
		}
	}
	return nil
}
