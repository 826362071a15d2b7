// Copyright © 2024 The Fuus Army Knife authors

package formatter

import (
	"github.com/ion-fusion/fuus-army-knife/ast"
	"github.com/ion-fusion/fuus-army-knife/ist"
)

// Fixup returns a copy of tree with newlines normalized inside compound
// values.  Leading newlines and trailing newlines not following a line
// comment are removed, empty compound values are collapsed and a compound
// value whose contents start on a new line is itself moved to a new line.
// tree is not modified.  Fixup is idempotent.
func Fixup(tree *ist.Tree) *ist.Tree {
	exprs := ist.CloneAll(tree.Exprs)
	for i, n := range exprs {
		exprs[i] = fixupNode(n)
	}
	return &ist.Tree{Exprs: exprs}
}

func fixupNode(n *ist.Node) *ist.Node {
	clearEmpty(n)
	if !n.IsCompound() {
		return n
	}
	fixupItems(&n.Items)
	for i := 0; i < len(n.Items); i++ {
		lastIsNewlines := i == 0 || n.Items[i-1].IsNewlines()
		child := n.Items[i]
		if child.IsCompound() && fixupItems(&child.Items) && !lastIsNewlines {
			nl := &ist.Node{Kind: ast.Newlines, Span: child.Span, Count: 1}
			n.Items = append(n.Items[:i], append([]*ist.Node{nl}, n.Items[i:]...)...)
			i++
		}
		n.Items[i] = fixupNode(child)
	}
	return n
}

func clearEmpty(n *ist.Node) {
	if !n.IsCompound() {
		return
	}
	for _, item := range n.Items {
		if !item.IsNewlines() {
			return
		}
	}
	n.Items = nil
}

// fixupItems trims newlines at the edges of items and reports whether the
// values in items started on a new line.
func fixupItems(items *[]*ist.Node) bool {
	s := *items
	hasValues := false
	for _, item := range s {
		if item.IsNotCommentOrNewlines() {
			hasValues = true
			break
		}
	}
	before := ist.CountUntil(s,
		func(n *ist.Node) bool { return !n.IsNewlines() },
		(*ist.Node).IsNewlines)
	shouldAdd := hasValues && before == 0

	if len(s) > 0 && s[0].IsNewlines() {
		s = s[1:]
	}
	if n := len(s); n >= 2 && !s[n-2].IsCommentLine() && s[n-1].IsNewlines() {
		s = s[:n-1]
	}
	*items = s
	return shouldAdd
}
