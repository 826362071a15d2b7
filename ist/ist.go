// Copyright © 2024 The Fuus Army Knife authors

// Package ist defines the intermediate syntax tree the formatter works on.
// It mirrors the concrete syntax tree except that struct members are
// flattened into their struct and every node can report layout metrics.
package ist

import (
	"github.com/ion-fusion/fuus-army-knife/ast"
	"github.com/ion-fusion/fuus-army-knife/parser/token"
	"github.com/ion-fusion/fuus-army-knife/strutil"
)

// Node is an intermediate syntax tree node.  Fields follow the meaning they
// have on ast.Expr.  A Node never has kind ast.StructMember and a StructKey
// only appears among the items of a Struct.
type Node struct {
	Kind        ast.Kind
	Span        token.Span
	Annotations []string
	Value       string
	Lines       []string
	Count       int
	Items       []*Node
}

// Tree is the lowered form of a file.
type Tree struct {
	Exprs []*Node
}

func (n *Node) IsNewlines() bool {
	return n.Kind == ast.Newlines
}

func (n *Node) IsComment() bool {
	return n.Kind == ast.CommentLine || n.Kind == ast.CommentBlock
}

func (n *Node) IsCommentLine() bool {
	return n.Kind == ast.CommentLine
}

func (n *Node) IsStructKey() bool {
	return n.Kind == ast.StructKey
}

func (n *Node) IsStruct() bool {
	return n.Kind == ast.Struct
}

func (n *Node) IsSymbol() bool {
	return n.Kind == ast.Symbol
}

func (n *Node) IsSExpr() bool {
	return n.Kind == ast.SExpr
}

// IsCompound reports whether n is a list, s-expression or struct.
func (n *Node) IsCompound() bool {
	switch n.Kind {
	case ast.List, ast.SExpr, ast.Struct:
		return true
	}
	return false
}

func (n *Node) IsNotCommentOrNewlines() bool {
	return !n.IsComment() && !n.IsNewlines()
}

// IsValue reports whether n is a value, which excludes comments, newlines
// and struct keys.
func (n *Node) IsValue() bool {
	return n.IsNotCommentOrNewlines() && !n.IsStructKey()
}

// SymbolValue returns the raw text of a symbol.
func (n *Node) SymbolValue() (string, bool) {
	if n.Kind != ast.Symbol {
		return "", false
	}
	return n.Value, true
}

// CountNewlines returns the number of line breaks n spans when printed as
// parsed.
func (n *Node) CountNewlines() int {
	switch n.Kind {
	case ast.CommentLine:
		return 1
	case ast.CommentBlock:
		return len(n.Lines)
	case ast.Newlines:
		return n.Count
	case ast.MultilineString:
		return strutil.CountNewlines(n.Value)
	case ast.List, ast.SExpr, ast.Struct:
		return CountNewlines(n.Items)
	case ast.Clob:
		total := 0
		for _, item := range n.Items {
			switch item.Kind {
			case ast.MultilineString:
				total += len(item.Value)
			case ast.Newlines:
				total += item.Count
			}
		}
		return total
	}
	return 0
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	c := *n
	if n.Annotations != nil {
		c.Annotations = append([]string(nil), n.Annotations...)
	}
	if n.Lines != nil {
		c.Lines = append([]string(nil), n.Lines...)
	}
	if n.Items != nil {
		c.Items = CloneAll(n.Items)
	}
	return &c
}

// CloneAll returns deep copies of nodes.
func CloneAll(nodes []*Node) []*Node {
	c := make([]*Node, len(nodes))
	for i, n := range nodes {
		c[i] = n.Clone()
	}
	return c
}

// CountNewlines sums the newline counts of items.
func CountNewlines(items []*Node) int {
	total := 0
	for _, item := range items {
		total += item.CountNewlines()
	}
	return total
}

// CountUntil counts the leading items matching pred, skipping items that
// match neither predicate, and stops at the first item matching until.
func CountUntil(items []*Node, pred, until func(*Node) bool) int {
	count := 0
	for _, item := range items {
		if pred(item) {
			count++
		} else if until(item) {
			return count
		}
	}
	return count
}

// CountItemsBeforeNewline counts the items other than comments that precede
// the first newline run.
func CountItemsBeforeNewline(items []*Node) int {
	return CountUntil(items, (*Node).IsNotCommentOrNewlines, (*Node).IsNewlines)
}
