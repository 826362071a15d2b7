// Copyright © 2024 The Fuus Army Knife authors

package ist

import (
	"errors"
	"fmt"

	"github.com/ion-fusion/fuus-army-knife/ast"
	"github.com/ion-fusion/fuus-army-knife/parser/token"
)

// ErrInvariant is wrapped by errors reporting a malformed syntax tree.
var ErrInvariant = errors.New("syntax tree invariant violated")

// InvariantError describes a node that cannot occur in a tree built by the
// parser.
type InvariantError struct {
	Msg  string
	Span token.Span
}

func (err *InvariantError) Error() string {
	return fmt.Sprintf("%v: %s at [%d, %d)", ErrInvariant, err.Msg, err.Span.Start, err.Span.End)
}

func (err *InvariantError) Unwrap() error {
	return ErrInvariant
}

func invariantf(span token.Span, format string, v ...interface{}) {
	panic(&InvariantError{Msg: fmt.Sprintf(format, v...), Span: span})
}

// Lower converts a concrete syntax tree into an intermediate syntax tree.
func Lower(exprs []*ast.Expr) (tree *Tree, err error) {
	defer func() {
		if r := recover(); r != nil {
			ierr, ok := r.(*InvariantError)
			if !ok {
				panic(r)
			}
			tree, err = nil, ierr
		}
	}()
	return &Tree{Exprs: lowerAll(exprs)}, nil
}

func lowerAll(exprs []*ast.Expr) []*Node {
	nodes := make([]*Node, 0, len(exprs))
	for _, expr := range exprs {
		nodes = append(nodes, lower(expr))
	}
	return nodes
}

func lower(expr *ast.Expr) *Node {
	n := &Node{
		Kind:        expr.Kind,
		Span:        expr.Span,
		Annotations: expr.Annotations,
		Value:       expr.Value,
		Lines:       expr.Lines,
		Count:       expr.Count,
	}
	switch expr.Kind {
	case ast.List, ast.SExpr:
		n.Items = lowerAll(expr.Items)
	case ast.Struct:
		n.Items = lowerStruct(expr)
	case ast.Clob:
		n.Items = lowerClob(expr)
	case ast.StructMember, ast.StructKey:
		invariantf(expr.Span, "%v outside of a struct", expr.Kind)
	case ast.Invalid:
		invariantf(expr.Span, "invalid node")
	}
	return n
}

func lowerStruct(expr *ast.Expr) []*Node {
	var items []*Node
	for _, item := range expr.Items {
		switch {
		case item.Kind == ast.StructMember:
			for _, mem := range item.Items {
				if mem.Kind == ast.StructKey {
					items = append(items, &Node{Kind: ast.StructKey, Span: mem.Span, Value: mem.Value})
					continue
				}
				items = append(items, lower(mem))
			}
		case item.IsComment() || item.IsNewlines():
			items = append(items, lower(item))
		default:
			invariantf(item.Span, "%v directly inside a struct", item.Kind)
		}
	}
	return items
}

func lowerClob(expr *ast.Expr) []*Node {
	items := lowerAll(expr.Items)
	for _, item := range items {
		switch item.Kind {
		case ast.QuotedString, ast.MultilineString, ast.Newlines:
		default:
			invariantf(item.Span, "%v inside a clob", item.Kind)
		}
	}
	return items
}
