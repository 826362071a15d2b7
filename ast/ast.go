// Copyright © 2024 The Fuus Army Knife authors

// Package ast defines the concrete syntax tree of a fusion source file.  The
// tree keeps comments and runs of newlines so that a file can be reprinted.
package ast

import (
	"github.com/ion-fusion/fuus-army-knife/parser/token"
)

// Kind identifies the variant of an Expr.
type Kind uint

const (
	Invalid Kind = iota

	// Atomic values
	Blob
	Boolean
	Integer
	Null
	QuotedString
	Real
	Symbol
	Timestamp

	Clob
	CommentBlock
	CommentLine
	List
	MultilineString
	Newlines
	SExpr
	Struct
	StructMember
	StructKey

	numKinds
)

func (k Kind) String() string {
	names := [numKinds]string{
		Invalid:         "Invalid",
		Blob:            "Blob",
		Boolean:         "Boolean",
		Integer:         "Integer",
		Null:            "Null",
		QuotedString:    "QuotedString",
		Real:            "Real",
		Symbol:          "Symbol",
		Timestamp:       "Timestamp",
		Clob:            "Clob",
		CommentBlock:    "CommentBlock",
		CommentLine:     "CommentLine",
		List:            "List",
		MultilineString: "MultilineString",
		Newlines:        "Newlines",
		SExpr:           "SExpr",
		Struct:          "Struct",
		StructMember:    "StructMember",
		StructKey:       "StructKey",
	}
	if k >= numKinds {
		return names[Invalid]
	}
	return names[k]
}

// IsAtomic reports whether k is a scalar value kind.
func (k Kind) IsAtomic() bool {
	return Blob <= k && k <= Timestamp
}

// Expr is a node in the concrete syntax tree.  Which fields are meaningful
// depends on Kind:
//
//	atomic kinds      Annotations, Value
//	CommentLine       Value (including the leading "//")
//	CommentBlock      Lines
//	MultilineString   Annotations, Value
//	Newlines          Count
//	List/SExpr/Struct Annotations, Items
//	StructMember      Items (key, comments and newlines, value)
//	StructKey         Value
//	Clob              Annotations, Items (QuotedString, MultilineString, Newlines)
type Expr struct {
	Kind        Kind
	Span        token.Span
	Annotations []string
	Value       string
	Lines       []string
	Count       int
	Items       []*Expr
}

func (e *Expr) IsNewlines() bool {
	return e.Kind == Newlines
}

func (e *Expr) IsComment() bool {
	return e.Kind == CommentLine || e.Kind == CommentBlock
}

func (e *Expr) IsCommentLine() bool {
	return e.Kind == CommentLine
}

func (e *Expr) IsStructKey() bool {
	return e.Kind == StructKey
}

func (e *Expr) IsStruct() bool {
	return e.Kind == Struct
}

func (e *Expr) IsSymbol() bool {
	return e.Kind == Symbol
}

func (e *Expr) IsSExpr() bool {
	return e.Kind == SExpr
}

func (e *Expr) IsNotCommentOrNewlines() bool {
	return !e.IsComment() && !e.IsNewlines()
}

// IsValue reports whether e is a value, which excludes comments, newlines
// and struct keys.
func (e *Expr) IsValue() bool {
	return e.IsNotCommentOrNewlines() && !e.IsStructKey()
}

// SymbolValue returns the raw text of a symbol.
func (e *Expr) SymbolValue() (string, bool) {
	if e.Kind != Symbol {
		return "", false
	}
	return e.Value, true
}

// StrippedSymbolValue returns the text of a symbol without surrounding
// single quotes.
func (e *Expr) StrippedSymbolValue() (string, bool) {
	v, ok := e.SymbolValue()
	if !ok {
		return "", false
	}
	return StripQuotes(v), true
}

// StringValue returns the contents of a quoted string.
func (e *Expr) StringValue() (string, bool) {
	if e.Kind != QuotedString {
		return "", false
	}
	return e.Value, true
}

// ValueItems returns the items of e that are neither comments nor newlines.
// Struct members are flattened into their keys and values.
func (e *Expr) ValueItems() []*Expr {
	var items []*Expr
	for _, item := range e.Items {
		if item.Kind == StructMember {
			items = append(items, item.ValueItems()...)
			continue
		}
		if item.IsNotCommentOrNewlines() {
			items = append(items, item)
		}
	}
	return items
}

// StripQuotes removes one pair of surrounding single quotes from s.
func StripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}
