// Copyright © 2024 The Fuus Army Knife authors

package formatter

import (
	"github.com/ion-fusion/fuus-army-knife/config"
	"github.com/ion-fusion/fuus-army-knife/ist"
)

// IndentStyle determines how continuation lines of an s-expression are
// indented.
type IndentStyle int

const (
	// IndentEndOfOpening aligns continuation lines one column past the
	// opening paren.
	//
	//	(
	//	 1 2)
	IndentEndOfOpening IndentStyle = iota
	// IndentEndOfOpeningSymbol aligns continuation lines with the first
	// argument following the head symbol.
	//
	//	(foo (bar)
	//	     (baz))
	IndentEndOfOpeningSymbol
	// IndentFixed indents continuation lines two columns past the opening
	// paren.
	//
	//	(define (foo)
	//	  (baz))
	IndentFixed
	// IndentUndetermined is only seen while the style is being computed.
	IndentUndetermined
)

func (s IndentStyle) String() string {
	switch s {
	case IndentEndOfOpening:
		return "end-of-opening"
	case IndentEndOfOpeningSymbol:
		return "end-of-opening-symbol"
	case IndentFixed:
		return "fixed"
	}
	return "undetermined"
}

// ContinuationStyle classifies the indentation of an s-expression with the
// given items whose opening paren is at column open.  For
// IndentEndOfOpeningSymbol the returned column is the alignment column.
func ContinuationStyle(cfg *config.Config, items []*ist.Node, open int) (IndentStyle, int) {
	style := IndentUndetermined
	switch ist.CountItemsBeforeNewline(items) {
	case 0:
		style = IndentEndOfOpening
	case 1:
		style = IndentFixed
	}
	col := 0
	if len(items) > 0 {
		first := items[0]
		switch {
		case first.IsSymbol():
			sym, _ := first.SymbolValue()
			if style != IndentFixed {
				style = IndentEndOfOpeningSymbol
				col = open + len(sym) + 2
			}
			if cfg.IsFixedIndent(sym) {
				style = IndentFixed
			} else if cfg.IsSmartIndent(sym) && style == IndentEndOfOpeningSymbol {
				if ist.CountNewlines(items) > 3 {
					style = IndentFixed
				}
			}
		case !first.IsSExpr():
			style = IndentEndOfOpening
		default:
			style = IndentFixed
		}
	}
	return style, col
}

// ContinuationIndent returns the column continuation lines of an
// s-expression are indented to.  items must not be empty.
func ContinuationIndent(cfg *config.Config, items []*ist.Node, open int) int {
	style, col := ContinuationStyle(cfg, items, open)
	switch style {
	case IndentEndOfOpening:
		return open + 1
	case IndentFixed:
		return open + 2
	case IndentEndOfOpeningSymbol:
		return col
	}
	panic("continuation indent of an empty s-expression")
}
