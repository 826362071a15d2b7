// Copyright © 2024 The Fuus Army Knife authors

package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ion-fusion/fuus-army-knife/config"
)

func TestContinuationStyle(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		input  string
		style  IndentStyle
		indent int
	}{
		{"(\n1 2)", IndentEndOfOpening, 1},
		{"(1\n2)", IndentEndOfOpening, 1},
		{"(1 2\n3)", IndentEndOfOpening, 1},
		{"(foo\nbar)", IndentFixed, 2},
		{"(foo bar\nbaz)", IndentEndOfOpeningSymbol, 5},
		{"(foobar a b\nc)", IndentEndOfOpeningSymbol, 8},
		{"(define x\n1)", IndentFixed, 2},
		{"(lambda (x)\nx)", IndentFixed, 2},
		{"(if a\nb)", IndentEndOfOpeningSymbol, 4},
		{"(if a\nb\nc\nd)", IndentEndOfOpeningSymbol, 4},
		{"(if a\nb\nc\nd\ne)", IndentFixed, 2},
		{"((f) a\nb)", IndentFixed, 2},
		{"(\"s\" a\nb)", IndentEndOfOpening, 1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree := lowerSource(t, tt.input)
			require.Len(t, tree.Exprs, 1)
			items := tree.Exprs[0].Items
			style, _ := ContinuationStyle(cfg, items, 0)
			assert.Equal(t, tt.style, style, style.String())
			assert.Equal(t, tt.indent, ContinuationIndent(cfg, items, 0))
		})
	}
}

func TestContinuationIndentOffset(t *testing.T) {
	cfg := config.Default()
	items := lowerSource(t, "(foo bar\nbaz)").Exprs[0].Items
	assert.Equal(t, 15, ContinuationIndent(cfg, items, 10))
	items = lowerSource(t, "(define x\n1)").Exprs[0].Items
	assert.Equal(t, 12, ContinuationIndent(cfg, items, 10))
}

func TestContinuationIndentCustomSymbols(t *testing.T) {
	cfg := config.Default()
	cfg.FixedIndentSymbols = []string{"foo"}
	cfg.SmartIndentSymbols = nil
	items := lowerSource(t, "(foo bar\nbaz)").Exprs[0].Items
	assert.Equal(t, 2, ContinuationIndent(cfg, items, 0))
	items = lowerSource(t, "(if a\nb\nc\nd\ne)").Exprs[0].Items
	assert.Equal(t, 4, ContinuationIndent(cfg, items, 0))
}

func TestSpacing(t *testing.T) {
	tests := []struct {
		input  string
		spaces []bool
	}{
		{"(a b c)", []bool{true, true, false}},
		{"(a\nb)", []bool{true, false, false}},
		{"(| a | a)", []bool{false, false, true, false}},
		{"(a | b)", []bool{true, true, false}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			items := lowerSource(t, tt.input).Exprs[0].Items
			assert.Equal(t, tt.spaces, spacing(items))
		})
	}
}
