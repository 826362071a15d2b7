// Copyright © 2024 The Fuus Army Knife authors

package token

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	used := make(map[string]bool)
	for tok := Type(0); tok < numTokenTypes; tok++ {
		str := tok.String()
		t.Log(str)
		if str == "" {
			t.Errorf("token type %x has empty string value", tok)
			continue
		}
		if used[str] {
			t.Errorf("token type string used twice: %v", tok)
		}
		used[str] = true
	}
}

func TestSpanExcerpt(t *testing.T) {
	src := []byte("(foo \"bar\"\t\r\n)")
	assert.Equal(t, `"(foo \"bar\"\t\r\n)"`, Span{0, len(src)}.Excerpt(src))
	assert.Equal(t, `"foo"`, Span{1, 4}.Excerpt(src))
	assert.Equal(t, `""`, Span{3, 3}.Excerpt(src))

	long := []byte("0123456789012345678901234567890123456789abc")
	assert.Equal(t, `"0123456789012345678901234567890123456789..." (truncated)`, Span{0, len(long)}.Excerpt(long))
}

func TestSpanJoin(t *testing.T) {
	assert.Equal(t, Span{2, 9}, Span{2, 4}.Join(Span{6, 9}))
	assert.Equal(t, 7, Span{2, 9}.Len())
}

func TestLocate(t *testing.T) {
	src := []byte("ab\ncd\n\nef")
	assert.Equal(t, "f:1:1", Locate("f", src, 0).String())
	assert.Equal(t, "f:1:3", Locate("f", src, 2).String())
	assert.Equal(t, "f:2:1", Locate("f", src, 3).String())
	assert.Equal(t, "f:4:2", Locate("f", src, 8).String())
	assert.Equal(t, "f:4:3", Locate("f", src, 100).String())
}

func TestLocationError(t *testing.T) {
	base := errors.New("unexpected rune")
	err := &LocationError{Err: base, Source: &Location{File: "a.fusion", Line: 3, Col: 7, Pos: 20}}
	assert.Equal(t, "a.fusion:3:7: unexpected rune", err.Error())
	assert.ErrorIs(t, err, base)
}
