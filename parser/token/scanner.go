// Copyright © 2024 The Fuus Army Knife authors

package token

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scanner facilitates construction of tokens from an in-memory source text.
// Fusion files are formatted as a whole so the scanner never streams.
type Scanner struct {
	file string
	path string
	src  []byte

	start     int // start of the current token
	startLine int
	startCol  int
	next      int // index of the rune following the last scanned rune
	line      int // line number at next
	col       int // column at next
	c         rune
}

// NewScanner initializes and returns a new Scanner over src.
func NewScanner(file string, src []byte) *Scanner {
	return &Scanner{
		file:      file,
		src:       src,
		line:      1,
		col:       1,
		startLine: 1,
		startCol:  1,
	}
}

// SetPath associates a physical location (e.g. filesystem path) with s to aid
// in debugging projects which scan many ungrouped files.
func (s *Scanner) SetPath(path string) {
	s.path = path
}

// Source returns the complete text being scanned.
func (s *Scanner) Source() []byte {
	return s.src
}

// EmitToken returns a token containing the text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) EmitToken(typ Type) *Token {
	tok := &Token{
		Type:   typ,
		Text:   s.Text(),
		Source: s.LocStart(),
		Span:   Span{Start: s.start, End: s.next},
	}
	s.Ignore()
	return tok
}

// Ignore discards the text scanned since the last call to EmitToken or
// Ignore.
func (s *Scanner) Ignore() {
	s.start = s.next
	s.startLine = s.line
	s.startCol = s.col
}

// Text returns the text of the current token.
func (s *Scanner) Text() string {
	return string(s.src[s.start:s.next])
}

// Rune returns the last scanned rune.
func (s *Scanner) Rune() rune {
	return s.c
}

// Rest returns the unscanned remainder of the source.
func (s *Scanner) Rest() []byte {
	return s.src[s.next:]
}

// HasPrefix reports whether the unscanned input begins with literal.
func (s *Scanner) HasPrefix(literal string) bool {
	return strings.HasPrefix(string(s.src[s.next:min(len(s.src), s.next+len(literal))]), literal)
}

// Peek returns the next rune to be scanned, if there are any.  If an invalid
// utf-8 sequence or EOF prevents futher runes from being scanned Peek returns
// a false second value.
func (s *Scanner) Peek() (rune, bool) {
	return s.PeekN(0)
}

// PeekN returns the rune n positions beyond the next rune to be scanned.
func (s *Scanner) PeekN(n int) (rune, bool) {
	pos := s.next
	for {
		if pos >= len(s.src) {
			return 0, false
		}
		c, size := utf8.DecodeRune(s.src[pos:])
		if c == utf8.RuneError && size <= 1 {
			return utf8.RuneError, false
		}
		if n == 0 {
			return c, true
		}
		n--
		pos += size
	}
}

// ScanRune attempts to scan a utf-8 rune from the input for inclusion in the
// current token.  At the end of the input ScanRune returns io.EOF.
func (s *Scanner) ScanRune() error {
	if s.next >= len(s.src) {
		return io.EOF
	}
	c, size := utf8.DecodeRune(s.src[s.next:])
	if c == utf8.RuneError && size <= 1 {
		return fmt.Errorf("invalid utf-8 sequence in source text starting with byte %q", s.src[s.next])
	}
	s.c = c
	s.next += size
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col += size
	}
	return nil
}

// Advance scans n bytes worth of runes.  Advance stops early on invalid
// input.
func (s *Scanner) Advance(n int) {
	end := min(len(s.src), s.next+n)
	for s.next < end {
		if s.ScanRune() != nil {
			return
		}
	}
}

// Err returns an error describing why the next rune cannot be scanned, or
// nil.  Err returns nil at EOF.
func (s *Scanner) Err() error {
	if s.next >= len(s.src) {
		return nil
	}
	c, size := utf8.DecodeRune(s.src[s.next:])
	if c == utf8.RuneError && size <= 1 {
		return fmt.Errorf("invalid utf-8 sequence in source text starting with byte %q", s.src[s.next])
	}
	return nil
}

func (s *Scanner) EOF() bool {
	return s.next >= len(s.src)
}

func (s *Scanner) Accept(fn func(rune) bool) bool {
	peek, ok := s.Peek()
	if !ok {
		return false
	}
	if fn(peek) {
		return s.ScanRune() == nil
	}
	return false
}

func (s *Scanner) AcceptRune(c rune) bool {
	return s.Accept(func(peek rune) bool { return peek == c })
}

func (s *Scanner) AcceptDigit() bool {
	return s.Accept(func(c rune) bool { return '0' <= c && c <= '9' })
}

func (s *Scanner) AcceptSpace() bool {
	return s.Accept(unicode.IsSpace)
}

func (s *Scanner) AcceptAny(charset string) bool {
	return s.Accept(func(c rune) bool { return strings.ContainsRune(charset, c) })
}

func (s *Scanner) AcceptSeq(fn func(rune) bool) int {
	var n int
	for s.Accept(fn) {
		n++
	}
	return n
}

func (s *Scanner) AcceptSeqRune(c rune) int {
	var n int
	for s.AcceptRune(c) {
		n++
	}
	return n
}

func (s *Scanner) AcceptSeqAny(charset string) int {
	var n int
	for s.AcceptAny(charset) {
		n++
	}
	return n
}

func (s *Scanner) AcceptSeqDigit() int {
	var n int
	for s.AcceptDigit() {
		n++
	}
	return n
}

func (s *Scanner) AcceptSeqSpace() int {
	var n int
	for s.AcceptSpace() {
		n++
	}
	return n
}

// AcceptString scans literal only if the input begins with all of it.
func (s *Scanner) AcceptString(literal string) bool {
	if !s.HasPrefix(literal) {
		return false
	}
	s.Advance(len(literal))
	return true
}

// LocStart returns a Location referencing the beginning of the current token,
// just beyond the end of the previous token.
func (s *Scanner) LocStart() *Location {
	return &Location{
		File: s.file,
		Path: s.path,
		Pos:  s.start,
		Line: s.startLine,
		Col:  s.startCol,
	}
}

// Loc returns a Location referencing the current scanner position, just
// beyond the last scanned rune.
func (s *Scanner) Loc() *Location {
	return &Location{
		File: s.file,
		Path: s.path,
		Pos:  s.next,
		Line: s.line,
		Col:  s.col,
	}
}
