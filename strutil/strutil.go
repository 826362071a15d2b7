// Copyright © 2024 The Fuus Army Knife authors

// Package strutil contains the text measurements the formatter's layout
// decisions are built on.  Columns are byte counts.
package strutil

import "strings"

// CountNewlines returns the number of line breaks in s.  Each of "\r\n",
// "\r" and "\n" counts as one break.
func CountNewlines(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\r':
			n++
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case '\n':
			n++
		}
	}
	return n
}

// Repeat returns a string of count copies of c.
func Repeat(c byte, count int) string {
	if count <= 0 {
		return ""
	}
	return strings.Repeat(string(c), count)
}

// FindCursorPos returns the column following the last byte of s.
func FindCursorPos(s string) int {
	i := strings.LastIndexByte(s, '\n')
	if i < 0 {
		return len(s)
	}
	return len(s) - i - 1
}

// AlreadyHasWhitespaceBeforeCursor reports whether s ends with a space or a
// newline.  A single byte buffer never qualifies.
func AlreadyHasWhitespaceBeforeCursor(s string) bool {
	i := len(s) - 1
	return i > 0 && (s[i] == ' ' || s[i] == '\n')
}

// IndentLen returns the number of leading spaces and tabs in s.
func IndentLen(s string) int {
	n := 0
	for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
		n++
	}
	return n
}

// Lines splits s into lines.  A trailing newline does not start another
// line and a "\r" preceding a newline is dropped.
func Lines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// MinIndentLen returns the smallest indent of the non-blank lines in s.
func MinIndentLen(s string) int {
	min := -1
	for _, line := range Lines(s) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if n := IndentLen(line); min < 0 || n < min {
			min = n
		}
	}
	if min < 0 {
		return 0
	}
	return min
}

// TrimIndent removes the common indent of the non-blank lines of s.  A space
// or tab is dropped while the count of spaces and tabs seen on its line is
// within the common indent.
func TrimIndent(s string) string {
	min := MinIndentLen(s)
	var b strings.Builder
	ws := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' {
			ws++
			if ws > min {
				b.WriteByte(c)
			}
			continue
		}
		if c == '\n' {
			ws = 0
		}
		b.WriteByte(c)
	}
	return b.String()
}

// FormatIndentedMultiline indents every non-empty line of s after the first
// by indent spaces.
func FormatIndentedMultiline(s string, indent int) string {
	pad := Repeat(' ', indent)
	var b strings.Builder
	indentNext := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if indentNext && c != '\n' {
			b.WriteString(pad)
			indentNext = false
		}
		b.WriteByte(c)
		if c == '\n' {
			indentNext = true
		}
	}
	return b.String()
}

// LastIsOneOf reports whether the last byte of s is one of chars.
func LastIsOneOf(s string, chars string) bool {
	if s == "" {
		return false
	}
	return strings.IndexByte(chars, s[len(s)-1]) >= 0
}

// TrimLinesEnd strips trailing whitespace from every line of s and ends
// every line, including the last, with a newline.
func TrimLinesEnd(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 1)
	for _, line := range Lines(s) {
		b.WriteString(strings.TrimRightFunc(line, isSpace))
		b.WriteByte('\n')
	}
	return b.String()
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '\f', '\v':
		return true
	}
	return false
}
