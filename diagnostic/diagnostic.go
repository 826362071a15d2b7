// Copyright © 2024 The Fuus Army Knife authors

// Package diagnostic provides Rust-style annotated error rendering for
// fuusak output.  It depends only on token positions so that the parser,
// the loader and the checker can all report through it.
package diagnostic

import (
	"bytes"
	"errors"

	"github.com/ion-fusion/fuus-army-knife/parser/token"
)

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column
	EndCol int    // 1-based end column (0 = auto-detect from source)
	Label  string // text shown under the underline
	// Source is the content of File.  When nil the renderer reads File.
	Source []byte
}

// Diagnostic represents a single error, warning, or note with optional
// source annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	Message  string
	Spans    []Span
	Notes    []string
}

// FromOffsets returns an error diagnostic highlighting the byte range span
// of source.  A span covering several lines is underlined up to the end of
// its first line.
func FromOffsets(file string, source []byte, span token.Span, msg string) Diagnostic {
	start := token.Locate(file, source, span.Start)
	endCol := start.Col
	if span.End > span.Start {
		last := token.Locate(file, source, span.End-1)
		if last.Line == start.Line {
			endCol = last.Col
		} else {
			endCol = start.Col + lineEnd(source, start.Pos) - start.Pos - 1
		}
	}
	return Diagnostic{
		Severity: SeverityError,
		Message:  msg,
		Spans: []Span{{
			File:   file,
			Line:   start.Line,
			Col:    start.Col,
			EndCol: max(endCol, start.Col),
			Source: source,
		}},
	}
}

func lineEnd(source []byte, pos int) int {
	if i := bytes.IndexAny(source[pos:], "\r\n"); i >= 0 {
		return pos + i
	}
	return len(source)
}

// FromError returns an error diagnostic for err.  When err carries a
// token.LocationError the diagnostic points at its location and source, if
// given, is shown.
func FromError(err error, source []byte) Diagnostic {
	var lerr *token.LocationError
	if !errors.As(err, &lerr) || lerr.Source == nil {
		return Diagnostic{Severity: SeverityError, Message: err.Error()}
	}
	return Diagnostic{
		Severity: SeverityError,
		Message:  lerr.Err.Error(),
		Spans: []Span{{
			File:   lerr.Source.File,
			Line:   lerr.Source.Line,
			Col:    lerr.Source.Col,
			Source: source,
		}},
	}
}
