// Copyright © 2024 The Fuus Army Knife authors

package index

import (
	"fmt"

	"github.com/ion-fusion/fuus-army-knife/parser/token"
)

// SpanError is an error attributed to a span of a file whose name is not
// yet known.  The loader resolves it against the file it came from.
type SpanError struct {
	Span token.Span
	Msg  string
}

func (err *SpanError) Error() string {
	return err.Msg
}

func spanErrorf(span token.Span, format string, v ...interface{}) *SpanError {
	return &SpanError{Span: span, Msg: fmt.Sprintf(format, v...)}
}

// Resolve returns err located within f.
func (err *SpanError) Resolve(f *File) error {
	return &token.LocationError{
		Err:    err,
		Source: token.Locate(f.Name, f.Source, err.Span.Start),
	}
}
