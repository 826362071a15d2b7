// Copyright © 2024 The Fuus Army Knife authors

package fusiontest

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ion-fusion/fuus-army-knife/logging"
)

// Logger is an io.Writer that forwards complete lines to t.Log.
type Logger struct {
	t   testing.TB
	buf []byte
}

var _ io.Writer = (*Logger)(nil)

func NewLogger(t testing.TB) *Logger {
	return &Logger{
		t: t,
	}
}

func (w *Logger) Write(b []byte) (int, error) {
	w.buf = append(w.buf, b...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			return len(b), nil
		}
		w.t.Log(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
}

func (w *Logger) Flush() {
	if len(w.buf) == 0 {
		return
	}
	w.t.Log(string(w.buf))
	w.buf = nil
}

// DebugLogger returns a debug level logger whose output goes to t.Log.
func DebugLogger(t testing.TB) *log.Logger {
	w := NewLogger(t)
	t.Cleanup(w.Flush)
	return logging.NewWithWriter(w, "debug")
}

// Context returns a context carrying DebugLogger(t).
func Context(t testing.TB) context.Context {
	return logging.WithLogger(context.Background(), DebugLogger(t))
}
