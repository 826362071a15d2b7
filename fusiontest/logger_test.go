// Copyright © 2024 The Fuus Army Knife authors

package fusiontest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	testing.TB
	lines []string
}

func (r *recorder) Log(args ...interface{}) {
	for _, a := range args {
		r.lines = append(r.lines, a.(string))
	}
}

func TestLoggerSplitsLines(t *testing.T) {
	rec := &recorder{TB: t}
	w := NewLogger(rec)
	_, err := w.Write([]byte("one\ntwo\nthr"))
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, rec.lines)
	_, err = w.Write([]byte("ee\n"))
	require.NoError(t, err)
	w.Write([]byte("tail"))
	w.Flush()
	assert.Equal(t, []string{"one", "two", "three", "tail"}, rec.lines)
}

func TestWriteTree(t *testing.T) {
	dir := WriteTree(t, map[string]string{
		"fusion/src/a.fusion": "(a)",
		"ftst/b.test.fusion":  "(b)",
	})
	b, err := os.ReadFile(filepath.Join(dir, "fusion", "src", "a.fusion"))
	require.NoError(t, err)
	assert.Equal(t, "(a)", string(b))
	assert.FileExists(t, filepath.Join(dir, "ftst", "b.test.fusion"))
}
