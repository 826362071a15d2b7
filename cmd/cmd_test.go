// Copyright © 2024 The Fuus Army Knife authors

package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ion-fusion/fuus-army-knife/config"
	"github.com/ion-fusion/fuus-army-knife/diagnostic"
	"github.com/ion-fusion/fuus-army-knife/fusiontest"
	"github.com/ion-fusion/fuus-army-knife/index"
	"github.com/ion-fusion/fuus-army-knife/logging"
)

const (
	unformatted = "(+   1\n2)\n(a)"
	formatted   = "(+ 1\n   2)\n(a)\n"
)

var packageModules = map[string]string{
	"fusion/src/fusion.fusion": `(module fusion '/fusion/private/kernel'
  (provide define lambda let lets if begin quote '+'))
`,
	"fusion/src/util.fusion": `(module util "/fusion"
  (defpub (twice x) (+ x x)))
`,
}

// runCLI executes the root command with args and returns what it wrote.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--color", "never"}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return 1
}

func writePackage(t *testing.T, extra map[string]string) string {
	t.Helper()
	files := make(map[string]string)
	for name, text := range packageModules {
		files[name] = text
	}
	for name, text := range extra {
		files[name] = text
	}
	dir := fusiontest.WriteTree(t, files)
	fusiontest.Chdir(t, dir)
	return dir
}

func TestFmtStdin(t *testing.T) {
	fusiontest.Chdir(t, t.TempDir())
	stdout, _, err := runCLI(t, unformatted, "fmt")
	require.NoError(t, err)
	assert.Equal(t, formatted, stdout)
}

func TestFmtStdinSyntaxError(t *testing.T) {
	fusiontest.Chdir(t, t.TempDir())
	_, _, err := runCLI(t, "(a", "fmt")
	require.Error(t, err)
	assert.Equal(t, "<stdin>:1:1: unmatched (", err.Error())
}

func TestFmtPrintsFiles(t *testing.T) {
	writePackage(t, map[string]string{"src/a.fusion": unformatted})
	stdout, _, err := runCLI(t, "", "fmt", "src/a.fusion")
	require.NoError(t, err)
	assert.Equal(t, formatted, stdout)

	b, err := os.ReadFile("src/a.fusion")
	require.NoError(t, err)
	assert.Equal(t, unformatted, string(b), "files are not rewritten without -w")
}

func TestFmtList(t *testing.T) {
	writePackage(t, map[string]string{
		"src/bad.fusion":  unformatted,
		"src/good.fusion": formatted,
	})
	stdout, _, err := runCLI(t, "", "fmt", "-l", "src/...")
	assert.Equal(t, 1, exitCode(err))
	assert.Equal(t, filepath.Join("src", "bad.fusion")+"\n", stdout)

	stdout, _, err = runCLI(t, "", "fmt", "-l", "src/good.fusion")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestFmtWrite(t *testing.T) {
	writePackage(t, map[string]string{
		"src/bad.fusion":  unformatted,
		"src/good.fusion": formatted,
	})
	require.NoError(t, os.Chmod("src/bad.fusion", 0o600))

	stdout, _, err := runCLI(t, "", "fmt", "-w", "src/...")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	b, err := os.ReadFile("src/bad.fusion")
	require.NoError(t, err)
	assert.Equal(t, formatted, string(b))
	info, err := os.Stat("src/bad.fusion")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir("src")
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files are left behind")
}

func TestFmtDiff(t *testing.T) {
	writePackage(t, map[string]string{"src/bad.fusion": unformatted})
	stdout, _, err := runCLI(t, "", "fmt", "-d", "src/bad.fusion")
	assert.Equal(t, 1, exitCode(err))
	assert.Equal(t, `--- src/bad.fusion
+++ src/bad.fusion
-(+   1
-2)
+(+ 1
+   2)
 (a)
`, stdout)
}

func TestFmtSyntaxErrorContinues(t *testing.T) {
	writePackage(t, map[string]string{
		"src/a.fusion": "(a",
		"src/b.fusion": unformatted,
	})
	_, stderr, err := runCLI(t, "", "fmt", "-w", "src/...")
	assert.Equal(t, 2, exitCode(err))
	assert.Contains(t, stderr, "error: unmatched (")
	assert.Contains(t, stderr, "--> "+filepath.Join("src", "a.fusion")+":1:1")

	b, err := os.ReadFile("src/b.fusion")
	require.NoError(t, err)
	assert.Equal(t, formatted, string(b))
}

func TestFmtExclude(t *testing.T) {
	writePackage(t, map[string]string{
		"src/a.fusion":     unformatted,
		"src/gen/b.fusion": unformatted,
	})
	stdout, _, err := runCLI(t, "", "fmt", "-l", "--exclude", "gen", "src/...")
	assert.Equal(t, 1, exitCode(err))
	assert.Equal(t, filepath.Join("src", "a.fusion")+"\n", stdout)
}

func TestFmtUsesConfig(t *testing.T) {
	writePackage(t, map[string]string{
		config.FileName: "[fusion]\nnewline_mode = \"no-change\"\n",
		"src/a.fusion":  "[\n1]",
	})
	stdout, _, err := runCLI(t, "", "fmt", "src/a.fusion")
	require.NoError(t, err)
	assert.Equal(t, "[\n 1]\n", stdout)
}

func TestFormatAll(t *testing.T) {
	writePackage(t, map[string]string{
		"a.fusion":       unformatted,
		"deep/b.fusion":  unformatted,
		".git/c.fusion":  unformatted,
		"deep/notes.txt": unformatted,
	})
	_, _, err := runCLI(t, "", "format-all")
	require.NoError(t, err)

	for _, name := range []string{"a.fusion", "deep/b.fusion"} {
		b, err := os.ReadFile(name)
		require.NoError(t, err)
		assert.Equal(t, formatted, string(b), name)
	}
	for _, name := range []string{".git/c.fusion", "deep/notes.txt"} {
		b, err := os.ReadFile(name)
		require.NoError(t, err)
		assert.Equal(t, unformatted, string(b), name)
	}
}

func TestLogLevel(t *testing.T) {
	writePackage(t, map[string]string{"src/a.fusion": formatted})
	_, stderr, err := runCLI(t, "", "--log-level", "info", "fmt", "-l", "src/a.fusion")
	require.NoError(t, err)
	assert.Contains(t, stderr, "formatted files")

	_, stderr, err = runCLI(t, "", "fmt", "-l", "src/a.fusion")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "formatted files")
}

func TestInvalidColor(t *testing.T) {
	_, _, err := runCLI(t, "", "--color", "rainbow", "fmt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid color mode")
}

func TestCreateConfig(t *testing.T) {
	dir := t.TempDir()
	fusiontest.Chdir(t, dir)

	stdout, _, err := runCLI(t, "", "create-config")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created ")
	b, err := os.ReadFile(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultTOML, string(b))

	_, _, err = runCLI(t, "", "create-config")
	assert.ErrorIs(t, err, config.ErrConfigExists)
}

func TestDebugAST(t *testing.T) {
	writePackage(t, map[string]string{"a.fusion": "(a 1)"})
	stdout, _, err := runCLI(t, "", "debug-ast", "a.fusion")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, `SExpr span="(a 1)"`+"\n"), stdout)
	assert.Contains(t, stdout, `  Symbol span="a" value="a"`+"\n")
}

func TestDebugIST(t *testing.T) {
	writePackage(t, map[string]string{"a.fusion": "(a\n 1)"})
	stdout, _, err := runCLI(t, "", "debug-ist", "a.fusion")
	require.NoError(t, err)
	assert.Contains(t, stdout, "newlines=1 before_newline=1")
	assert.Contains(t, stdout, "count=1")
}

func TestDebugMissingFile(t *testing.T) {
	fusiontest.Chdir(t, t.TempDir())
	_, _, err := runCLI(t, "", "debug-ast", "missing.fusion")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read missing.fusion")
}

func TestDebugIndex(t *testing.T) {
	writePackage(t, nil)
	stdout, _, err := runCLI(t, "", "debug-index")
	require.NoError(t, err)
	assert.Contains(t, stdout, "name: /util")
	assert.Contains(t, stdout, "fusion/src/util.fusion:2:12")
}

func TestCheckClean(t *testing.T) {
	writePackage(t, map[string]string{
		"ftst/util.test.fusion": "(require \"/util\")\n(twice 2)\n",
	})
	stdout, _, err := runCLI(t, "", "check")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestCheckReportsProblems(t *testing.T) {
	writePackage(t, map[string]string{
		"ftst/bad.test.fusion": "(nope)\n",
	})
	stdout, _, err := runCLI(t, "", "check")
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, stdout, "error: Unbound identifier nope\n  --> ftst/bad.test.fusion:1:2\n")
	assert.Contains(t, stdout, " 1 |  (nope)\n")
}

func TestCheckLoadError(t *testing.T) {
	writePackage(t, map[string]string{
		"fusion/src/broken.fusion": "(module broken \"/fusion\"\n  (require \"/missing\"))\n",
	})
	_, stderr, err := runCLI(t, "", "check")
	assert.Equal(t, 2, exitCode(err))
	assert.Contains(t, stderr, "cannot load module named /missing")
}

func TestCheckWatcherRecheck(t *testing.T) {
	dir := writePackage(t, map[string]string{
		"fusion/src/bad.fusion": "(module bad \"/fusion\"\n  (define (f) (g)))\n",
		"notes.fusion":          "(x)\n",
	})
	ctx := fusiontest.Context(t)
	cfg := config.Default()
	idx, err := index.LoadIndex(ctx, cfg, dir)
	require.NoError(t, err)
	w := newCheckWatcher(ctx, cfg, idx)

	module := filepath.Join(dir, "fusion", "src", "bad.fusion")
	problems, handled, err := w.recheck(module)
	require.NoError(t, err)
	assert.True(t, handled)
	require.Len(t, problems, 1)
	assert.Equal(t, "fusion/src/bad.fusion:2:16: Unbound identifier g", problems[0].String())

	require.NoError(t, os.WriteFile(module, []byte("(module bad \"/fusion\"\n  (define (f) (f)))\n"), 0o644))
	problems, handled, err = w.recheck(module)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Empty(t, problems)

	script := filepath.Join(dir, "ftst", "new.test.fusion")
	require.NoError(t, os.MkdirAll(filepath.Dir(script), 0o755))
	require.NoError(t, os.WriteFile(script, []byte("(zork)\n"), 0o644))
	problems, handled, err = w.recheck(script)
	require.NoError(t, err)
	assert.True(t, handled)
	require.Len(t, problems, 1)
	assert.Equal(t, "ftst/new.test.fusion:1:2: Unbound identifier zork", problems[0].String())
	_, ok := idx.ScriptByName("ftst/new.test.fusion")
	assert.True(t, ok)

	_, handled, err = w.recheck(filepath.Join(dir, "notes.fusion"))
	require.NoError(t, err)
	assert.False(t, handled, "files outside configured paths are ignored")
	_, handled, _ = w.recheck(filepath.Join(dir, "fusion", "src", "readme.txt"))
	assert.False(t, handled)

	require.NoError(t, os.WriteFile(module, []byte("(module bad \"/fusion\"\n  (define"), 0o644))
	_, handled, err = w.recheck(module)
	assert.True(t, handled)
	assert.Error(t, err)
}

func TestHandleWatchEvent(t *testing.T) {
	dir := writePackage(t, map[string]string{
		"fusion/src/bad.fusion": "(module bad \"/fusion\"\n  (define (f) (f)))\n",
	})
	ctx := fusiontest.Context(t)
	cfg := config.Default()
	idx, err := index.LoadIndex(ctx, cfg, dir)
	require.NoError(t, err)
	a := &app{cfg: cfg, colorMode: diagnostic.ColorNever, log: logging.NewWithWriter(io.Discard, "error")}
	w := newCheckWatcher(ctx, cfg, idx)
	fsw, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer fsw.Close()

	// Save by renaming a temporary file over the module.
	module := filepath.Join(dir, "fusion", "src", "bad.fusion")
	tmp := module + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte("(module bad \"/fusion\"\n  (define (f) (g)))\n"), 0o644))
	require.NoError(t, os.Rename(tmp, module))

	var stdout, stderr bytes.Buffer
	require.NoError(t, a.handleWatchEvent(fsw, w, fsnotify.Event{Name: tmp, Op: fsnotify.Rename}, &stdout, &stderr))
	assert.Empty(t, stdout.String(), "renamed-away path no longer exists")

	require.NoError(t, a.handleWatchEvent(fsw, w, fsnotify.Event{Name: module, Op: fsnotify.Create}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Unbound identifier g")
	assert.Empty(t, stderr.String())

	stdout.Reset()
	require.NoError(t, a.handleWatchEvent(fsw, w, fsnotify.Event{Name: module, Op: fsnotify.Rename}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Unbound identifier g", "rename back onto the path is rechecked")

	stdout.Reset()
	require.NoError(t, a.handleWatchEvent(fsw, w, fsnotify.Event{Name: module, Op: fsnotify.Chmod}, &stdout, &stderr))
	assert.Empty(t, stdout.String())

	sub := filepath.Join(dir, "fusion", "src", "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, a.handleWatchEvent(fsw, w, fsnotify.Event{Name: sub, Op: fsnotify.Create}, &stdout, &stderr))
	assert.Contains(t, fsw.WatchList(), sub)
}
