// Copyright © 2024 The Fuus Army Knife authors

package formatter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ion-fusion/fuus-army-knife/config"
)

type formatTest struct {
	name     string
	input    string
	expected string
	config   *config.Config
}

func runFormatTests(t *testing.T, tests []formatTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.config
			got, err := Format([]byte(tt.input), cfg)
			require.NoError(t, err, "Format failed")
			assert.Equal(t, tt.expected, string(got), "formatted output mismatch")

			// Idempotency: formatting the output again should produce identical output
			got2, err := Format(got, cfg)
			require.NoError(t, err, "Format (idempotency) failed")
			assert.Equal(t, string(got), string(got2), "not idempotent")
		})
	}
}

func noChangeConfig() *config.Config {
	cfg := config.Default()
	cfg.NewlineMode = config.NewlineNoChange
	return cfg
}

func TestFormatScenarios(t *testing.T) {
	runFormatTests(t, []formatTest{
		{
			name:     "single line form unchanged",
			input:    "(+ 1 2)",
			expected: "(+ 1 2)\n",
		},
		{
			name:     "struct spacing normalized",
			input:    "{foo:1,bar:2}",
			expected: "{ foo: 1, bar: 2 }\n",
		},
		{
			name:     "doc comment alignment",
			input:    "/**\n * foo\n */",
			expected: "/*\n * foo\n */\n",
		},
		{
			name:     "blank lines inside list",
			input:    "[\n\n\n\n1,\n\n\n\n2\n\n\n\n]",
			expected: "[1,\n\n\n\n 2]\n",
		},
	})
}

func TestFormatAtoms(t *testing.T) {
	runFormatTests(t, []formatTest{
		{name: "empty", input: "", expected: ""},
		{name: "int", input: "42", expected: "42\n"},
		{name: "string", input: `"a\"b"`, expected: "\"a\\\"b\"\n"},
		{name: "symbol annotation", input: "foo::bar", expected: "foo::bar\n"},
		{name: "trailing whitespace", input: "a   \nb\t\n", expected: "a\nb\n"},
		{name: "blob", input: "{{aGVsbG8=}}", expected: "{{ aGVsbG8= }}\n"},
		{name: "empty blob", input: "{{}}", expected: "{{ }}\n"},
		{name: "clob string", input: `{{"abc"}}`, expected: "{{ \"abc\" }}\n"},
		{name: "clob long string", input: "{{'''abc'''}}", expected: "{{ '''abc''' }}\n"},
		{
			name:     "clob across lines",
			input:    "{{\n'''a'''\n'''b'''\n}}",
			expected: "{{\n '''a'''\n '''b'''\n }}\n",
		},
	})
}

func TestFormatSExpr(t *testing.T) {
	runFormatTests(t, []formatTest{
		{name: "empty", input: "()", expected: "()\n"},
		{name: "nested", input: "(a  (b   c)\t(d))", expected: "(a (b c) (d))\n"},
		{
			name:     "fixed indent symbol",
			input:    "(define (foo)\n(bar))",
			expected: "(define (foo)\n  (bar))\n",
		},
		{
			name:     "align with first argument",
			input:    "(foo a\nb)",
			expected: "(foo a\n     b)\n",
		},
		{
			name:     "single item before newline",
			input:    "(foo\na)",
			expected: "(foo\n  a)\n",
		},
		{
			name:     "smart indent short",
			input:    "(if a\nb\nc)",
			expected: "(if a\n    b\n    c)\n",
		},
		{
			name:     "smart indent long",
			input:    "(if a\nb\nc\nd\ne)",
			expected: "(if a\n  b\n  c\n  d\n  e)\n",
		},
		{
			name:     "nested indentation",
			input:    "(define (f x)\n(if x\n1\n2))",
			expected: "(define (f x)\n  (if x\n      1\n      2))\n",
		},
		{
			name:     "sexpr head",
			input:    "((f a)\n(g b))",
			expected: "((f a)\n  (g b))\n",
		},
		{
			name:     "pipe lambda",
			input:    "(| a b | (+ a b))",
			expected: "(|a b| (+ a b))\n",
		},
		{
			name:     "line comment",
			input:    "(foo // c\n  bar)",
			expected: "(foo // c\n  bar)\n",
		},
	})
}

func TestFormatList(t *testing.T) {
	runFormatTests(t, []formatTest{
		{name: "empty", input: "[]", expected: "[]\n"},
		{name: "only newlines", input: "[\n\n]", expected: "[]\n"},
		{name: "commas", input: "[1,2,3]", expected: "[1, 2, 3]\n"},
		{name: "nested", input: "[[1,2],[3]]", expected: "[[1, 2], [3]]\n"},
		{
			name:     "leading and trailing newlines",
			input:    "[\n\n1,\n2\n\n]",
			expected: "[1,\n 2]\n",
		},
		{
			name:     "commas skip comments and newlines",
			input:    "[1 // c\n, 2, /* x */ 3]",
			expected: "[1, // c\n 2, /* x */3]\n",
		},
		{
			name:     "nested list starting on new line",
			input:    "[1, [\n2]]",
			expected: "[1,\n [2]]\n",
		},
	})
}

func TestFormatStruct(t *testing.T) {
	runFormatTests(t, []formatTest{
		{name: "empty", input: "{}", expected: "{}\n"},
		{name: "only newlines", input: "{\n}", expected: "{}\n"},
		{name: "quoted key", input: `{"a b":1}`, expected: "{ \"a b\": 1 }\n"},
		{
			name:     "one member per line",
			input:    "{\n  a: 1,\n  b: 2\n}",
			expected: "{ a: 1,\n  b: 2 }\n",
		},
		{
			name:     "comment between members",
			input:    "{\n  a: 1,\n  // c\n  b: 2\n}",
			expected: "{ a: 1,\n  // c\n  b: 2 }\n",
		},
		{
			name:     "nested struct on new line",
			input:    "{\n  a: 1,\n  b: {\n    c: 2\n  }\n}",
			expected: "{ a: 1,\n  b:\n    { c: 2 }}\n",
		},
	})
}

func TestFormatComments(t *testing.T) {
	runFormatTests(t, []formatTest{
		{name: "top level line comment", input: "// hello\n(a)\n", expected: "// hello\n(a)\n"},
		{name: "line comment ended by CR", input: "// c\r(a   b)\r", expected: "// c\n(a b)\n"},
		{name: "line comment ended by CRLF", input: "// c\r\n(a   b)\r\n", expected: "// c\n(a b)\n"},
		{name: "blank lines between forms", input: "(a)\n\n\n(b)\n", expected: "(a)\n\n\n(b)\n"},
		{name: "single line block", input: "/*   hi  */", expected: "/* hi */\n"},
		{name: "empty block", input: "/**/", expected: "/**/\n"},
		{
			name:     "block without stars",
			input:    "/* foo\n   bar baz */",
			expected: "/* foo\n * bar baz\n */\n",
		},
	})
}

func TestFormatMultilineString(t *testing.T) {
	input := "(define x\n  '''\n      hello\n        world\n      ''')"
	runFormatTests(t, []formatTest{
		{
			name:     "reindented",
			input:    input,
			expected: "(define x\n  '''\n  hello\n    world\n  ''')\n",
		},
		{
			name:     "contents preserved",
			input:    "'''\n  a\n b'''",
			expected: "'''\n  a\n b'''\n",
			config: func() *config.Config {
				cfg := config.Default()
				cfg.FormatMultilineStringContents = false
				return cfg
			}(),
		},
	})
}

func TestFormatNoChangeNewlines(t *testing.T) {
	runFormatTests(t, []formatTest{
		{
			name:     "leading newline kept",
			input:    "(\nfoo a)",
			expected: "(\n foo a)\n",
			config:   noChangeConfig(),
		},
		{
			name:     "empty list kept open",
			input:    "[\n]",
			expected: "[\n]\n",
			config:   noChangeConfig(),
		},
	})

	got, err := Format([]byte("(\nfoo a)"), nil)
	require.NoError(t, err)
	assert.Equal(t, "(foo a)\n", string(got))
}

func TestFormatErrors(t *testing.T) {
	tests := []struct {
		input string
		err   string
	}{
		{"(a", "unmatched ("},
		{"[1,,2]", "unexpected , in list"},
		{"{a 1}", "expected : after struct key a"},
		{`"abc`, "unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := FormatFile([]byte(tt.input), "bad.fusion", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
			assert.Contains(t, err.Error(), "bad.fusion")
		})
	}
}

func TestFormatFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.fusion")
	bad := filepath.Join(dir, "bad.fusion")
	clean := filepath.Join(dir, "clean.fusion")
	require.NoError(t, os.WriteFile(good, []byte("(a  b)"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("(a"), 0o644))
	require.NoError(t, os.WriteFile(clean, []byte("(a b)\n"), 0o644))
	missing := filepath.Join(dir, "missing.fusion")

	paths := []string{good, bad, clean, missing}
	results, err := FormatFiles(context.Background(), paths, nil, 2)
	require.NoError(t, err)
	require.Len(t, results, len(paths))
	for i, res := range results {
		assert.Equal(t, paths[i], res.Path)
	}

	assert.NoError(t, results[0].Err)
	assert.Equal(t, "(a b)\n", string(results[0].Formatted))
	assert.True(t, results[0].Changed())

	assert.Error(t, results[1].Err)
	assert.False(t, results[1].Changed())

	assert.NoError(t, results[2].Err)
	assert.False(t, results[2].Changed())

	assert.ErrorIs(t, results[3].Err, os.ErrNotExist)
}

func TestFormatFilesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FormatFiles(ctx, []string{"a.fusion"}, nil, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatIdempotentCorpus(t *testing.T) {
	corpus := []string{
		"(module test \"/fusion\"\n  (require \"/fusion/list\")\n\n  // Adds things.\n  (define (add a b)\n    (+ a b))\n\n  (provide add))\n",
		"(define x {a:[1,2,{b:null.int}],\n  c:2020-01-01T})\n",
		"(lambda (x)\n  (let [(y 1)]\n    (when (> x y)\n      (display \"big\"))))\n",
		"/*\n  header\n*/\n(if true\n  'sym'\n  $dollar)\n",
		"[\n  // leading comment\n  1, 2,\n  3 // trailing\n]\n",
		"(cond\n  ((= a 1) \"one\")\n  ((= a 2) \"two\")\n  ((= a 3) \"three\")\n  (true \"many\"))\n",
	}
	for _, src := range corpus {
		once, err := Format([]byte(src), nil)
		require.NoError(t, err, src)
		twice, err := Format(once, nil)
		require.NoError(t, err, string(once))
		assert.Equal(t, string(once), string(twice), "not idempotent for %q", src)
	}
}
