// Copyright © 2024 The Fuus Army Knife authors

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTOMLMatchesDefault(t *testing.T) {
	cfg, err := Parse(DefaultTOML)
	require.NoError(t, err)
	def := Default()
	assert.Equal(t, def.NewlineMode, cfg.NewlineMode)
	assert.Equal(t, def.FormatMultilineStringContents, cfg.FormatMultilineStringContents)
	assert.Equal(t, def.FixedIndentSymbols, cfg.FixedIndentSymbols)
	assert.Equal(t, def.SmartIndentSymbols, cfg.SmartIndentSymbols)
	assert.Empty(t, cfg.ModulePaths)
	require.Len(t, cfg.Paths, 2)
	assert.Equal(t, "fusion/src", cfg.Paths[0].Path)
	assert.Equal(t, PathModules, cfg.Paths[0].Mode)
	assert.Equal(t, "ftst", cfg.Paths[1].Path)
	assert.Equal(t, PathTests, cfg.Paths[1].Mode)
	assert.Equal(t, []string{"/fusion"}, cfg.Paths[1].TopLevelModules)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse(`[fusion]
newline_mode = "no-change"
format_multiline_string_contents = false
smart_indent_symbols = ["if"]
module_paths = ["vendor/fusion"]

[[fusion.paths]]
path = "src"
mode = "modules"
`)
	require.NoError(t, err)
	assert.Equal(t, NewlineNoChange, cfg.NewlineMode)
	assert.False(t, cfg.NewlineFixUpMode())
	assert.False(t, cfg.FormatMultilineStringContents)
	assert.Equal(t, []string{"if"}, cfg.SmartIndentSymbols)
	assert.True(t, cfg.IsFixedIndent("define"), "unset keys keep their defaults")
	assert.Equal(t, []string{"vendor/fusion"}, cfg.ModulePaths)
	require.Len(t, cfg.Paths, 1)
	assert.Equal(t, "src", cfg.Paths[0].Path)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse("")
	require.NoError(t, err)
	assert.True(t, cfg.NewlineFixUpMode())
	assert.True(t, cfg.FormatMultilineStringContents)
	assert.Len(t, cfg.Paths, 2)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  string
	}{
		{"bad newline mode", "[fusion]\nnewline_mode = \"sometimes\"\n", `invalid newline_mode "sometimes"`},
		{"bad path mode", "[fusion]\n[[fusion.paths]]\npath = \"x\"\nmode = \"scripts\"\n", `invalid mode "scripts"`},
		{"empty path", "[fusion]\n[[fusion.paths]]\npath = \"\"\nmode = \"tests\"\n", "path is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestIndentSymbols(t *testing.T) {
	cfg := Default()
	for _, sym := range []string{"define", "lambda", "lets", "|"} {
		assert.True(t, cfg.IsFixedIndent(sym), sym)
		assert.False(t, cfg.IsSmartIndent(sym), sym)
	}
	for _, sym := range []string{"if", "cond", "begin", "and", "or"} {
		assert.True(t, cfg.IsSmartIndent(sym), sym)
		assert.False(t, cfg.IsFixedIndent(sym), sym)
	}
	assert.False(t, cfg.IsFixedIndent("+"))
	assert.False(t, cfg.IsSmartIndent("+"))
}

func TestResolvePath(t *testing.T) {
	cfg := Default()
	cfg.Paths = append(cfg.Paths, PathConfig{Path: "ftst/slow", Mode: PathTests})

	p, ok := cfg.ResolvePath("fusion/src/foo/bar.fusion")
	require.True(t, ok)
	assert.Equal(t, "fusion/src", p.Path)

	p, ok = cfg.ResolvePath("ftst/slow/a.test.fusion")
	require.True(t, ok)
	assert.Equal(t, "ftst/slow", p.Path)

	p, ok = cfg.ResolvePath("ftst/a.test.fusion")
	require.True(t, ok)
	assert.Equal(t, "ftst", p.Path)

	_, ok = cfg.ResolvePath("ftstx/a.fusion")
	assert.False(t, ok)
	_, ok = cfg.ResolvePath("docs/readme.fusion")
	assert.False(t, ok)
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultTOML, string(b))

	_, err = WriteDefault(dir)
	assert.ErrorIs(t, err, ErrConfigExists)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[fusion]\nnewline_mode = \"no-change\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, NewlineNoChange, cfg.NewlineMode)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(DefaultTOML), 0o644))
	t.Setenv("FUUSAK_FUSION_NEWLINE_MODE", "no-change")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, NewlineNoChange, cfg.NewlineMode)
}
