// Copyright © 2024 The Fuus Army Knife authors

// Package config loads the fuusak configuration file.  The file is TOML (or
// YAML) with all settings under a single [fusion] table.  Every setting has
// a default so an absent file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the name of the configuration file written by create-config.
const FileName = "fuusak.toml"

// EnvPrefix prefixes environment variables that override configuration keys,
// e.g. FUUSAK_FUSION_NEWLINE_MODE.
const EnvPrefix = "FUUSAK"

// ErrConfigExists is returned by WriteDefault when a configuration file is
// already present.
var ErrConfigExists = errors.New("config file already exists")

// NewlineMode controls how the formatter treats newline runs.
type NewlineMode string

const (
	// NewlineNoChange preserves every newline run as written.
	NewlineNoChange NewlineMode = "no-change"
	// NewlineFixUp removes leading and trailing newlines inside compound
	// values and breaks lines before nested multi-line values.
	NewlineFixUp NewlineMode = "fix-up"
)

// PathMode tells the loader how to interpret files under a configured path.
type PathMode string

const (
	PathModules PathMode = "modules"
	PathTests   PathMode = "tests"
)

// PathConfig describes a directory of Fusion sources within a package.
type PathConfig struct {
	Path            string   `mapstructure:"path" yaml:"path"`
	Mode            PathMode `mapstructure:"mode" yaml:"mode"`
	TopLevelModules []string `mapstructure:"top_level_modules" yaml:"top_level_modules"`
	GlobalBindings  []string `mapstructure:"global_bindings" yaml:"global_bindings"`
}

// Config holds all fuusak settings.
type Config struct {
	NewlineMode                   NewlineMode
	FormatMultilineStringContents bool
	FixedIndentSymbols            []string
	SmartIndentSymbols            []string
	Paths                         []PathConfig
	ModulePaths                   []string
}

// DefaultTOML is the default configuration file content.
const DefaultTOML = `[fusion]
# "fix-up" normalizes newlines inside lists, s-expressions and structs.
# "no-change" leaves every newline where it was written.
newline_mode = "fix-up"

# Re-indent the contents of multi-line ''' strings.
format_multiline_string_contents = true

# S-expressions headed by these symbols indent their arguments by two spaces.
fixed_indent_symbols = [
  "define",
  "define_syntax",
  "defpub",
  "defpub_j",
  "defpub_syntax",
  "lambda",
  "let",
  "lets",
  "letrec",
  "module",
  "when",
  "unless",
  "|",
]

# S-expressions headed by these symbols switch to a two space indent once
# they grow large.
smart_indent_symbols = ["if", "cond", "begin", "and", "or"]

# Additional directories searched for module files.
module_paths = []

[[fusion.paths]]
path = "fusion/src"
mode = "modules"

[[fusion.paths]]
path = "ftst"
mode = "tests"
top_level_modules = ["/fusion"]
global_bindings = []
`

// Default returns the built-in configuration.  It matches DefaultTOML.
func Default() *Config {
	return &Config{
		NewlineMode:                   NewlineFixUp,
		FormatMultilineStringContents: true,
		FixedIndentSymbols: []string{
			"define", "define_syntax", "defpub", "defpub_j", "defpub_syntax",
			"lambda", "let", "lets", "letrec", "module", "when", "unless", "|",
		},
		SmartIndentSymbols: []string{"if", "cond", "begin", "and", "or"},
		Paths: []PathConfig{
			{Path: "fusion/src", Mode: PathModules},
			{Path: "ftst", Mode: PathTests, TopLevelModules: []string{"/fusion"}},
		},
	}
}

// SetDefaults registers default values for every key on v.
func SetDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("fusion.newline_mode", string(def.NewlineMode))
	v.SetDefault("fusion.format_multiline_string_contents", def.FormatMultilineStringContents)
	v.SetDefault("fusion.fixed_indent_symbols", def.FixedIndentSymbols)
	v.SetDefault("fusion.smart_indent_symbols", def.SmartIndentSymbols)
	v.SetDefault("fusion.module_paths", []string{})
	v.SetDefault("fusion.paths", def.Paths)
}

// NewViper returns a viper instance configured with defaults, environment
// overrides and, when found, a configuration file.  An explicit cfgFile must
// exist.  Otherwise fuusak.toml (or .yaml) is searched for in the working
// directory and then the home directory.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		return v, nil
	}
	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// FromViper decodes and validates the [fusion] settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		NewlineMode:                   NewlineMode(v.GetString("fusion.newline_mode")),
		FormatMultilineStringContents: v.GetBool("fusion.format_multiline_string_contents"),
		FixedIndentSymbols:            v.GetStringSlice("fusion.fixed_indent_symbols"),
		SmartIndentSymbols:            v.GetStringSlice("fusion.smart_indent_symbols"),
		ModulePaths:                   v.GetStringSlice("fusion.module_paths"),
	}
	if err := v.UnmarshalKey("fusion.paths", &cfg.Paths); err != nil {
		return nil, fmt.Errorf("decoding fusion.paths: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads configuration the same way the CLI does.
func Load(cfgFile string) (*Config, error) {
	v, err := NewViper(cfgFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// Parse decodes configuration from TOML text.
func Parse(text string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(text)); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return FromViper(v)
}

// WriteDefault writes DefaultTOML into dir and returns the file path.  An
// existing file is never overwritten.
func WriteDefault(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return path, fmt.Errorf("%s: %w", path, ErrConfigExists)
		}
		return path, err
	}
	if _, err := f.WriteString(DefaultTOML); err != nil {
		f.Close()
		return path, err
	}
	return path, f.Close()
}

// Validate reports the first invalid setting in c.
func (c *Config) Validate() error {
	switch c.NewlineMode {
	case NewlineNoChange, NewlineFixUp:
	default:
		return fmt.Errorf("invalid newline_mode %q: expected %q or %q",
			c.NewlineMode, NewlineNoChange, NewlineFixUp)
	}
	for i, p := range c.Paths {
		if strings.TrimSpace(p.Path) == "" {
			return fmt.Errorf("fusion.paths[%d]: path is empty", i)
		}
		switch p.Mode {
		case PathModules, PathTests:
		default:
			return fmt.Errorf("fusion.paths[%d] (%s): invalid mode %q: expected %q or %q",
				i, p.Path, p.Mode, PathModules, PathTests)
		}
	}
	return nil
}

// NewlineFixUpMode reports whether the formatter should run the fix-up pass.
func (c *Config) NewlineFixUpMode() bool {
	return c.NewlineMode == NewlineFixUp
}

// IsFixedIndent reports whether s-expressions headed by sym always indent
// their arguments by two spaces.
func (c *Config) IsFixedIndent(sym string) bool {
	return slices.Contains(c.FixedIndentSymbols, sym)
}

// IsSmartIndent reports whether s-expressions headed by sym switch to a
// fixed indent once they span many lines.
func (c *Config) IsSmartIndent(sym string) bool {
	return slices.Contains(c.SmartIndentSymbols, sym)
}

// ResolvePath returns the configured path containing rel, a slash separated
// path relative to the package root.  When paths nest the longest one wins.
func (c *Config) ResolvePath(rel string) (*PathConfig, bool) {
	rel = filepath.ToSlash(filepath.Clean(rel))
	var best *PathConfig
	for i := range c.Paths {
		p := &c.Paths[i]
		root := strings.TrimSuffix(filepath.ToSlash(filepath.Clean(p.Path)), "/")
		if rel != root && !strings.HasPrefix(rel, root+"/") {
			continue
		}
		if best == nil || len(root) > len(filepath.Clean(best.Path)) {
			best = p
		}
	}
	return best, best != nil
}
