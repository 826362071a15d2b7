// Copyright © 2024 The Fuus Army Knife authors

package diagnostic

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // detect based on terminal and NO_COLOR
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode parses the value of a --color flag.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("invalid color mode %q: expected auto, always or never", s)
}

// Enabled reports whether output written to w should be colored.
func (m ColorMode) Enabled(w *os.File) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return os.Getenv("NO_COLOR") == "" && isTerminal(w)
	}
}

// palette holds the ANSI escape sequences for diagnostic output.
type palette struct {
	bold     string
	red      string
	yellow   string
	blue     string
	cyan     string
	boldRed  string
	boldBlue string
	boldCyan string
	reset    string
}

var ansiPalette = palette{
	bold:     "\033[1m",
	red:      "\033[31m",
	yellow:   "\033[33m",
	blue:     "\033[34m",
	cyan:     "\033[36m",
	boldRed:  "\033[1;31m",
	boldBlue: "\033[1;34m",
	boldCyan: "\033[1;36m",
	reset:    "\033[0m",
}

var noPalette = palette{}

// choosePalette selects the appropriate color palette based on the mode
// and the output file descriptor.
func choosePalette(mode ColorMode, w *os.File) palette {
	if mode.Enabled(w) {
		return ansiPalette
	}
	return noPalette
}

// isTerminal reports whether f is connected to a terminal.
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
