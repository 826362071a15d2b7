// Copyright © 2024 The Fuus Army Knife authors

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// diffStyles styles the lines of a diff.
type diffStyles struct {
	enabled bool
	header  lipgloss.Style
	removed lipgloss.Style
	added   lipgloss.Style
}

func (a *app) diffStyles(w io.Writer) diffStyles {
	return diffStyles{
		enabled: a.colorEnabled(w),
		header:  lipgloss.NewStyle().Bold(true),
		removed: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		added:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

func (s diffStyles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

type diffOp int

const (
	diffEqual diffOp = iota
	diffRemove
	diffAdd
)

type diffLine struct {
	op   diffOp
	text string
}

// writeDiff writes a line diff of original and formatted to w.  Removed
// lines are prefixed by '-' and added lines by '+'.
func writeDiff(w io.Writer, path string, original, formatted []byte, styles diffStyles) {
	fmt.Fprintln(w, styles.render(styles.header, "--- "+path))
	fmt.Fprintln(w, styles.render(styles.header, "+++ "+path))
	for _, l := range diffLines(splitLines(original), splitLines(formatted)) {
		switch l.op {
		case diffRemove:
			fmt.Fprintln(w, styles.render(styles.removed, "-"+l.text))
		case diffAdd:
			fmt.Fprintln(w, styles.render(styles.added, "+"+l.text))
		default:
			fmt.Fprintln(w, " "+l.text)
		}
	}
}

// diffLines computes a minimal line diff from the longest common
// subsequence of a and b.  Removals are listed before additions.
func diffLines(a, b []string) []diffLine {
	// lcs[i][j] is the length of the LCS of a[i:] and b[j:].
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}
	var out []diffLine
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, diffLine{diffEqual, a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			out = append(out, diffLine{diffRemove, a[i]})
			i++
		default:
			out = append(out, diffLine{diffAdd, b[j]})
			j++
		}
	}
	for ; i < len(a); i++ {
		out = append(out, diffLine{diffRemove, a[i]})
	}
	for ; j < len(b); j++ {
		out = append(out, diffLine{diffAdd, b[j]})
	}
	return out
}

func splitLines(data []byte) []string {
	s := strings.TrimSuffix(string(data), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
