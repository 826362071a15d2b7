// Copyright © 2024 The Fuus Army Knife authors

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ion-fusion/fuus-army-knife/index"
)

const fusionExt = ".fusion"

// expandArgs expands arguments, resolving patterns ending with "/..." to all
// .fusion files found recursively under the given directory in lexical
// order.  Non-pattern arguments pass through unchanged.  Paths matching an
// exclude pattern are dropped.
func expandArgs(args []string, excludes []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if dir, ok := strings.CutSuffix(arg, "/..."); ok {
			if dir == "" {
				dir = "."
			}
			files, err := index.FindFiles(dir, fusionExt)
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", arg, err)
			}
			out = append(out, files...)
		} else {
			out = append(out, arg)
		}
	}
	return filterExcludes(out, excludes), nil
}

// filterExcludes drops paths matching any of the glob patterns.
func filterExcludes(paths []string, patterns []string) []string {
	if len(patterns) == 0 {
		return paths
	}
	var out []string
	for _, path := range paths {
		if !matchesAny(path, patterns) {
			out = append(out, path)
		}
	}
	return out
}

// matchesAny reports whether a pattern matches the whole path or any one
// of its components.
func matchesAny(path string, patterns []string) bool {
	path = filepath.ToSlash(filepath.Clean(path))
	components := splitPath(path)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
		for _, c := range components {
			if ok, _ := filepath.Match(pattern, c); ok {
				return true
			}
		}
	}
	return false
}

func splitPath(path string) []string {
	var out []string
	for _, c := range strings.Split(path, "/") {
		if c != "" && c != "." {
			out = append(out, c)
		}
	}
	return out
}
