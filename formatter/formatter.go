// Copyright © 2024 The Fuus Army Knife authors

// Package formatter provides source code formatting for Fusion files.  The
// source is parsed into a concrete syntax tree which keeps every comment and
// newline, lowered into an intermediate syntax tree, optionally normalized
// by the newline fix-up pass and finally printed.
package formatter

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/ion-fusion/fuus-army-knife/config"
	"github.com/ion-fusion/fuus-army-knife/ist"
	"github.com/ion-fusion/fuus-army-knife/parser/rdparser"
)

// Format formats Fusion source code.  If cfg is nil, config.Default() is
// used.
func Format(source []byte, cfg *config.Config) ([]byte, error) {
	return FormatFile(source, "<stdin>", cfg)
}

// FormatFile formats Fusion source code, using filename for error messages.
func FormatFile(source []byte, filename string, cfg *config.Config) ([]byte, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	exprs, err := rdparser.Parse(filename, source)
	if err != nil {
		return nil, err
	}
	tree, err := ist.Lower(exprs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return []byte(FormatTree(tree, cfg)), nil
}

// FormatTree prints tree, running the newline fix-up pass first when cfg
// asks for it.
func FormatTree(tree *ist.Tree, cfg *config.Config) string {
	if cfg.NewlineFixUpMode() {
		tree = Fixup(tree)
	}
	pr := newPrinter(cfg)
	pr.writeNodes(tree.Exprs, 0)
	return pr.finish()
}

// FileResult is the outcome of formatting one file.
type FileResult struct {
	Path      string
	Original  []byte
	Formatted []byte
	Err       error
}

// Changed reports whether formatting altered the file.
func (r *FileResult) Changed() bool {
	return r.Err == nil && !bytes.Equal(r.Original, r.Formatted)
}

// FormatFiles reads and formats the files at paths using at most workers
// goroutines.  Results are returned in the order of paths.  A file that
// cannot be read or parsed records its error in its result and does not
// stop the others.  The returned error is only non-nil when ctx is done.
func FormatFiles(ctx context.Context, paths []string, cfg *config.Config, workers int) ([]FileResult, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := &results[i]
			res.Path = path
			res.Original, res.Err = os.ReadFile(path)
			if res.Err != nil {
				return nil
			}
			res.Formatted, res.Err = FormatFile(res.Original, path, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
