// Copyright © 2024 The Fuus Army Knife authors

package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ion-fusion/fuus-army-knife/diagnostic"
	"github.com/ion-fusion/fuus-army-knife/formatter"
	"github.com/ion-fusion/fuus-army-knife/logging"
)

const stdinName = "<stdin>"

type fmtOptions struct {
	write    bool
	diff     bool
	list     bool
	excludes []string
	workers  int
}

func (a *app) newFmtCommand() *cobra.Command {
	var opts fmtOptions
	cmd := &cobra.Command{
		Use:     "fmt [flags] [files...]",
		Aliases: []string{"format"},
		Short:   "Format Fusion source files",
		Long: `Format Fusion source files.

Normalizes whitespace and indentation, aligns forms according to the
configured indent symbols, and preserves comments.  The formatter is
idempotent.

With no files, reads from stdin and writes to stdout.
With files, prints formatted output to stdout unless -w is given.
A "dir/..." argument stands for every .fusion file below dir.

Modes:
  (default)   Print formatted code to stdout
  -w          Write result back to source file
  -d          Display a diff of changes
  -l          List files that would be changed

Examples:
  fuusak fmt file.fusion            Print formatted output
  fuusak fmt -w fusion/src/...      Format a tree in place
  fuusak fmt -d file.fusion         Show what would change
  fuusak fmt -l ftst/...            List files needing formatting
  cat file.fusion | fuusak fmt      Format from stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.fmtStdin(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			paths, err := expandArgs(args, opts.excludes)
			if err != nil {
				return err
			}
			return a.fmtFiles(cmd, paths, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.write, "write", "w", false,
		"Write result to (source) file instead of stdout.")
	cmd.Flags().BoolVarP(&opts.diff, "diff", "d", false,
		"Display diffs instead of rewriting files.")
	cmd.Flags().BoolVarP(&opts.list, "list", "l", false,
		"List files whose formatting differs from fuusak's.")
	cmd.Flags().StringArrayVar(&opts.excludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	cmd.Flags().IntVar(&opts.workers, "workers", runtime.NumCPU(),
		"Number of files formatted concurrently.")
	cmd.MarkFlagsMutuallyExclusive("write", "diff", "list")
	return cmd
}

func (a *app) fmtStdin(r io.Reader, w io.Writer) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	out, err := formatter.FormatFile(src, stdinName, a.cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// fmtFiles formats paths and reports each result according to opts.  Errors
// in one file do not stop the others.
func (a *app) fmtFiles(cmd *cobra.Command, paths []string, opts fmtOptions) error {
	ctx := cmd.Context()
	results, err := formatter.FormatFiles(ctx, paths, a.cfg, opts.workers)
	if err != nil {
		return err
	}
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	renderer := a.renderer()
	code := 0
	changed := 0
	for i := range results {
		r := &results[i]
		a.log.Debug("formatting", logging.FieldPath, r.Path)
		if r.Err != nil {
			_ = renderer.Render(stderr, diagnostic.FromError(r.Err, r.Original))
			code = 2
			continue
		}
		if r.Changed() {
			changed++
		}
		switch {
		case opts.list:
			if r.Changed() {
				fmt.Fprintln(stdout, r.Path)
				code = max(code, 1)
			}
		case opts.diff:
			if r.Changed() {
				writeDiff(stdout, r.Path, r.Original, r.Formatted, a.diffStyles(stdout))
				code = max(code, 1)
			}
		case opts.write:
			if r.Changed() {
				if err := writeFileAtomic(r.Path, r.Formatted); err != nil {
					fmt.Fprintf(stderr, "error: %v\n", err)
					code = 2
				}
			}
		default:
			if _, err := stdout.Write(r.Formatted); err != nil {
				return err
			}
		}
	}
	a.log.Info("formatted files",
		logging.FieldFilesProcessed, len(results),
		logging.FieldFilesChanged, changed)
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

func (a *app) newFormatAllCommand() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "format-all",
		Short: "Format every .fusion file below the working directory in place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.log.Debug("examining", logging.FieldPath, ".")
			paths, err := expandArgs([]string{"./..."}, nil)
			if err != nil {
				return err
			}
			return a.fmtFiles(cmd, paths, fmtOptions{write: true, workers: workers})
		},
	}
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(),
		"Number of files formatted concurrently.")
	return cmd
}
