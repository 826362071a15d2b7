// Copyright © 2024 The Fuus Army Knife authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ion-fusion/fuus-army-knife/lsp"
)

func (a *app) newLSPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Fusion Language Server Protocol server",
		Long: `Start an LSP server for Fusion source files on stdin/stdout.

The server publishes syntax errors as diagnostics and formats whole
documents using the same configuration as "fuusak fmt".

Editor configuration (VS Code):
  Install a generic LSP client extension and configure it to run
  "fuusak lsp" for .fusion files.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			srv := lsp.New(lsp.WithConfig(a.cfg), lsp.WithLogger(a.log))
			if err := srv.RunStdio(); err != nil {
				return fmt.Errorf("lsp server error: %w", err)
			}
			return nil
		},
	}
}
