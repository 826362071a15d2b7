// Copyright © 2024 The Fuus Army Knife authors

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ion-fusion/fuus-army-knife/ast"
	"github.com/ion-fusion/fuus-army-knife/index"
	"github.com/ion-fusion/fuus-army-knife/ist"
	"github.com/ion-fusion/fuus-army-knife/parser"
)

func (a *app) newDebugASTCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "debug-ast FILE",
		Short: "Print the concrete syntax tree of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, exprs, err := parser.ReadFile(args[0])
			if err != nil {
				return err
			}
			return ast.Dump(cmd.OutOrStdout(), source, exprs)
		},
	}
}

func (a *app) newDebugISTCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "debug-ist FILE",
		Short: "Print the intermediate syntax tree the formatter works on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, exprs, err := parser.ReadFile(args[0])
			if err != nil {
				return err
			}
			tree, err := ist.Lower(exprs)
			if err != nil {
				return err
			}
			return ist.Dump(cmd.OutOrStdout(), source, tree)
		},
	}
}

func (a *app) newDebugIndexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "debug-index [DIR]",
		Short: "Print the module and script index of a package as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := index.LoadIndex(cmd.Context(), a.cfg, packageDir(args))
			if err != nil {
				return err
			}
			return idx.Dump(cmd.OutOrStdout())
		},
	}
}

// packageDir returns the package directory named by args, defaulting to
// the working directory.
func packageDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
