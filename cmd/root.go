// Copyright © 2024 The Fuus Army Knife authors

// Package cmd implements the fuusak command line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ion-fusion/fuus-army-knife/config"
	"github.com/ion-fusion/fuus-army-knife/diagnostic"
	"github.com/ion-fusion/fuus-army-knife/logging"
)

// exitError makes the process exit with a status other than 1 without
// printing anything further.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// app holds the state shared by all commands once flags are parsed.
type app struct {
	cfgFile  string
	color    string
	logLevel string

	cfg       *config.Config
	colorMode diagnostic.ColorMode
	log       *log.Logger
}

// NewRootCommand returns the fuusak command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "fuusak",
		Short: "Fuus Army Knife: formatter and linter for Fusion",
		Long: `fuusak formats Fusion source code and checks Fusion packages for
unbound identifiers.

Getting started:
  fuusak create-config         Write a default fuusak.toml
  fuusak fmt -w src/...        Format every .fusion file under src in place
  fuusak fmt -d file.fusion    Show what formatting would change
  fuusak check                 Report unbound identifiers in the package
  fuusak check --watch         Re-check files as they change
  fuusak lsp                   Start the language server

Configuration is read from fuusak.toml (or fuusak.yaml) in the working
directory or the home directory.  Settings can be overridden with
FUUSAK_* environment variables, e.g. FUUSAK_FUSION_NEWLINE_MODE=no-change.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "",
		"config file (default is ./fuusak.toml or $HOME/fuusak.toml)")
	root.PersistentFlags().StringVar(&a.color, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn",
		`Log level: "debug", "info", "warn", or "error".`)

	root.AddCommand(
		a.newFmtCommand(),
		a.newFormatAllCommand(),
		a.newDebugASTCommand(),
		a.newDebugISTCommand(),
		a.newDebugIndexCommand(),
		a.newCreateConfigCommand(),
		a.newCheckCommand(),
		a.newLSPCommand(),
	)
	return root
}

// Execute runs the root command and exits with its status.  It is called
// by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := NewRootCommand().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	var exit *exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

// setup loads the configuration and installs the logger for the command
// being run.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	mode, err := diagnostic.ParseColorMode(a.color)
	if err != nil {
		return err
	}
	a.colorMode = mode

	v, err := config.NewViper(a.cfgFile)
	if err != nil {
		return err
	}
	if err := v.BindPFlag("log_level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
		return err
	}
	a.log = logging.NewWithWriter(cmd.ErrOrStderr(), v.GetString("log_level"))
	if used := v.ConfigFileUsed(); used != "" {
		a.log.Debug("using config file", logging.FieldConfig, used)
	}

	a.cfg, err = config.FromViper(v)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.WithLogger(ctx, a.log))
	return nil
}
