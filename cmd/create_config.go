// Copyright © 2024 The Fuus Army Knife authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ion-fusion/fuus-army-knife/config"
	"github.com/ion-fusion/fuus-army-knife/logging"
)

func (a *app) newCreateConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-config",
		Short: "Write a default " + config.FileName + " into the working directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			path, err := config.WriteDefault(wd)
			if err != nil {
				return err
			}
			a.log.Debug("wrote default config", logging.FieldPath, path)
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}
}
