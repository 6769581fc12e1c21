// SPDX-License-Identifier: AGPL-3.0-or-later

/*
todotree - todotree scans a git repository for TODO markers and reports them
as a tree grouped by the commit, tag and author that last touched each line.

Copyright (C) 2026  The todotree authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package commands contains the Cobra command tree for the todotree CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd constructs the todotree root Cobra command. Running the root
// with no subcommand performs a scan, so `todotree` and `todotree scan`
// behave identically.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("TODOTREE_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "todotree",
		Short:         "Report TODO markers with commit, tag and author attribution",
		Long:          "todotree scans a git repository's tracked files for TODO markers,\nattributes each one to the commit that last modified its line, and prints\na tree grouped by commit, nearest tag and author.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runScan,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	addScanFlags(cmd)

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of todotree",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "todotree version %s\n", version)
		},
	})

	cmd.AddCommand(NewScanCommand())

	return cmd
}
