// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/todotree-dev/todotree/cmd/todotree/internal/clierr"
	"github.com/todotree-dev/todotree/internal/attribute"
	"github.com/todotree-dev/todotree/internal/config"
	"github.com/todotree-dev/todotree/internal/gitrepo"
	"github.com/todotree-dev/todotree/internal/marker"
	"github.com/todotree-dev/todotree/internal/render"
	"github.com/todotree-dev/todotree/internal/report"
)

// NewScanCommand returns the explicit `todotree scan` command.
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the repository and print the TODO report",
		RunE:  runScan,
	}
	addScanFlags(cmd)
	return cmd
}

func addScanFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("path", ".", "repository path (any directory inside the worktree)")
	flags.String("rev", "HEAD", "revision to scan")
	flags.Bool("worktree", false, "scan working-tree content; never-committed lines report as uncommitted")
	flags.StringSlice("marker", nil, "marker tokens to scan for (default: todo)")
	flags.Bool("comment-only", false, "only match markers preceded by a comment introducer")
	flags.Int64("max-file-size", 0, "per-file size ceiling in bytes (default: 1 MiB)")
	flags.Int("jobs", 0, "scan workers (default: number of CPUs)")
	flags.String("format", "text", "output format: text or json")
	flags.String("config", "", "config file (default: .todotree.yaml at the repo root)")
}

func runScan(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	path, _ := flags.GetString("path")
	rev, _ := flags.GetString("rev")
	worktree, _ := flags.GetBool("worktree")
	format, _ := flags.GetString("format")
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")

	if format != "text" && format != "json" {
		return clierr.Newf(clierr.CodeUsage, "scan: unknown format %q", format)
	}
	if noColor {
		color.NoColor = true
	}

	logger := newLogger(verbose)

	repo, err := gitrepo.Open(path)
	if err != nil {
		return clierr.Wrap(clierr.CodeUsage, "scan: not a git repository", err)
	}

	head, err := repo.ResolveRevision(rev)
	if err != nil {
		return clierr.Wrap(clierr.CodeUsage, "scan", err)
	}

	cfg, err := loadConfig(cmd, repo.Root())
	if err != nil {
		return clierr.Wrap(clierr.CodeUsage, "scan", err)
	}

	scanner, err := marker.New(marker.Options{
		Tokens:      cfg.Markers,
		CommentOnly: cfg.CommentOnly,
		MaxFileSize: cfg.MaxFileSize,
	})
	if err != nil {
		return clierr.Wrap(clierr.CodeUsage, "scan", err)
	}

	engine := attribute.New(repo, scanner, logger, attribute.Options{
		Worktree: worktree,
		Jobs:     cfg.Jobs,
		Filter: attribute.FilterOptions{
			ExcludeDirs:       cfg.ExcludeDirs,
			IncludeExtensions: cfg.IncludeExtensions,
		},
	})

	result, err := engine.Run(cmd.Context(), head.SHA)
	if err != nil {
		return clierr.Wrap(clierr.CodeScanFailure, "scan", err)
	}
	if result.SkippedFiles > 0 {
		logger.Warn("some files could not be scanned", "count", result.SkippedFiles)
	}

	tree := report.Build(result.Records)

	if format == "json" {
		if err := render.JSON(cmd.OutOrStdout(), tree); err != nil {
			return clierr.Wrap(clierr.CodeScanFailure, "scan: write report", err)
		}
		return nil
	}

	err = render.Text(cmd.OutOrStdout(), tree, render.Options{
		Markers: cfg.Markers,
		NoColor: noColor,
	})
	if err != nil {
		return clierr.Wrap(clierr.CodeScanFailure, "scan: write report", err)
	}
	return nil
}

// loadConfig reads the config file (explicit flag or repo-root default) and
// applies flag overrides on top.
func loadConfig(cmd *cobra.Command, root string) (config.Config, error) {
	flags := cmd.Flags()

	var cfg config.Config
	var err error

	if path, _ := flags.GetString("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromRoot(root)
	}
	if err != nil {
		return config.Config{}, err
	}

	if markers, _ := flags.GetStringSlice("marker"); len(markers) > 0 {
		cfg.Markers = markers
	}
	if flags.Changed("comment-only") {
		cfg.CommentOnly, _ = flags.GetBool("comment-only")
	}
	if size, _ := flags.GetInt64("max-file-size"); size > 0 {
		cfg.MaxFileSize = size
	}
	if jobs, _ := flags.GetInt("jobs"); jobs > 0 {
		cfg.Jobs = jobs
	}

	return cfg, nil
}

func newLogger(verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: false,
		Prefix:          "todotree",
	})
}
