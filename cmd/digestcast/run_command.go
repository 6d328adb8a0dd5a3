package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"digestcast/internal/logging"
	"digestcast/internal/pipeline"
)

func runDigest(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	started := time.Now()
	logger, logPath, err := ctx.runLogger(cfg, started)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	deps, cleanup, err := openDependencies(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	runner, err := pipeline.New(cfg, deps, logger, pipeline.WithLogPath(logPath))
	if err != nil {
		return err
	}
	summary, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Published episode %s: %d included, %d skipped, %s (%s)\n",
		summary.Episode, summary.Included, summary.Skipped, formatBytes(summary.FileSize), formatDuration(summary.Duration))
	logger.Debug("run log written", logging.String("path", logPath))
	return nil
}

func newFeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "feed",
		Short: "Rebuild the episode and article feeds from published history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, _, err := ctx.runLogger(cfg, time.Now())
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			deps, cleanup, err := openDependencies(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			runner, err := pipeline.New(cfg, deps, logger)
			if err != nil {
				return err
			}
			summary, err := runner.RebuildFeeds(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rebuilt feeds: %d episodes, %d articles\n", summary.EpisodeEntries, summary.ArticleEntries)
			return nil
		},
	}
}
