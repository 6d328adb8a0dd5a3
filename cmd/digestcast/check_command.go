package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"digestcast/internal/config"
	"digestcast/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var skipRemote bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify binaries, directories, and the news source before a run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			if !skipRemote {
				results = append(results, preflight.CheckEndpoint(cmd.Context(), "News source", sourceURL(cfg),
					cfg.Source.UserAgent, time.Duration(cfg.Source.TimeoutSeconds)*time.Second))
			}
			writeSection(out, renderCheckSection("Dependencies", dependencyLines(preflight.CheckSystemDeps(cfg)), colorize))
			writeSection(out, renderCheckSection("Preflight", preflightLines(results), colorize))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return errors.New("preflight failed: " + preflight.Summarize(failed))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipRemote, "offline", false, "Skip the news source reachability check")
	return cmd
}

func sourceURL(cfg *config.Config) string {
	if cfg.Source.Kind == config.SourceKindRSS {
		return cfg.Source.FeedURL
	}
	return cfg.Source.BaseURL
}

func writeSection(out io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)
}
