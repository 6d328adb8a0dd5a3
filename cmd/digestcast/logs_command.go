package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"digestcast/internal/logs"
	"digestcast/internal/runlog"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs [run-id]",
		Short: "Show the log of the latest run or of a specific run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var path string
			if len(args) == 1 {
				path, err = runLogPath(cmd, cfg.LedgerPath(), strings.TrimSpace(args[0]))
			} else {
				path, err = logs.Latest(cfg.Paths.LogDir, logFilePattern)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: -1, Limit: lines})
			if err != nil {
				return err
			}
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			for follow {
				result, err = logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: result.Offset, Follow: true, Wait: time.Second})
				if err != nil {
					return err
				}
				for _, line := range result.Lines {
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	return cmd
}

func runLogPath(cmd *cobra.Command, ledgerPath, runID string) (string, error) {
	store, err := runlog.Open(ledgerPath)
	if err != nil {
		return "", fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), runID)
	if err != nil {
		return "", err
	}
	if run.LogPath == "" {
		return "", errors.New("run " + runID + " has no recorded log file")
	}
	return run.LogPath, nil
}
