package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"digestcast/internal/runlog"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent digest runs from the local ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := runlog.Open(cfg.LedgerPath())
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRunsTable(runs, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to show (0 for all)")
	return cmd
}

var runColumns = []tableColumn{
	{header: "Started", align: text.AlignLeft},
	{header: "Episode", align: text.AlignLeft},
	{header: "Status", align: text.AlignLeft},
	{header: "Included", align: text.AlignRight},
	{header: "Skipped", align: text.AlignRight},
	{header: "Size", align: text.AlignRight},
	{header: "Duration", align: text.AlignRight},
	{header: "Reason", align: text.AlignLeft, maxWidth: 32},
}

// renderRunsTable lists runs newest first with a footer totalling the
// outcomes and the published audio.
func renderRunsTable(runs []runlog.Run, colorize bool) string {
	rows := make([][]string, 0, len(runs))
	var succeeded, failed, included, skipped int
	var published int64
	for _, run := range runs {
		switch run.Status {
		case runlog.StatusSucceeded:
			succeeded++
			published += run.FileSize
		case runlog.StatusFailed:
			failed++
		}
		included += run.Included
		skipped += run.Skipped
		rows = append(rows, []string{
			formatTimestamp(run.StartedAt),
			run.Episode,
			colorizeText(string(run.Status), runStatusKind(run.Status), colorize),
			strconv.Itoa(run.Included),
			strconv.Itoa(run.Skipped),
			orDash(run.FileSize > 0, formatBytes(run.FileSize)),
			formatDuration(run.Duration()),
			orDash(run.FailureReason != "", run.FailureReason),
		})
	}
	footer := []string{
		fmt.Sprintf("%d runs", len(runs)),
		"",
		fmt.Sprintf("%d ok, %d failed", succeeded, failed),
		strconv.Itoa(included),
		strconv.Itoa(skipped),
		orDash(published > 0, formatBytes(published)),
	}
	return renderTable(runColumns, rows, footer)
}

func orDash(ok bool, value string) string {
	if !ok {
		return "-"
	}
	return value
}

func runStatusKind(status runlog.Status) statusKind {
	switch status {
	case runlog.StatusSucceeded:
		return statusOK
	case runlog.StatusFailed:
		return statusError
	case runlog.StatusRunning:
		return statusWarn
	default:
		return statusInfo
	}
}
