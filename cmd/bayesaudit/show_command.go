package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"bayesaudit/internal/config"
	"bayesaudit/internal/csvio"
	"bayesaudit/internal/history"
)

// newShowCommand renders the history database's latest stage, or one
// measurement's full history with --mid, as a table.
func newShowCommand(ctx *commandContext) *cobra.Command {
	var electionsRoot string
	var mid string

	cmd := &cobra.Command{
		Use:   "show <election_dirname>",
		Short: "Show the most recent stage's risk status, or one measurement's history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if electionsRoot != "" {
				cfg.ElectionsRoot = electionsRoot
			}
			return runShow(cmd, cfg, args[0], mid)
		},
	}

	cmd.Flags().StringVar(&electionsRoot, "elections_root", "", "Root directory containing election subdirectories")
	cmd.Flags().StringVar(&mid, "mid", "", "Show this measurement's full stage-by-stage history instead of the latest stage")

	return cmd
}

func runShow(cmd *cobra.Command, cfg *config.Config, dirname, mid string) error {
	out := cmd.OutOrStdout()
	layout := csvio.NewLayout(cfg.ElectionsRoot, dirname)

	hist, err := history.Open(cfg.HistoryDBPath(layout.ElectionDir()))
	if err != nil {
		return err
	}
	defer hist.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var records []history.MeasurementRecord
	if mid != "" {
		records, err = hist.MeasurementHistory(ctx, mid)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintf(out, "no history recorded for measurement %q\n", mid)
			return nil
		}
	} else {
		var ok bool
		records, ok, err = hist.LatestStage(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "no stage history recorded yet")
			return nil
		}
	}

	headers := []string{"stage_time", "mid", "cid", "risk", "risk_limit", "upset_threshold", "status"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.StageTime, r.MID, r.CID,
			fmt.Sprintf("%.6f", r.Risk), fmt.Sprintf("%.4f", r.RiskLimit), fmt.Sprintf("%.4f", r.UpsetThreshold),
			string(r.Status),
		})
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
	return nil
}
