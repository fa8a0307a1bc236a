package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"feebump/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var txid string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs or every attempt for one transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled (set history.enabled = true)")
			}
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if txid = strings.TrimSpace(txid); txid != "" {
				attempts, err := store.AttemptsForTx(cmd.Context(), txid)
				if err != nil {
					return err
				}
				if len(attempts) == 0 {
					fmt.Fprintf(out, "No attempts recorded for %s\n", txid)
					return nil
				}
				rows := make([][]string, 0, len(attempts))
				for _, attempt := range attempts {
					rows = append(rows, []string{
						formatTimestamp(attempt.AttemptedAt),
						attempt.RunID,
						formatSats(attempt.FeeDelta),
						string(attempt.Outcome),
						attempt.Detail,
					})
				}
				fmt.Fprintln(out, renderTable([]tableColumn{
					{header: "Attempted (UTC)"},
					{header: "Run"},
					{header: "Fee Delta (sat)", align: alignRight},
					{header: "Outcome"},
					{header: "Error"},
				}, rows, nil))
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					formatTimestamp(run.StartedAt),
					run.ID,
					run.CommitPolicy,
					formatCount(run.Eligible),
					formatCount(run.Succeeded),
					formatCount(run.Failed),
					yesNo(run.Committed),
				})
			}
			fmt.Fprintln(out, renderTable([]tableColumn{
				{header: "Started (UTC)"},
				{header: "Run"},
				{header: "Policy"},
				{header: "Eligible", align: alignRight},
				{header: "Succeeded", align: alignRight},
				{header: "Failed", align: alignRight},
				{header: "Committed"},
			}, rows, nil))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().StringVar(&txid, "txid", "", "Show every attempt for this transaction instead")
	return cmd
}
