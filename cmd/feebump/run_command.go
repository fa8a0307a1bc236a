package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"feebump/internal/batchrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Send every eligible queued request to the relay once",
		Long: "Load the acceleration queue, apply each eligible fee delta with\n" +
			"prioritisetransaction, append the outcome of every attempt to the audit\n" +
			"log, and rewrite the queue according to reconcile.commit_policy.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			summary, err := batchrun.Run(cmd.Context(), batchrun.Options{
				Config: cfg,
				Logger: logger,
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if summary.DryRun {
				printDryRun(out, summary)
				return nil
			}
			printRunSummary(out, summary, colorEnabled(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report eligible requests without calling the relay or writing files")
	return cmd
}

func printDryRun(out io.Writer, summary batchrun.Summary) {
	fmt.Fprintf(out, "Dry run: %s of %s requests eligible\n", formatCount(summary.Eligible), formatCount(summary.Total))
	if len(summary.Planned) == 0 {
		return
	}
	rows := make([][]string, 0, len(summary.Planned))
	for _, req := range summary.Planned {
		fee, _ := req.FeeDeltaValue()
		rows = append(rows, []string{req.TxIDValue(), formatEventType(req.EventType), formatSats(fee)})
	}
	fmt.Fprintln(out, renderTable([]tableColumn{
		{header: "TxID"},
		{header: "Event"},
		{header: "Fee Delta (sat)", align: alignRight},
	}, rows, nil))
}

func printRunSummary(out io.Writer, summary batchrun.Summary, colorize bool) {
	fmt.Fprintf(out, "Run %s\n", summary.RunID)
	for _, entry := range summary.Entries {
		message := formatSats(entry.FeeDelta) + " sat"
		if !entry.Succeeded() {
			message += ": " + entry.Detail
		}
		fmt.Fprintln(out, outcomeLine(shortTxID(entry.TxID), entry.Succeeded(), message, colorize))
	}

	fmt.Fprintf(out, "Processed %s of %s requests: %s succeeded, %s failed\n",
		formatCount(summary.Eligible), formatCount(summary.Total),
		formatCount(summary.Succeeded), formatCount(summary.Failed))
	switch {
	case summary.Committed && summary.AnyFailure():
		fmt.Fprintln(out, "Queue updated; failed requests remain queued")
	case summary.Committed:
		fmt.Fprintln(out, "Queue updated")
	default:
		fmt.Fprintln(out, "Queue unchanged; every eligible request will be retried next run")
	}
}
