package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"feebump/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the acceleration queue",
	}
	queueCmd.AddCommand(newQueueListCommand(ctx))
	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var eligibleOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			requests, err := queue.NewStore(cfg.Paths.QueueFile, nil).Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(requests) == 0 {
				fmt.Fprintln(out, "Queue is empty")
				return nil
			}

			rows := make([][]string, 0, len(requests))
			var pendingSats int64
			shown := 0
			for i, req := range requests {
				if eligibleOnly && !req.Eligible() {
					continue
				}
				shown++
				txid, fee, btc := "-", "-", "-"
				if req.TxID != nil {
					txid = shortTxID(*req.TxID)
				}
				if delta, ok := req.FeeDeltaValue(); ok {
					fee = formatSats(delta)
					btc = formatBTC(delta)
					if req.Eligible() {
						pendingSats += delta
					}
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					txid,
					formatEventType(req.EventType),
					fee,
					btc,
					yesNo(req.Eligible()),
					req.LoggedAt,
				})
			}

			fmt.Fprintln(out, renderTable([]tableColumn{
				{header: "#", align: alignRight},
				{header: "TxID"},
				{header: "Event"},
				{header: "Fee Delta (sat)", align: alignRight},
				{header: "Fee Delta", align: alignRight},
				{header: "Eligible"},
				{header: "Logged At"},
			}, rows, []string{"", "", "Eligible", formatSats(pendingSats), formatBTC(pendingSats), formatCount(requests.Eligible())}))
			fmt.Fprintf(out, "%s of %s requests shown\n", formatCount(shown), formatCount(len(requests)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&eligibleOnly, "eligible", false, "Only show requests the next run would send")
	return cmd
}
