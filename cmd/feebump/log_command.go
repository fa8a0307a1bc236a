package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"feebump/internal/auditlog"
)

func newLogCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var failedOnly bool
	var raw bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the most recent audit log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			audit := auditlog.New(cfg.Paths.AuditLog)
			// Failures can be sparse, so filter over the whole file.
			limit := lines
			if failedOnly {
				limit = 0
			}
			tail, err := audit.ReadLast(limit)
			if err != nil {
				return err
			}

			records := groupAuditLines(tail)
			if failedOnly {
				kept := records[:0]
				for _, rec := range records {
					if rec.entry != nil && !rec.entry.Succeeded() {
						kept = append(kept, rec)
					}
				}
				records = kept
				if lines > 0 && len(records) > lines {
					records = records[len(records)-lines:]
				}
			}

			out := cmd.OutOrStdout()
			if raw {
				for _, rec := range records {
					for _, line := range rec.lines {
						fmt.Fprintln(out, line)
					}
				}
				return nil
			}

			var rows [][]string
			skipped := 0
			for _, rec := range records {
				if rec.entry == nil {
					skipped += len(rec.lines)
					continue
				}
				detail := rec.entry.Detail
				if extra := rec.lines[1:]; len(extra) > 0 {
					detail = strings.TrimSpace(detail + " " + strings.Join(extra, " "))
				}
				rows = append(rows, []string{
					formatTimestamp(rec.entry.Time),
					string(rec.entry.Outcome),
					rec.entry.TxID,
					formatSats(rec.entry.FeeDelta),
					detail,
				})
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No audit entries")
			} else {
				fmt.Fprintln(out, renderTable([]tableColumn{
					{header: "Time (UTC)"},
					{header: "Outcome"},
					{header: "TxID"},
					{header: "Fee Delta (sat)", align: alignRight},
					{header: "Error"},
				}, rows, nil))
			}
			if skipped > 0 {
				fmt.Fprintf(out, "%d unrecognised lines skipped\n", skipped)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of entries to show")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed attempts")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print log lines verbatim")
	return cmd
}

// auditRecord is one parsed entry plus any continuation lines that followed
// it. Relay stderr spanning several lines lands in the log that way. entry is
// nil for lines that precede the first parseable entry.
type auditRecord struct {
	entry *auditlog.Entry
	lines []string
}

func groupAuditLines(lines []string) []auditRecord {
	var records []auditRecord
	for _, line := range lines {
		entry, err := auditlog.ParseLine(line)
		switch {
		case err == nil:
			records = append(records, auditRecord{entry: &entry, lines: []string{line}})
		case len(records) > 0:
			last := &records[len(records)-1]
			last.lines = append(last.lines, line)
		default:
			records = append(records, auditRecord{lines: []string{line}})
		}
	}
	return records
}
