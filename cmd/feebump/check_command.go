package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"feebump/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the relay binary, queue file and writable paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := colorEnabled(out)
			results := preflight.Run(cfg)
			for _, result := range results {
				fmt.Fprintln(out, outcomeLine(result.Name, result.Passed, result.Detail, colorize))
			}
			if preflight.Failed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
