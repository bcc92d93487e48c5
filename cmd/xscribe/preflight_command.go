package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"xscribe/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check binaries, directories, and disk space",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cfg)

			rows := make([]table.Row, 0, len(results))
			for _, res := range results {
				status := "ok"
				if !res.Passed {
					status = "FAIL"
				}
				rows = append(rows, table.Row{res.Name, status, res.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(table.Row{"Check", "Status", "Detail"}, rows))

			if !preflight.AllPassed(results) {
				return fmt.Errorf("preflight checks failed")
			}
			return nil
		},
	}
}
