package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gavel/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			if len(statuses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no external tools required by the current configuration")
				return nil
			}

			rows := make([][]string, 0, len(statuses))
			missingRequired := false
			for _, status := range statuses {
				detail := status.Detail
				if status.Available {
					detail = status.Description
				} else if !status.Optional {
					missingRequired = true
				}
				rows = append(rows, []string{
					status.Name,
					status.Command,
					yesNo(status.Available),
					yesNo(status.Optional),
					detail,
				})
			}
			headers := []string{"NAME", "COMMAND", "AVAILABLE", "OPTIONAL", "DETAIL"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))

			if missingRequired {
				return fmt.Errorf("required external tools are missing")
			}
			return nil
		},
	}
}
