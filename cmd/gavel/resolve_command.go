package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"gavel/internal/logging"
	"gavel/internal/resolver"
	"gavel/internal/verifier"
)

// newResolveCommand runs the strategy cascade for one meeting without
// touching the queue. Useful when a site layout change breaks resolution.
func newResolveCommand(ctx *commandContext) *cobra.Command {
	var (
		dateFlag      string
		committeeFlag string
		codeFlag      string
		timeFlag      string
		verifyFlag    bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show candidate media URLs for a meeting without enqueueing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ref, err := buildRef(dateFlag, committeeFlag, codeFlag, timeFlag)
			if err != nil {
				return err
			}

			logger := logging.NewNop()
			client := &http.Client{}
			verify := verifier.New(client, time.Duration(cfg.Archive.ProbeTimeout)*time.Second, cfg.Archive.UserAgent, logger)
			res := resolver.New(cfg, client, verify, logger)

			candidates := res.Candidates(cmd.Context(), ref)
			if len(candidates) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no candidates for %s\n", ref)
				return nil
			}

			headers := []string{"STRATEGY", "URL"}
			aligns := []columnAlignment{alignLeft, alignLeft}
			if verifyFlag {
				headers = append(headers, "VERIFIED")
				aligns = append(aligns, alignLeft)
			}
			rows := make([][]string, 0, len(candidates))
			for _, candidate := range candidates {
				row := []string{candidate.Strategy, candidate.URL}
				if verifyFlag {
					row = append(row, yesNo(verify.Verify(cmd.Context(), candidate.URL)))
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Meeting date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&committeeFlag, "committee", "", "Committee display name (required)")
	cmd.Flags().StringVar(&codeFlag, "code", "", "Committee code used in archive URLs (required)")
	cmd.Flags().StringVar(&timeFlag, "time", "", "Scheduled time token, e.g. 0900AM")
	cmd.Flags().BoolVar(&verifyFlag, "verify", false, "Probe each candidate and report the result")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("committee")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}
