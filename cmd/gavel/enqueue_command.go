package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gavel/internal/config"
	"gavel/internal/meeting"
	"gavel/internal/queue"
)

func newEnqueueCommand(ctx *commandContext) *cobra.Command {
	var (
		dateFlag      string
		committeeFlag string
		codeFlag      string
		timeFlag      string
		priorityFlag  int
		metaFlags     []string
	)

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Add a meeting recording job to the queue",
		Long: `Add a meeting recording job to the queue.

Enqueueing is idempotent on (date, committee, code, time): re-running the
command for an existing pending or completed job leaves it untouched, while a
failed job is reset to pending with its retry count incremented.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := buildRef(dateFlag, committeeFlag, codeFlag, timeFlag)
			if err != nil {
				return err
			}
			metadata, err := parseMetadata(metaFlags)
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				job, err := store.Enqueue(cmd.Context(), ref, priorityFlag, metadata)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "job %d (%s) status=%s priority=%d retries=%d\n",
					job.ID, job.Ref.Label(), job.Status, job.Priority, job.RetryCount)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Meeting date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&committeeFlag, "committee", "", "Committee display name (required)")
	cmd.Flags().StringVar(&codeFlag, "code", "", "Committee code used in archive URLs (required)")
	cmd.Flags().StringVar(&timeFlag, "time", "", "Scheduled time token, e.g. 0900AM")
	cmd.Flags().IntVar(&priorityFlag, "priority", 10, "Queue priority; lower runs first")
	cmd.Flags().StringArrayVar(&metaFlags, "meta", nil, "Extra metadata as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("committee")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}

func buildRef(date, committee, code, scheduledTime string) (meeting.Ref, error) {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return meeting.Ref{}, fmt.Errorf("parse --date %q: expected YYYY-MM-DD", date)
	}
	ref := meeting.Ref{
		Year:          parsed.Year(),
		Month:         int(parsed.Month()),
		Day:           parsed.Day(),
		Committee:     strings.TrimSpace(committee),
		Code:          strings.TrimSpace(code),
		ScheduledTime: strings.TrimSpace(scheduledTime),
	}
	if err := ref.Validate(); err != nil {
		return meeting.Ref{}, err
	}
	return ref, nil
}

func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	metadata := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("parse --meta %q: expected key=value", pair)
		}
		metadata[key] = strings.TrimSpace(value)
	}
	return metadata, nil
}
