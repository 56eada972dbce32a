package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gavel/internal/config"
	"gavel/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the job queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newQueueListCommand(ctx))
	cmd.AddCommand(newQueueStatusCommand(ctx))
	cmd.AddCommand(newQueueRetryCommand(ctx))
	cmd.AddCommand(newQueueRemoveCommand(ctx))
	cmd.AddCommand(newQueueClearCommand(ctx))
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued jobs in claim order",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatusFilter(statusFlag)
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				jobs, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					rows = append(rows, []string{
						strconv.FormatInt(job.ID, 10),
						job.Ref.Label(),
						string(job.Status),
						strconv.Itoa(job.Priority),
						strconv.Itoa(job.RetryCount),
						jobDetail(job),
					})
				}
				headers := []string{"ID", "MEETING", "STATUS", "PRIORITY", "RETRIES", "DETAIL"}
				aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status (comma separated: pending,processing,completed,failed)")
	return cmd
}

// jobDetail picks the most useful single column for a job's current state.
func jobDetail(job *queue.Job) string {
	switch job.Status {
	case queue.StatusFailed:
		return truncateDetail(job.ErrorKind + ": " + job.ErrorMessage)
	case queue.StatusCompleted:
		detail := job.FilePath
		if job.TranscodeNote != "" {
			detail += " (" + job.TranscodeNote + ")"
		}
		return truncateDetail(detail)
	case queue.StatusProcessing:
		if job.LastHeartbeat != nil {
			return "heartbeat " + job.LastHeartbeat.UTC().Format("15:04:05")
		}
		return ""
	default:
		return ""
	}
}

func truncateDetail(detail string) string {
	const limit = 96
	detail = strings.TrimSpace(detail)
	if len(detail) <= limit {
		return detail
	}
	return detail[:limit-3] + "..."
}

func parseStatusFilter(value string) ([]queue.Status, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	statuses := make([]queue.Status, 0, len(parts))
	for _, part := range parts {
		status, ok := queue.ParseStatus(strings.TrimSpace(part))
		if !ok {
			return nil, fmt.Errorf("unknown status %q", part)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue health counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "database: %s\n", store.Path())
				fmt.Fprintf(out, "total:      %d\n", health.Total)
				fmt.Fprintf(out, "pending:    %d\n", health.Pending)
				fmt.Fprintf(out, "processing: %d\n", health.Processing)
				fmt.Fprintf(out, "completed:  %d\n", health.Completed)
				fmt.Fprintf(out, "failed:     %d\n", health.Failed)
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retry [job-id...]",
		Short: "Re-enqueue failed jobs",
		Long: `Re-enqueue failed jobs.

With no arguments every failed job returns to pending; otherwise only the
named job ids are retried. Each retry increments the job's retry count.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseJobIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				retried, err := store.RetryFailed(cmd.Context(), ids...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "retried %d job(s)\n", retried)
				return nil
			})
		},
	}
	return cmd
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <job-id>",
		Short: "Remove a single job from the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse job id %q: %w", args[0], err)
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				removed, err := store.Remove(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("job %d not found", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed job %d\n", id)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var (
		completedFlag bool
		failedFlag    bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear jobs from the queue",
		Long: `Clear jobs from the queue.

By default every job is removed. Use --completed or --failed to clear only
jobs in that terminal state.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if completedFlag && failedFlag {
				return fmt.Errorf("--completed and --failed are mutually exclusive; omit both to clear everything")
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				var (
					cleared int64
					err     error
				)
				switch {
				case completedFlag:
					cleared, err = store.ClearCompleted(cmd.Context())
				case failedFlag:
					cleared, err = store.ClearFailed(cmd.Context())
				default:
					cleared, err = store.Clear(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %d job(s)\n", cleared)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&completedFlag, "completed", false, "Clear only completed jobs")
	cmd.Flags().BoolVar(&failedFlag, "failed", false, "Clear only failed jobs")
	return cmd
}

func parseJobIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse job id %q: %w", arg, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
