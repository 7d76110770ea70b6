package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/jobqueue"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/spf13/cobra"
)

var operator = models.CurrentUser{ID: operatorID, Role: models.RoleAdmin}

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage account deletion jobs",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsStopCommand(ctx))
	jobsCmd.AddCommand(newJobsSweepCommand(ctx))
	jobsCmd.AddCommand(newJobsRequeueCommand(ctx))
	jobsCmd.AddCommand(newJobsRunCommand(ctx))

	return jobsCmd
}

func (c *commandContext) deletions(queue jobqueue.Queue) (*services.DeletionService, error) {
	db, err := c.database()
	if err != nil {
		return nil, err
	}
	return services.NewDeletionService(db, queue, c.log), nil
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deletion jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.deletions(nil)
			if err != nil {
				return err
			}
			filter := make([]models.DeletionStatus, 0, len(statuses))
			for _, s := range statuses {
				filter = append(filter, models.DeletionStatus(strings.ToUpper(strings.TrimSpace(s))))
			}
			jobs, err := svc.ListJobs(cmd.Context(), filter, limit)
			if err != nil {
				return err
			}
			if *ctx.jsonOutput {
				return writeJSON(cmd, jobs)
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No deletion jobs")
				return nil
			}

			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				rows = append(rows, []string{
					job.JobID,
					job.UserID,
					statusLabel(job.Status),
					fmt.Sprintf("%d/%d", job.CurrentBatch, job.TotalBatches),
					strconv.Itoa(job.RetryCount),
					formatTime(job.StartedAt),
					truncate(job.FailureReason, 48),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]string{"Job", "User", "Status", "Batch", "Retries", "Started", "Reason"}, rows, 4, 5))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Only jobs in these statuses")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of jobs")
	return cmd
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <jobId>",
		Short: "Show progress and steps of a deletion job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.deletions(nil)
			if err != nil {
				return err
			}
			progress, err := svc.Progress(cmd.Context(), operator, args[0])
			if err != nil {
				return err
			}
			if *ctx.jsonOutput {
				return writeJSON(cmd, progress)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job:       %s\n", progress.JobID)
			fmt.Fprintf(out, "Status:    %s\n", statusLabel(progress.Status))
			fmt.Fprintf(out, "Step:      %s\n", progress.CurrentStep)
			fmt.Fprintf(out, "Progress:  %d%% (batch %d of %d, ~%d min left)\n",
				progress.ProgressPercentage, progress.CurrentBatch, progress.TotalBatches, progress.EstimatedMinutesRemaining)
			if progress.Error != "" {
				fmt.Fprintf(out, "Error:     %s\n", color.New(color.FgRed).Sprint(progress.Error))
			}

			rows := make([][]string, 0, len(progress.Steps))
			for _, step := range progress.Steps {
				rows = append(rows, []string{
					strconv.Itoa(step.Position),
					string(step.StepName),
					string(step.Status),
					fmt.Sprintf("%d/%d", step.ItemsProcessed, step.TotalItems),
					strconv.Itoa(step.RetryCount),
					(time.Duration(step.DurationMs) * time.Millisecond).String(),
					truncate(step.FailureReason, 48),
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"#", "Step", "Status", "Items", "Retries", "Duration", "Reason"}, rows, 1, 4, 5, 6))
			return nil
		},
	}
}

func newJobsStopCommand(ctx *commandContext) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "stop <jobId>",
		Short: "Emergency stop an active deletion job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.deletions(nil)
			if err != nil {
				return err
			}
			job, err := svc.EmergencyStop(cmd.Context(), operatorID, args[0], reason)
			if err != nil {
				return err
			}
			if *ctx.jsonOutput {
				return writeJSON(cmd, job)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now %s\n",
				color.New(color.FgYellow).Sprint("STOPPED"), job.JobID, statusLabel(job.Status))
			return nil
		},
	}

	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Reason recorded on the job")
	return cmd
}

func newJobsSweepCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Escalate stuck deletion jobs to manual review",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			svc, err := ctx.deletions(nil)
			if err != nil {
				return err
			}
			stuck, err := svc.SweepStuck(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			if *ctx.jsonOutput {
				return writeJSON(cmd, stuck)
			}
			if len(stuck) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stuck deletion jobs")
				return nil
			}
			rows := make([][]string, 0, len(stuck))
			for _, job := range stuck {
				rows = append(rows, []string{job.JobID, job.UserID, statusLabel(job.Status), job.FailureReason})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Job", "User", "Status", "Reason"}, rows))
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Escalate jobs untouched for this long")
	return cmd
}

func newJobsRequeueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "requeue",
		Short: "Push every active deletion job onto the redis queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.cfg.RedisURL == "" {
				return errors.New("REDIS_URL is not set; the in-memory queue lives inside the server process")
			}
			queue, err := jobqueue.NewRedisQueue(ctx.cfg.RedisURL)
			if err != nil {
				return err
			}
			defer queue.Close()

			svc, err := ctx.deletions(queue)
			if err != nil {
				return err
			}
			ids, err := svc.ActiveJobIDs(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				if err := queue.Enqueue(cmd.Context(), id); err != nil {
					return fmt.Errorf("enqueue %s: %w", id, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d active deletion job(s)\n", len(ids))
			return nil
		},
	}
}

func newJobsRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run <jobId>",
		Short: "Run a deletion pipeline in the foreground",
		Long: "Run a deletion pipeline in this process. A job already owned by a live\n" +
			"worker is left alone; a stale one is resumed from its current batch.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.database()
			if err != nil {
				return err
			}
			provider, err := services.NewAuthorizerProvider(ctx.cfg, ctx.log)
			if err != nil {
				return err
			}
			pipeline := services.NewPipeline(db, provider, ctx.log, ctx.cfg.DeletionStaleAfter)
			if err := pipeline.Run(cmd.Context(), args[0]); err != nil {
				return err
			}

			svc := services.NewDeletionService(db, nil, ctx.log)
			progress, err := svc.Progress(cmd.Context(), operator, args[0])
			if err != nil {
				return err
			}
			if *ctx.jsonOutput {
				return writeJSON(cmd, progress)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", progress.JobID, statusLabel(progress.Status))
			return nil
		},
	}
}

func statusLabel(status models.DeletionStatus) string {
	switch status {
	case models.DeletionCompleted:
		return color.New(color.FgGreen).Sprint(status)
	case models.DeletionNeedsManualReview, models.DeletionFailed:
		return color.New(color.FgRed).Sprint(status)
	case models.DeletionCancelled:
		return color.New(color.FgYellow).Sprint(status)
	default:
		return color.New(color.FgCyan).Sprint(status)
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
