package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/jobqueue"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/spf13/cobra"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check database, identity provider and queue connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.database()
			if err != nil {
				return err
			}

			var provider services.IdentityProvider
			if p, err := services.NewAuthorizerProvider(ctx.cfg, ctx.log); err == nil {
				provider = p
			} else {
				provider = failedProvider{err: err}
			}

			var queue services.Pinger
			if ctx.cfg.RedisURL != "" {
				q, err := jobqueue.NewRedisQueue(ctx.cfg.RedisURL)
				if err != nil {
					return err
				}
				defer q.Close()
				queue = q
			}

			checkCtx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			result := services.HealthCheck(checkCtx, ctx.cfg, db, provider, queue, ctx.log)

			if *ctx.jsonOutput {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else {
				rows := [][]string{
					{"database", componentLabel(result.Database)},
					{"authorizer", componentLabel(result.Authorizer)},
				}
				if result.Queue != "" {
					rows = append(rows, []string{"queue", componentLabel(result.Queue)})
				}
				keys := make([]string, 0, len(result.Details))
				for k := range result.Details {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					rows = append(rows, []string{k, result.Details[k]})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Component", "Status"}, rows))
			}

			if result.Status != "healthy" {
				return errors.New(result.ErrorMessage)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Overall check timeout")
	return cmd
}

func componentLabel(status string) string {
	if status == "ok" {
		return color.New(color.FgGreen).Sprint(status)
	}
	return color.New(color.FgRed).Sprint(status)
}

// failedProvider reports a provider that could not be initialized
type failedProvider struct {
	services.IdentityProvider
	err error
}

func (f failedProvider) Ping(ctx context.Context) error {
	return f.err
}
