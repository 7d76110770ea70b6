package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.database()
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date (%s/%s)\n",
				color.New(color.FgGreen).Sprint("OK"), ctx.cfg.DBType, ctx.cfg.DBDatabase)
			return nil
		},
	}
}
