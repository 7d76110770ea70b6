// Command splitctl is the operator CLI for the split sheet service: schema
// migration, deletion job supervision, invite issuing and health checks.
package main

import (
	"log/slog"
	"os"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/config"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/database"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/logging"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// operatorID is recorded as the actor for changes made from the CLI
const operatorID = "splitctl"

type commandContext struct {
	configPath *string
	jsonOutput *bool

	cfg *config.Config
	log *slog.Logger
	db  *gorm.DB
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	if *c.configPath != "" {
		if err := os.Setenv("SPLITSHEET_CONFIG", *c.configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.log = logging.NewWithWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func (c *commandContext) database() (*gorm.DB, error) {
	if c.db != nil {
		return c.db, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg, c.log)
	if err != nil {
		return nil, err
	}
	c.db = db
	return db, nil
}

func (c *commandContext) close() {
	if c.db != nil {
		_ = database.Close(c.db)
		c.db = nil
	}
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var jsonFlag bool

	ctx := &commandContext{configPath: &configFlag, jsonOutput: &jsonFlag}

	rootCmd := &cobra.Command{
		Use:           "splitctl",
		Short:         "Operate the split sheet service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "TOML configuration file (overrides SPLITSHEET_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Write JSON instead of tables")

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newJobsCommand(ctx))
	rootCmd.AddCommand(newInvitesCommand(ctx))
	rootCmd.AddCommand(newHealthCommand(ctx))

	return rootCmd
}
