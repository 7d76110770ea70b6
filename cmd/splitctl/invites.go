package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/spf13/cobra"
)

func newInvitesCommand(ctx *commandContext) *cobra.Command {
	invitesCmd := &cobra.Command{
		Use:   "invites",
		Short: "Issue role upgrade invite codes",
	}
	invitesCmd.AddCommand(newInvitesCreateCommand(ctx))
	return invitesCmd
}

func newInvitesCreateCommand(ctx *commandContext) *cobra.Command {
	var role string
	var ttlHours int
	var count int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create single-use invite codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.database()
			if err != nil {
				return err
			}
			svc := services.NewInviteService(db, ctx.log)

			in := services.CreateInviteInput{
				Role:     models.Role(strings.ToUpper(strings.TrimSpace(role))),
				TTLHours: ttlHours,
			}
			codes := make([]*models.InviteCode, 0, count)
			for range count {
				invite, err := svc.Create(cmd.Context(), operatorID, in)
				if err != nil {
					return err
				}
				codes = append(codes, invite)
			}

			if *ctx.jsonOutput {
				return writeJSON(cmd, codes)
			}
			rows := make([][]string, 0, len(codes))
			for _, invite := range codes {
				rows = append(rows, []string{
					color.New(color.Bold).Sprint(invite.Code),
					string(invite.Role),
					invite.ExpiresAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Code", "Role", "Expires"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", string(models.RoleLabel), "Role granted by the code (LABEL or ADMIN)")
	cmd.Flags().IntVar(&ttlHours, "ttl-hours", 0, "Hours until the code expires (0 uses the default)")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of codes to create")
	return cmd
}
