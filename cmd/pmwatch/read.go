package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/pmwatch/internal/model"
)

var readCmd = &cobra.Command{
	Use:   "read [id...]",
	Short: "Mark notifications as read",
	Args: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if all && len(args) > 0 {
			return fmt.Errorf("pass notification ids or --all, not both")
		}
		if !all && len(args) == 0 {
			return fmt.Errorf("requires at least one notification id, or --all")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		ctx := cmd.Context()
		p, release, err := openPoller(ctx, false, "")
		if err != nil {
			return err
		}
		defer release()

		if all {
			if err := p.Fetch(ctx); err != nil {
				return err
			}
			count := p.UnreadCount()
			if err := p.MarkAllRead(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %d notifications read\n", count)
			return nil
		}

		for _, id := range args {
			if err := p.MarkRead(ctx, model.NotificationID(id)); err != nil {
				return fmt.Errorf("marking %s read: %w", id, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Marked %d notifications read\n", len(args))
		return nil
	},
}

func init() {
	readCmd.Flags().Bool("all", false, "fetch and mark every current notification read")
}
