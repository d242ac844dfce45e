package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/pmwatch/internal/backend"
	"github.com/nhle/pmwatch/internal/notify"
)

var unreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "Fetch once and print unread notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx := cmd.Context()
		p, release, err := openPoller(ctx, false, "")
		if err != nil {
			return err
		}
		defer release()

		if err := p.Fetch(ctx); err != nil {
			// Only a rejected token or an interrupt fails the command; an
			// unreachable backend prints the empty list like the TUI does.
			if errors.Is(err, backend.ErrUnauthorized) || ctx.Err() != nil {
				return err
			}
			logger.Warn("unread: backend unavailable", zap.Error(err))
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		}
		return printUnread(cmd, p, asJSON)
	},
}

func init() {
	unreadCmd.Flags().Bool("json", false, "output as JSON")
}

func printUnread(cmd *cobra.Command, p *notify.Poller, asJSON bool) error {
	items := p.Notifications()
	if asJSON {
		return printNotificationsJSON(cmd.OutOrStdout(), items)
	}
	return printNotificationsTable(cmd.OutOrStdout(), items, time.Now())
}
