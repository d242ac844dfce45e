package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/pmwatch/internal/keys"
	"github.com/nhle/pmwatch/internal/listview"
	"github.com/nhle/pmwatch/internal/model"
	"github.com/nhle/pmwatch/internal/ui/rows"
)

var rowsCmd = &cobra.Command{
	Use:   "rows <path>",
	Short: "Fetch a list endpoint and filter or sort its rows",
	Long: `Fetch a JSON array of objects from the backend (for example
/api/team/members) and browse it as a table. Filtering matches any
column case-insensitively; sorting compares column values as text.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		term, _ := cmd.Flags().GetString("filter")
		sortKey, _ := cmd.Flags().GetString("sort")
		desc, _ := cmd.Flags().GetBool("desc")
		plain, _ := cmd.Flags().GetBool("plain")

		client, err := newClient()
		if err != nil {
			return err
		}

		state := listview.SortState{Key: sortKey}
		if desc {
			state.Dir = listview.Descending
		}

		load := func(ctx context.Context) ([]model.Row, error) {
			return client.FetchRows(ctx, path)
		}

		if plain {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Backend.Timeout())
			defer cancel()
			all, err := load(ctx)
			if err != nil {
				return err
			}
			return printRows(cmd.OutOrStdout(), all, listview.Apply(all, term, state))
		}

		view := rows.New(path, load, keys.DefaultKeyMap(), 80, 24, rows.Options{
			Term: term,
			Sort: state,
		})
		prog := tea.NewProgram(view, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("running rows view: %w", err)
		}
		return nil
	},
}

func init() {
	rowsCmd.Flags().String("filter", "", "only keep rows with a column containing this text")
	rowsCmd.Flags().String("sort", "", "column to sort by")
	rowsCmd.Flags().Bool("desc", false, "sort descending")
	rowsCmd.Flags().Bool("plain", false, "print the table instead of opening the viewer")
}
