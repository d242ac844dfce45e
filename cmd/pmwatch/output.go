package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nhle/pmwatch/internal/listview"
	"github.com/nhle/pmwatch/internal/model"
	"github.com/nhle/pmwatch/internal/ui"
)

const maxCellWidth = 50

func printNotificationsJSON(w io.Writer, items []model.Notification) error {
	if items == nil {
		items = []model.Notification{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling notifications: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printNotificationsTable(w io.Writer, items []model.Notification, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tWHEN\tTITLE")
	for _, n := range items {
		when := n.Time
		if t := n.ParsedTime(); !t.IsZero() {
			when = ui.RelativeTime(t, now)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.ID, n.Type, when, ui.Truncate(n.Title, maxCellWidth))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d unread\n", len(items))
	return err
}

// printRows writes rows as an aligned table. Columns follow the order
// model.Columns picks for the unfiltered set so the header is stable
// while the filter changes.
func printRows(w io.Writer, all, visible []model.Row) error {
	cols := model.Columns(all)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = strings.ToUpper(c)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	cells := make([]string, len(cols))
	for _, r := range visible {
		for i, c := range cols {
			cells[i] = ui.Truncate(listview.Display(r[c]), maxCellWidth)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d rows\n", len(visible), len(all))
	return err
}
