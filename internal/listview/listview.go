// Package listview narrows and orders rows that were already fetched,
// without another round-trip to the backend.
package listview

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cast"

	"github.com/nhle/pmwatch/internal/model"
)

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Arrow returns a one-character marker for table headers.
func (d Direction) Arrow() string {
	if d == Descending {
		return "▼"
	}
	return "▲"
}

// SortState is the column and direction a table is currently sorted by.
// The zero value means unsorted.
type SortState struct {
	Key string
	Dir Direction
}

// Toggle selects key. Selecting the current key flips the direction;
// selecting a different key resets to ascending.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key {
		if s.Dir == Ascending {
			return SortState{Key: key, Dir: Descending}
		}
		return SortState{Key: key, Dir: Ascending}
	}
	return SortState{Key: key, Dir: Ascending}
}

// Active reports whether a sort column has been chosen.
func (s SortState) Active() bool { return s.Key != "" }

// Display returns the string form of a cell value. nil becomes "".
func Display(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// Text returns the lowercase string form used for both matching and
// ordering. nil and missing values become "".
func Text(v any) string {
	return strings.ToLower(Display(v))
}

// Filter returns the rows where any field's text contains term,
// case-insensitively, in their original order. An empty term returns
// rows unchanged.
func Filter(rows []model.Row, term string) []model.Row {
	if term == "" {
		return rows
	}

	needle := strings.ToLower(term)
	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		if matches(r, needle) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r model.Row, needle string) bool {
	for _, v := range r {
		if strings.Contains(Text(v), needle) {
			return true
		}
	}
	return false
}

// Sort returns a new slice ordered by the text of key. The sort is
// stable in both directions: rows with equal keys keep their input order.
func Sort(rows []model.Row, key string, dir Direction) []model.Row {
	out := slices.Clone(rows)
	if out == nil {
		return nil
	}

	slices.SortStableFunc(out, func(a, b model.Row) int {
		c := strings.Compare(Text(a[key]), Text(b[key]))
		if dir == Descending {
			return -c
		}
		return c
	})
	return out
}

// Apply filters rows by term and then orders them by state, if a sort
// column is set.
func Apply(rows []model.Row, term string, state SortState) []model.Row {
	out := Filter(rows, term)
	if !state.Active() {
		return out
	}
	return Sort(out, state.Key, state.Dir)
}
