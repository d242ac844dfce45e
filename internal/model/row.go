package model

import "sort"

// Row is one record of a fetched table (team member, task, project),
// keyed by column name. Values are whatever the backend sent.
type Row map[string]any

// Columns returns the union of column names across rows: "id" first when
// present, then the preferred columns that exist, then the rest by name.
func Columns(rows []Row, preferred ...string) []string {
	seen := make(map[string]bool)
	var cols []string

	add := func(c string) {
		if seen[c] {
			return
		}
		seen[c] = true
		cols = append(cols, c)
	}

	present := make(map[string]bool)
	for _, r := range rows {
		for k := range r {
			present[k] = true
		}
	}

	if present["id"] {
		add("id")
	}
	for _, p := range preferred {
		if present[p] {
			add(p)
		}
	}

	var rest []string
	for k := range present {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		add(k)
	}
	return cols
}
