package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/pmwatch/internal/listview"
	"github.com/nhle/pmwatch/internal/model"
)

func TestPrintRows_KeepsColumnsOfFullSet(t *testing.T) {
	all := []model.Row{
		{"id": 1, "name": "Bob", "role": "dev"},
		{"id": 2, "name": "amy", "email": "amy@example.com"},
	}
	visible := listview.Apply(all, "bob", listview.SortState{})

	var buf bytes.Buffer
	require.NoError(t, printRows(&buf, all, visible))

	out := buf.String()
	assert.Contains(t, out, "ID  EMAIL")
	assert.Contains(t, out, "Bob")
	assert.NotContains(t, out, "amy@example.com")
	assert.Contains(t, out, "1 of 2 rows")
}

func TestPrintNotificationsTable(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []model.Notification{
		{ID: "1", Type: "task", Title: "Assigned to you", Time: "2024-03-01T11:00:00Z"},
		{ID: "2", Type: "team", Title: "Joined", Time: "whenever"},
	}

	var buf bytes.Buffer
	require.NoError(t, printNotificationsTable(&buf, items, now))

	out := buf.String()
	assert.Contains(t, out, "Assigned to you")
	assert.Contains(t, out, "whenever")
	assert.Contains(t, out, "2 unread")
}

func TestPrintNotificationsJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printNotificationsJSON(&buf, nil))

	var got []model.Notification
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Empty(t, got)
	assert.Equal(t, "[]\n", buf.String())
}
