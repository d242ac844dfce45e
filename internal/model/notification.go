package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// NotificationID is the opaque identifier the backend assigns to a
// notification. The wire value may be a JSON string or a JSON number;
// numbers keep their decimal text so 42 and "42" are the same ID.
type NotificationID string

// UnmarshalJSON accepts both string and numeric IDs.
func (id *NotificationID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding notification id: %w", err)
		}
		*id = NotificationID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("notification id must be a string or number, got %s", data)
	}
	*id = NotificationID(n.String())
	return nil
}

// String returns the ID text.
func (id NotificationID) String() string { return string(id) }

// Notification is an alert produced by the backend for the signed-in
// user. The client never mutates it; read state is tracked separately.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID NotificationID `json:"id"`

	// Type is the category label (e.g. "task", "project", "team").
	Type string `json:"type"`

	// Title is the human-readable notification text.
	Title string `json:"title"`

	// Time is the server timestamp, kept verbatim.
	Time string `json:"time"`
}

// timeLayouts are tried in order when parsing Notification.Time.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParsedTime returns the notification timestamp, or the zero time if the
// server value is empty or in an unknown layout.
func (n Notification) ParsedTime() time.Time {
	s := strings.TrimSpace(n.Time)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
