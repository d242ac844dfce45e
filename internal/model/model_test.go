package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationID_StringAndNumber(t *testing.T) {
	var got []Notification
	data := `[
		{"id": 42, "type": "task", "title": "Assigned", "time": "2024-03-01T10:00:00Z"},
		{"id": "n-7", "type": "team", "title": "Joined", "time": "2024-03-01 11:30:00"},
		{"id": "42", "type": "task", "title": "Dup", "time": ""}
	]`
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	require.Len(t, got, 3)

	assert.Equal(t, NotificationID("42"), got[0].ID)
	assert.Equal(t, NotificationID("n-7"), got[1].ID)
	assert.Equal(t, got[0].ID, got[2].ID)
}

func TestNotificationID_RejectsObjects(t *testing.T) {
	var n Notification
	err := json.Unmarshal([]byte(`{"id": {"x": 1}}`), &n)
	assert.Error(t, err)
}

func TestNotification_ParsedTime(t *testing.T) {
	n := Notification{Time: "2024-03-01T10:00:00Z"}
	assert.Equal(t, 2024, n.ParsedTime().Year())

	n.Time = "2024-03-01 11:30:00"
	assert.Equal(t, 11, n.ParsedTime().Hour())

	n.Time = "yesterday"
	assert.True(t, n.ParsedTime().IsZero())
}

func TestColumns_OrderAndUnion(t *testing.T) {
	rows := []Row{
		{"name": "Bob", "id": 1, "role": "dev"},
		{"id": 2, "email": "amy@example.com"},
	}

	cols := Columns(rows, "name", "missing")
	assert.Equal(t, []string{"id", "name", "email", "role"}, cols)
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Poll.IntervalSec)
	assert.Equal(t, 5, cfg.Poll.FetchTimeoutSec)
	assert.Equal(t, ReadStateFile, cfg.ReadState.Driver)
	assert.Equal(t, DefaultReadStateKey, cfg.ReadState.Key)
	assert.Equal(t, "/api/notifications", cfg.Backend.NotificationsPath)
}

func TestReadStateConfig_StorePath(t *testing.T) {
	file := ReadStateConfig{Driver: ReadStateFile}
	sqlite := ReadStateConfig{Driver: ReadStateSQLite}

	assert.Equal(t, filepath.Join(DefaultStateDir(), "read-notifications.json"), file.StorePath())
	assert.Equal(t, filepath.Join(DefaultStateDir(), "read-state.db"), sqlite.StorePath())

	sqlite.Path = "/tmp/pm.db"
	assert.Equal(t, "/tmp/pm.db", sqlite.StorePath())
}

func TestLoadConfig_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
backend:
  base_url: https://pm.example.com
poll:
  interval_sec: 10
readstate:
  driver: sqlite
  path: /tmp/pm.db
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://pm.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 10, cfg.Poll.IntervalSec)
	assert.Equal(t, 5, cfg.Poll.FetchTimeoutSec)
	assert.Equal(t, ReadStateSQLite, cfg.ReadState.Driver)
	assert.Equal(t, "/tmp/pm.db", cfg.ReadState.Path)
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("readstate:\n  driver: etcd\n"), 0o600))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "unknown readstate.driver")
}

func TestValidate_RedisNeedsAddr(t *testing.T) {
	cfg := defaultAppConfig()
	cfg.ReadState.Driver = ReadStateRedis
	assert.Error(t, cfg.Validate())

	cfg.ReadState.RedisAddr = "localhost:6379"
	assert.NoError(t, cfg.Validate())
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := defaultAppConfig()
	cfg.Backend.BaseURL = "https://pm.internal"
	cfg.Poll.IntervalSec = 45
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://pm.internal", loaded.Backend.BaseURL)
	assert.Equal(t, 45, loaded.Poll.IntervalSec)
}
