package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/pmwatch/internal/backend"
	"github.com/nhle/pmwatch/internal/model"
)

// cobra keeps flag values on the package-level commands between
// executions, so tests that rerun a command pass every flag they rely on.

func writeTestConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf(`backend:
  base_url: %s
readstate:
  driver: file
  path: %s
log:
  file: %s
`, baseURL, filepath.Join(dir, "read.json"), filepath.Join(dir, "pmwatch.log"))
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PMWATCH_TOKEN", "test-token")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRowsPlain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/team", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[
			{"id": 1, "name": "Bob", "role": "dev"},
			{"id": 2, "name": "amy", "role": "pm"},
			{"id": 3, "name": "Cara", "role": "dev"}
		]`))
	}))
	t.Cleanup(srv.Close)

	out, err := execute(t, "--config", writeTestConfig(t, srv.URL),
		"rows", "/api/team", "--plain", "--filter", "DEV", "--sort", "name", "--desc")
	require.NoError(t, err)

	assert.Contains(t, out, "2 of 3 rows")
	assert.NotContains(t, out, "amy")
	assert.Less(t, bytes.Index([]byte(out), []byte("Cara")), bytes.Index([]byte(out), []byte("Bob")))
}

func TestUnreadThenReadAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 1, "type": "task", "title": "Assigned", "time": "2024-03-01T10:00:00Z"},
			{"id": "n-2", "type": "team", "title": "Joined", "time": "2024-03-01 11:00:00"}
		]`))
	}))
	t.Cleanup(srv.Close)
	cfgPath := writeTestConfig(t, srv.URL)

	out, err := execute(t, "--config", cfgPath, "read", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Marked 2 notifications read")

	out, err = execute(t, "--config", cfgPath, "unread", "--json")
	require.NoError(t, err)

	var got []model.Notification
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Empty(t, got)
}

func TestRead_RequiresIDsOrAll(t *testing.T) {
	require.NoError(t, readCmd.Flags().Set("all", "false"))
	assert.Error(t, readCmd.Args(readCmd, nil))
	assert.NoError(t, readCmd.Args(readCmd, []string{"42"}))

	require.NoError(t, readCmd.Flags().Set("all", "true"))
	assert.Error(t, readCmd.Args(readCmd, []string{"42"}))
	assert.NoError(t, readCmd.Args(readCmd, nil))
}

func TestUnread_BackendDownPrintsEmptyList(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusInternalServerError)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	t.Cleanup(srv.Close)
	cfgPath := writeTestConfig(t, srv.URL)

	out, err := execute(t, "--config", cfgPath, "unread", "--json=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, "0 unread")

	status.Store(http.StatusUnauthorized)
	_, err = execute(t, "--config", cfgPath, "unread", "--json=false")
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
}
