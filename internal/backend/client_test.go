package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/pmwatch/internal/model"
	"github.com/nhle/pmwatch/internal/notify"
	"github.com/nhle/pmwatch/internal/readstate"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchNotifications_DecodesAndSendsHeaders(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/notifications", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "type": "task", "title": "Task assigned", "time": "2024-05-01T09:00:00Z"},
			{"id": "abc", "type": "team", "title": "Added to team", "time": "2024-05-01T09:05:00Z"}
		]`))
	})

	c := NewClient(srv.URL+"/", WithToken("secret"))
	items, err := c.FetchNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, model.NotificationID("1"), items[0].ID)
	assert.Equal(t, "Added to team", items[1].Title)
}

func TestFetchNotifications_CustomPathNoToken(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/servlet/notifications", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	})

	c := NewClient(srv.URL, WithNotificationsPath("servlet/notifications"))
	items, err := c.FetchNotifications(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetJSON_StatusErrors(t *testing.T) {
	code := http.StatusInternalServerError
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", code)
	})
	c := NewClient(srv.URL)

	err := c.GetJSON(context.Background(), "/x", nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 500, se.Code)
	assert.Equal(t, "boom", se.Body)
	assert.False(t, errors.Is(err, ErrUnauthorized))

	code = http.StatusUnauthorized
	err = c.GetJSON(context.Background(), "/x", nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestFetchNotifications_MalformedJSON(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "an array"`))
	})

	_, err := NewClient(srv.URL).FetchNotifications(context.Background())
	assert.ErrorContains(t, err, "unmarshaling response")
}

func TestFetchRows(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/members", r.URL.Path)
		w.Write([]byte(`[{"id": 1, "name": "Bob", "lead": null}, {"id": 2, "name": "amy"}]`))
	})

	rows, err := NewClient(srv.URL).FetchRows(context.Background(), "/api/members")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Bob", rows[0]["name"])
	assert.Nil(t, rows[0]["lead"])
	assert.Equal(t, float64(2), rows[1]["id"])
}

func TestPoller_ServerErrorYieldsEmptyList(t *testing.T) {
	fail := false
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"id": 1, "type": "task", "title": "a", "time": ""}]`))
	})

	ctx := context.Background()
	p := notify.New(ctx, NewClient(srv.URL), readstate.NewMemoryStore(), notify.Options{})

	require.NoError(t, p.Fetch(ctx))
	require.Equal(t, 1, p.UnreadCount())

	fail = true
	var err error
	assert.NotPanics(t, func() { err = p.Fetch(ctx) })
	assert.Error(t, err)
	assert.Empty(t, p.Notifications())
	assert.Equal(t, 0, p.UnreadCount())
}

func TestPoller_SlowServerTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	ctx := context.Background()
	p := notify.New(ctx, NewClient(srv.URL), readstate.NewMemoryStore(), notify.Options{
		FetchTimeout: 50 * time.Millisecond,
	})

	err := p.Fetch(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, p.UnreadCount())
}
