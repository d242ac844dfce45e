package readstate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/pmwatch/internal/model"
)

// newTestSQLiteStore creates an in-memory SQLiteStore with all migrations
// applied and closes it when the test completes.
func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(":memory:", model.DefaultReadStateKey, nil)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

func TestSet_AddIsIdempotent(t *testing.T) {
	s := NewSet()
	assert.True(t, s.Add("1"))
	assert.False(t, s.Add("1"))
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Has("1"))
	assert.False(t, s.Has("2"))
}

func TestSet_CloneIsIndependent(t *testing.T) {
	s := NewSet("a")
	c := s.Clone()
	c.Add("b")
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, c.Len())
}

func TestDecode_AcceptsNumericIDs(t *testing.T) {
	s, err := decode([]byte(`[1, "2", 3]`))
	require.NoError(t, err)
	assert.Equal(t, []model.NotificationID{"1", "2", "3"}, s.IDs())
}

// storeCases runs the shared contract against every local backend.
func storeCases() map[string]func(t *testing.T, raw string) Store {
	return map[string]func(t *testing.T, raw string) Store{
		"memory": func(t *testing.T, raw string) Store {
			if raw == "" {
				return NewMemoryStore()
			}
			return NewMemoryStoreWithRaw(raw)
		},
		"file": func(t *testing.T, raw string) Store {
			path := filepath.Join(t.TempDir(), "state", "read.json")
			if raw != "" {
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
				require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
			}
			return NewFileStore(path, nil)
		},
		"sqlite": func(t *testing.T, raw string) Store {
			s := newTestSQLiteStore(t)
			if raw != "" {
				require.NoError(t, s.putRaw(context.Background(), raw))
			}
			return s
		},
	}
}

func TestStore_LoadMissingIsEmpty(t *testing.T) {
	for name, mk := range storeCases() {
		t.Run(name, func(t *testing.T) {
			s := mk(t, "").Load(context.Background())
			assert.Equal(t, 0, s.Len())
		})
	}
}

func TestStore_LoadCorruptIsEmpty(t *testing.T) {
	for name, mk := range storeCases() {
		t.Run(name, func(t *testing.T) {
			s := mk(t, "not-json").Load(context.Background())
			assert.Equal(t, 0, s.Len())
		})
	}
}

func TestStore_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	for name, mk := range storeCases() {
		t.Run(name, func(t *testing.T) {
			st := mk(t, "")
			require.NoError(t, st.Save(ctx, NewSet("b", "a")))
			require.NoError(t, st.Save(ctx, NewSet("a", "b", "c")))

			got := st.Load(ctx)
			assert.Equal(t, []model.NotificationID{"a", "b", "c"}, got.IDs())
		})
	}
}

func TestFileStore_WritesJSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "read.json")
	st := NewFileStore(path, nil)
	require.NoError(t, st.Save(context.Background(), NewSet("7", "3")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `["3","7"]`, string(data))
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pm.db")

	s1, err := NewSQLiteStore(path, "slot", nil)
	require.NoError(t, err)
	require.NoError(t, s1.Save(ctx, NewSet("x")))
	require.NoError(t, s1.Close())

	s2, err := NewSQLiteStore(path, "slot", nil)
	require.NoError(t, err)
	defer s2.Close()
	assert.True(t, s2.Load(ctx).Has("x"))

	other, err := NewSQLiteStore(path, "other-slot", nil)
	require.NoError(t, err)
	defer other.Close()
	assert.Equal(t, 0, other.Load(ctx).Len())
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	st, closer, err := Open(ctx, model.ReadStateConfig{Driver: model.ReadStateMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, st)
	require.NoError(t, closer.Close())

	st, closer, err = Open(ctx, model.ReadStateConfig{
		Driver: model.ReadStateSQLite,
		Path:   filepath.Join(dir, "pm.db"),
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, st)
	require.NoError(t, closer.Close())

	_, _, err = Open(ctx, model.ReadStateConfig{Driver: "etcd"}, nil)
	assert.Error(t, err)
}

func TestOpen_SQLiteCreatesStateDir(t *testing.T) {
	ctx := context.Background()
	home := t.TempDir()
	t.Setenv("HOME", home)

	st, closer, err := Open(ctx, model.ReadStateConfig{Driver: model.ReadStateSQLite}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { closer.Close() })

	require.NoError(t, st.Save(ctx, NewSet("7")))
	assert.FileExists(t, filepath.Join(home, ".local", "state", "pmwatch", "read-state.db"))
	assert.True(t, st.Load(ctx).Has("7"))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("PMWATCH_TEST_REDIS")
	if addr == "" {
		t.Skip("PMWATCH_TEST_REDIS not set")
	}

	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	key := "pmwatch:test:" + t.Name()
	t.Cleanup(func() { rdb.Del(context.Background(), key) })

	st := NewRedisStore(rdb, key, nil)
	assert.Equal(t, 0, st.Load(ctx).Len())

	require.NoError(t, rdb.Set(ctx, key, "not-json", 0).Err())
	assert.Equal(t, 0, st.Load(ctx).Len())

	require.NoError(t, st.Save(ctx, NewSet("1", "2")))
	assert.Equal(t, 2, st.Load(ctx).Len())
}
