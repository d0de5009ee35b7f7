package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// backends returns a fresh instance of every Store implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)

	bs, err := NewBadgerStore("", zap.NewNop())
	require.NoError(t, err)

	stores := map[string]Store{
		BackendMemory: NewMemoryStore(),
		BackendFile:   NewFileStore(filepath.Join(t.TempDir(), "store.json")),
		BackendSQLite: NewSQLiteStore(db),
		BackendBadger: bs,
	}
	for _, s := range stores {
		t.Cleanup(func() { _ = s.Close() })
	}
	return stores
}

func TestStore_GetMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			v, ok, err := s.Get(context.Background(), "absent")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, v)
		})
	}
}

func TestStore_SetGetOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, KeyTheme, "light"))
			require.NoError(t, s.Set(ctx, KeyTheme, "dark"))

			v, ok, err := s.Get(ctx, KeyTheme)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "dark", v)
		})
	}
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, KeySession, "x"))
			require.NoError(t, s.Delete(ctx, KeySession))
			require.NoError(t, s.Delete(ctx, KeySession))

			_, ok, err := s.Get(ctx, KeySession)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Update(ctx, "counter", func(cur string, found bool) (string, error) {
				assert.False(t, found)
				assert.Empty(t, cur)
				return "1", nil
			})
			require.NoError(t, err)

			err = s.Update(ctx, "counter", func(cur string, found bool) (string, error) {
				assert.True(t, found)
				assert.Equal(t, "1", cur)
				return "2", nil
			})
			require.NoError(t, err)

			v, _, err := s.Get(ctx, "counter")
			require.NoError(t, err)
			assert.Equal(t, "2", v)
		})
	}
}

func TestStore_UpdateAbortWritesNothing(t *testing.T) {
	ctx := context.Background()
	abort := errors.New("abort")
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, KeyUsers, "[]"))

			err := s.Update(ctx, KeyUsers, func(string, bool) (string, error) {
				return "changed", abort
			})
			require.ErrorIs(t, err, abort)
			assert.NotErrorIs(t, err, ErrUnavailable)

			v, _, err := s.Get(ctx, KeyUsers)
			require.NoError(t, err)
			assert.Equal(t, "[]", v)
		})
	}
}

func TestStore_ConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	const workers = 20
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := s.Update(ctx, "n", func(cur string, _ bool) (string, error) {
						n, _ := strconv.Atoi(cur)
						return strconv.Itoa(n + 1), nil
					})
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			v, _, err := s.Get(ctx, "n")
			require.NoError(t, err)
			assert.Equal(t, strconv.Itoa(workers), v)
		})
	}
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, _, err := s.Get(ctx, "k")
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())

	err := s.Set(context.Background(), "k", "v")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		backend string
		path    string
		want    any
		wantErr bool
	}{
		{backend: BackendMemory, want: &MemoryStore{}},
		{backend: BackendFile, path: filepath.Join(dir, "a.json"), want: &FileStore{}},
		{backend: "", path: filepath.Join(dir, "b.json"), want: &FileStore{}},
		{backend: BackendSQLite, path: filepath.Join(dir, "a.db"), want: &SQLiteStore{}},
		{backend: BackendBadger, path: filepath.Join(dir, "badger"), want: &BadgerStore{}},
		{backend: "redis", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.backend, func(t *testing.T) {
			s, err := Open(tc.backend, tc.path, nil)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown store backend")
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			assert.IsType(t, tc.want, s)
		})
	}
}

func TestOpen_FailuresAreUnavailable(t *testing.T) {
	dir := t.TempDir()
	notADir := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0o600))

	for _, backend := range []string{BackendSQLite, BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			_, err := Open(backend, filepath.Join(notADir, "db"), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}
