package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// DefaultFile is the file FileStore uses when no path is configured.
const DefaultFile = "authdemo.json"

const lockRetryDelay = 10 * time.Millisecond

// FileStore keeps all keys in one JSON object on disk. The file is read
// before every operation and rewritten whole after every change, so
// nothing is cached between calls.
//
// Every operation holds an advisory lock on "<path>.lock": shared for
// reads, exclusive for writes. Handles in other processes (or other
// FileStores in this one) on the same path therefore never interleave a
// read-modify-write.
type FileStore struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

// NewFileStore returns a FileStore backed by path. The file is created on
// the first write.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFile
	}
	return &FileStore{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// acquire takes the file lock, shared or exclusive, waiting until ctx is
// done. The caller must hold s.mu and call the returned release.
func (s *FileStore) acquire(ctx context.Context, exclusive bool) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = s.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		ok, err = s.lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, unavailable("lock store file", err)
	}
	if !ok {
		return nil, unavailable("lock store file", errors.New("lock not acquired"))
	}
	return func() { _ = s.lock.Unlock() }, nil
}

func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	release, err := s.acquire(ctx, false)
	if err != nil {
		return "", false, err
	}
	defer release()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	return s.Update(ctx, key, func(string, bool) (string, error) { return value, nil })
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	release, err := s.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

func (s *FileStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	release, err := s.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	values, err := s.load()
	if err != nil {
		return err
	}
	cur, ok := values[key]
	next, err := fn(cur, ok)
	if err != nil {
		return err
	}
	values[key] = next
	return s.save(values)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) load() (map[string]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, unavailable("open store file", err)
	}
	defer f.Close()

	values := make(map[string]string)
	if err := json.NewDecoder(f).Decode(&values); err != nil {
		return nil, unavailable("decode store file", err)
	}
	return values, nil
}

// save writes a temp file and renames it over the target; readers never
// observe a partial file.
func (s *FileStore) save(values map[string]string) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return unavailable("create temp file", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(values); err != nil {
		tmp.Close()
		return unavailable("encode store file", err)
	}
	if err := tmp.Close(); err != nil {
		return unavailable("close temp file", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return unavailable(fmt.Sprintf("replace %s", s.path), err)
	}
	return nil
}
