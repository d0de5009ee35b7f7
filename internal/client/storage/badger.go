package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

// maxConflictRetries bounds how often Update replays after a write conflict.
const maxConflictRetries = 5

// BadgerStore implements Store on an embedded Badger database.
type BadgerStore struct {
	db  *badger.DB
	log *zap.Logger
	// mu serialises Update within the process; conflicts can then only
	// come from other handles on the same directory.
	mu sync.Mutex
}

// NewBadgerStore opens a Badger database in dir. An empty dir opens an
// in-memory database.
func NewBadgerStore(dir string, log *zap.Logger) (*BadgerStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	opts := badger.DefaultOptions(dir).WithLogger(&badgerLogger{log: log.Sugar()})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	log.Debug("badger store opened", zap.String("dir", dir), zap.Bool("in_memory", dir == ""))
	return &BadgerStore{db: db, log: log}, nil
}

func (s *BadgerStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var (
		value []byte
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		value, found, err = read(txn, key)
		return err
	})
	if err != nil {
		return "", false, unavailable(fmt.Sprintf("get %s", key), err)
	}
	return string(value), found, nil
}

func (s *BadgerStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return unavailable(fmt.Sprintf("set %s", key), err)
	}
	return nil
}

func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return unavailable(fmt.Sprintf("delete %s", key), err)
	}
	return nil
}

// Update runs the read and the write in one transaction and replays fn
// when Badger reports a conflicting concurrent commit.
func (s *BadgerStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var fnErr error
		err := s.db.Update(func(txn *badger.Txn) error {
			cur, found, err := read(txn, key)
			if err != nil {
				return err
			}
			next, err := fn(string(cur), found)
			if err != nil {
				fnErr = err
				return err
			}
			return txn.Set([]byte(key), []byte(next))
		})
		switch {
		case err == nil:
			return nil
		case fnErr != nil:
			return fnErr
		case errors.Is(err, badger.ErrConflict) && attempt < maxConflictRetries:
			s.log.Debug("badger update conflict, retrying", zap.String("key", key), zap.Int("attempt", attempt))
			continue
		default:
			return unavailable(fmt.Sprintf("update %s", key), err)
		}
	}
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func read(txn *badger.Txn, key string) ([]byte, bool, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// badgerLogger adapts zap to Badger's Logger interface.
type badgerLogger struct {
	log *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.log.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.log.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.log.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.log.Debugf(format, args...) }
