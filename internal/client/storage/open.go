package storage

import (
	"fmt"

	"go.uber.org/zap"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Open builds the Store named by backend. path is the JSON file for
// "file", the database file for "sqlite" and the directory for "badger";
// it is ignored for "memory".
func Open(backend, path string, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		return NewFileStore(path), nil
	case BackendSQLite:
		if path == "" {
			path = "authdemo.db"
		}
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, unavailable("open sqlite", err)
		}
		return NewSQLiteStore(db), nil
	case BackendBadger:
		if path == "" {
			path = "authdemo.badger"
		}
		store, err := NewBadgerStore(path, log)
		if err != nil {
			return nil, unavailable("open badger", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
