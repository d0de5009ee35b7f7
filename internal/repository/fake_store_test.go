package repository

import (
	"context"

	"github.com/atinyakov/authdemo/internal/client/storage"
)

// fakeStore wraps a MemoryStore and lets tests override single methods.
type fakeStore struct {
	*storage.MemoryStore
	GetFunc    func(ctx context.Context, key string) (string, bool, error)
	SetFunc    func(ctx context.Context, key, value string) error
	DeleteFunc func(ctx context.Context, key string) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{MemoryStore: storage.NewMemoryStore()}
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx, key)
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *fakeStore) Set(ctx context.Context, key, value string) error {
	if f.SetFunc != nil {
		return f.SetFunc(ctx, key, value)
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, key)
	}
	return f.MemoryStore.Delete(ctx, key)
}
