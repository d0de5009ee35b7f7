package service

import (
	"context"
	"fmt"

	"github.com/atinyakov/authdemo/internal/client/storage"
	"github.com/atinyakov/authdemo/internal/models"
)

// PreferenceStore is the subset of storage.Store used for preferences.
type PreferenceStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Preferences persists display settings.
type Preferences struct {
	store PreferenceStore
}

// NewPreferences constructs Preferences over store.
func NewPreferences(store PreferenceStore) *Preferences {
	return &Preferences{store: store}
}

// Theme returns the stored theme, light when unset or unrecognised.
func (p *Preferences) Theme(ctx context.Context) (models.Theme, error) {
	v, ok, err := p.store.Get(ctx, storage.KeyTheme)
	if err != nil {
		return models.ThemeLight, fmt.Errorf("read theme: %w", err)
	}
	t := models.Theme(v)
	if !ok || !t.Valid() {
		return models.ThemeLight, nil
	}
	return t, nil
}

// ToggleTheme switches between light and dark and returns the new theme.
func (p *Preferences) ToggleTheme(ctx context.Context) (models.Theme, error) {
	cur, err := p.Theme(ctx)
	if err != nil {
		return cur, err
	}
	next := cur.Toggle()
	if err := p.store.Set(ctx, storage.KeyTheme, string(next)); err != nil {
		return cur, fmt.Errorf("save theme: %w", err)
	}
	return next, nil
}
