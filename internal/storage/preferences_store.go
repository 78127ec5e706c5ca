package storage

import (
	"errors"

	"fyne.io/fyne/v2"
)

var errPreferencesRejected = errors.New("preferences rejected write")

// PreferencesStore keeps records in the Fyne application preferences.
// Fyne persists preferences on its own schedule and never reports write
// errors, so the startup probe reads the value back to confirm it stuck.
type PreferencesStore struct {
	preferences fyne.Preferences
}

// NewPreferencesStore wraps an application's preferences.
func NewPreferencesStore(preferences fyne.Preferences) *PreferencesStore {
	return &PreferencesStore{preferences: preferences}
}

// Get reads the value for key. Empty values are treated as missing.
func (store *PreferencesStore) Get(key string) (string, error) {
	value := store.preferences.String(key)
	if value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// Set writes the value for key.
func (store *PreferencesStore) Set(key, value string) error {
	store.preferences.SetString(key, value)
	if store.preferences.String(key) != value {
		return errPreferencesRejected
	}
	return nil
}

// Remove deletes key.
func (store *PreferencesStore) Remove(key string) error {
	store.preferences.RemoveValue(key)
	return nil
}
