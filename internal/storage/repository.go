package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"obscount/internal/core/model"
)

// DefaultKeyPrefix namespaces the record keys.
const DefaultKeyPrefix = "observation-counter-"

// Keys names the three persisted records.
type Keys struct {
	Sessions string
	Counters string
	Settings string
}

// KeysWithPrefix builds the record keys for a namespace prefix.
func KeysWithPrefix(prefix string) Keys {
	return Keys{
		Sessions: prefix + "sessions",
		Counters: prefix + "counters",
		Settings: prefix + "settings",
	}
}

// Repository reads and writes the typed records as JSON.
type Repository struct {
	store    Store
	keys     Keys
	probeErr error
}

// NewRepository probes store and returns a repository over it. When the
// probe fails every call returns ErrUnavailable and the application keeps
// its state in memory only.
func NewRepository(store Store, keys Keys) *Repository {
	repo := &Repository{store: store, keys: keys}
	if err := Probe(store); err != nil {
		repo.probeErr = fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return repo
}

// Available reports whether the startup probe succeeded.
func (repo *Repository) Available() bool {
	return repo.probeErr == nil
}

// ProbeError returns the reason the store is unavailable.
func (repo *Repository) ProbeError() error {
	return repo.probeErr
}

// Keys returns the record keys.
func (repo *Repository) Keys() Keys {
	return repo.keys
}

// LoadSessions returns the stored sessions, newest first.
func (repo *Repository) LoadSessions() ([]model.Session, error) {
	var sessions []model.Session
	if err := repo.load(repo.keys.Sessions, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// LoadCounters returns the stored counter registry.
func (repo *Repository) LoadCounters() ([]model.Counter, error) {
	var counters []model.Counter
	if err := repo.load(repo.keys.Counters, &counters); err != nil {
		return nil, err
	}
	return counters, nil
}

// LoadSettings returns the stored timer settings, clamped.
func (repo *Repository) LoadSettings() (model.TimerSettings, error) {
	var settings model.TimerSettings
	if err := repo.load(repo.keys.Settings, &settings); err != nil {
		return model.TimerSettings{}, err
	}
	return settings.Clamp(), nil
}

// SaveSessions overwrites the stored sessions.
func (repo *Repository) SaveSessions(sessions []model.Session) error {
	if sessions == nil {
		sessions = []model.Session{}
	}
	return repo.save(repo.keys.Sessions, sessions)
}

// SaveCounters overwrites the stored counters.
func (repo *Repository) SaveCounters(counters []model.Counter) error {
	if counters == nil {
		counters = []model.Counter{}
	}
	return repo.save(repo.keys.Counters, counters)
}

// SaveSettings overwrites the stored timer settings.
func (repo *Repository) SaveSettings(settings model.TimerSettings) error {
	return repo.save(repo.keys.Settings, settings)
}

func (repo *Repository) load(key string, target any) error {
	if repo.probeErr != nil {
		return repo.probeErr
	}
	rawData, err := repo.store.Get(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("load %s: %w", key, ErrNotFound)
		}
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(rawData), target); err != nil {
		return fmt.Errorf("parse %s: %w: %w", key, ErrCorrupt, err)
	}
	return nil
}

func (repo *Repository) save(key string, value any) error {
	if repo.probeErr != nil {
		return repo.probeErr
	}
	serialized, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := repo.store.Set(key, string(serialized)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
