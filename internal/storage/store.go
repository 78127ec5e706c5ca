// Package storage mirrors the application records into a durable
// string-keyed store.
//
// The store is a mirror, not a source of truth: records are loaded once at
// startup and then overwritten from memory after every change.
package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the key has never been written.
	ErrNotFound = errors.New("key not found")
	// ErrCorrupt indicates a stored value could not be decoded.
	ErrCorrupt = errors.New("stored value is corrupt")
	// ErrUnavailable indicates the store failed its startup probe.
	ErrUnavailable = errors.New("storage unavailable")
)

// Store is a synchronous string key-value store. Any call may fail.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

const probeKey = "__obscount_probe__"

// Probe checks that the store accepts a write and a delete.
func Probe(store Store) error {
	if store == nil {
		return ErrUnavailable
	}
	if err := store.Set(probeKey, probeKey); err != nil {
		return fmt.Errorf("probe write: %w", err)
	}
	if err := store.Remove(probeKey); err != nil {
		return fmt.Errorf("probe remove: %w", err)
	}
	return nil
}
