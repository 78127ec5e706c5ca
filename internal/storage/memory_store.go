package storage

import "sync"

// MemoryStore is an in-process Store. Reads and writes can be made to fail
// to exercise the warning paths.
type MemoryStore struct {
	mu       sync.Mutex
	values   map[string]string
	readErr  error
	writeErr error
	writes   int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// FailReads makes every Get return err. A nil err restores normal reads.
func (store *MemoryStore) FailReads(err error) {
	store.mu.Lock()
	store.readErr = err
	store.mu.Unlock()
}

// FailWrites makes every Set and Remove return err. A nil err restores
// normal writes.
func (store *MemoryStore) FailWrites(err error) {
	store.mu.Lock()
	store.writeErr = err
	store.mu.Unlock()
}

// Writes returns the number of successful Set calls.
func (store *MemoryStore) Writes() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.writes
}

// Get reads the value for key.
func (store *MemoryStore) Get(key string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.readErr != nil {
		return "", store.readErr
	}
	value, ok := store.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set writes the value for key.
func (store *MemoryStore) Set(key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.writeErr != nil {
		return store.writeErr
	}
	store.values[key] = value
	store.writes++
	return nil
}

// Remove deletes key.
func (store *MemoryStore) Remove(key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.writeErr != nil {
		return store.writeErr
	}
	delete(store.values, key)
	return nil
}
