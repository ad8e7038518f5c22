package storage

import "errors"

// ErrNotLoaded is returned when a store is used before Init or Load.
var ErrNotLoaded = errors.New("storage not loaded")

// Provider is the persistent key-value store every component reads and writes through.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Get returns the value and whether the key exists
	Get(key string) (string, bool, error)
	// List returns every key with the given prefix
	List(prefix string) (map[string]string, error)
	Set(key, value string) error
	// Delete is a no-op for missing keys
	Delete(key string) error
	// Apply writes a batch atomically
	Apply(b Batch) error

	GetConfigPath() string
}

// Batch is a set of writes and deletes committed together.
type Batch struct {
	Sets    map[string]string
	Deletes []string
}

// Put queues a write
func (b *Batch) Put(key, value string) {
	if b.Sets == nil {
		b.Sets = make(map[string]string)
	}
	b.Sets[key] = value
}

// Remove queues a delete
func (b *Batch) Remove(key string) {
	b.Deletes = append(b.Deletes, key)
}

// Empty reports whether the batch has nothing to write
func (b *Batch) Empty() bool {
	return len(b.Sets) == 0 && len(b.Deletes) == 0
}
