// Package storage provides the key-value snapshot store the entity
// stores persist into.
//
// Each entity collection is written whole under a single key; there is
// no incremental log. Two drivers exist: JSON files in a data directory
// (the default) and a single-table sqlite database.
package storage

import "fmt"

// Store is the persistence boundary. Values are opaque byte payloads;
// the entity stores put JSON arrays in them.
type Store interface {
	// Get returns the payload for key. The second result is false when
	// the key has never been written.
	Get(key string) ([]byte, bool, error)
	// Put writes the payload for key, replacing any previous value.
	Put(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Keys lists all stored keys.
	Keys() ([]string, error)
	// Close releases driver resources.
	Close() error
}

// Driver names accepted in configuration.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open creates a store for the named driver rooted at dataDir.
func Open(driver, dataDir string) (Store, error) {
	switch driver {
	case DriverFile, "":
		return NewFileStore(dataDir)
	case DriverSQLite:
		return NewSQLiteStore(dataDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
