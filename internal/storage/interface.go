package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no content is stored under a key.
	ErrNotFound = errors.New("storage: key not found")

	// ErrCorrupt is returned when stored content fails its integrity check.
	ErrCorrupt = errors.New("storage: content is corrupt")
)

// Storage defines the interface for durable key/value records.
// Implementations can be local filesystem or an embedded SQLite database.
type Storage interface {
	// Put stores content at the given key, replacing any previous content as one unit
	Put(ctx context.Context, key string, content []byte) error

	// Get retrieves content from the given key
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists checks if content exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the content at the given key
	Delete(ctx context.Context, key string) error
}

// StorageType represents the type of storage backend
type StorageType string

const (
	StorageTypeLocal  StorageType = "local"
	StorageTypeSQLite StorageType = "sqlite"
)

// New creates the storage backend named by storageType.
// basePath is a directory for the local backend and a database file for SQLite.
func New(storageType StorageType, basePath string) (Storage, error) {
	switch storageType {
	case StorageTypeLocal, "":
		return NewLocalStorage(basePath)
	case StorageTypeSQLite:
		return NewSQLiteStorage(basePath)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}
