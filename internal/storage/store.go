// Package storage provides whole-document persistence for the record stores.
//
// Every entity type is persisted as one document (a JSON array of records, or
// a single object for stats). Repositories read the whole document, change it
// in memory and write it back through Update, which serializes the
// read-modify-write cycle for a given store.
//
// # Implementations
//
//   - FileStore: one pretty-printed JSON file per entity type
//   - SQLStore: one row per entity type in a SQLite table (via gorm)
//   - MemoryStore: in-process, used by tests
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrCorrupt is returned when a persisted document cannot be decoded.
	ErrCorrupt = errors.New("store corrupt")

	// ErrConflict is returned when a document changed underneath an update.
	ErrConflict = errors.New("store modified concurrently")

	// ErrNoChange may be returned by an Update callback to skip the write.
	// Update itself then returns nil.
	ErrNoChange = errors.New("no change")
)

// Store persists a single document of type T.
type Store[T any] interface {
	// Load returns the stored document, or the store's empty value when
	// nothing has been persisted yet.
	Load(ctx context.Context) (T, error)

	// Save replaces the stored document.
	Save(ctx context.Context, doc T) error

	// Update loads the document, applies fn and saves the result. No other
	// Update or Save on the same store runs in between. If fn returns an
	// error the document is not written; ErrNoChange is swallowed.
	Update(ctx context.Context, fn func(doc *T) error) error
}

// EmptyFunc builds the value returned for a document that does not exist.
type EmptyFunc[T any] func() T

// EmptySlice is an EmptyFunc for record lists.
func EmptySlice[E any]() []E {
	return []E{}
}

func encode[T any](doc T) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(data, '\n'), nil
}

func decode[T any](name string, data []byte, empty EmptyFunc[T]) (T, error) {
	doc := empty()
	if len(bytes.TrimSpace(data)) == 0 {
		var zero T
		return zero, fmt.Errorf("%w: %s: empty document", ErrCorrupt, name)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	return doc, nil
}

// apply runs fn and reports whether the document should be written.
func apply[T any](doc *T, fn func(doc *T) error) (bool, error) {
	if err := fn(doc); err != nil {
		if errors.Is(err, ErrNoChange) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
