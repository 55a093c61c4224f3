// Package docstore implements the persistent cache medium: a key-value
// store of whole serialized documents. The cache layer addresses it with
// two fixed keys (the entry collection and the unsynced subset); every
// read and write moves the entire document, never a partial update.
package docstore

import (
	"context"
)

// Store is a whole-document key-value medium.
type Store interface {
	// Get returns the document stored under key, or common.ErrNotFound
	// when the key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the document stored under key in a single atomic write.
	Put(ctx context.Context, key string, body []byte) error

	// Delete removes the document under key; no-op if absent.
	Delete(ctx context.Context, key string) error
}

// Updater is implemented by media that can group several document
// operations into one atomic unit.
type Updater interface {
	// Update runs fn against a view of the medium; all of fn's writes
	// are applied together, or none of them are.
	Update(ctx context.Context, fn func(tx Store) error) error
}
