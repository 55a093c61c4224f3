// Package cache implements the local cache store: the on-device mirror of
// the entry collection plus the unsynced set, the subset of entries whose
// last write has not been confirmed by the remote store.
//
// Both collections live in a whole-document medium under two fixed keys,
// so every mutation is a read-modify-write of the entire serialized
// collection. Reads degrade to an empty collection when the medium is
// missing or corrupt; writes surface the storage error to the caller.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/meterbook/meterbook/internal/common"
	"github.com/meterbook/meterbook/internal/docstore"
	"github.com/meterbook/meterbook/internal/logging"
	"github.com/meterbook/meterbook/internal/models"
)

const (
	keyEntries  = "entries"
	keyUnsynced = "entries_unsynced"
)

// Store is the local cache store and unsynced set.
type Store struct {
	docs docstore.Store
	log  logging.Logger
}

// NewStore returns a Store over the given document medium.
func NewStore(docs docstore.Store, log logging.Logger) *Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Store{docs: docs, log: log}
}

// update runs fn against an atomic view of the medium when the medium
// supports one, so a read-modify-write cannot interleave with another
// writer. Plain media run fn directly.
func (s *Store) update(ctx context.Context, fn func(docs docstore.Store) error) error {
	if u, ok := s.docs.(docstore.Updater); ok {
		return u.Update(ctx, fn)
	}
	return fn(s.docs)
}

// read loads and decodes one collection. Missing or unparseable documents
// yield an empty slice, never an error.
func (s *Store) read(ctx context.Context, docs docstore.Store, key string) []models.Entry {
	body, err := docs.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.log.Warn(ctx, "cache read failed, treating as empty", "key", key, "error", err)
		}
		return []models.Entry{}
	}

	var entries []models.Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		s.log.Warn(ctx, "cache document corrupt, treating as empty", "key", key, "error", err)
		return []models.Entry{}
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries
}

func (s *Store) write(ctx context.Context, docs docstore.Store, key string, entries []models.Entry) error {
	body, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode cache document %q: %w", key, err)
	}
	return docs.Put(ctx, key, body)
}

// upsertInto replaces the record with the same identifier, else appends.
func upsertInto(entries []models.Entry, e models.Entry) []models.Entry {
	for i := range entries {
		if entries[i].ID == e.ID {
			entries[i] = e
			return entries
		}
	}
	return append(entries, e)
}

func removeFrom(entries []models.Entry, id string) ([]models.Entry, bool) {
	for i := range entries {
		if entries[i].ID == id {
			return append(entries[:i], entries[i+1:]...), true
		}
	}
	return entries, false
}

// upsert is the shared read-modify-write behind Upsert and UpsertUnsynced.
func (s *Store) upsert(ctx context.Context, key string, e models.Entry) error {
	return s.update(ctx, func(docs docstore.Store) error {
		return s.write(ctx, docs, key, upsertInto(s.read(ctx, docs, key), e))
	})
}

// remove is the shared read-modify-write behind Remove and RemoveUnsynced.
func (s *Store) remove(ctx context.Context, key, id string) error {
	return s.update(ctx, func(docs docstore.Store) error {
		entries, found := removeFrom(s.read(ctx, docs, key), id)
		if !found {
			return nil
		}
		return s.write(ctx, docs, key, entries)
	})
}

// ReadAll returns the cached entry collection in last-persisted order.
func (s *Store) ReadAll(ctx context.Context) []models.Entry {
	return s.read(ctx, s.docs, keyEntries)
}

// Upsert replaces any existing record with the same identifier, else appends.
func (s *Store) Upsert(ctx context.Context, e models.Entry) error {
	return s.upsert(ctx, keyEntries, e)
}

// Remove deletes by identifier; no-op (and no write) if absent.
func (s *Store) Remove(ctx context.Context, id string) error {
	return s.remove(ctx, keyEntries, id)
}

// ReplaceAll overwrites the whole cached collection wholesale.
func (s *Store) ReplaceAll(ctx context.Context, entries []models.Entry) error {
	if entries == nil {
		entries = []models.Entry{}
	}
	return s.write(ctx, s.docs, keyEntries, entries)
}

// Clear empties the cached collection.
func (s *Store) Clear(ctx context.Context) error {
	return s.write(ctx, s.docs, keyEntries, []models.Entry{})
}

// ReadUnsynced returns the pending subset.
func (s *Store) ReadUnsynced(ctx context.Context) []models.Entry {
	return s.read(ctx, s.docs, keyUnsynced)
}

// UpsertUnsynced records e as pending, replacing any prior pending copy
// with the same identifier.
func (s *Store) UpsertUnsynced(ctx context.Context, e models.Entry) error {
	return s.upsert(ctx, keyUnsynced, e)
}

// RemoveUnsynced drops the pending record for id; no-op if absent.
func (s *Store) RemoveUnsynced(ctx context.Context, id string) error {
	return s.remove(ctx, keyUnsynced, id)
}

// ClearUnsynced empties the pending subset.
func (s *Store) ClearUnsynced(ctx context.Context) error {
	return s.write(ctx, s.docs, keyUnsynced, []models.Entry{})
}
