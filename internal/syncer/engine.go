// Package syncer implements the offline-first synchronization engine: the
// component that decides where an entry is read from and written to, tracks
// entries that have not reached the remote store, and reconciles them once
// connectivity returns.
//
// Each operation runs the same small process on its own: attempt the remote
// store when online, fall back to the local cache on failure or while
// offline, and record the entry as unsynced when the remote store did not
// confirm it. There is no persistent workflow state beyond the binary
// synced flag.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/meterbook/meterbook/internal/cache"
	"github.com/meterbook/meterbook/internal/connectivity"
	"github.com/meterbook/meterbook/internal/logging"
	"github.com/meterbook/meterbook/internal/mapper"
	"github.com/meterbook/meterbook/internal/models"
	"github.com/meterbook/meterbook/internal/remote"
)

// Engine orchestrates the remote store, the local cache and the
// connectivity oracle. Construct one per process and pass it to
// consumers explicitly.
type Engine struct {
	remote remote.Store
	cache  *cache.Store
	oracle connectivity.Oracle
	log    logging.Logger

	// now is a seam for tests.
	now func() time.Time

	// mu serializes operations: the cache has whole-collection
	// granularity only, so two interleaved read-modify-write cycles
	// would lose updates.
	mu sync.Mutex
}

// New returns an engine over the given collaborators.
func New(rs remote.Store, cs *cache.Store, oracle connectivity.Oracle, log logging.Logger) *Engine {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Engine{
		remote: rs,
		cache:  cs,
		oracle: oracle,
		log:    log,
		now:    time.Now,
	}
}

// GetEntries returns the entry collection. Online, the remote store is the
// source of truth: the fetched result (ordered by reading date descending)
// overwrites the cache wholesale. On remote failure or while offline the
// cached collection is returned unchanged.
//
// Local-only entries are not merged into a successful remote fetch; a
// pending offline creation stays hidden until the next sync drain puts it
// back. Known gap, kept to match the source behavior.
func (e *Engine) GetEntries(ctx context.Context) ([]models.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.oracle.Online() {
		recs, err := e.remote.List(ctx)
		if err == nil {
			entries := make([]models.Entry, 0, len(recs))
			for _, rec := range recs {
				entries = append(entries, mapper.FromRemote(rec))
			}
			if err := e.cache.ReplaceAll(ctx, entries); err != nil {
				e.log.Warn(ctx, "failed to mirror remote entries into cache", "error", err)
			}
			return entries, nil
		}
		e.log.Warn(ctx, "remote fetch failed, serving cached entries", "error", err)
	}

	return e.cache.ReadAll(ctx), nil
}

// SaveEntry persists entry, preferring the remote store. UpdatedAt is
// stamped on every save; CreatedAt only on first save. Online, a confirmed
// remote upsert is mirrored into the cache and returned with Synced=true;
// any remote failure falls back to a local-only save. The entry is
// returned even when a cache write failed, so callers keep a consistent
// in-memory state; the storage error rides along for reporting.
func (e *Engine) SaveEntry(ctx context.Context, entry models.Entry) (models.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	entry.UpdatedAt = now
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}

	if e.oracle.Online() {
		oldID := entry.ID
		candidate := entry
		if models.IsLocalID(candidate.ID) {
			// the remote store assigns a real identifier
			candidate.ID = ""
		}

		stored, err := e.remote.Upsert(ctx, mapper.ToRemote(candidate))
		if err == nil {
			confirmed := mapper.FromRemote(stored)
			var storageErr error

			if oldID != "" && oldID != confirmed.ID {
				if rmErr := e.cache.Remove(ctx, oldID); rmErr != nil {
					storageErr = rmErr
				}
			}
			if upErr := e.cache.Upsert(ctx, confirmed); upErr != nil && storageErr == nil {
				storageErr = upErr
			}

			// synchronization succeeded, so any pending copy is obsolete
			if oldID != "" {
				if err := e.cache.RemoveUnsynced(ctx, oldID); err != nil {
					e.log.Warn(ctx, "failed to drop pending copy", "id", oldID, "error", err)
				}
			}
			if confirmed.ID != oldID {
				if err := e.cache.RemoveUnsynced(ctx, confirmed.ID); err != nil {
					e.log.Warn(ctx, "failed to drop pending copy", "id", confirmed.ID, "error", err)
				}
			}

			if storageErr != nil {
				e.log.Error(ctx, "entry confirmed remotely but cache write failed", "id", confirmed.ID, "error", storageErr)
			}
			return confirmed, storageErr
		}

		e.log.Warn(ctx, "remote save failed, falling back to local save", "error", err)
	}

	entry.Synced = false
	return e.saveLocal(ctx, entry)
}

// saveLocal writes entry to the cache only. A missing identifier gets a
// local placeholder and a fresh CreatedAt. Unsynced entries are recorded
// in the unsynced set, replacing any prior pending copy.
func (e *Engine) saveLocal(ctx context.Context, entry models.Entry) (models.Entry, error) {
	now := e.now()
	if entry.ID == "" {
		entry.ID = models.NewLocalID()
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	var storageErr error
	if err := e.cache.Upsert(ctx, entry); err != nil {
		storageErr = err
		e.log.Error(ctx, "cache save failed", "id", entry.ID, "error", err)
	}
	if !entry.Synced {
		if err := e.cache.UpsertUnsynced(ctx, entry); err != nil {
			if storageErr == nil {
				storageErr = err
			}
			e.log.Error(ctx, "failed to record entry as unsynced", "id", entry.ID, "error", err)
		}
	}

	return entry, storageErr
}

// DeleteEntry removes an entry everywhere. Online, identifiers known to
// the remote store are deleted there first; a remote error aborts the
// whole operation with local state untouched, so the caller is never shown
// a false success. Local placeholders never existed remotely and skip the
// remote call.
func (e *Engine) DeleteEntry(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.oracle.Online() && !models.IsLocalID(id) {
		if err := e.remote.Delete(ctx, id); err != nil {
			e.log.Error(ctx, "remote delete failed, aborting", "id", id, "error", err)
			return err
		}
	}

	if err := e.cache.Remove(ctx, id); err != nil {
		e.log.Warn(ctx, "cache removal failed after delete", "id", id, "error", err)
	}
	if err := e.cache.RemoveUnsynced(ctx, id); err != nil {
		e.log.Warn(ctx, "pending removal failed after delete", "id", id, "error", err)
	}
	return nil
}

// DeleteAllEntries wipes the collection. Online, a failed bulk remote
// delete aborts with no local mutation; otherwise both local collections
// are cleared.
func (e *Engine) DeleteAllEntries(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.oracle.Online() {
		if err := e.remote.DeleteAll(ctx); err != nil {
			e.log.Error(ctx, "remote delete-all failed, aborting", "error", err)
			return err
		}
	}

	if err := e.cache.Clear(ctx); err != nil {
		e.log.Warn(ctx, "cache clear failed", "error", err)
	}
	if err := e.cache.ClearUnsynced(ctx); err != nil {
		e.log.Warn(ctx, "pending clear failed", "error", err)
	}
	return nil
}

// GetUnsyncedEntries returns the entries whose last write has not been
// confirmed by the remote store.
func (e *Engine) GetUnsyncedEntries(ctx context.Context) []models.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.ReadUnsynced(ctx)
}

// SyncUnsynced drains the unsynced set against the remote store and
// returns how many entries were confirmed. Pending entries are processed
// one at a time, in sequence, so two read-modify-write cycles never race
// on the shared collection. One failing entry does not abort the batch:
// it stays pending and the drain moves on.
func (e *Engine) SyncUnsynced(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.oracle.Online() {
		return 0, nil
	}

	pending := e.cache.ReadUnsynced(ctx)
	if len(pending) == 0 {
		return 0, nil
	}

	count := 0
	for _, p := range pending {
		oldID := p.ID
		candidate := p
		if models.IsLocalID(oldID) {
			candidate.ID = ""
		}
		candidate.Synced = true

		stored, err := e.remote.Upsert(ctx, mapper.ToRemote(candidate))
		if err != nil {
			e.log.Warn(ctx, "sync failed for pending entry, keeping it", "id", oldID, "error", err)
			continue
		}
		confirmed := mapper.FromRemote(stored)

		if err := e.cache.RemoveUnsynced(ctx, oldID); err != nil {
			e.log.Warn(ctx, "failed to drop pending copy after sync", "id", oldID, "error", err)
		}
		if err := e.cache.Remove(ctx, oldID); err != nil {
			e.log.Warn(ctx, "failed to drop old cache record after sync", "id", oldID, "error", err)
		}
		if err := e.cache.Upsert(ctx, confirmed); err != nil {
			e.log.Warn(ctx, "failed to mirror synced entry into cache", "id", confirmed.ID, "error", err)
		}
		count++
	}

	e.log.Info(ctx, "sync drain finished", "synced", count, "pending", len(pending)-count)
	return count, nil
}
