package syncer

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meterbook/meterbook/internal/cache"
	"github.com/meterbook/meterbook/internal/connectivity"
	"github.com/meterbook/meterbook/internal/docstore"
	"github.com/meterbook/meterbook/internal/models"
	"github.com/meterbook/meterbook/internal/remote"

	_ "modernc.org/sqlite"
)

// fakeRemote is an in-memory stand-in for the Postgres store.
type fakeRemote struct {
	records map[string]remote.Record

	failSuppliers map[string]bool // upserts for these suppliers error
	failList      bool
	failDelete    bool
	failDeleteAll bool

	upsertCalls    int
	deleteCalls    int
	deleteAllCalls int
	listCalls      int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		records:       make(map[string]remote.Record),
		failSuppliers: make(map[string]bool),
	}
}

var errRemote = errors.New("remote store unreachable")

func (f *fakeRemote) List(context.Context) ([]remote.Record, error) {
	f.listCalls++
	if f.failList {
		return nil, errRemote
	}
	out := make([]remote.Record, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReadingDate.After(out[j].ReadingDate) })
	return out, nil
}

func (f *fakeRemote) Upsert(_ context.Context, rec remote.Record) (remote.Record, error) {
	f.upsertCalls++
	if f.failSuppliers[rec.Supplier] {
		return remote.Record{}, errRemote
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeRemote) Delete(_ context.Context, id string) error {
	f.deleteCalls++
	if f.failDelete {
		return errRemote
	}
	delete(f.records, id)
	return nil
}

func (f *fakeRemote) DeleteAll(context.Context) error {
	f.deleteAllCalls++
	if f.failDeleteAll {
		return errRemote
	}
	f.records = make(map[string]remote.Record)
	return nil
}

func (f *fakeRemote) Ping(context.Context) error { return nil }

var _ remote.Store = (*fakeRemote)(nil)

type fakeOracle struct {
	online bool
}

var _ connectivity.Oracle = (*fakeOracle)(nil)

func (o *fakeOracle) Online() bool { return o.online }

func (o *fakeOracle) OnRegained(connectivity.Handler) func() { return func() {} }

func setupCache(t *testing.T) *cache.Store {
	t.Helper()
	db, err := sql.Open("sqlite", "file:enginetest?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS documents (key TEXT PRIMARY KEY, body BLOB NOT NULL);`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM documents;`)
	require.NoError(t, err)

	return cache.NewStore(docstore.NewSQLiteStore(db), nil)
}

func setupEngine(t *testing.T, online bool) (*Engine, *fakeRemote, *cache.Store, *fakeOracle) {
	t.Helper()
	r := newFakeRemote()
	c := setupCache(t)
	o := &fakeOracle{online: online}
	e := New(r, c, o, nil)
	return e, r, c, o
}

func newEntry(supplier string) models.Entry {
	return models.Entry{
		Type:        models.UtilityElectricity,
		Supplier:    supplier,
		ReadingDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("42.50"),
	}
}

func TestSaveEntry_OfflineCreatesLocalPlaceholder(t *testing.T) {
	e, r, c, _ := setupEngine(t, false)
	ctx := context.Background()

	saved, err := e.SaveEntry(ctx, newEntry("Acme"))
	require.NoError(t, err)

	assert.True(t, models.IsLocalID(saved.ID))
	assert.False(t, saved.Synced)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.UpdatedAt.IsZero())
	assert.Zero(t, r.upsertCalls)

	// appears in both the cache and the unsynced set
	all := c.ReadAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, saved.ID, all[0].ID)

	pending := c.ReadUnsynced(ctx)
	require.Len(t, pending, 1)
	assert.Equal(t, saved.ID, pending[0].ID)
}

func TestSaveEntry_OfflineThenGetEntriesReadsBack(t *testing.T) {
	e, _, _, _ := setupEngine(t, false)
	ctx := context.Background()

	saved, err := e.SaveEntry(ctx, newEntry("Acme"))
	require.NoError(t, err)

	got, err := e.GetEntries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, saved.ID, got[0].ID)
	assert.Equal(t, "Acme", got[0].Supplier)
}

func TestSaveEntry_OnlineGetsServerIDAndMirrors(t *testing.T) {
	e, r, c, _ := setupEngine(t, true)
	ctx := context.Background()

	saved, err := e.SaveEntry(ctx, newEntry("Acme"))
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.False(t, models.IsLocalID(saved.ID))
	assert.True(t, saved.Synced)
	require.Contains(t, r.records, saved.ID)

	all := c.ReadAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, saved.ID, all[0].ID)
	assert.True(t, all[0].Synced)
	assert.Empty(t, c.ReadUnsynced(ctx))
}

func TestSaveEntry_OnlineEditPreservesCreatedAt(t *testing.T) {
	e, _, _, _ := setupEngine(t, true)
	ctx := context.Background()

	saved, err := e.SaveEntry(ctx, newEntry("Acme"))
	require.NoError(t, err)
	created := saved.CreatedAt

	time.Sleep(5 * time.Millisecond)
	saved.Supplier = "Acme v2"
	edited, err := e.SaveEntry(ctx, saved)
	require.NoError(t, err)

	assert.Equal(t, saved.ID, edited.ID)
	assert.True(t, created.Equal(edited.CreatedAt))
	assert.True(t, edited.UpdatedAt.After(created))
}

func TestSaveEntry_OnlineReplacesLocalPlaceholder(t *testing.T) {
	e, r, c, o := setupEngine(t, false)
	ctx := context.Background()

	saved, err := e.SaveEntry(ctx, newEntry("Acme"))
	require.NoError(t, err)
	localID := saved.ID
	require.True(t, models.IsLocalID(localID))

	// connectivity returns, the user edits the same entry
	o.online = true
	saved.Supplier = "Acme v2"
	confirmed, err := e.SaveEntry(ctx, saved)
	require.NoError(t, err)

	assert.False(t, models.IsLocalID(confirmed.ID))
	assert.True(t, confirmed.Synced)
	require.Contains(t, r.records, confirmed.ID)

	// old placeholder record replaced, exactly one copy remains
	all := c.ReadAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, confirmed.ID, all[0].ID)
	assert.Empty(t, c.ReadUnsynced(ctx))
}

func TestSaveEntry_RemoteFailureFallsBackLocal(t *testing.T) {
	e, r, c, _ := setupEngine(t, true)
	ctx := context.Background()

	r.failSuppliers["Acme"] = true

	saved, err := e.SaveEntry(ctx, newEntry("Acme"))
	require.NoError(t, err)

	assert.True(t, models.IsLocalID(saved.ID))
	assert.False(t, saved.Synced)
	require.Len(t, c.ReadUnsynced(ctx), 1)
}

func TestSaveEntry_UpsertIsIdempotentByID(t *testing.T) {
	e, _, c, _ := setupEngine(t, false)
	ctx := context.Background()

	saved, err := e.SaveEntry(ctx, newEntry("Acme"))
	require.NoError(t, err)

	saved.Supplier = "Acme v2"
	_, err = e.SaveEntry(ctx, saved)
	require.NoError(t, err)

	all := c.ReadAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "Acme v2", all[0].Supplier)

	pending := c.ReadUnsynced(ctx)
	require.Len(t, pending, 1)
	assert.Equal(t, "Acme v2", pending[0].Supplier)
}

func TestGetEntries_OnlineOverwritesCacheWholesale(t *testing.T) {
	e, r, c, _ := setupEngine(t, true)
	ctx := context.Background()

	// stale cache content
	require.NoError(t, c.Upsert(ctx, models.Entry{ID: "stale", Supplier: "Old"}))

	_, err := r.Upsert(ctx, remote.Record{
		UtilityType: "gas", Supplier: "City",
		ReadingDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("10"),
	})
	require.NoError(t, err)

	got, err := e.GetEntries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "City", got[0].Supplier)
	assert.True(t, got[0].Synced)

	all := c.ReadAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "City", all[0].Supplier)
}

func TestGetEntries_OrderedByReadingDateDesc(t *testing.T) {
	e, r, _, _ := setupEngine(t, true)
	ctx := context.Background()

	for _, d := range []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	} {
		_, err := r.Upsert(ctx, remote.Record{
			UtilityType: "gas", Supplier: "City", ReadingDate: d,
			Amount: decimal.RequireFromString("1"),
		})
		require.NoError(t, err)
	}

	got, err := e.GetEntries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].ReadingDate.After(got[1].ReadingDate))
	assert.True(t, got[1].ReadingDate.After(got[2].ReadingDate))
}

func TestGetEntries_RemoteErrorServesCache(t *testing.T) {
	e, r, c, _ := setupEngine(t, true)
	ctx := context.Background()

	require.NoError(t, c.Upsert(ctx, models.Entry{ID: "cached", Supplier: "Kept"}))
	r.failList = true

	got, err := e.GetEntries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cached", got[0].ID)
}

func TestDeleteEntry_LocalPlaceholderNeverCallsRemote(t *testing.T) {
	e, r, c, o := setupEngine(t, false)
	ctx := context.Background()

	saved, err := e.SaveEntry(ctx, newEntry("Acme"))
	require.NoError(t, err)

	o.online = true
	require.NoError(t, e.DeleteEntry(ctx, saved.ID))

	assert.Zero(t, r.deleteCalls)
	assert.Empty(t, c.ReadAll(ctx))
	assert.Empty(t, c.ReadUnsynced(ctx))
}

func TestDeleteEntry_RemoteErrorAbortsWithLocalStateUntouched(t *testing.T) {
	e, r, c, _ := setupEngine(t, true)
	ctx := context.Background()

	saved, err := e.SaveEntry(ctx, newEntry("Acme"))
	require.NoError(t, err)

	r.failDelete = true
	err = e.DeleteEntry(ctx, saved.ID)
	require.Error(t, err)

	// not shown a false success: the cached copy survives
	require.Len(t, c.ReadAll(ctx), 1)
}

func TestDeleteEntry_OnlineRemovesEverywhere(t *testing.T) {
	e, r, c, _ := setupEngine(t, true)
	ctx := context.Background()

	saved, err := e.SaveEntry(ctx, newEntry("Acme"))
	require.NoError(t, err)

	require.NoError(t, e.DeleteEntry(ctx, saved.ID))
	assert.Equal(t, 1, r.deleteCalls)
	assert.NotContains(t, r.records, saved.ID)
	assert.Empty(t, c.ReadAll(ctx))
}

func TestDeleteAllEntries_OfflineClearsBothWithoutRemoteCall(t *testing.T) {
	e, r, c, _ := setupEngine(t, false)
	ctx := context.Background()

	_, err := e.SaveEntry(ctx, newEntry("Acme"))
	require.NoError(t, err)
	_, err = e.SaveEntry(ctx, newEntry("City"))
	require.NoError(t, err)

	require.NoError(t, e.DeleteAllEntries(ctx))
	assert.Zero(t, r.deleteAllCalls)
	assert.Empty(t, c.ReadAll(ctx))
	assert.Empty(t, c.ReadUnsynced(ctx))
}

func TestDeleteAllEntries_RemoteErrorAborts(t *testing.T) {
	e, r, c, _ := setupEngine(t, true)
	ctx := context.Background()

	_, err := e.SaveEntry(ctx, newEntry("Acme"))
	require.NoError(t, err)

	r.failDeleteAll = true
	require.Error(t, e.DeleteAllEntries(ctx))
	require.Len(t, c.ReadAll(ctx), 1)
}

func TestSyncUnsynced_OfflineIsNoop(t *testing.T) {
	e, r, _, _ := setupEngine(t, false)
	ctx := context.Background()

	_, err := e.SaveEntry(ctx, newEntry("Acme"))
	require.NoError(t, err)

	n, err := e.SyncUnsynced(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, r.upsertCalls)
}

func TestSyncUnsynced_EmptySetIsNoop(t *testing.T) {
	e, r, _, _ := setupEngine(t, true)

	n, err := e.SyncUnsynced(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, r.upsertCalls)
}

func TestSyncUnsynced_DrainsAndAssignsServerIDs(t *testing.T) {
	e, r, c, o := setupEngine(t, false)
	ctx := context.Background()

	saved, err := e.SaveEntry(ctx, newEntry("Acme"))
	require.NoError(t, err)
	localID := saved.ID

	o.online = true
	n, err := e.SyncUnsynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Empty(t, c.ReadUnsynced(ctx))

	all := c.ReadAll(ctx)
	require.Len(t, all, 1)
	assert.NotEqual(t, localID, all[0].ID)
	assert.False(t, models.IsLocalID(all[0].ID))
	assert.True(t, all[0].Synced)
	require.Contains(t, r.records, all[0].ID)
}

func TestSyncUnsynced_PartialFailureKeepsFailuresPending(t *testing.T) {
	e, r, c, o := setupEngine(t, false)
	ctx := context.Background()

	for _, supplier := range []string{"A", "B", "C"} {
		_, err := e.SaveEntry(ctx, newEntry(supplier))
		require.NoError(t, err)
	}

	r.failSuppliers["B"] = true
	o.online = true

	n, err := e.SyncUnsynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pending := c.ReadUnsynced(ctx)
	require.Len(t, pending, 1)
	assert.Equal(t, "B", pending[0].Supplier)
	assert.True(t, models.IsLocalID(pending[0].ID))

	// a later drain finishes the job
	delete(r.failSuppliers, "B")
	n, err = e.SyncUnsynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, c.ReadUnsynced(ctx))
}

func TestScenario_OfflineElectricitySave(t *testing.T) {
	e, _, c, _ := setupEngine(t, false)
	ctx := context.Background()

	in := models.Entry{
		Type:        models.UtilityElectricity,
		Supplier:    "Acme",
		ReadingDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("42.50"),
	}

	saved, err := e.SaveEntry(ctx, in)
	require.NoError(t, err)
	assert.True(t, models.IsLocalID(saved.ID))
	assert.False(t, saved.Synced)
	require.Len(t, c.ReadAll(ctx), 1)
	require.Len(t, c.ReadUnsynced(ctx), 1)
}
