package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/device-tycoon/internal/engine"
	"github.com/talgya/device-tycoon/internal/game"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "tycoon.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	db.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return db
}

func playedGame(t *testing.T) *engine.Simulation {
	t.Helper()
	sim := engine.NewGame(engine.Options{Difficulty: game.DifficultyNormal, Seed: 4})
	_, err := sim.BuildStore("Germany")
	require.NoError(t, err)
	for i := 0; i < 40; i++ {
		sim.Advance()
	}
	return sim
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	sim := playedGame(t)
	snap := sim.Snapshot()

	info, err := db.Save(ctx, Slot{ID: "s1", Name: "First", Snapshot: snap})
	require.NoError(t, err)
	assert.Equal(t, "First", info.Name)
	assert.Equal(t, 41, info.Day)
	assert.Equal(t, snap.GameState.Cash, info.Cash)
	assert.Equal(t, engine.SnapshotVersion, info.Version)

	loaded, err := db.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)

	last, err := db.GetMeta("last_slot")
	require.NoError(t, err)
	assert.Equal(t, "s1", last)
}

func TestSave_Overwrites(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	sim := playedGame(t)

	first, err := db.Save(ctx, Slot{ID: AutosaveSlot, Snapshot: sim.Snapshot()})
	require.NoError(t, err)
	assert.Equal(t, AutosaveSlot, first.Name)

	sim.Advance()
	second, err := db.Save(ctx, Slot{ID: AutosaveSlot, Snapshot: sim.Snapshot()})
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	loaded, err := db.Load(ctx, AutosaveSlot)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.CurrentDay)

	slots, err := db.List(ctx)
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestLoad_Missing(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSaveNotFound)
}

func TestList_MostRecentFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	snap := playedGame(t).Snapshot()

	for _, id := range []string{"a", "b", "c"} {
		_, err := db.Save(ctx, Slot{ID: id, Snapshot: snap})
		require.NoError(t, err)
	}
	_, err := db.Save(ctx, Slot{ID: "a", Name: "again", Snapshot: snap})
	require.NoError(t, err)

	slots, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, []string{"a", "c", "b"}, []string{slots[0].ID, slots[1].ID, slots[2].ID})
	assert.Equal(t, "again", slots[0].Name)
}

func TestRenameDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.Save(ctx, Slot{ID: "x", Snapshot: playedGame(t).Snapshot()})
	require.NoError(t, err)

	require.NoError(t, db.Rename(ctx, "x", "Renamed"))
	slots, err := db.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", slots[0].Name)

	assert.ErrorIs(t, db.Rename(ctx, "missing", "n"), ErrSaveNotFound)

	require.NoError(t, db.Delete(ctx, "x"))
	assert.ErrorIs(t, db.Delete(ctx, "x"), ErrSaveNotFound)
	_, err = db.Load(ctx, "x")
	assert.ErrorIs(t, err, ErrSaveNotFound)
}

func TestSave_RequiresID(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Save(context.Background(), Slot{ID: " "})
	assert.ErrorIs(t, err, ErrEmptySlotID)
}

func TestLoad_VersionOneRow(t *testing.T) {
	db := openTestDB(t)
	_, err := db.conn.Exec(`INSERT INTO save_slots
		(id, name, version, day, cash, snapshot, created_at, updated_at)
		VALUES ('legacy', 'Legacy', 1, 1, 7000, ?, 1, 1)`,
		`{"version":1,"game_state":{"cash":7000,"difficulty":"normal"},"released_products":[]}`)
	require.NoError(t, err)

	snap, err := db.Load(context.Background(), "legacy")
	require.NoError(t, err)
	assert.Empty(t, snap.StoreNetwork.Stores)
	assert.Empty(t, snap.TriggeredEvents)
	assert.Equal(t, 1, snap.CurrentDay)

	sim := engine.Load(snap, engine.Options{Seed: 1})
	assert.Equal(t, int64(7000), sim.Cash())
	assert.Len(t, sim.Competitors(), 6)
}

func TestOpenStore(t *testing.T) {
	store, err := OpenStore(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = OpenStore(context.Background(), "mongo", "")
	assert.Error(t, err)
}
