package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/device-tycoon/internal/engine"
)

// DB stores save slots in a SQLite file.
type DB struct {
	conn *sqlx.DB
	now  func() time.Time
}

var _ SlotStore = (*DB)(nil)

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS save_slots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		version INTEGER NOT NULL,
		day INTEGER NOT NULL,
		cash INTEGER NOT NULL,
		snapshot TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tycoon_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_save_slots_updated ON save_slots(updated_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// saveMeta stores a key-value pair inside tx.
func saveMeta(ctx context.Context, tx *sqlx.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO tycoon_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM tycoon_meta WHERE key = ?", key)
	return value, err
}

// Save writes the slot and records it as the last saved slot, in one transaction.
func (db *DB) Save(ctx context.Context, slot Slot) (SlotInfo, error) {
	slot, data, err := prepare(slot)
	if err != nil {
		return SlotInfo{}, err
	}
	now := db.now().UTC()

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return SlotInfo{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO save_slots
		(id, name, version, day, cash, snapshot, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			version = excluded.version,
			day = excluded.day,
			cash = excluded.cash,
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at`,
		slot.ID, slot.Name, slot.Snapshot.Version, slot.Snapshot.CurrentDay, slot.Snapshot.GameState.Cash,
		string(data), now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return SlotInfo{}, fmt.Errorf("save slot %s: %w", slot.ID, err)
	}
	if err := saveMeta(ctx, tx, "last_slot", slot.ID); err != nil {
		return SlotInfo{}, fmt.Errorf("save meta: %w", err)
	}

	var row slotRow
	if err := tx.GetContext(ctx, &row, "SELECT "+slotColumns+" FROM save_slots WHERE id = ?", slot.ID); err != nil {
		return SlotInfo{}, err
	}
	if err := tx.Commit(); err != nil {
		return SlotInfo{}, err
	}

	slog.Info("slot saved", "id", slot.ID, "day", slot.Snapshot.CurrentDay, "bytes", len(data))
	return row.info(), nil
}

// Load reads and decodes a slot.
func (db *DB) Load(ctx context.Context, id string) (engine.Snapshot, error) {
	var data string
	err := db.conn.GetContext(ctx, &data, "SELECT snapshot FROM save_slots WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Snapshot{}, fmt.Errorf("%w: %s", ErrSaveNotFound, id)
	}
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("load slot %s: %w", id, err)
	}
	return engine.DecodeSnapshot([]byte(data))
}

// List returns slot summaries, most recently saved first.
func (db *DB) List(ctx context.Context) ([]SlotInfo, error) {
	var rows []slotRow
	if err := db.conn.SelectContext(ctx, &rows,
		"SELECT "+slotColumns+" FROM save_slots ORDER BY updated_at DESC, id",
	); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	out := make([]SlotInfo, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.info())
	}
	return out, nil
}

// Rename changes a slot's display name.
func (db *DB) Rename(ctx context.Context, id, name string) error {
	res, err := db.conn.ExecContext(ctx, "UPDATE save_slots SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return fmt.Errorf("rename slot %s: %w", id, err)
	}
	return expectOne(res, id)
}

// Delete removes a slot.
func (db *DB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM save_slots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete slot %s: %w", id, err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSaveNotFound, id)
	}
	return nil
}

const slotColumns = "id, name, version, day, cash, created_at, updated_at"

type slotRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Version   int    `db:"version"`
	Day       int    `db:"day"`
	Cash      int64  `db:"cash"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

func (r slotRow) info() SlotInfo {
	return SlotInfo{
		ID:        r.ID,
		Name:      r.Name,
		Version:   r.Version,
		Day:       r.Day,
		Cash:      r.Cash,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, r.UpdatedAt).UTC(),
	}
}
