package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talgya/device-tycoon/internal/engine"
)

// Postgres stores save slots in a shared PostgreSQL database.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ SlotStore = (*Postgres)(nil)

// Connect opens a pool and checks it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// OpenPostgres connects and creates the schema if needed.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	pg := &Postgres{pool: pool}
	if err := pg.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return pg, nil
}

func (pg *Postgres) migrate(ctx context.Context) error {
	_, err := pg.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS save_slots (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			version INTEGER NOT NULL,
			day INTEGER NOT NULL,
			cash BIGINT NOT NULL,
			snapshot JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_save_slots_updated ON save_slots(updated_at DESC);
	`)
	return err
}

// Close releases the pool.
func (pg *Postgres) Close() error {
	pg.pool.Close()
	return nil
}

// Save writes the slot in one serializable transaction.
func (pg *Postgres) Save(ctx context.Context, slot Slot) (SlotInfo, error) {
	slot, data, err := prepare(slot)
	if err != nil {
		return SlotInfo{}, err
	}

	tx, err := pg.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return SlotInfo{}, err
	}
	defer tx.Rollback(ctx)

	var info SlotInfo
	if err := tx.QueryRow(ctx, `
		INSERT INTO save_slots (id, name, version, day, cash, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			version = EXCLUDED.version,
			day = EXCLUDED.day,
			cash = EXCLUDED.cash,
			snapshot = EXCLUDED.snapshot,
			updated_at = now()
		RETURNING id, name, version, day, cash, created_at, updated_at
	`, slot.ID, slot.Name, slot.Snapshot.Version, slot.Snapshot.CurrentDay, slot.Snapshot.GameState.Cash, string(data)).
		Scan(&info.ID, &info.Name, &info.Version, &info.Day, &info.Cash, &info.CreatedAt, &info.UpdatedAt); err != nil {
		return SlotInfo{}, fmt.Errorf("save slot %s: %w", slot.ID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return SlotInfo{}, err
	}

	slog.Info("slot saved", "id", slot.ID, "day", slot.Snapshot.CurrentDay, "backend", "postgres")
	return info, nil
}

// Load reads and decodes a slot.
func (pg *Postgres) Load(ctx context.Context, id string) (engine.Snapshot, error) {
	var data []byte
	err := pg.pool.QueryRow(ctx, `SELECT snapshot FROM save_slots WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return engine.Snapshot{}, fmt.Errorf("%w: %s", ErrSaveNotFound, id)
	}
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("load slot %s: %w", id, err)
	}
	return engine.DecodeSnapshot(data)
}

// List returns slot summaries, most recently saved first.
func (pg *Postgres) List(ctx context.Context) ([]SlotInfo, error) {
	rows, err := pg.pool.Query(ctx, `
		SELECT id, name, version, day, cash, created_at, updated_at
		FROM save_slots
		ORDER BY updated_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	out := []SlotInfo{}
	for rows.Next() {
		var info SlotInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.Version, &info.Day, &info.Cash, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Rename changes a slot's display name.
func (pg *Postgres) Rename(ctx context.Context, id, name string) error {
	tag, err := pg.pool.Exec(ctx, `UPDATE save_slots SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return fmt.Errorf("rename slot %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrSaveNotFound, id)
	}
	return nil
}

// Delete removes a slot.
func (pg *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := pg.pool.Exec(ctx, `DELETE FROM save_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrSaveNotFound, id)
	}
	return nil
}
