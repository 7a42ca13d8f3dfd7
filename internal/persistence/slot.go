// Package persistence stores save slots. Each slot holds one whole snapshot
// written in a single transaction, so a load always gets a matching clock
// and event ledger.
package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/device-tycoon/internal/engine"
)

// AutosaveSlot is the slot id the scheduler writes to on autosave.
const AutosaveSlot = "autosave"

var (
	ErrSaveNotFound = errors.New("save not found")
	ErrEmptySlotID  = errors.New("slot id is required")
)

// Slot is a named snapshot.
type Slot struct {
	ID       string
	Name     string
	Snapshot engine.Snapshot
}

// SlotInfo describes a slot without its snapshot.
type SlotInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	Day       int       `json:"day"`
	Cash      int64     `json:"cash"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SlotStore persists save slots.
type SlotStore interface {
	// Save creates or replaces a slot.
	Save(ctx context.Context, slot Slot) (SlotInfo, error)
	// Load returns the snapshot in a slot, or ErrSaveNotFound.
	Load(ctx context.Context, id string) (engine.Snapshot, error)
	// List returns all slots, most recently saved first.
	List(ctx context.Context) ([]SlotInfo, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewSlotID returns a fresh slot id.
func NewSlotID() string {
	return uuid.NewString()
}

func prepare(slot Slot) (Slot, []byte, error) {
	if strings.TrimSpace(slot.ID) == "" {
		return slot, nil, ErrEmptySlotID
	}
	if slot.Name == "" {
		slot.Name = slot.ID
	}
	data, err := slot.Snapshot.Encode()
	if err != nil {
		return slot, nil, err
	}
	return slot, data, nil
}
