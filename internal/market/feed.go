// Package market holds the player-facing market news feed and the noise
// field that drives competitor sentiment.
package market

import (
	"github.com/google/uuid"
)

// EventType classifies a feed entry.
type EventType string

const (
	TypeRelease     EventType = "release"
	TypePriceChange EventType = "price-change"
	TypeMarketShift EventType = "market-shift"
	TypeEraEvent    EventType = "era-event"
)

// MaxFeed is how many entries are retained.
const MaxFeed = 100

// Event is one notification shown in the market feed.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Day         int       `json:"day"`
	Impact      string    `json:"impact,omitempty"`
}

// NewEventID returns a unique feed id.
func NewEventID() string {
	return "event-" + uuid.NewString()
}

// Feed keeps the most recent events, newest first.
type Feed struct {
	entries []Event
}

// NewFeed restores a feed from saved entries (newest first), trimming to MaxFeed.
func NewFeed(entries []Event) *Feed {
	f := &Feed{entries: make([]Event, 0, min(len(entries), MaxFeed))}
	if len(entries) > MaxFeed {
		entries = entries[:MaxFeed]
	}
	f.entries = append(f.entries, entries...)
	return f
}

// Push prepends e, assigning an id if it has none. The oldest entry past
// MaxFeed is evicted. Returns the stored event.
func (f *Feed) Push(e Event) Event {
	if e.ID == "" {
		e.ID = NewEventID()
	}
	f.entries = append(f.entries, Event{})
	copy(f.entries[1:], f.entries)
	f.entries[0] = e
	if len(f.entries) > MaxFeed {
		f.entries = f.entries[:MaxFeed]
	}
	return e
}

// Entries returns a copy, newest first.
func (f *Feed) Entries() []Event {
	out := make([]Event, len(f.entries))
	copy(out, f.entries)
	return out
}

// Recent returns up to n newest entries.
func (f *Feed) Recent(n int) []Event {
	if n <= 0 || n > len(f.entries) {
		n = len(f.entries)
	}
	out := make([]Event, n)
	copy(out, f.entries[:n])
	return out
}

// Len returns the number of retained entries.
func (f *Feed) Len() int {
	return len(f.entries)
}
