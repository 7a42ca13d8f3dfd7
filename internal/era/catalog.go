// Package era holds the date-keyed historical event catalog and the ledger
// that records which events a playthrough has already applied.
package era

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/talgya/device-tycoon/internal/calendar"
)

//go:embed events.yaml
var defaultEventsYAML []byte

// ErrInvalidCatalog wraps every catalog validation failure.
var ErrInvalidCatalog = errors.New("invalid era catalog")

// EffectType tags an EraEvent effect.
type EffectType string

const (
	EffectCash                  EffectType = "cash"
	EffectCompetitorMarketShare EffectType = "competitor-market-share"
	EffectSimulationParameter   EffectType = "simulation-parameter" // reserved, no-op
)

// Effect is an additive delta applied when an event triggers.
type Effect struct {
	Type   EffectType `yaml:"type" json:"type"`
	Value  float64    `yaml:"value" json:"value"`
	Target string     `yaml:"target,omitempty" json:"target,omitempty"` // competitor id; empty means all
}

// Event is a scripted historical occurrence. Month and Day are optional:
// a nil Month matches the whole year, a nil Day the whole month.
type Event struct {
	ID          string   `yaml:"id" json:"id"`
	Year        int      `yaml:"year" json:"year"`
	Month       *int     `yaml:"month,omitempty" json:"month,omitempty"`
	Day         *int     `yaml:"day,omitempty" json:"day,omitempty"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Impact      string   `yaml:"impact,omitempty" json:"impact,omitempty"`
	Effects     []Effect `yaml:"effects" json:"effects"`
}

// Matches reports whether the event triggers on the given date.
func (e Event) Matches(d calendar.DateParts) bool {
	if e.Year != d.Year {
		return false
	}
	if e.Month != nil && *e.Month != d.Month {
		return false
	}
	if e.Day != nil && *e.Day != d.Day {
		return false
	}
	return true
}

// When returns a short label of the event's trigger date, e.g. "1983-12" for a month-wide event.
func (e Event) When() string {
	switch {
	case e.Month == nil:
		return fmt.Sprintf("%d", e.Year)
	case e.Day == nil:
		return fmt.Sprintf("%d-%02d", e.Year, *e.Month)
	default:
		return fmt.Sprintf("%d-%02d-%02d", e.Year, *e.Month, *e.Day)
	}
}

func (e Event) sortKey() [3]int {
	k := [3]int{e.Year, 0, 0}
	if e.Month != nil {
		k[1] = *e.Month
	}
	if e.Day != nil {
		k[2] = *e.Day
	}
	return k
}

// Catalog is an immutable, chronologically ordered event list indexed by year.
type Catalog struct {
	events []Event
	byYear map[int][]int // year → indices into events, in catalog order
}

// NewCatalog validates events and orders them chronologically. Events with the
// same trigger date keep their declaration order.
func NewCatalog(events []Event) (*Catalog, error) {
	sorted := make([]Event, len(events))
	copy(sorted, events)

	seen := make(map[string]bool, len(sorted))
	for i, e := range sorted {
		if err := validateEvent(e); err != nil {
			return nil, fmt.Errorf("%w: event %d (%q): %v", ErrInvalidCatalog, i, e.ID, err)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("%w: duplicate event id %q", ErrInvalidCatalog, e.ID)
		}
		seen[e.ID] = true
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].sortKey(), sorted[j].sortKey()
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})

	c := &Catalog{events: sorted, byYear: make(map[int][]int)}
	for i, e := range sorted {
		c.byYear[e.Year] = append(c.byYear[e.Year], i)
	}
	return c, nil
}

func validateEvent(e Event) error {
	if e.ID == "" {
		return errors.New("missing id")
	}
	if e.Year < calendar.EpochYear || e.Year > calendar.MaxYear {
		return fmt.Errorf("year %d outside %d-%d", e.Year, calendar.EpochYear, calendar.MaxYear)
	}
	if e.Month != nil && (*e.Month < 1 || *e.Month > 12) {
		return fmt.Errorf("month %d outside 1-12", *e.Month)
	}
	if e.Day != nil {
		if e.Month == nil {
			return errors.New("day set without month")
		}
		if *e.Day < 1 || *e.Day > calendar.DaysInMonth(e.Year, *e.Month) {
			return fmt.Errorf("day %d does not exist in %d-%02d", *e.Day, e.Year, *e.Month)
		}
	}
	for _, eff := range e.Effects {
		switch eff.Type {
		case EffectCash, EffectCompetitorMarketShare, EffectSimulationParameter:
		default:
			return fmt.Errorf("unknown effect type %q", eff.Type)
		}
	}
	return nil
}

// ParseCatalog decodes a YAML event list and builds a Catalog from it.
func ParseCatalog(data []byte) (*Catalog, error) {
	var events []Event
	if err := yaml.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return NewCatalog(events)
}

// LoadCatalog reads a YAML catalog from disk.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read era catalog: %w", err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog returns the built-in 1971-2025 timeline.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultEventsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded era catalog: %v", err))
	}
	return c
}

// FindEventsForDate returns every event matching the date, in catalog order.
func (c *Catalog) FindEventsForDate(year, month, day int) []Event {
	d := calendar.DateParts{Year: year, Month: month, Day: day}
	var out []Event
	for _, i := range c.byYear[year] {
		if c.events[i].Matches(d) {
			out = append(out, c.events[i])
		}
	}
	return out
}

// EventsInYear returns all events declared for year, in catalog order.
func (c *Catalog) EventsInYear(year int) []Event {
	idx := c.byYear[year]
	out := make([]Event, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.events[i])
	}
	return out
}

// Events returns a copy of the full catalog.
func (c *Catalog) Events() []Event {
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Len returns the number of events.
func (c *Catalog) Len() int {
	return len(c.events)
}
