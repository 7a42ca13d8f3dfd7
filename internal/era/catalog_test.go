package era

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/device-tycoon/internal/calendar"
)

func intp(v int) *int { return &v }

func mixedCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]Event{
		{ID: "day-specific", Year: 1990, Month: intp(4), Day: intp(21), Title: "A"},
		{ID: "year-wide", Year: 1990, Title: "B"},
		{ID: "month-wide", Year: 1990, Month: intp(4), Title: "C"},
		{ID: "other-month", Year: 1990, Month: intp(5), Title: "D"},
		{ID: "other-year", Year: 1991, Month: intp(4), Day: intp(21), Title: "E"},
		{ID: "same-day-second", Year: 1990, Month: intp(4), Day: intp(21), Title: "F"},
	})
	require.NoError(t, err)
	return c
}

func ids(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestFindEventsForDate_PartialSpecificity(t *testing.T) {
	c := mixedCatalog(t)

	assert.Equal(t,
		[]string{"year-wide", "month-wide", "day-specific", "same-day-second"},
		ids(c.FindEventsForDate(1990, 4, 21)))
	assert.Equal(t, []string{"year-wide", "month-wide"}, ids(c.FindEventsForDate(1990, 4, 22)))
	assert.Equal(t, []string{"year-wide", "other-month"}, ids(c.FindEventsForDate(1990, 5, 1)))
	assert.Equal(t, []string{"year-wide"}, ids(c.FindEventsForDate(1990, 12, 31)))
	assert.Equal(t, []string{"other-year"}, ids(c.FindEventsForDate(1991, 4, 21)))
	assert.Empty(t, c.FindEventsForDate(1992, 4, 21))
}

// Every returned event satisfies the match rule, and nothing matching is left out.
func TestFindEventsForDate_AgreesWithMatchesAcrossYear(t *testing.T) {
	c := mixedCatalog(t)
	start, err := calendar.DayOf(calendar.DateParts{Year: 1990, Month: 1, Day: 1})
	require.NoError(t, err)

	for day := start; day < start+calendar.DaysInYear(1990); day++ {
		d := calendar.DayToDateParts(day)
		got := c.FindEventsForDate(d.Year, d.Month, d.Day)

		var want []Event
		for _, e := range c.Events() {
			if e.Matches(d) {
				want = append(want, e)
			}
		}
		assert.Equal(t, ids(want), ids(got), "date %v", d)
	}
}

func TestNewCatalog_SortsChronologicallyWithStableTies(t *testing.T) {
	c, err := NewCatalog([]Event{
		{ID: "late", Year: 2001, Month: intp(3), Day: intp(10)},
		{ID: "early", Year: 1971, Month: intp(11), Day: intp(15)},
		{ID: "tie-1", Year: 1980, Month: intp(1), Day: intp(1)},
		{ID: "tie-2", Year: 1980, Month: intp(1), Day: intp(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "tie-1", "tie-2", "late"}, ids(c.Events()))
}

func TestNewCatalog_RejectsBadEvents(t *testing.T) {
	tests := []struct {
		name  string
		event Event
	}{
		{"missing id", Event{Year: 1980}},
		{"year too early", Event{ID: "x", Year: 1969}},
		{"year too late", Event{ID: "x", Year: 5001}},
		{"bad month", Event{ID: "x", Year: 1980, Month: intp(13)}},
		{"day without month", Event{ID: "x", Year: 1980, Day: intp(3)}},
		{"nonexistent day", Event{ID: "x", Year: 1981, Month: intp(2), Day: intp(29)}},
		{"unknown effect", Event{ID: "x", Year: 1980, Effects: []Effect{{Type: "weather", Value: 1}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCatalog([]Event{tc.event})
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestNewCatalog_RejectsDuplicateIDs(t *testing.T) {
	_, err := NewCatalog([]Event{
		{ID: "dup", Year: 1980},
		{ID: "dup", Year: 1981},
	})
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	require.Equal(t, 23, c.Len())

	first := c.Events()[0]
	assert.Equal(t, "era-1971-microprocessor", first.ID)
	assert.Equal(t, []Effect{{Type: EffectCash, Value: 5000}}, first.Effects)

	found := c.FindEventsForDate(1975, 1, 1)
	require.Len(t, found, 1)
	assert.Equal(t, "era-1975-personal-computing", found[0].ID)
	assert.Equal(t, []Effect{
		{Type: EffectCash, Value: 12000},
		{Type: EffectCompetitorMarketShare, Value: -1.5},
	}, found[0].Effects)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- id: custom-launch
  year: 1999
  title: Custom
  description: Year-long boom.
  effects:
    - type: cash
      value: 250
`), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	events := c.FindEventsForDate(1999, 7, 4)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Month)
	assert.Equal(t, "1999", events[0].When())
}

func TestParseCatalog_Malformed(t *testing.T) {
	_, err := ParseCatalog([]byte("{not: [a list"))
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestLedger(t *testing.T) {
	l := NewLedger("a", "b", "a")
	assert.Equal(t, 2, l.Len())
	assert.True(t, l.Has("a"))
	assert.False(t, l.Has("c"))

	assert.True(t, l.Mark("c"))
	assert.False(t, l.Mark("c"))
	assert.Equal(t, []string{"a", "b", "c"}, l.IDs())
}
