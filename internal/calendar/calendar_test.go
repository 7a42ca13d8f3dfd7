package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLeapYear(t *testing.T) {
	cases := map[int]bool{
		1970: false,
		1972: true,
		1973: false,
		1974: false,
		1900: false,
		2000: true,
		2023: false,
		2024: true,
		2100: false,
		2400: true,
	}
	for year, want := range cases {
		assert.Equal(t, want, IsLeapYear(year), "year %d", year)
	}
}

func TestDayToDateParts_Anchors(t *testing.T) {
	tests := []struct {
		day  int
		want DateParts
	}{
		{1, DateParts{1970, 1, 1}},
		{31, DateParts{1970, 1, 31}},
		{32, DateParts{1970, 2, 1}},
		{59, DateParts{1970, 2, 28}},
		{60, DateParts{1970, 3, 1}},
		{365, DateParts{1970, 12, 31}},
		{366, DateParts{1971, 1, 1}},
		{731, DateParts{1972, 1, 1}},
		{790, DateParts{1972, 2, 29}},
		{1462, DateParts{1974, 1, 1}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, DayToDateParts(tc.day), "day %d", tc.day)
	}
}

func TestDayToDateParts_SaturatesPastMaxYear(t *testing.T) {
	last := DateParts{MaxYear, 12, 31}
	assert.Equal(t, last, DayToDateParts(MaxDay()))
	assert.Equal(t, last, DayToDateParts(MaxDay()+1))
	assert.Equal(t, last, DayToDateParts(MaxDay()*2))
	assert.Equal(t, DateParts{MaxYear, 12, 30}, DayToDateParts(MaxDay()-1))
}

func TestDayToDateParts_PanicsBelowOne(t *testing.T) {
	assert.Panics(t, func() { DayToDateParts(0) })
	assert.Panics(t, func() { DayToDateParts(-5) })
}

// Walks every supported day one step at a time, the slow way, and checks the
// table lookup agrees on each one.
func TestDayToDateParts_MatchesSequentialWalk(t *testing.T) {
	y, m, d := EpochYear, 1, 1
	for day := 1; day <= MaxDay(); day++ {
		got := DayToDateParts(day)
		if got.Year != y || got.Month != m || got.Day != d {
			t.Fatalf("day %d: got %v want %d-%02d-%02d", day, got, y, m, d)
		}

		d++
		if d > DaysInMonth(y, m) {
			d = 1
			m++
			if m > 12 {
				m = 1
				y++
			}
		}
	}
	assert.Equal(t, MaxYear+1, y)
}

func TestDayOf_RoundTrip(t *testing.T) {
	for _, day := range []int{1, 59, 60, 366, 790, 1462, 11_000, 400_000, MaxDay()} {
		parts := DayToDateParts(day)
		back, err := DayOf(parts)
		require.NoError(t, err)
		assert.Equal(t, day, back)
	}
}

func TestDayOf_RejectsInvalidDates(t *testing.T) {
	bad := []DateParts{
		{1969, 12, 31},
		{5001, 1, 1},
		{1971, 2, 29},
		{1972, 13, 1},
		{1972, 4, 31},
		{1972, 1, 0},
	}
	for _, d := range bad {
		_, err := DayOf(d)
		assert.Error(t, err, "%v", d)
	}
}

func TestDayToYear(t *testing.T) {
	assert.Equal(t, 1970, DayToYear(365))
	assert.Equal(t, 1971, DayToYear(366))
}

func TestValidateDay(t *testing.T) {
	require.NoError(t, ValidateDay(1))
	assert.ErrorIs(t, ValidateDay(0), ErrInvalidDay)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "Jan 1, 1970", Format(DateParts{1970, 1, 1}))
	assert.Equal(t, "Dec 31, 5000", Format(DateParts{5000, 12, 31}))
	assert.Equal(t, "Feb 29, 1972", FormatDay(790))
}

func TestFormatISO(t *testing.T) {
	assert.Equal(t, "1970-01-01", FormatISO(DateParts{1970, 1, 1}))
	assert.Equal(t, "2024-11-09", FormatISO(DateParts{2024, 11, 9}))
	assert.Equal(t, "1974-01-01", DayToDateParts(1462).String())
}
