// Package calendar converts simulation day indices to proleptic Gregorian dates.
// Day 1 is 1970-01-01; the supported range ends on 5000-12-31.
package calendar

import (
	"errors"
	"fmt"
	"sort"
)

const (
	EpochYear = 1970
	MaxYear   = 5000
)

// ErrInvalidDay is returned when external input is not a valid day index.
var ErrInvalidDay = errors.New("day must be >= 1")

// DateParts is a calendar date derived from a day index.
type DateParts struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 1-12
	Day   int `json:"day"`   // 1-31
}

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

var monthAbbrev = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// yearStart[i] is the 1-based day index of January 1st of EpochYear+i.
// The extra trailing entry is the first day past MaxYear.
var yearStart = buildYearStarts()

func buildYearStarts() []int {
	starts := make([]int, 0, MaxYear-EpochYear+2)
	day := 1
	for y := EpochYear; y <= MaxYear+1; y++ {
		starts = append(starts, day)
		day += DaysInYear(y)
	}
	return starts
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	if year%400 == 0 {
		return true
	}
	if year%100 == 0 {
		return false
	}
	return year%4 == 0
}

// DaysInMonth returns the number of days in month (1-12) of year.
func DaysInMonth(year, month int) int {
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return monthDays[month-1]
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// MaxDay is the day index of 5000-12-31, the last representable date.
func MaxDay() int {
	return yearStart[len(yearStart)-1] - 1
}

// DayToDateParts converts a 1-based day index to a date. Days past MaxDay
// saturate to 5000-12-31. Panics if day < 1.
func DayToDateParts(day int) DateParts {
	if day < 1 {
		panic(fmt.Sprintf("calendar: day %d out of range: %v", day, ErrInvalidDay))
	}
	if day > MaxDay() {
		return DateParts{Year: MaxYear, Month: 12, Day: 31}
	}

	// Largest year whose start is <= day.
	i := sort.Search(len(yearStart), func(i int) bool { return yearStart[i] > day }) - 1
	year := EpochYear + i
	remaining := day - yearStart[i]

	month := 1
	for month < 12 {
		n := DaysInMonth(year, month)
		if remaining < n {
			break
		}
		remaining -= n
		month++
	}

	return DateParts{Year: year, Month: month, Day: remaining + 1}
}

// DayToYear returns only the calendar year of a day index.
func DayToYear(day int) int {
	return DayToDateParts(day).Year
}

// DayOf is the inverse of DayToDateParts for dates inside the supported range.
func DayOf(d DateParts) (int, error) {
	if d.Year < EpochYear || d.Year > MaxYear {
		return 0, fmt.Errorf("year %d outside %d-%d", d.Year, EpochYear, MaxYear)
	}
	if d.Month < 1 || d.Month > 12 {
		return 0, fmt.Errorf("month %d outside 1-12", d.Month)
	}
	if d.Day < 1 || d.Day > DaysInMonth(d.Year, d.Month) {
		return 0, fmt.Errorf("day %d outside 1-%d", d.Day, DaysInMonth(d.Year, d.Month))
	}

	day := yearStart[d.Year-EpochYear]
	for m := 1; m < d.Month; m++ {
		day += DaysInMonth(d.Year, m)
	}
	return day + d.Day - 1, nil
}

// ValidateDay checks a day index supplied from outside the process.
func ValidateDay(day int) error {
	if day < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidDay, day)
	}
	return nil
}

// Format renders a date as "Jan 2, 2006" with no zero padding on the day.
func Format(d DateParts) string {
	return fmt.Sprintf("%s %d, %d", monthAbbrev[d.Month-1], d.Day, d.Year)
}

// FormatISO renders a date as "YYYY-MM-DD".
func FormatISO(d DateParts) string {
	return fmt.Sprintf("%d-%02d-%02d", d.Year, d.Month, d.Day)
}

// FormatDay is Format applied to a day index.
func FormatDay(day int) string {
	return Format(DayToDateParts(day))
}

// String implements fmt.Stringer using the ISO layout.
func (d DateParts) String() string {
	return FormatISO(d)
}
