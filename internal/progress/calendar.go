package progress

import "time"

// The calendar buckets entries by calendar day in one explicit
// location, never by UTC boundary or a rolling 24-hour window. Callers
// pick the location (the viewer's zone); both the grid and the
// per-entry bucketing use the same one.

// DayCell is one day of the month grid with its entry count.
type DayCell struct {
	Day   int `json:"day"`
	Count int `json:"count"`
}

// MonthGrid is the 7-column calendar derivation for one month.
// LeadingBlanks is the weekday index (0=Sunday) of the month's first
// day; rendering pads that many empty cells before day 1.
type MonthGrid struct {
	Year          int        `json:"year"`
	Month         time.Month `json:"month"`
	LeadingBlanks int        `json:"leading_blanks"`
	Days          []DayCell  `json:"days"`
}

// BuildMonthGrid derives the grid for year/month from a flat entry
// list. Entries outside the month are ignored.
func BuildMonthGrid(entries []Entry, year int, month time.Month, loc *time.Location) MonthGrid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	// Day zero of the next month is the last day of this one.
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)

	grid := MonthGrid{
		Year:          year,
		Month:         month,
		LeadingBlanks: int(first.Weekday()),
		Days:          make([]DayCell, last.Day()),
	}
	for i := range grid.Days {
		grid.Days[i].Day = i + 1
	}

	for _, e := range entries {
		y, m, d := e.CreatedAt.In(loc).Date()
		if y == year && m == month {
			grid.Days[d-1].Count++
		}
	}
	return grid
}

// EntriesOn returns the entries bucketed to one calendar day,
// preserving the input order.
func EntriesOn(entries []Entry, year int, month time.Month, day int, loc *time.Location) []Entry {
	out := make([]Entry, 0, 8)
	for _, e := range entries {
		y, m, d := e.CreatedAt.In(loc).Date()
		if y == year && m == month && d == day {
			out = append(out, e)
		}
	}
	return out
}
