package core

import (
	"fmt"
	"sort"
	"time"
)

// Ledger maps an ISO date to the entries recorded on that day. Order within
// a day is kept as entered.
type Ledger map[string][]RentEntry

// EntriesOn returns a copy of the entries for date.
func (l Ledger) EntriesOn(date string) []RentEntry {
	entries := l[date]
	out := make([]RentEntry, len(entries))
	copy(out, entries)
	return out
}

// SetEntries replaces every entry of date. An empty list removes the day.
func (l Ledger) SetEntries(date string, entries []RentEntry) {
	if len(entries) == 0 {
		delete(l, date)
		return
	}
	day := make([]RentEntry, len(entries))
	copy(day, entries)
	l[date] = day
}

// Append adds entries after the existing ones for date.
func (l Ledger) Append(date string, entries ...RentEntry) {
	if len(entries) == 0 {
		return
	}
	l[date] = append(l[date], entries...)
}

// RemoveAt deletes the entry at index on date.
func (l Ledger) RemoveAt(date string, index int) error {
	entries := l[date]
	if index < 0 || index >= len(entries) {
		return fmt.Errorf("%w: %s #%d", ErrEntryNotFound, date, index)
	}
	rest := make([]RentEntry, 0, len(entries)-1)
	rest = append(rest, entries[:index]...)
	rest = append(rest, entries[index+1:]...)
	l.SetEntries(date, rest)
	return nil
}

// Clone returns a deep copy.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for date, entries := range l {
		day := make([]RentEntry, len(entries))
		copy(day, entries)
		out[date] = day
	}
	return out
}

// Dates returns the keys in chronological order. Keys that are not valid
// dates sort after all valid ones.
func (l Ledger) Dates() []string {
	dates := make([]string, 0, len(l))
	for d := range l {
		dates = append(dates, d)
	}
	sortDates(dates)
	return dates
}

// DatesIn returns the chronologically sorted keys that fall in year/month.
func (l Ledger) DatesIn(year, month int) []string {
	var out []string
	for _, d := range l.Dates() {
		t, err := ParseDay(d)
		if err != nil {
			continue
		}
		if t.Year() == year && int(t.Month()) == month {
			out = append(out, d)
		}
	}
	return out
}

// Merge returns a new ledger whose days hold main's entries followed by
// fixed's. Neither input is modified.
func Merge(main, fixed Ledger) Ledger {
	out := make(Ledger, len(main)+len(fixed))
	for date, entries := range main {
		day := make([]RentEntry, 0, len(entries)+len(fixed[date]))
		day = append(day, entries...)
		out[date] = day
	}
	for date, entries := range fixed {
		out[date] = append(out[date], entries...)
	}
	return out
}

// SplitColumns splits a day's entries for the two-column day view: the
// first half goes left, the remainder right.
func SplitColumns(entries []RentEntry) (left, right []RentEntry) {
	half := len(entries) / 2
	return entries[:half:half], entries[half:]
}

func sortDates(dates []string) {
	parsed := make(map[string]time.Time, len(dates))
	for _, d := range dates {
		if t, err := ParseDay(d); err == nil {
			parsed[d] = t
		}
	}
	sort.SliceStable(dates, func(i, j int) bool {
		ti, okI := parsed[dates[i]]
		tj, okJ := parsed[dates[j]]
		switch {
		case okI && okJ:
			if ti.Equal(tj) {
				return dates[i] < dates[j]
			}
			return ti.Before(tj)
		case okI != okJ:
			return okI
		default:
			return dates[i] < dates[j]
		}
	})
}
