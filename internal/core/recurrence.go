package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

// WeekdaySet is a set of weekdays stored as a bit mask.
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

func (s WeekdaySet) With(d time.Weekday) WeekdaySet {
	return s | 1<<uint(d%7)
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d%7)) != 0
}

func (s WeekdaySet) Empty() bool { return s == 0 }

// Days lists the members Sunday first.
func (s WeekdaySet) Days() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// Labels returns the Chinese weekday characters of the members, Sunday first.
func (s WeekdaySet) Labels() []string {
	days := s.Days()
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, string(weekdayLabels[int(d)]))
	}
	return out
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
	"日": time.Sunday, "一": time.Monday, "二": time.Tuesday, "三": time.Wednesday,
	"四": time.Thursday, "五": time.Friday, "六": time.Saturday,
}

// ParseWeekday accepts English names or abbreviations and the Chinese
// weekday characters.
func ParseWeekday(s string) (time.Weekday, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimPrefix(strings.TrimPrefix(key, "週"), "星期")
	if len(key) > 3 && key[0] < utf8.RuneSelf {
		key = key[:3]
	}
	d, ok := weekdayNames[key]
	return d, ok
}

// RecurrenceRule repeats an entry every week on the chosen weekdays within
// the inclusive range [Start, End].
type RecurrenceRule struct {
	Weekdays WeekdaySet
	Start    time.Time
	End      time.Time
}

// Dates lists the matching days in ascending order. A rule whose start is
// after its end matches nothing.
func (r RecurrenceRule) Dates() []time.Time {
	start := truncateDay(r.Start)
	end := truncateDay(r.End)
	if start.After(end) || r.Weekdays.Empty() {
		return nil
	}
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if r.Weekdays.Has(d.Weekday()) {
			out = append(out, d)
		}
	}
	return out
}

// Expand pairs payload with every date of the rule.
func Expand(rule RecurrenceRule, payload RentEntry) []DatedEntry {
	dates := rule.Dates()
	out := make([]DatedEntry, 0, len(dates))
	for _, d := range dates {
		out = append(out, DatedEntry{Date: FormatDay(d), Entry: payload})
	}
	return out
}

// ApplyRecurrence appends the expansion of rule to the ledger and returns
// the number of entries added. Existing entries are kept.
func (l Ledger) ApplyRecurrence(rule RecurrenceRule, payload RentEntry) int {
	expanded := Expand(rule, payload)
	for _, de := range expanded {
		l.Append(de.Date, de.Entry)
	}
	return len(expanded)
}

// ShiftMonth copies every day of year/month one calendar month forward,
// replacing whatever the destination day held. Days are processed in
// ascending order, so when several source days clamp onto the same
// destination (Jan 29-31 -> Feb 28) the latest one wins. It returns the
// number of source days copied.
func (l Ledger) ShiftMonth(year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, ErrInvalidPeriod
	}
	sources := l.DatesIn(year, month)
	copies := make([]DatedEntries, 0, len(sources))
	for _, date := range sources {
		t, _ := ParseDay(date)
		copies = append(copies, DatedEntries{Date: FormatDay(AddMonthClamped(t)), Entries: l.EntriesOn(date)})
	}
	for _, c := range copies {
		l.SetEntries(c.Date, c.Entries)
	}
	return len(copies), nil
}

// DatedEntries is a whole day of a ledger.
type DatedEntries struct {
	Date    string
	Entries []RentEntry
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
