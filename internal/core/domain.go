package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Persisted document names. The JSON store appends ".json".
const (
	DocMainLedger     = "mainData"
	DocFixedLedger    = "fixedRentData"
	DocPersonBindings = "name_bindings"
	DocMarketBindings = "market_bindings"
)

// LedgerKind selects one of the two ledgers of a session.
type LedgerKind string

const (
	MainLedger  LedgerKind = "main"
	FixedLedger LedgerKind = "fixed"
)

// BindingKind selects one of the two binding tables of a session.
type BindingKind string

const (
	PersonBindings BindingKind = "people"
	MarketBindings BindingKind = "markets"
)

// Document returns the persisted document name of the ledger.
func (k LedgerKind) Document() (string, error) {
	switch k {
	case MainLedger:
		return DocMainLedger, nil
	case FixedLedger:
		return DocFixedLedger, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLedger, string(k))
}

// Document returns the persisted document name of the binding table.
func (k BindingKind) Document() (string, error) {
	switch k {
	case PersonBindings:
		return DocPersonBindings, nil
	case MarketBindings:
		return DocMarketBindings, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTable, string(k))
}

type (
	// RentEntry is one rental record. Rent stays as recorded text; it is
	// parsed only when a report needs the amount.
	RentEntry struct {
		Market string // market (stall) code
		Rent   string
		Owner  string // landlord code
		User   string // tenant code
		Note   string
	}

	// DatedEntry pairs an entry with the ISO date it belongs to.
	DatedEntry struct {
		Date  string
		Entry RentEntry
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyMarket   = errors.New("empty market code")
	ErrEmptyCode     = errors.New("empty code")
	ErrEmptyName     = errors.New("empty name")
	ErrEntryNotFound = errors.New("entry not found")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidPeriod = errors.New("invalid period")
	ErrUnknownLedger = errors.New("unknown ledger")
	ErrUnknownTable  = errors.New("unknown binding table")
)

// AmountError reports a rent that failed to parse on a row that a report
// could not skip.
type AmountError struct {
	Date  string
	Index int
	Value string
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("invalid amount %q on %s (entry %d)", e.Value, e.Date, e.Index+1)
}

func (e *AmountError) Unwrap() error { return ErrInvalidAmount }

// Complete reports whether market, rent, owner and user are all filled in.
// Incomplete entries are kept in the ledger but ignored by reports.
func (e RentEntry) Complete() bool {
	return strings.TrimSpace(e.Market) != "" &&
		strings.TrimSpace(e.Rent) != "" &&
		strings.TrimSpace(e.Owner) != "" &&
		strings.TrimSpace(e.User) != ""
}

// Validate checks the fields required before an entry is used as a
// recurring payload.
func (e RentEntry) Validate() error {
	if strings.TrimSpace(e.Market) == "" {
		return ErrEmptyMarket
	}
	if _, err := ParseRent(e.Rent); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the entry as [market, rent, owner, user, note].
func (e RentEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([5]string{e.Market, e.Rent, e.Owner, e.User, e.Note})
}

// UnmarshalJSON accepts short arrays and non-string scalars, which older
// documents contain.
func (e *RentEntry) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("rent entry: %w", err)
	}
	fields := [5]string{}
	for i := 0; i < len(raw) && i < len(fields); i++ {
		switch v := raw[i].(type) {
		case nil:
		case string:
			fields[i] = v
		default:
			fields[i] = fmt.Sprint(v)
		}
	}
	*e = RentEntry{Market: fields[0], Rent: fields[1], Owner: fields[2], User: fields[3], Note: fields[4]}
	return nil
}

// DayLayout is the ISO layout used for ledger keys.
const DayLayout = "2006-01-02"

// ParseDay parses a ledger key.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDay renders t as a ledger key.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// AddMonthClamped moves t forward one calendar month. Days that do not
// exist in the destination month clamp to its last day (Jan 31 -> Feb 28/29).
func AddMonthClamped(t time.Time) time.Time {
	y, m, d := t.Date()
	last := daysIn(y, m+1)
	if d > last {
		d = last
	}
	return time.Date(y, m+1, d, 0, 0, 0, 0, time.UTC)
}

// MonthBounds returns the first and last day of a month.
func MonthBounds(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

var weekdayLabels = []rune("日一二三四五六")

// WeekdayLabel returns the single-character Chinese weekday, Sunday first.
func WeekdayLabel(t time.Time) string {
	return string(weekdayLabels[int(t.Weekday())%7])
}
