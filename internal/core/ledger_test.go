package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func entry(market, rent, owner, user string) RentEntry {
	return RentEntry{Market: market, Rent: rent, Owner: owner, User: user}
}

func TestLedgerRemoveAt(t *testing.T) {
	l := Ledger{"2024-05-10": {entry("S01", "1", "A", "B"), entry("S02", "2", "A", "B")}}

	if err := l.RemoveAt("2024-05-10", 5); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
	if err := l.RemoveAt("2024-05-10", 0); err != nil {
		t.Fatal(err)
	}
	if got := l["2024-05-10"]; len(got) != 1 || got[0].Market != "S02" {
		t.Fatalf("unexpected day %+v", got)
	}
	if err := l.RemoveAt("2024-05-10", 0); err != nil {
		t.Fatal(err)
	}
	if _, ok := l["2024-05-10"]; ok {
		t.Fatal("empty day should be removed")
	}
}

func TestLedgerDatesOrder(t *testing.T) {
	l := Ledger{
		"2024-10-01": nil,
		"2024-02-03": nil,
		"garbage":    nil,
		"2023-12-31": nil,
	}
	want := []string{"2023-12-31", "2024-02-03", "2024-10-01", "garbage"}
	if got := l.Dates(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got := l.DatesIn(2024, 2); !reflect.DeepEqual(got, []string{"2024-02-03"}) {
		t.Fatalf("DatesIn: got %v", got)
	}
}

func TestMergeDoesNotMutate(t *testing.T) {
	main := Ledger{"2024-05-10": {entry("S01", "100", "A", "B")}}
	fixed := Ledger{
		"2024-05-10": {entry("F01", "50", "A", "B")},
		"2024-05-11": {entry("F02", "60", "A", "B")},
	}
	merged := Merge(main, fixed)

	if len(main["2024-05-10"]) != 1 || len(fixed["2024-05-10"]) != 1 {
		t.Fatal("inputs were modified")
	}
	day := merged["2024-05-10"]
	if len(day) != 2 || day[0].Market != "S01" || day[1].Market != "F01" {
		t.Fatalf("unexpected merged day %+v", day)
	}
	if len(merged["2024-05-11"]) != 1 {
		t.Fatalf("fixed-only day missing: %+v", merged)
	}

	merged["2024-05-10"][0].Rent = "999"
	if main["2024-05-10"][0].Rent != "100" {
		t.Fatal("merged ledger shares storage with main")
	}
}

func TestSplitColumns(t *testing.T) {
	day := []RentEntry{entry("1", "1", "", ""), entry("2", "1", "", ""), entry("3", "1", "", "")}
	left, right := SplitColumns(day)
	if len(left) != 1 || len(right) != 2 || right[0].Market != "2" {
		t.Fatalf("unexpected split %v / %v", left, right)
	}
	left, right = SplitColumns(nil)
	if len(left) != 0 || len(right) != 0 {
		t.Fatal("empty split should be empty")
	}
}

func TestWeekdaySetDays(t *testing.T) {
	s := NewWeekdaySet(time.Saturday, time.Monday, time.Monday, time.Sunday)
	days := s.Days()
	if len(days) != 3 || days[0] != time.Sunday || days[1] != time.Monday || days[2] != time.Saturday {
		t.Fatalf("Days() = %v", days)
	}
	if got := strings.Join(s.Labels(), ""); got != "日一六" {
		t.Errorf("Labels() = %q, want 日一六", got)
	}
	if WeekdaySet(0).Days() != nil || len(WeekdaySet(0).Labels()) != 0 {
		t.Error("empty set has no members")
	}
}

func TestRecurrenceTwoMondays(t *testing.T) {
	start, _ := ParseDay("2024-05-01")
	end, _ := ParseDay("2024-05-14")
	rule := RecurrenceRule{Weekdays: NewWeekdaySet(time.Monday), Start: start, End: end}

	l := Ledger{}
	n := l.ApplyRecurrence(rule, entry("S01", "500", "A100", "U200"))
	if n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}
	if len(l["2024-05-06"]) != 1 || len(l["2024-05-13"]) != 1 {
		t.Fatalf("unexpected ledger %+v", l)
	}
}

func TestRecurrenceStartAfterEnd(t *testing.T) {
	start, _ := ParseDay("2024-05-14")
	end, _ := ParseDay("2024-05-01")
	rule := RecurrenceRule{Weekdays: NewWeekdaySet(time.Monday, time.Friday), Start: start, End: end}
	if got := Expand(rule, entry("S01", "1", "", "")); len(got) != 0 {
		t.Fatalf("expected nothing, got %v", got)
	}
}

func TestRecurrenceKeepsExisting(t *testing.T) {
	start, _ := ParseDay("2024-05-06")
	l := Ledger{"2024-05-06": {entry("OLD", "1", "", "")}}
	l.ApplyRecurrence(RecurrenceRule{Weekdays: NewWeekdaySet(time.Monday), Start: start, End: start}, entry("NEW", "1", "", ""))
	if day := l["2024-05-06"]; len(day) != 2 || day[0].Market != "OLD" || day[1].Market != "NEW" {
		t.Fatalf("unexpected day %+v", day)
	}
}

func TestParseWeekday(t *testing.T) {
	cases := map[string]time.Weekday{
		"Monday": time.Monday,
		"fri":    time.Friday,
		" SUN ":  time.Sunday,
		"三":      time.Wednesday,
		"週六":     time.Saturday,
		"星期日":    time.Sunday,
	}
	for in, want := range cases {
		got, ok := ParseWeekday(in)
		if !ok || got != want {
			t.Fatalf("%q: got %v ok=%v, want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseWeekday("someday"); ok {
		t.Fatal("expected unknown weekday")
	}
}

func TestShiftMonth(t *testing.T) {
	l := Ledger{
		"2024-01-15": {entry("S15", "1", "", "")},
		"2024-01-30": {entry("S30", "1", "", "")},
		"2024-01-31": {entry("S31", "1", "", "")},
		"2024-02-15": {entry("OLD", "1", "", "")},
		"2024-03-01": {entry("MAR", "1", "", "")},
	}
	n, err := l.ShiftMonth(2024, 1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 source days, got %d", n)
	}
	if day := l["2024-02-15"]; len(day) != 1 || day[0].Market != "S15" {
		t.Fatalf("destination should be replaced: %+v", day)
	}
	if day := l["2024-02-29"]; len(day) != 1 || day[0].Market != "S31" {
		t.Fatalf("clamped day should hold the later source: %+v", day)
	}
	if len(l["2024-01-31"]) != 1 {
		t.Fatal("source days must be kept")
	}
	if len(l["2024-03-01"]) != 1 {
		t.Fatal("other months must be untouched")
	}

	if _, err := l.ShiftMonth(2024, 0); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}
