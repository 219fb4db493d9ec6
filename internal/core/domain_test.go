package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestRentEntryComplete(t *testing.T) {
	cases := []struct {
		e  RentEntry
		ok bool
	}{
		{RentEntry{Market: "S01", Rent: "3000", Owner: "A100", User: "U200"}, true},
		{RentEntry{Market: "S01", Rent: "", Owner: "A100", User: "U200"}, false},
		{RentEntry{Market: "", Rent: "1", Owner: "A100", User: "U200"}, false},
		{RentEntry{Market: "S01", Rent: "1", Owner: " ", User: "U200"}, false},
		{RentEntry{Market: "S01", Rent: "1", Owner: "A100"}, false},
	}
	for i, tc := range cases {
		if got := tc.e.Complete(); got != tc.ok {
			t.Fatalf("case %d: Complete() = %v, want %v", i, got, tc.ok)
		}
	}
}

func TestRentEntryValidate(t *testing.T) {
	if err := (RentEntry{Market: "S01", Rent: "100"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (RentEntry{Rent: "100"}).Validate(); !errors.Is(err, ErrEmptyMarket) {
		t.Fatalf("expected ErrEmptyMarket, got %v", err)
	}
	if err := (RentEntry{Market: "S01", Rent: "abc"}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestRentEntryJSON(t *testing.T) {
	b, err := json.Marshal(RentEntry{Market: "M1", Rent: "1000", Owner: "OwnerA", User: "UserB"})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `["M1","1000","OwnerA","UserB",""]` {
		t.Fatalf("unexpected encoding %s", b)
	}

	var short RentEntry
	if err := json.Unmarshal([]byte(`["S01", 3000, "A100"]`), &short); err != nil {
		t.Fatal(err)
	}
	if short.Market != "S01" || short.Rent != "3000" || short.Owner != "A100" || short.User != "" {
		t.Fatalf("unexpected decode %+v", short)
	}

	var bad RentEntry
	if err := json.Unmarshal([]byte(`{"market":"S01"}`), &bad); err == nil {
		t.Fatal("expected error for object form")
	}
}

func TestAddMonthClamped(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"2024-01-15", "2024-02-15"},
		{"2024-01-31", "2024-02-29"},
		{"2023-01-31", "2023-02-28"},
		{"2024-03-31", "2024-04-30"},
		{"2024-12-31", "2025-01-31"},
		{"2024-11-30", "2024-12-30"},
	}
	for _, tc := range cases {
		d, err := ParseDay(tc.in)
		if err != nil {
			t.Fatal(err)
		}
		if got := FormatDay(AddMonthClamped(d)); got != tc.out {
			t.Fatalf("%s: got %s, want %s", tc.in, got, tc.out)
		}
	}
}

func TestWeekdayLabel(t *testing.T) {
	cases := map[string]string{
		"2024-05-10": "五",
		"2024-05-12": "日",
		"2024-05-13": "一",
		"2024-05-18": "六",
	}
	for day, want := range cases {
		d, _ := ParseDay(day)
		if got := WeekdayLabel(d); got != want {
			t.Fatalf("%s: got %s, want %s", day, got, want)
		}
	}
}

func TestMonthBounds(t *testing.T) {
	first, last, err := MonthBounds(2024, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) || last.Day() != 29 {
		t.Fatalf("unexpected bounds %v %v", first, last)
	}
	if _, _, err := MonthBounds(2024, 13); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestKindDocuments(t *testing.T) {
	if doc, err := FixedLedger.Document(); err != nil || doc != DocFixedLedger {
		t.Fatalf("fixed ledger: %s %v", doc, err)
	}
	if _, err := LedgerKind("other").Document(); !errors.Is(err, ErrUnknownLedger) {
		t.Fatalf("expected ErrUnknownLedger, got %v", err)
	}
	if doc, err := MarketBindings.Document(); err != nil || doc != DocMarketBindings {
		t.Fatalf("market bindings: %s %v", doc, err)
	}
	if _, err := BindingKind("x").Document(); !errors.Is(err, ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable, got %v", err)
	}
}
