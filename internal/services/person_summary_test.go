package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentledger/internal/core"
)

func TestSummarizeLandlord(t *testing.T) {
	ledger, people, markets := marketDay()

	s := Summarize(SummaryInput{Main: ledger, Fixed: core.Ledger{}, People: people, Markets: markets, Person: "王"})

	assert.Equal(t, "3000", s.LandlordTotal.String())
	assert.True(t, s.TenantTotal.IsZero())
	require.Len(t, s.LandlordLines, 1)
	assert.Equal(t, "2024-05-10 - 第一市場: 3000", s.LandlordLines[0].String())
	assert.Equal(t, "2024-05", s.LandlordLines[0].Month)
	assert.Empty(t, s.TenantLines)
	assert.Equal(t, "3000", s.Net().String())
}

func TestSummarizeByCode(t *testing.T) {
	ledger, people, markets := marketDay()

	s := Summarize(SummaryInput{Main: ledger, People: people, Markets: markets, Person: "U200"})

	assert.Equal(t, "陳", s.Person)
	assert.Equal(t, "3000", s.TenantTotal.String())
	assert.Equal(t, "-3000", s.Net().String())
}

func TestSummarizeBothLedgers(t *testing.T) {
	main := core.Ledger{
		"2024-05-10": {{Market: "S01", Rent: "100", Owner: "A", User: "B"}},
	}
	fixed := core.Ledger{
		"2024-05-06": {{Market: "F01", Rent: "1,000", Owner: "B", User: "C"}},
		"2024-05-13": {{Market: "F01", Rent: "oops", Owner: "B", User: "C"}},
	}

	s := Summarize(SummaryInput{Main: main, Fixed: fixed, Person: "B"})

	assert.Equal(t, "100", s.TenantTotal.String())
	assert.Equal(t, "1000", s.LandlordTotal.String())
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, "900", s.Net().String())
}

func TestSummarizeSkipsEmptyRent(t *testing.T) {
	main := core.Ledger{
		"2024-05-10": {
			{Market: "S01", Rent: "", Owner: "A", User: "B"},
			{Market: "S01", Rent: "5", Owner: "", User: "X"},
			{Market: "S01", Rent: "7", Owner: "", User: "B"},
		},
	}

	s := Summarize(SummaryInput{Main: main, Person: "B"})

	assert.Equal(t, "7", s.TenantTotal.String())
	assert.Equal(t, 0, s.Skipped)
	assert.Len(t, s.TenantLines, 1)
}
