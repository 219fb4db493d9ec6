package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"rentledger/internal/core"
)

type SummaryInput struct {
	Main    core.Ledger
	Fixed   core.Ledger
	People  core.BindingTable
	Markets core.BindingTable
	Person  string // code or display name
}

// SummaryLine is one itemized amount of a person summary.
type SummaryLine struct {
	Date   string          `json:"date"`
	Month  string          `json:"month"`
	Market string          `json:"market"`
	Amount decimal.Decimal `json:"amount"`
}

func (l SummaryLine) String() string {
	return fmt.Sprintf("%s - %s: %s", l.Date, l.Market, core.FormatAmount(l.Amount))
}

// PersonSummary aggregates one person's rents by role. Whether the tenant
// or the landlord side counts as income is up to the caller.
type PersonSummary struct {
	Person        string          `json:"person"`
	TenantTotal   decimal.Decimal `json:"tenant_total"`
	LandlordTotal decimal.Decimal `json:"landlord_total"`
	TenantLines   []SummaryLine   `json:"tenant_lines"`
	LandlordLines []SummaryLine   `json:"landlord_lines"`
	Skipped       int             `json:"skipped"`
}

// Net is the landlord side minus the tenant side.
func (s PersonSummary) Net() decimal.Decimal {
	return s.LandlordTotal.Sub(s.TenantTotal)
}

// Summarize scans the main ledger then the fixed one, dates ascending.
// Entries need a tenant and a rent to count; a landlord-side match also needs
// an owner. Unparsable rents are skipped and counted.
func Summarize(in SummaryInput) PersonSummary {
	person := in.People.Resolve(in.Person)
	out := PersonSummary{
		Person:        person,
		TenantTotal:   decimal.Zero,
		LandlordTotal: decimal.Zero,
		TenantLines:   []SummaryLine{},
		LandlordLines: []SummaryLine{},
	}

	for _, ledger := range []core.Ledger{in.Main, in.Fixed} {
		for _, date := range ledger.Dates() {
			for _, e := range ledger[date] {
				if strings.TrimSpace(e.User) == "" || strings.TrimSpace(e.Rent) == "" {
					continue
				}
				asTenant := in.People.Resolve(e.User) == person
				asLandlord := strings.TrimSpace(e.Owner) != "" && in.People.Resolve(e.Owner) == person
				if !asTenant && !asLandlord {
					continue
				}
				amount, err := core.ParseRent(e.Rent)
				if err != nil {
					out.Skipped++
					continue
				}
				line := SummaryLine{
					Date:   date,
					Month:  monthOf(date),
					Market: in.Markets.Resolve(e.Market),
					Amount: amount,
				}
				if asTenant {
					out.TenantTotal = out.TenantTotal.Add(amount)
					out.TenantLines = append(out.TenantLines, line)
				}
				if asLandlord {
					out.LandlordTotal = out.LandlordTotal.Add(amount)
					out.LandlordLines = append(out.LandlordLines, line)
				}
			}
		}
	}
	return out
}

func monthOf(date string) string {
	if len(date) >= 7 {
		return date[:7]
	}
	return date
}
