package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rentledger/internal/core"
)

// SettlementInput holds everything one settlement needs. Ledger is expected
// to be the merge of the main and fixed ledgers.
type SettlementInput struct {
	Ledger  core.Ledger
	People  core.BindingTable
	Markets core.BindingTable
	PartyA  string
	PartyB  string
	Year    int
	Month   int
	Fee     decimal.Decimal
}

// SettlementRow is one rendered line of the settlement tables.
type SettlementRow struct {
	Date    string          `json:"date"`
	Weekday string          `json:"weekday"`
	Market  string          `json:"market"`
	Rent    string          `json:"rent"`
	Amount  decimal.Decimal `json:"amount"`
}

// Balance is who pays whom once the fee is applied. Due is false when
// nothing is owed; Payer and Payee are then empty.
type Balance struct {
	Payer  string          `json:"payer,omitempty"`
	Payee  string          `json:"payee,omitempty"`
	Amount decimal.Decimal `json:"amount"`
	Due    bool            `json:"due"`
}

// SettlementReport is the result of Settle. TenantRows are entries where
// party B is the tenant, LandlordRows entries where party B is the landlord.
type SettlementReport struct {
	PartyA       string          `json:"party_a"`
	PartyB       string          `json:"party_b"`
	PeriodStart  time.Time       `json:"period_start"`
	PeriodEnd    time.Time       `json:"period_end"`
	Fee          decimal.Decimal `json:"fee"`
	TenantRows   []SettlementRow `json:"tenant_rows"`
	LandlordRows []SettlementRow `json:"landlord_rows"`
	PartyATotal  decimal.Decimal `json:"party_a_total"`
	PartyBTotal  decimal.Decimal `json:"party_b_total"`
	Balance      Balance         `json:"balance"`
	Statement    string          `json:"statement"`
}

// PeriodLabel renders the report period as "起始日期：YYYY/MM/DD 到 YYYY/MM/DD".
func (r SettlementReport) PeriodLabel() string {
	return fmt.Sprintf("起始日期：%s 到 %s", r.PeriodStart.Format(rowDateLayout), r.PeriodEnd.Format(rowDateLayout))
}

const rowDateLayout = "2006/01/02"

// Settle nets what party A and party B owe each other for one month.
//
// Only party B is matched against entries, as tenant first and landlord
// second; party A's total mirrors B's. An entry that passes the required
// field check but carries an unparsable rent fails the whole report with an
// *core.AmountError.
func Settle(in SettlementInput) (SettlementReport, error) {
	first, last, err := core.MonthBounds(in.Year, in.Month)
	if err != nil {
		return SettlementReport{}, err
	}
	if in.Fee.IsNegative() {
		return SettlementReport{}, fmt.Errorf("%w: negative service fee", core.ErrInvalidAmount)
	}

	partyA := in.People.Resolve(in.PartyA)
	partyB := in.People.Resolve(in.PartyB)

	report := SettlementReport{
		PartyA:       partyA,
		PartyB:       partyB,
		PeriodStart:  first,
		PeriodEnd:    last,
		Fee:          in.Fee,
		TenantRows:   []SettlementRow{},
		LandlordRows: []SettlementRow{},
	}
	totalA := decimal.Zero
	totalB := decimal.Zero

	for _, date := range in.Ledger.DatesIn(in.Year, in.Month) {
		day, _ := core.ParseDay(date)
		weekday := core.WeekdayLabel(day)
		for i, e := range in.Ledger[date] {
			if !e.Complete() {
				continue
			}
			asTenant := in.People.Resolve(e.User) == partyB
			asLandlord := in.People.Resolve(e.Owner) == partyB
			if !asTenant && !asLandlord {
				continue
			}
			amount, err := core.ParseRent(e.Rent)
			if err != nil {
				return SettlementReport{}, &core.AmountError{Date: date, Index: i, Value: e.Rent}
			}
			row := SettlementRow{
				Date:    day.Format(rowDateLayout),
				Weekday: weekday,
				Market:  in.Markets.Resolve(e.Market),
				Rent:    e.Rent,
				Amount:  amount,
			}
			if asTenant {
				report.TenantRows = append(report.TenantRows, row)
				totalA = totalA.Add(amount)
				totalB = totalB.Sub(amount)
			} else {
				report.LandlordRows = append(report.LandlordRows, row)
				totalB = totalB.Add(amount)
				totalA = totalA.Sub(amount)
			}
		}
	}

	report.PartyATotal = totalA
	report.PartyBTotal = totalB
	report.Balance = balanceOf(partyA, partyB, totalB, in.Fee)
	report.Statement = statementFor(partyB, report.Balance, in.Fee)
	return report, nil
}

// balanceOf applies the service fee, which party B always bears.
func balanceOf(partyA, partyB string, totalB, fee decimal.Decimal) Balance {
	if totalB.IsZero() {
		return Balance{Amount: decimal.Zero}
	}
	net := totalB.Sub(fee)
	switch net.Sign() {
	case 1:
		return Balance{Payer: partyA, Payee: partyB, Amount: net, Due: true}
	case -1:
		return Balance{Payer: partyB, Payee: partyA, Amount: net.Neg(), Due: true}
	default:
		return Balance{Amount: decimal.Zero}
	}
}

func statementFor(partyB string, b Balance, fee decimal.Decimal) string {
	var sb strings.Builder
	if fee.IsPositive() {
		fmt.Fprintf(&sb, "%s需額外支付服務費：%s 元\n", partyB, core.FormatAmount(fee))
	}
	if !b.Due {
		sb.WriteString("雙方無需支付任何款項")
		return sb.String()
	}
	amount := core.FormatAmount(b.Amount)
	fmt.Fprintf(&sb, "因此%s需收到：%s 元, %s需支付：%s 元", b.Payee, amount, b.Payer, amount)
	return sb.String()
}
