package sheets

import (
	"rentledger/internal/core"
)

var (
	LedgerHeader   = []string{"日期", "星期", "市場", "租金", "所有人", "使用人", "備註"}
	BindingsHeader = []string{"代碼", "名稱"}
)

// LedgerRows flattens a ledger into a header row followed by one row per
// entry, dates ascending and entries in recorded order. Keys that are not
// dates get an empty weekday.
func LedgerRows(ledger core.Ledger) [][]string {
	rows := [][]string{LedgerHeader}
	for _, date := range ledger.Dates() {
		weekday := ""
		if d, err := core.ParseDay(date); err == nil {
			weekday = core.WeekdayLabel(d)
		}
		for _, e := range ledger[date] {
			rows = append(rows, []string{date, weekday, e.Market, e.Rent, e.Owner, e.User, e.Note})
		}
	}
	return rows
}

// BindingRows flattens a binding table, codes sorted.
func BindingRows(table core.BindingTable) [][]string {
	rows := [][]string{BindingsHeader}
	for _, code := range table.Codes() {
		rows = append(rows, []string{code, table[code]})
	}
	return rows
}
