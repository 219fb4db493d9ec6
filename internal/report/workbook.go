// Package report renders settlement and person-summary results as xlsx
// workbooks and plain text.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"rentledger/internal/services"
)

const (
	SettlementSheet = "租金明細"
	SummarySheet    = "收支總結"

	// ContentType is the MIME type of the workbooks written here.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// SettlementHeader is repeated for the tenant half (left) and the landlord
// half (right) of the settlement table.
var SettlementHeader = []string{"承租日期", "星期", "租位名稱", "租金"}

// WriteSettlementWorkbook writes the two-column settlement table with its
// title block and closing statement.
func WriteSettlementWorkbook(w io.Writer, r services.SettlementReport, printed time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SettlementSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw := &sheetWriter{f: f, sheet: SettlementSheet}
	sw.set(0, 1, fmt.Sprintf("%s 租金應收付明細表", r.PartyA))
	if sw.err == nil {
		if err := f.MergeCell(sw.sheet, "A1", "H1"); err != nil {
			return fmt.Errorf("merge title: %w", err)
		}
	}
	sw.set(0, 2, "客戶名稱："+r.PartyB)
	sw.set(2, 2, r.PeriodLabel())
	sw.set(5, 2, "列印日期："+printed.Format("2006/01/02"))

	for i, h := range SettlementHeader {
		sw.set(i, 4, h)
		sw.set(i+4, 4, h)
	}

	for i, row := range r.TenantRows {
		sw.row(0, i+5, row.Date, row.Weekday, row.Market, row.Amount.InexactFloat64())
	}
	for i, row := range r.LandlordRows {
		sw.row(4, i+5, row.Date, row.Weekday, row.Market, row.Amount.InexactFloat64())
	}

	next := 5 + max(len(r.TenantRows), len(r.LandlordRows))
	sw.row(2, next, r.PartyA+" 合計", r.PartyATotal.InexactFloat64())
	sw.row(6, next, r.PartyB+" 合計", r.PartyBTotal.InexactFloat64())

	for i, line := range strings.Split(r.Statement, "\n") {
		sw.set(0, next+2+i, line)
	}

	sw.width("A", 12)
	sw.width("C", 16)
	sw.width("E", 12)
	sw.width("G", 16)
	if sw.err != nil {
		return fmt.Errorf("fill %s: %w", sw.sheet, sw.err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteSummaryWorkbook writes one person's totals followed by the itemized
// landlord (income) and tenant (expense) lines.
func WriteSummaryWorkbook(w io.Writer, s services.PersonSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw := &sheetWriter{f: f, sheet: SummarySheet}
	sw.set(0, 1, s.Person+" 的總收支")
	sw.row(0, 2, "收入", s.LandlordTotal.InexactFloat64())
	sw.row(0, 3, "支出", s.TenantTotal.InexactFloat64())
	sw.row(0, 4, "淨收入", s.Net().InexactFloat64())
	sw.row(0, 6, "類型", "日期", "市場", "金額")

	line := 7
	for _, l := range s.LandlordLines {
		sw.row(0, line, "收入", l.Date, l.Market, l.Amount.InexactFloat64())
		line++
	}
	for _, l := range s.TenantLines {
		sw.row(0, line, "支出", l.Date, l.Market, l.Amount.InexactFloat64())
		line++
	}

	sw.width("B", 12)
	sw.width("C", 16)
	if sw.err != nil {
		return fmt.Errorf("fill %s: %w", sw.sheet, sw.err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// sheetWriter fills one sheet and keeps the first error; later calls are
// no-ops once it is set.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (sw *sheetWriter) set(col, row int, v any) {
	if sw.err != nil {
		return
	}
	if err := sw.f.SetCellValue(sw.sheet, cell(col, row), v); err != nil {
		sw.err = fmt.Errorf("cell %s: %w", cell(col, row), err)
	}
}

// row writes values into consecutive columns starting at col.
func (sw *sheetWriter) row(col, row int, values ...any) {
	for j, v := range values {
		sw.set(col+j, row, v)
	}
}

func (sw *sheetWriter) width(col string, w float64) {
	if sw.err != nil {
		return
	}
	sw.err = sw.f.SetColWidth(sw.sheet, col, col, w)
}

// cell converts zero-based column and one-based row to an A1 reference.
func cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		panic(err)
	}
	return name
}
