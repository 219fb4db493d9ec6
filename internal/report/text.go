package report

import (
	"fmt"
	"strings"

	"rentledger/internal/core"
	"rentledger/internal/services"
)

// SettlementText renders a settlement for terminals and logs.
func SettlementText(r services.SettlementReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s 租金應收付明細表\n", r.PartyA)
	fmt.Fprintf(&sb, "客戶名稱：%s\n%s\n\n", r.PartyB, r.PeriodLabel())

	section := func(title string, rows []services.SettlementRow) {
		fmt.Fprintf(&sb, "%s\n", title)
		if len(rows) == 0 {
			sb.WriteString("  (無)\n")
		}
		for _, row := range rows {
			fmt.Fprintf(&sb, "  %s (%s) %s %s\n", row.Date, row.Weekday, row.Market, core.FormatAmount(row.Amount))
		}
	}
	section(r.PartyB+" 承租", r.TenantRows)
	section(r.PartyB+" 出租", r.LandlordRows)

	fmt.Fprintf(&sb, "\n%s 合計：%s\n", r.PartyA, core.FormatAmount(r.PartyATotal))
	fmt.Fprintf(&sb, "%s 合計：%s\n\n", r.PartyB, core.FormatAmount(r.PartyBTotal))
	sb.WriteString(r.Statement)
	sb.WriteString("\n")
	return sb.String()
}

// SummaryText renders a person summary with the landlord side as income.
func SummaryText(s services.PersonSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s 的總收支:\n", s.Person)
	fmt.Fprintf(&sb, "收入: %s\n", core.FormatAmount(s.LandlordTotal))
	fmt.Fprintf(&sb, "支出: %s\n", core.FormatAmount(s.TenantTotal))
	fmt.Fprintf(&sb, "淨收入: %s\n\n", core.FormatAmount(s.Net()))

	sb.WriteString("收入明細:\n")
	writeLines(&sb, s.LandlordLines, "無收入記錄")
	sb.WriteString("\n支出明細:\n")
	writeLines(&sb, s.TenantLines, "無支出記錄")
	if s.Skipped > 0 {
		fmt.Fprintf(&sb, "\n略過 %d 筆無效金額\n", s.Skipped)
	}
	return sb.String()
}

func writeLines(sb *strings.Builder, lines []services.SummaryLine, empty string) {
	if len(lines) == 0 {
		sb.WriteString(empty + "\n")
		return
	}
	for _, l := range lines {
		sb.WriteString(l.String() + "\n")
	}
}
