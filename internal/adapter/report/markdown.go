package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/iho/stockrecon/internal/domain"
)

// MarkdownRenderer writes the summary as Markdown tables.
type MarkdownRenderer struct{}

// Render implements Renderer.
func (MarkdownRenderer) Render(w io.Writer, s domain.Summary) error {
	_, err := io.WriteString(w, markdown(s))
	return err
}

func markdown(s domain.Summary) string {
	var b strings.Builder

	b.WriteString("# Reconciliation report\n\n")

	b.WriteString("## Profit by reference\n\n")
	b.WriteString("| Reference | Value |\n|---|---:|\n")
	for _, r := range s.References {
		fmt.Fprintf(&b, "| %s | %s |\n", cell(refLabel(r.Ref)), usd(r.Value))
	}

	b.WriteString("\n## Totals\n\n")
	b.WriteString("| | USD |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Profit | %s |\n", usd(s.Profit))
	fmt.Fprintf(&b, "| Cash flow | %s |\n", usd(s.CashFlow))
	b.WriteString("\nProfit excludes the cost of units still in stock; cash flow includes it.\n")

	b.WriteString("\n## Inventory\n\n")
	b.WriteString("| Item | Units | Next unit cost |\n|---|---:|---:|\n")
	for _, line := range s.Inventory {
		next := "N/A"
		if line.NextCost != nil {
			next = usd(*line.NextCost)
		}
		fmt.Fprintf(&b, "| %s | %d | %s |\n", cell(line.Item), line.Units, next)
	}

	b.WriteString("\n## Reserved units\n\n")
	if len(s.Reservations) == 0 {
		b.WriteString("No outstanding reservations.\n")
		return b.String()
	}
	b.WriteString("| Reference | Items | Remarks |\n|---|---|---|\n")
	for _, r := range s.Reservations {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(r.Ref), domain.FormatItems(r.Items), cell(r.Remarks))
	}

	return b.String()
}

// usd formats a USD amount rounded to cents.
func usd(d decimal.Decimal) string {
	cents := d.Round(2).Shift(2).IntPart()
	return money.New(cents, "USD").Display()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
