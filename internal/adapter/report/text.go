package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/iho/stockrecon/internal/domain"
)

// TextRenderer prints the tab-separated plain report.
type TextRenderer struct{}

// Render implements Renderer.
func (TextRenderer) Render(w io.Writer, s domain.Summary) error {
	b := bufio.NewWriter(w)

	fmt.Fprintln(b, "Breakdown of profit of all orders:")
	for _, r := range s.References {
		label := r.Ref
		if label == "" {
			label = "NOREF\t"
		}
		fmt.Fprintf(b, "%s\t%s USD\n", label, r.Value.StringFixed(2))
	}
	fmt.Fprintln(b, "----------")
	fmt.Fprintf(b, "Profit:\t\t%s USD (does not include material cost of inventory that hasn't been consumed)\n", s.Profit.StringFixed(2))
	fmt.Fprintf(b, "Cash Flow:\t%s USD (includes material cost of inventory that hasn't been consumed)\n", s.CashFlow.StringFixed(2))
	fmt.Fprintln(b, "----------")

	fmt.Fprintln(b, "Inventory (Does not include the ones already sent to the US warehouse):")
	for _, line := range s.Inventory {
		next := "N/A"
		if line.NextCost != nil {
			next = line.NextCost.String()
		}
		fmt.Fprintf(b, "%s\t%d\tNext unit @%s USD\n", line.Item, line.Units, next)
	}

	fmt.Fprintln(b, "Reserved units (Counted towards consumed inventory):")
	for _, r := range s.Reservations {
		fmt.Fprintf(b, "%s\t%s\t%s\n", r.Ref, domain.FormatItems(r.Items), r.Remarks)
	}

	return b.Flush()
}
