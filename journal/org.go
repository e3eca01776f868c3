package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/papertrader/ledger"
)

// FormatEntryOrg renders a ledger entry as an Org-mode block suitable for
// pasting into a trading journal. Structured facts go in a PROPERTIES
// drawer for easy search.
func FormatEntryOrg(e ledger.Entry) string {
	subject := e.Symbol
	if e.ContractID != "" {
		subject = e.ContractID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "** %s: %s (%s)\n", e.Kind, subject, shortID(e.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", e.ID)
	fmt.Fprintf(&b, ":TIME: %s\n", e.Time.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":TYPE: %s\n", e.Kind)
	if e.OrderID != 0 {
		fmt.Fprintf(&b, ":ORDER_ID: %d\n", e.OrderID)
	}
	if e.Symbol != "" {
		fmt.Fprintf(&b, ":SYMBOL: %s\n", e.Symbol)
	}
	if e.ContractID != "" {
		fmt.Fprintf(&b, ":CONTRACT: %s\n", e.ContractID)
	}
	if e.Qty != 0 {
		fmt.Fprintf(&b, ":QTY: %d\n", e.Qty)
	}
	fmt.Fprintf(&b, ":PRICE: %s\n", e.Price.StringFixed(2))
	if e.Note != "" {
		fmt.Fprintf(&b, ":NOTE: %s\n", e.Note)
	}
	b.WriteString(":END:\n")

	return b.String()
}

// FormatEntriesOrg renders multiple entries separated by blank lines.
func FormatEntriesOrg(entries []ledger.Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatEntryOrg(e))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
