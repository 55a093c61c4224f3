package cli

import (
	"fmt"
	"strings"

	"github.com/meterbook/meterbook/internal/models"
)

// formatEntry renders one entry as a single list line.
func formatEntry(e models.Entry) string {
	var b strings.Builder

	marker := " "
	if !e.Synced {
		marker = "*"
	}
	fmt.Fprintf(&b, "%s %-38s %-16s %-20s %s %10s", marker, e.ID, e.Type, e.Supplier,
		e.ReadingDate.Format(models.DateLayout), e.Amount.StringFixed(2))

	if e.Reading != nil {
		fmt.Fprintf(&b, "  reading=%s", e.Reading.String())
		if e.Unit != "" {
			fmt.Fprintf(&b, " %s", e.Unit)
		}
	}
	return b.String()
}
