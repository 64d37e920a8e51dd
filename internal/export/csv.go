// Package export renders validated supplement packages into the formats
// sent to carriers: an RFC 4180 CSV table, a delimited plain-text
// document, and a photo index. All renderers are deterministic and make
// no external calls; partial packages still render, with gaps surfaced by
// the validator rather than here.
package export

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/scopewright/scopewright/internal/model"
)

// csvHeader is the fixed column order for line item exports
var csvHeader = []string{"line", "code", "description", "quantity", "unit", "unitPrice", "rcv"}

// CSV renders the package line items as an RFC 4180 CSV table, one row
// per priced item. encoding/csv handles quoting of descriptions
// containing commas or quotes.
func CSV(pkg *model.SupplementPackage) (string, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	for i, li := range pkg.LineItems {
		row := []string{
			fmt.Sprintf("%d", i+1),
			li.Code,
			li.Description,
			formatQuantity(li.Quantity),
			string(li.Unit),
			formatMoney(li.UnitPrice),
			formatMoney(li.RCV),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.String(), nil
}

// formatQuantity renders quantities without trailing noise: whole numbers
// bare, fractions to two places
func formatQuantity(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return fmt.Sprintf("%.2f", q)
}

// formatMoney renders a dollar amount to cents
func formatMoney(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
