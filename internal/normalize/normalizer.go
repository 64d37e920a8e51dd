// Package normalize converts raw extracted scope records into canonical
// NormalizedScope values. The input shape is whatever the upstream
// extraction produced, so every field read here is defensive: absent and
// malformed values default rather than abort, and data-quality issues are
// recorded as warnings.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/scopewright/scopewright/internal/model"
)

// acvTolerance is the allowed drift between a line item's reported ACV
// and rcv - depreciation before a warning is recorded.
const acvTolerance = 0.01

// totalsTolerance is the allowed drift between the carrier's reported RCV
// total and the sum of line item RCVs. Carrier totals often include items
// outside the line detail, so a mismatch is flagged, never corrected.
const totalsTolerance = 1.00

// Normalizer converts raw extracted records into NormalizedScope values
type Normalizer struct{}

// NewNormalizer creates a new normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize builds a NormalizedScope from a raw JSON-like record. It never
// fails: missing identity fields pass through empty (supplement work can
// start before a claim number exists) and malformed numerics coerce to 0
// with a warning. Warnings are also retained on the returned scope.
func (n *Normalizer) Normalize(raw map[string]any) (*model.NormalizedScope, []string) {
	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	scope := &model.NormalizedScope{}

	scope.ClaimNumber = firstString(raw, "claim_number", "claimNumber", "claim")
	scope.Insured = firstString(raw, "insured", "insured_name", "insuredName", "policyholder")
	scope.PropertyAddress = firstString(raw, "property_address", "propertyAddress", "address")
	scope.Carrier = firstString(raw, "carrier", "carrier_name", "carrierName", "insurer")

	// Line items
	for i, entry := range listField(raw, "line_items", "lineItems", "items") {
		item, ok := entry.(map[string]any)
		if !ok {
			warnf("line item %d: not an object, skipped", i+1)
			continue
		}
		scope.LineItems = append(scope.LineItems, n.normalizeLineItem(i, item, warnf))
	}

	// Claim-level totals
	totals := subRecord(raw, "totals")
	scope.Totals = model.ScopeTotals{
		ReplacementCostValue: firstNumber(totals, warnf, "rcv", "replacement_cost_value", "replacementCostValue"),
		ActualCashValue:      firstNumber(totals, warnf, "acv", "actual_cash_value", "actualCashValue"),
		Depreciation:         firstNumber(totals, warnf, "depreciation"),
		Deductible:           firstNumber(totals, warnf, "deductible"),
		NetPayment:           firstNumber(totals, warnf, "net_payment", "netPayment", "net_claim"),
	}

	// Roof metrics
	roof := subRecord(raw, "roof", "roof_metrics", "roofMetrics", "measurements")
	scope.RoofMetrics = model.RoofMetrics{
		TotalAreaUnits: firstNumber(roof, warnf, "total_area_units", "totalAreaUnits", "squares", "total_squares"),
		Pitch:          parsePitch(firstRaw(roof, "pitch", "predominant_pitch", "predominantPitch"), warnf),
		Stories:        int(firstNumber(roof, warnf, "stories", "number_of_stories", "numberOfStories")),
	}

	n.deriveMetrics(scope)
	n.crossCheck(scope, warnf)

	scope.Warnings = warnings
	return scope, warnings
}

// normalizeLineItem converts one raw line item entry
func (n *Normalizer) normalizeLineItem(i int, item map[string]any, warnf func(string, ...any)) model.LineItem {
	itemWarnf := func(format string, args ...any) {
		warnf("line item %d: %s", i+1, fmt.Sprintf(format, args...))
	}

	li := model.LineItem{
		Code:         strings.TrimSpace(firstString(item, "code", "item_code", "itemCode")),
		Description:  strings.TrimSpace(firstString(item, "description", "desc", "name")),
		Category:     strings.ToLower(strings.TrimSpace(firstString(item, "category", "trade"))),
		Quantity:     firstNumber(item, itemWarnf, "quantity", "qty"),
		Unit:         model.Unit(strings.ToUpper(strings.TrimSpace(firstString(item, "unit", "uom")))),
		UnitPrice:    firstNumber(item, itemWarnf, "unit_price", "unitPrice", "price"),
		RCV:          firstNumber(item, itemWarnf, "rcv", "replacement_cost_value"),
		ACV:          firstNumber(item, itemWarnf, "acv", "actual_cash_value"),
		Depreciation: firstNumber(item, itemWarnf, "depreciation", "depr"),
	}

	if expected := li.RCV - li.Depreciation; li.ACV != 0 && math.Abs(li.ACV-expected) > acvTolerance {
		itemWarnf("ACV %.2f does not equal RCV %.2f - depreciation %.2f (expected %.2f)",
			li.ACV, li.RCV, li.Depreciation, expected)
	}

	return li
}

// deriveMetrics computes metrics that depend on the whole scope.
// CostPerAreaUnit stays nil when no area was reported, so "not computable"
// is distinguishable from a computed zero.
func (n *Normalizer) deriveMetrics(scope *model.NormalizedScope) {
	if scope.RoofMetrics.TotalAreaUnits <= 0 {
		return
	}
	var roofingRCV float64
	for _, li := range scope.LineItems {
		if li.Category == "roofing" {
			roofingRCV += li.RCV
		}
	}
	perUnit := round2(roofingRCV / scope.RoofMetrics.TotalAreaUnits)
	scope.RoofMetrics.CostPerAreaUnit = &perUnit
}

// crossCheck flags claim-level totals that disagree with the line detail
func (n *Normalizer) crossCheck(scope *model.NormalizedScope, warnf func(string, ...any)) {
	if scope.Totals.ReplacementCostValue == 0 || len(scope.LineItems) == 0 {
		return
	}
	var sum float64
	for _, li := range scope.LineItems {
		sum += li.RCV
	}
	if math.Abs(sum-scope.Totals.ReplacementCostValue) > totalsTolerance {
		warnf("reported RCV total %.2f differs from line item sum %.2f", scope.Totals.ReplacementCostValue, sum)
	}
}

// firstRaw returns the first present key's raw value
func firstRaw(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// firstString returns the first present key's value as a string
func firstString(raw map[string]any, keys ...string) string {
	v := firstRaw(raw, keys...)
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}

// firstNumber returns the first present key's value coerced to float64.
// Malformed values coerce to 0 with a warning.
func firstNumber(raw map[string]any, warnf func(string, ...any), keys ...string) float64 {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		f, err := coerceNumber(v)
		if err != nil {
			warnf("field %q: %v, using 0", key, err)
			return 0
		}
		return f
	}
	return 0
}

// coerceNumber converts JSON numbers and numeric strings (with optional
// currency symbols and thousands separators) to float64
func coerceNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		cleaned := strings.TrimSpace(n)
		cleaned = strings.TrimPrefix(cleaned, "$")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		if cleaned == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed number %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

// parsePitch parses roof pitch notations: "8/12", "8:12", or a bare
// number. Unparseable values coerce to 0 with a warning.
func parsePitch(v any, warnf func(string, ...any)) float64 {
	switch p := v.(type) {
	case nil:
		return 0
	case float64:
		return p
	case int:
		return float64(p)
	case string:
		s := strings.TrimSpace(p)
		if s == "" {
			return 0
		}
		for _, sep := range []string{"/", ":"} {
			if parts := strings.SplitN(s, sep, 2); len(parts) == 2 {
				rise, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
				if err != nil {
					warnf("malformed pitch %q, using 0", p)
					return 0
				}
				return rise
			}
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			warnf("malformed pitch %q, using 0", p)
			return 0
		}
		return f
	default:
		warnf("malformed pitch %v, using 0", v)
		return 0
	}
}

// subRecord returns the first present nested record, falling back to the
// parent so flat inputs still resolve
func subRecord(raw map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if sub, ok := raw[key].(map[string]any); ok {
			return sub
		}
	}
	return raw
}

// listField returns the first present key's value as a slice
func listField(raw map[string]any, keys ...string) []any {
	for _, key := range keys {
		if list, ok := raw[key].([]any); ok {
			return list
		}
	}
	return nil
}

// round2 rounds to cents
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
