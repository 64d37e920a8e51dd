package model

// LineItem is one priced row of a carrier scope or supplement package.
// Owned exclusively by the scope/package that contains it.
type LineItem struct {
	Code         string   `json:"code,omitempty"`
	Description  string   `json:"description"`
	Category     string   `json:"category,omitempty"`
	Quantity     float64  `json:"quantity"`
	Unit         Unit     `json:"unit,omitempty"`
	UnitPrice    float64  `json:"unit_price"`
	RCV          float64  `json:"rcv"`
	ACV          float64  `json:"acv"`
	Depreciation float64  `json:"depreciation"`
	CitationIDs  []string `json:"citation_ids,omitempty"` // Code citations backing this item (supplement rows)
}

// ScopeTotals are the carrier's claim-level dollar totals. These often
// include items outside the line detail, so they are cross-checked against
// the line item sum but never overwritten.
type ScopeTotals struct {
	ReplacementCostValue float64 `json:"rcv"`
	ActualCashValue      float64 `json:"acv"`
	Depreciation         float64 `json:"depreciation"`
	Deductible           float64 `json:"deductible"`
	NetPayment           float64 `json:"net_payment"`
}

// RoofMetrics are derived roof facts used by trigger predicates and
// underscoping checks.
type RoofMetrics struct {
	TotalAreaUnits float64 `json:"total_area_units,omitempty"` // Roofing squares

	// CostPerAreaUnit is roofing-category RCV per area unit. Nil means
	// "not computable" (no area reported), which is distinct from zero.
	CostPerAreaUnit *float64 `json:"cost_per_area_unit,omitempty"`

	Pitch   float64 `json:"pitch,omitempty"` // Rise per 12 run
	Stories int     `json:"stories,omitempty"`
}

// NormalizedScope is the canonical form of a carrier's estimate, produced
// by the normalizer from a raw extracted record. Recomputed per input,
// never persisted by the engine.
type NormalizedScope struct {
	ClaimNumber     string `json:"claim_number,omitempty"`
	Insured         string `json:"insured,omitempty"`
	PropertyAddress string `json:"property_address,omitempty"`
	Carrier         string `json:"carrier,omitempty"`

	LineItems   []LineItem  `json:"line_items"`
	Totals      ScopeTotals `json:"totals"`
	RoofMetrics RoofMetrics `json:"roof_metrics"`

	// Warnings records data-quality issues found while normalizing
	// (malformed numbers, ACV/RCV mismatches). Never blocks processing.
	Warnings []string `json:"warnings,omitempty"`
}

// Context returns the trigger-evaluation context for this scope
func (s *NormalizedScope) Context() ScopeContext {
	return ScopeContext{
		Pitch:          s.RoofMetrics.Pitch,
		Stories:        s.RoofMetrics.Stories,
		TotalAreaUnits: s.RoofMetrics.TotalAreaUnits,
	}
}
