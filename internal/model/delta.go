package model

import "fmt"

// DeltaType classifies a detected discrepancy between the carrier scope
// and ground truth
type DeltaType string

const (
	DeltaMissing      DeltaType = "missing"       // Catalogue item absent from the scope
	DeltaUnderscoped  DeltaType = "underscoped"   // Present but with insufficient quantity
	DeltaWrongCode    DeltaType = "wrong-code"    // Present under an incorrect line item code
	DeltaCodeRequired DeltaType = "code-required" // Mandated by building code for this roof
	DeltaRecommendAdd DeltaType = "recommend-add" // Supported by evidence, outside the static catalogue
)

// DeltaStatus is the review state of a delta item. Transitions are driven
// externally (by a human reviewer); the engine only defines which
// transitions are legal.
type DeltaStatus string

const (
	StatusIdentified DeltaStatus = "identified" // Initial state, set by detection
	StatusApproved   DeltaStatus = "approved"   // Reviewer accepted the item
	StatusDenied     DeltaStatus = "denied"     // Reviewer rejected the item
	StatusIncluded   DeltaStatus = "included"   // Terminal: folded into a sent package
)

// CanTransition reports whether moving from s to next is legal
func (s DeltaStatus) CanTransition(next DeltaStatus) bool {
	switch s {
	case StatusIdentified:
		return next == StatusApproved || next == StatusDenied
	case StatusApproved:
		return next == StatusIncluded
	default:
		return false
	}
}

// DeltaItem is one detected discrepancy. Immutable after creation except
// Status, which moves through the reviewer state machine via Transition.
type DeltaItem struct {
	Type         DeltaType        `json:"type"`
	LineItemCode string           `json:"line_item_code,omitempty"`
	Description  string           `json:"description"`
	Rationale    string           `json:"rationale,omitempty"` // Why the item belongs in the scope
	CitationID   string           `json:"citation_id,omitempty"`
	Priority     Priority         `json:"priority"`
	Quantity     float64          `json:"quantity,omitempty"`
	Unit         Unit             `json:"unit,omitempty"`
	EstimatedRCV *float64         `json:"estimated_rcv,omitempty"` // Nil: price from reference catalogue
	Status       DeltaStatus      `json:"status"`
	EvidenceRefs []EvidenceSignal `json:"evidence_refs,omitempty"`

	// EvidenceHints suggests what photos or measurements would support the
	// item, carried from the catalogue template for reviewer guidance
	EvidenceHints []string `json:"evidence_hints,omitempty"`
}

// Transition moves the item to the next review state. Illegal transitions
// are caller bugs and rejected with an error naming the offending move;
// the state is never silently coerced.
func (d *DeltaItem) Transition(next DeltaStatus) error {
	if !d.Status.CanTransition(next) {
		return fmt.Errorf("illegal status transition %q -> %q for delta %q", d.Status, next, d.Description)
	}
	d.Status = next
	return nil
}
