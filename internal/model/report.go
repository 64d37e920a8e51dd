package model

import "time"

// Report is the complete output of one claim run: the normalized scope,
// detected deltas, and (when assembly was requested) the priced package
// with its validation result and optional narrative.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	Scope  *NormalizedScope `json:"scope"`
	Deltas []DeltaItem      `json:"deltas"`

	Package    *SupplementPackage `json:"package,omitempty"`
	Validation *ValidationResult  `json:"validation,omitempty"`
	Narrative  *Narrative         `json:"narrative,omitempty"`

	// Warnings aggregates non-blocking issues from every stage
	Warnings []string `json:"warnings,omitempty"`
}
