package model

// SupplementPackage is the assembled, priced, citation-backed request sent
// back to the insurer. Built fresh per assembly request; not long-lived
// state.
type SupplementPackage struct {
	ClaimRef        string `json:"claim_ref,omitempty"`
	Insured         string `json:"insured,omitempty"`
	PropertyAddress string `json:"property_address,omitempty"`
	Carrier         string `json:"carrier,omitempty"`

	LineItems []LineItem     `json:"line_items"` // Priced from approved delta items
	Citations []CodeCitation `json:"citations,omitempty"`
	Photos    []PhotoRef     `json:"photos,omitempty"`

	TotalOriginalRCV   float64 `json:"total_original_rcv"`
	TotalSupplementRCV float64 `json:"total_supplement_rcv"`

	// Warnings records pricing fallbacks and referential gaps hit during
	// assembly (e.g., no reference price for a code). Non-blocking.
	Warnings []string `json:"warnings,omitempty"`
}

// ValidationResult is the outcome of validating a supplement package.
// Errors block sending; warnings never do.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Narrative is optional LLM-written prose for a supplement package. It
// never affects detection, pricing, or validation; the templated document
// export is always available without it.
type Narrative struct {
	Enabled  bool     `json:"enabled"`
	Provider string   `json:"provider,omitempty"`
	Model    string   `json:"model,omitempty"`
	Text     string   `json:"text,omitempty"`
	Warnings []string `json:"warnings,omitempty"` // e.g., citation ids outside the allowlist
}
