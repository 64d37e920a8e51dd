package model

// Unit is the unit of measure for a line item quantity
type Unit string

const (
	UnitSquare     Unit = "SQ"  // Roofing square (100 sq ft of coverage)
	UnitLinearFoot Unit = "LF"  // Linear feet
	UnitEach       Unit = "EA"  // Count
	UnitHour       Unit = "HR"  // Labor hour
	UnitDay        Unit = "DAY" // Calendar day (equipment rental, etc.)
)

// Priority ranks how defensible/urgent a supplement item is
type Priority string

const (
	PriorityCritical Priority = "critical" // Code-mandated, rarely deniable
	PriorityHigh     Priority = "high"     // Strongly supported by code or evidence
	PriorityMedium   Priority = "medium"   // Commonly approved, situational
)

// Rank returns a numeric rank for priority comparison (higher wins)
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// LineItemCode is a reference entry for a construction cost line item.
// Loaded once at startup from the catalogue; never mutated.
type LineItemCode struct {
	Code           string   `json:"code" yaml:"code"`                       // Unique id (e.g., "RFG-DRIP")
	Description    string   `json:"description" yaml:"description"`         // Human-readable description
	Unit           Unit     `json:"unit" yaml:"unit"`                       // Unit of measure
	ReferencePrice float64  `json:"reference_price" yaml:"reference_price"` // Regional average, advisory only
	Category       string   `json:"category" yaml:"category"`               // e.g., "roofing", "labor"
	CitationIDs    []string `json:"citation_ids,omitempty" yaml:"citations"`
}

// CodeCitation is a building-code or manufacturer-instruction reference
// used to justify a supplement line item.
type CodeCitation struct {
	ID                 string   `json:"id" yaml:"id"`
	Title              string   `json:"title" yaml:"title"`
	RequirementSummary string   `json:"requirement_summary" yaml:"requirement"`
	FullText           string   `json:"full_text,omitempty" yaml:"full_text"`
	AppliesTo          []string `json:"applies_to" yaml:"applies_to"` // LineItemCode ids
	Template           string   `json:"template" yaml:"template"`     // Named {placeholder} template
}

// ScopeContext carries the roof facts a trigger condition is evaluated
// against. Derived from NormalizedScope.
type ScopeContext struct {
	Pitch          float64 // Rise per 12 units of run (8/12 pitch -> 8)
	Stories        int
	TotalAreaUnits float64 // Roofing squares
}

// TriggerCondition is a structured predicate over a ScopeContext. Clauses
// are ORed; a zero-valued condition always holds. Kept as data so whole
// catalogues can live in YAML.
type TriggerCondition struct {
	Always     bool    `json:"always,omitempty" yaml:"always"`
	MinPitch   float64 `json:"min_pitch,omitempty" yaml:"min_pitch"`     // Holds when pitch >= MinPitch
	MinStories int     `json:"min_stories,omitempty" yaml:"min_stories"` // Holds when stories >= MinStories
}

// Holds reports whether the condition is satisfied by the context
func (t TriggerCondition) Holds(ctx ScopeContext) bool {
	if t.Always {
		return true
	}
	if t.MinPitch == 0 && t.MinStories == 0 {
		return true
	}
	if t.MinPitch > 0 && ctx.Pitch >= t.MinPitch {
		return true
	}
	if t.MinStories > 0 && ctx.Stories >= t.MinStories {
		return true
	}
	return false
}

// OmittedItemTemplate describes a commonly-omitted construction item and
// the condition under which it should appear in a scope.
type OmittedItemTemplate struct {
	LineItemCode  string           `json:"line_item_code" yaml:"code"`
	Name          string           `json:"name" yaml:"name"` // Canonical name, used for fuzzy description matching
	Priority      Priority         `json:"priority" yaml:"priority"`
	Trigger       TriggerCondition `json:"trigger" yaml:"trigger"`
	CitationID    string           `json:"citation_id,omitempty" yaml:"citation"`
	Rationale     string           `json:"rationale" yaml:"rationale"`
	EvidenceHints []string         `json:"evidence_hints,omitempty" yaml:"evidence_hints"`
}
