package model

// SourceType classifies where an evidence signal came from
type SourceType string

const (
	SourcePhoto       SourceType = "photo"       // Vision-analysis tag on an inspection photo
	SourceMeasurement SourceType = "measurement" // Aerial/field measurement report
)

// DamageSeverity grades damage detected in evidence
type DamageSeverity string

const (
	SeverityMinor    DamageSeverity = "minor"
	SeverityModerate DamageSeverity = "moderate"
	SeveritySevere   DamageSeverity = "severe"
)

// EvidenceSignal is a single observation produced by an external
// collaborator (vision model or measurement report). Read-only input to
// delta detection.
type EvidenceSignal struct {
	SourceType        SourceType     `json:"source_type"`
	DetectedComponent string         `json:"detected_component,omitempty"` // e.g., "drip edge", "ridge cap"
	DetectedDamage    string         `json:"detected_damage,omitempty"`    // e.g., "hail impact", "crease"
	Severity          DamageSeverity `json:"severity,omitempty"`
	Confidence        float64        `json:"confidence"` // 0..1
	LocationHint      string         `json:"location_hint,omitempty"`
}

// PhotoRef is one photo entry attached to a supplement package
type PhotoRef struct {
	ID            string     `json:"id,omitempty"`
	Caption       string     `json:"caption,omitempty"`
	SourceType    SourceType `json:"source_type"`
	Category      string     `json:"category,omitempty"` // Component the photo documents
	LocationHint  string     `json:"location_hint,omitempty"`
	DamageSummary string     `json:"damage_summary,omitempty"`
}
