package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/scopewright/scopewright/internal/model"
)

// ClaimBundle names the input files for one claim
type ClaimBundle struct {
	// ScopePath is the raw extracted scope JSON (required)
	ScopePath string

	// EvidencePath is the evidence signal JSON (optional)
	EvidencePath string

	// DecisionsPath is the reviewer decision file (optional)
	DecisionsPath string
}

// Decision is one reviewer action on a detected delta. Match is compared
// against the delta's line item code (exact, case-insensitive) or its
// description (substring, case-insensitive).
type Decision struct {
	Match  string `json:"match" yaml:"match"`
	Action string `json:"action" yaml:"action"` // "approve" or "deny"
}

// ReadRawScope reads a raw extracted scope record. The shape is
// arbitrary; the normalizer takes it from here.
func ReadRawScope(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scope: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse scope %s: %w", path, err)
	}
	return raw, nil
}

// ReadEvidence reads an evidence signal file. A missing path yields an
// empty set: evidence is optional.
func ReadEvidence(path string) ([]model.EvidenceSignal, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read evidence: %w", err)
	}
	var signals []model.EvidenceSignal
	if err := json.Unmarshal(data, &signals); err != nil {
		return nil, fmt.Errorf("parse evidence %s: %w", path, err)
	}
	return signals, nil
}

// ReadDecisions reads a reviewer decision file
func ReadDecisions(path string) ([]Decision, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read decisions: %w", err)
	}
	var decisions []Decision
	if err := json.Unmarshal(data, &decisions); err != nil {
		return nil, fmt.Errorf("parse decisions %s: %w", path, err)
	}
	return decisions, nil
}

// ApplyDecisions walks the reviewer decisions over the detected deltas,
// driving the status state machine. An illegal transition is a caller
// bug and returns a hard error; a decision that matches no delta is a
// warning. Deltas are mutated in place.
func ApplyDecisions(deltas []model.DeltaItem, decisions []Decision) ([]string, error) {
	var warnings []string

	for _, decision := range decisions {
		var next model.DeltaStatus
		switch strings.ToLower(decision.Action) {
		case "approve":
			next = model.StatusApproved
		case "deny":
			next = model.StatusDenied
		default:
			return warnings, fmt.Errorf("unknown decision action %q for %q (expected approve or deny)", decision.Action, decision.Match)
		}

		matched := false
		for i := range deltas {
			if !decisionMatches(decision, &deltas[i]) {
				continue
			}
			matched = true
			if err := deltas[i].Transition(next); err != nil {
				return warnings, err
			}
		}
		if !matched {
			warnings = append(warnings, fmt.Sprintf("decision %q matched no detected delta", decision.Match))
		}
	}

	return warnings, nil
}

// ApproveAll approves every identified delta. Used for draft packages
// where no reviewer decisions exist yet.
func ApproveAll(deltas []model.DeltaItem) error {
	for i := range deltas {
		if err := deltas[i].Transition(model.StatusApproved); err != nil {
			return err
		}
	}
	return nil
}

// decisionMatches compares a decision's match term against one delta
func decisionMatches(decision Decision, d *model.DeltaItem) bool {
	match := strings.TrimSpace(decision.Match)
	if match == "" {
		return false
	}
	if d.LineItemCode != "" && strings.EqualFold(d.LineItemCode, match) {
		return true
	}
	return strings.Contains(strings.ToLower(d.Description), strings.ToLower(match))
}
