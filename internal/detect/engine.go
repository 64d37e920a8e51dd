// Package detect implements the delta detection engine: it diffs a
// normalized carrier scope against the knowledge base and photographic
// evidence, and emits the discrepancies worth supplementing.
package detect

import (
	"fmt"
	"strings"

	"github.com/scopewright/scopewright/internal/kb"
	"github.com/scopewright/scopewright/internal/model"
)

// Engine detects deltas between a carrier scope and ground truth
type Engine struct {
	catalog *kb.Catalog
}

// NewEngine creates a detection engine backed by the given catalogue
func NewEngine(catalog *kb.Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// DetectDeltas runs the three detection passes in order and returns the
// deduplicated delta list. Output is deterministic for a given scope,
// evidence set, and catalogue: pass 1 follows catalogue order, pass 2
// follows evidence order, and ties between overlapping templates resolve
// by priority then first-defined.
func (e *Engine) DetectDeltas(scope *model.NormalizedScope, evidence []model.EvidenceSignal) []model.DeltaItem {
	var deltas []model.DeltaItem

	// Pass 1: catalogue omissions
	attached := make(map[int]bool) // Evidence indexes already referenced by a delta
	for _, tpl := range e.applicableTemplates(scope.Context()) {
		if scopeContains(scope, tpl) {
			continue
		}
		deltas = append(deltas, e.omissionDelta(scope, tpl, evidence, attached))
	}

	// Pass 2: evidence-driven additions
	for i, sig := range evidence {
		if attached[i] || !evidenceActionable(sig) {
			continue
		}
		deltas = append(deltas, evidenceDelta(sig))
	}

	// Pass 3: deduplication. Earlier items win, so an omission-pass delta
	// absorbs the evidence refs of a matching evidence-pass delta.
	return dedupe(deltas)
}

// applicableTemplates filters the catalogue by trigger and resolves
// overlapping entries for the same line item code: highest priority wins,
// ties go to the first-defined template.
func (e *Engine) applicableTemplates(ctx model.ScopeContext) []model.OmittedItemTemplate {
	templates := e.catalog.OmittedItemTemplates(ctx)

	byCode := make(map[string]int) // Upper-cased code -> index into out
	var out []model.OmittedItemTemplate
	for _, tpl := range templates {
		key := strings.ToUpper(tpl.LineItemCode)
		if prev, seen := byCode[key]; seen {
			if tpl.Priority.Rank() > out[prev].Priority.Rank() {
				out[prev] = tpl
			}
			continue
		}
		byCode[key] = len(out)
		out = append(out, tpl)
	}
	return out
}

// scopeContains reports whether the scope already carries the templated
// item. Two prongs, either sufficient: an exact case-insensitive code
// match, or the template's canonical name appearing as a substring of a
// line item description. The substring prong is an accepted heuristic:
// carrier descriptions are loosely worded, and catching them matters more
// than occasional over-matching.
func scopeContains(scope *model.NormalizedScope, tpl model.OmittedItemTemplate) bool {
	name := strings.ToLower(tpl.Name)
	for _, li := range scope.LineItems {
		if li.Code != "" && strings.EqualFold(li.Code, tpl.LineItemCode) {
			return true
		}
		if name != "" && strings.Contains(strings.ToLower(li.Description), name) {
			return true
		}
	}
	return false
}

// omissionDelta builds a missing-item delta from a template, attaching any
// evidence signal that independently names the same component. Supporting
// evidence raises defensibility but never changes the delta type.
func (e *Engine) omissionDelta(scope *model.NormalizedScope, tpl model.OmittedItemTemplate, evidence []model.EvidenceSignal, attached map[int]bool) model.DeltaItem {
	d := model.DeltaItem{
		Type:          model.DeltaMissing,
		LineItemCode:  tpl.LineItemCode,
		Priority:      tpl.Priority,
		CitationID:    tpl.CitationID,
		Rationale:     tpl.Rationale,
		Status:        model.StatusIdentified,
		EvidenceHints: tpl.EvidenceHints,
	}

	if ref, ok := e.catalog.LookupLineItemCode(tpl.LineItemCode); ok {
		d.Description = ref.Description
		d.Unit = ref.Unit
		// Area-priced items default to the measured roof area
		if ref.Unit == model.UnitSquare && scope.RoofMetrics.TotalAreaUnits > 0 {
			d.Quantity = scope.RoofMetrics.TotalAreaUnits
		}
	} else {
		// Unknown code in a substitute catalogue: degrade to the canonical name
		d.Description = tpl.Name
	}

	name := strings.ToLower(tpl.Name)
	for i, sig := range evidence {
		if signalNames(sig, name) {
			d.EvidenceRefs = append(d.EvidenceRefs, sig)
			attached[i] = true
		}
	}

	return d
}

// signalNames reports whether the signal's detected component names the
// templated item (substring match in either direction)
func signalNames(sig model.EvidenceSignal, name string) bool {
	component := strings.ToLower(strings.TrimSpace(sig.DetectedComponent))
	if component == "" || name == "" {
		return false
	}
	return strings.Contains(component, name) || strings.Contains(name, component)
}

// evidenceActionable reports whether a signal warrants its own delta:
// photo evidence with at least moderate damage
func evidenceActionable(sig model.EvidenceSignal) bool {
	if sig.SourceType != model.SourcePhoto {
		return false
	}
	return sig.Severity == model.SeverityModerate || sig.Severity == model.SeveritySevere
}

// evidenceDelta builds a recommend-add delta from a damage signal
func evidenceDelta(sig model.EvidenceSignal) model.DeltaItem {
	priority := model.PriorityMedium
	if sig.Severity == model.SeveritySevere {
		priority = model.PriorityHigh
	}

	component := sig.DetectedComponent
	if component == "" {
		component = "unidentified component"
	}
	description := component
	if sig.DetectedDamage != "" {
		description = fmt.Sprintf("%s - %s", component, sig.DetectedDamage)
	}

	return model.DeltaItem{
		Type:        model.DeltaRecommendAdd,
		Description: description,
		Rationale:   fmt.Sprintf("%s damage to %s documented in photo evidence", sig.Severity, component),
		Priority:    priority,
		Status:      model.StatusIdentified,
		EvidenceRefs: []model.EvidenceSignal{
			sig,
		},
	}
}

// dedupe collapses deltas sharing the same line item code (when present)
// and normalized description. The first occurrence is kept; evidence refs
// from discarded duplicates are merged into it.
func dedupe(deltas []model.DeltaItem) []model.DeltaItem {
	seen := make(map[string]int) // Dedupe key -> index into out
	var out []model.DeltaItem

	for _, d := range deltas {
		key := dedupeKey(d)
		if prev, dup := seen[key]; dup {
			out[prev].EvidenceRefs = mergeRefs(out[prev].EvidenceRefs, d.EvidenceRefs)
			continue
		}
		seen[key] = len(out)
		out = append(out, d)
	}
	return out
}

// dedupeKey builds the duplicate identity: code plus normalized description
func dedupeKey(d model.DeltaItem) string {
	return strings.ToUpper(strings.TrimSpace(d.LineItemCode)) + "\x00" + normalizeText(d.Description)
}

// normalizeText lower-cases and collapses interior whitespace
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// mergeRefs appends refs not already present (by value)
func mergeRefs(kept, discarded []model.EvidenceSignal) []model.EvidenceSignal {
	for _, ref := range discarded {
		duplicate := false
		for _, existing := range kept {
			if existing == ref {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, ref)
		}
	}
	return kept
}
