// Package assemble builds priced supplement packages from approved delta
// items. The assembler is a pure function of its inputs: re-running it
// after a status change always reflects the latest approvals.
package assemble

import (
	"fmt"
	"math"
	"strings"

	"github.com/scopewright/scopewright/internal/kb"
	"github.com/scopewright/scopewright/internal/model"
)

// Assembler prices approved deltas into a supplement package
type Assembler struct {
	catalog *kb.Catalog
}

// NewAssembler creates an assembler backed by the given catalogue
func NewAssembler(catalog *kb.Catalog) *Assembler {
	return &Assembler{catalog: catalog}
}

// Assemble builds a fresh SupplementPackage from the scope and the
// approved subset of deltas. Deltas in any other status are skipped with a
// warning rather than priced. Pricing gaps (unknown codes, missing
// reference prices) zero out with a warning, never abort.
func (a *Assembler) Assemble(scope *model.NormalizedScope, deltas []model.DeltaItem) *model.SupplementPackage {
	pkg := &model.SupplementPackage{
		ClaimRef:         scope.ClaimNumber,
		Insured:          scope.Insured,
		PropertyAddress:  scope.PropertyAddress,
		Carrier:          scope.Carrier,
		TotalOriginalRCV: scope.Totals.ReplacementCostValue,
	}

	warnf := func(format string, args ...any) {
		pkg.Warnings = append(pkg.Warnings, fmt.Sprintf(format, args...))
	}

	citationSeen := make(map[string]bool)
	photoSeen := make(map[string]bool)
	var total float64

	for _, d := range deltas {
		if d.Status != model.StatusApproved {
			warnf("skipping %q: status is %q, not approved", d.Description, d.Status)
			continue
		}

		li := a.priceDelta(d, warnf)
		total += li.RCV
		pkg.LineItems = append(pkg.LineItems, li)

		for _, id := range li.CitationIDs {
			if citationSeen[id] {
				continue
			}
			citationSeen[id] = true
			cit, ok := a.catalog.Citation(id)
			if !ok {
				warnf("citation %q for %q not found in catalogue", id, d.Description)
				continue
			}
			pkg.Citations = append(pkg.Citations, cit)
		}

		for _, ref := range d.EvidenceRefs {
			if ref.SourceType != model.SourcePhoto {
				continue
			}
			photo := photoRef(d, ref)
			key := photo.Category + "\x00" + photo.LocationHint + "\x00" + photo.DamageSummary
			if photoSeen[key] {
				continue
			}
			photoSeen[key] = true
			pkg.Photos = append(pkg.Photos, photo)
		}
	}

	pkg.TotalSupplementRCV = round2(total)
	return pkg
}

// priceDelta resolves pricing for one approved delta. An explicit
// EstimatedRCV wins; otherwise quantity times the catalogue reference
// price, falling back to zero with a warning when no reference exists.
func (a *Assembler) priceDelta(d model.DeltaItem, warnf func(string, ...any)) model.LineItem {
	li := model.LineItem{
		Code:        d.LineItemCode,
		Description: d.Description,
		Category:    "supplement",
		Quantity:    d.Quantity,
		Unit:        d.Unit,
	}

	if d.CitationID != "" {
		li.CitationIDs = append(li.CitationIDs, d.CitationID)
	}

	ref, known := a.catalog.LookupLineItemCode(d.LineItemCode)
	if known {
		li.Category = ref.Category
		if li.Unit == "" {
			li.Unit = ref.Unit
		}
		for _, id := range ref.CitationIDs {
			if !contains(li.CitationIDs, id) {
				li.CitationIDs = append(li.CitationIDs, id)
			}
		}
	}

	switch {
	case d.EstimatedRCV != nil:
		li.RCV = round2(*d.EstimatedRCV)
		if d.Quantity > 0 {
			li.UnitPrice = round2(li.RCV / d.Quantity)
		}
	case known && ref.ReferencePrice > 0:
		li.UnitPrice = ref.ReferencePrice
		li.RCV = round2(d.Quantity * ref.ReferencePrice)
		if d.Quantity == 0 {
			warnf("%q: no quantity available, priced at 0", d.Description)
		}
	default:
		if !known && d.LineItemCode != "" {
			warnf("%q: unknown line item code %q, priced at 0", d.Description, d.LineItemCode)
		} else {
			warnf("%q: no reference price available, priced at 0", d.Description)
		}
	}

	li.ACV = li.RCV // Supplements carry no depreciation at assembly time
	return li
}

// photoRef converts an attached photo evidence signal into a package
// photo entry
func photoRef(d model.DeltaItem, ref model.EvidenceSignal) model.PhotoRef {
	category := strings.ToLower(strings.TrimSpace(ref.DetectedComponent))
	if category == "" {
		category = strings.ToLower(d.Description)
	}
	summary := ref.DetectedDamage
	if summary != "" && ref.Severity != "" {
		summary = fmt.Sprintf("%s (%s)", ref.DetectedDamage, ref.Severity)
	}
	return model.PhotoRef{
		Caption:       fmt.Sprintf("Supporting evidence: %s", d.Description),
		SourceType:    ref.SourceType,
		Category:      category,
		LocationHint:  ref.LocationHint,
		DamageSummary: summary,
	}
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
