// Package validate checks supplement packages for completeness before
// export. Hard errors block sending; warnings never block generating a
// draft for review.
package validate

import (
	"fmt"

	"github.com/scopewright/scopewright/internal/model"
)

// Package validates a supplement package. Pure and idempotent: the same
// package always yields the same result, and every message names the
// missing field or offending item.
func Package(pkg *model.SupplementPackage) model.ValidationResult {
	result := model.ValidationResult{}

	if pkg.ClaimRef == "" {
		result.Errors = append(result.Errors, "missing claim number")
	}
	if pkg.Insured == "" {
		result.Errors = append(result.Errors, "missing insured name")
	}
	if pkg.PropertyAddress == "" {
		result.Errors = append(result.Errors, "missing property address")
	}
	if len(pkg.LineItems) == 0 {
		result.Errors = append(result.Errors, "package contains no line items")
	}

	if pkg.Carrier == "" {
		result.Warnings = append(result.Warnings, "missing carrier name")
	}
	for _, li := range pkg.LineItems {
		if len(li.CitationIDs) == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("line item %q has no supporting citation", li.Description))
		}
	}
	if len(pkg.Photos) == 0 {
		result.Warnings = append(result.Warnings, "package has no attached photos")
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
