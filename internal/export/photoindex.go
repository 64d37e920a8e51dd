package export

import (
	"fmt"
	"strings"

	"github.com/scopewright/scopewright/internal/model"
)

// PhotoIndex renders one entry per attached photo, grouped by source type
// and then by category. Group and entry order follow the package's photo
// order, so the output is deterministic.
func PhotoIndex(pkg *model.SupplementPackage) string {
	var b strings.Builder

	b.WriteString("PHOTO INDEX\n")
	writeField(&b, "Claim", pkg.ClaimRef)
	fmt.Fprintf(&b, "  Photos:    %d\n\n", len(pkg.Photos))

	if len(pkg.Photos) == 0 {
		b.WriteString("  (no photos attached)\n")
		return b.String()
	}

	for _, sourceType := range sourceTypeOrder(pkg.Photos) {
		fmt.Fprintf(&b, "%s\n", strings.ToUpper(string(sourceType)))
		for _, category := range categoryOrder(pkg.Photos, sourceType) {
			fmt.Fprintf(&b, "  %s:\n", category)
			n := 0
			for _, photo := range pkg.Photos {
				if photo.SourceType != sourceType || photoCategory(photo) != category {
					continue
				}
				n++
				fmt.Fprintf(&b, "    %d. %s\n", n, photoLine(photo))
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// photoLine renders one photo entry: caption, location hint, damage summary
func photoLine(photo model.PhotoRef) string {
	parts := []string{}
	if photo.Caption != "" {
		parts = append(parts, photo.Caption)
	}
	if photo.LocationHint != "" {
		parts = append(parts, "location: "+photo.LocationHint)
	}
	if photo.DamageSummary != "" {
		parts = append(parts, "damage: "+photo.DamageSummary)
	}
	if len(parts) == 0 {
		return "(no details)"
	}
	return strings.Join(parts, "; ")
}

// photoCategory returns the grouping category, defaulting uncategorized
// photos to "general"
func photoCategory(photo model.PhotoRef) string {
	if photo.Category == "" {
		return "general"
	}
	return photo.Category
}

// sourceTypeOrder returns the distinct source types in first-seen order
func sourceTypeOrder(photos []model.PhotoRef) []model.SourceType {
	var order []model.SourceType
	seen := make(map[model.SourceType]bool)
	for _, photo := range photos {
		if !seen[photo.SourceType] {
			seen[photo.SourceType] = true
			order = append(order, photo.SourceType)
		}
	}
	return order
}

// categoryOrder returns the distinct categories for a source type in
// first-seen order
func categoryOrder(photos []model.PhotoRef, sourceType model.SourceType) []string {
	var order []string
	seen := make(map[string]bool)
	for _, photo := range photos {
		if photo.SourceType != sourceType {
			continue
		}
		category := photoCategory(photo)
		if !seen[category] {
			seen[category] = true
			order = append(order, category)
		}
	}
	return order
}
