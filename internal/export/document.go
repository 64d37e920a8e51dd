package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/scopewright/scopewright/internal/model"
)

const sectionRule = "==============================================================="

// placeholderPattern matches {name} placeholders in citation templates
var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// DocumentOptions controls document rendering
type DocumentOptions struct {
	IncludeFooter bool

	// Narrative, when set, is inserted as an additional section. The
	// document is complete without it.
	Narrative *model.Narrative
}

// Document renders the package as a delimited plain-text supplement
// request with a fixed section order: claim identity, summary totals,
// line item table, citations, photo index summary, footer.
func Document(pkg *model.SupplementPackage, opts DocumentOptions) string {
	var b strings.Builder

	// Claim identity
	b.WriteString(sectionRule + "\n")
	b.WriteString("  SUPPLEMENT REQUEST\n")
	b.WriteString(sectionRule + "\n\n")
	writeField(&b, "Claim", pkg.ClaimRef)
	writeField(&b, "Insured", pkg.Insured)
	writeField(&b, "Property", pkg.PropertyAddress)
	writeField(&b, "Carrier", pkg.Carrier)
	b.WriteString("\n")

	// Summary totals
	b.WriteString("SUMMARY\n")
	fmt.Fprintf(&b, "  Original estimate RCV:  $%s\n", formatMoney(pkg.TotalOriginalRCV))
	fmt.Fprintf(&b, "  Supplement RCV:         $%s\n", formatMoney(pkg.TotalSupplementRCV))
	fmt.Fprintf(&b, "  Revised total RCV:      $%s\n", formatMoney(pkg.TotalOriginalRCV+pkg.TotalSupplementRCV))
	b.WriteString("\n")

	// Line item table
	b.WriteString("SUPPLEMENT LINE ITEMS\n")
	if len(pkg.LineItems) == 0 {
		b.WriteString("  (none)\n")
	}
	for i, li := range pkg.LineItems {
		fmt.Fprintf(&b, "  %2d. %-11s %-42s %8s %-3s @ $%9s = $%s\n",
			i+1, li.Code, truncate(li.Description, 42), formatQuantity(li.Quantity),
			li.Unit, formatMoney(li.UnitPrice), formatMoney(li.RCV))
	}
	b.WriteString("\n")

	// Citations
	b.WriteString("CODE REQUIREMENTS\n")
	if len(pkg.Citations) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, cit := range pkg.Citations {
		fmt.Fprintf(&b, "  [%s]\n", cit.ID)
		for _, line := range wrap(RenderCitation(cit, citationValues(pkg, cit)), 70) {
			b.WriteString("    " + line + "\n")
		}
	}
	b.WriteString("\n")

	// Optional narrative
	if opts.Narrative != nil && opts.Narrative.Enabled && opts.Narrative.Text != "" {
		b.WriteString("NARRATIVE\n")
		for _, line := range strings.Split(strings.TrimSpace(opts.Narrative.Text), "\n") {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}

	// Photo index summary
	b.WriteString("PHOTO INDEX\n")
	fmt.Fprintf(&b, "  %d photo(s) attached; see photo index export for details.\n", len(pkg.Photos))
	b.WriteString("\n")

	if opts.IncludeFooter {
		b.WriteString(sectionRule + "\n")
		b.WriteString("Prepared with scopewright. Reference prices are regional averages;\n")
		b.WriteString("final pricing is subject to carrier review.\n")
	}

	return b.String()
}

// RenderCitation substitutes named {placeholder}s in the citation
// template. A placeholder with no supplied value renders as the visibly
// empty token [name] rather than failing the render.
func RenderCitation(cit model.CodeCitation, values map[string]string) string {
	tpl := cit.Template
	if tpl == "" {
		return cit.RequirementSummary
	}
	return placeholderPattern.ReplaceAllStringFunc(tpl, func(match string) string {
		name := strings.Trim(match, "{}")
		if v, ok := values[name]; ok && v != "" {
			return v
		}
		return "[" + name + "]"
	})
}

// citationValues builds the substitution values for one citation
func citationValues(pkg *model.SupplementPackage, cit model.CodeCitation) map[string]string {
	return map[string]string{
		"code_id":          cit.ID,
		"title":            cit.Title,
		"requirement":      cit.RequirementSummary,
		"claim_ref":        pkg.ClaimRef,
		"insured":          pkg.Insured,
		"property_address": pkg.PropertyAddress,
		"carrier":          pkg.Carrier,
	}
}

// writeField writes one identity line, keeping absent values visible
func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		value = "(not provided)"
	}
	fmt.Fprintf(b, "  %-10s %s\n", label+":", value)
}

// truncate shortens s to max runes with an ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// wrap splits text into lines of at most width runes, breaking on spaces
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len([]rune(line))+1+len([]rune(word)) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}
