// Package kb holds the knowledge base: line item codes, building-code
// citations, and commonly-omitted item templates. Catalogues are built
// once and injected into the engine entry points, so detection stays a
// pure function of its explicit inputs and is testable with substitute
// catalogues.
package kb

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/scopewright/scopewright/internal/model"
)

//go:embed catalog.yaml
var builtinCatalog []byte

// Catalog is an immutable set of reference tables. Lookup misses return
// explicit not-found values, never errors, so callers can degrade
// gracefully on unknown codes.
type Catalog struct {
	lineItems []model.LineItemCode
	citations []model.CodeCitation
	templates []model.OmittedItemTemplate

	codeIndex     map[string]int // Upper-cased code -> lineItems index
	citationIndex map[string]int // Citation id -> citations index
}

// catalogFile is the YAML shape of a catalogue document
type catalogFile struct {
	LineItems    []model.LineItemCode        `yaml:"line_items"`
	Citations    []model.CodeCitation        `yaml:"citations"`
	OmittedItems []model.OmittedItemTemplate `yaml:"omitted_items"`
}

// New builds a catalogue from its tables, validating referential
// integrity: every citation's applies_to entry and every template's line
// item code must resolve to a known line item.
func New(lineItems []model.LineItemCode, citations []model.CodeCitation, templates []model.OmittedItemTemplate) (*Catalog, error) {
	c := &Catalog{
		lineItems:     lineItems,
		citations:     citations,
		templates:     templates,
		codeIndex:     make(map[string]int, len(lineItems)),
		citationIndex: make(map[string]int, len(citations)),
	}

	for i, li := range lineItems {
		key := strings.ToUpper(li.Code)
		if key == "" {
			return nil, fmt.Errorf("line item %d has an empty code", i)
		}
		if _, dup := c.codeIndex[key]; dup {
			return nil, fmt.Errorf("duplicate line item code %q", li.Code)
		}
		c.codeIndex[key] = i
	}

	for i, cit := range citations {
		if cit.ID == "" {
			return nil, fmt.Errorf("citation %d has an empty id", i)
		}
		if _, dup := c.citationIndex[cit.ID]; dup {
			return nil, fmt.Errorf("duplicate citation id %q", cit.ID)
		}
		c.citationIndex[cit.ID] = i

		for _, code := range cit.AppliesTo {
			if _, ok := c.codeIndex[strings.ToUpper(code)]; !ok {
				return nil, fmt.Errorf("citation %q applies to unknown line item code %q", cit.ID, code)
			}
		}
	}

	for _, tpl := range templates {
		if _, ok := c.codeIndex[strings.ToUpper(tpl.LineItemCode)]; !ok {
			return nil, fmt.Errorf("omitted item template %q references unknown line item code %q", tpl.Name, tpl.LineItemCode)
		}
		if tpl.CitationID != "" {
			if _, ok := c.citationIndex[tpl.CitationID]; !ok {
				return nil, fmt.Errorf("omitted item template %q references unknown citation %q", tpl.Name, tpl.CitationID)
			}
		}
	}

	return c, nil
}

// Parse builds a catalogue from YAML bytes
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	return New(file.LineItems, file.Citations, file.OmittedItems)
}

// LoadFile builds a catalogue from a YAML file on disk
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	return Parse(data)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalogue. The embedded data is validated
// by tests, so a parse failure here is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(builtinCatalog)
		if err != nil {
			panic(fmt.Sprintf("built-in catalogue is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LookupLineItemCode returns the reference entry for a code. The match is
// case-insensitive. The second return is false when the code is unknown.
func (c *Catalog) LookupLineItemCode(code string) (model.LineItemCode, bool) {
	i, ok := c.codeIndex[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return model.LineItemCode{}, false
	}
	return c.lineItems[i], true
}

// Citation returns the citation with the given id, if known
func (c *Catalog) Citation(id string) (model.CodeCitation, bool) {
	i, ok := c.citationIndex[id]
	if !ok {
		return model.CodeCitation{}, false
	}
	return c.citations[i], true
}

// CitationsFor returns every citation applicable to a line item code, in
// catalogue order
func (c *Catalog) CitationsFor(code string) []model.CodeCitation {
	var out []model.CodeCitation
	for _, cit := range c.citations {
		for _, applies := range cit.AppliesTo {
			if strings.EqualFold(applies, code) {
				out = append(out, cit)
				break
			}
		}
	}
	return out
}

// OmittedItemTemplates returns the templates applicable to a scope
// context, in catalogue order. Critical templates are always included;
// conditional templates only when their trigger holds.
func (c *Catalog) OmittedItemTemplates(ctx model.ScopeContext) []model.OmittedItemTemplate {
	var out []model.OmittedItemTemplate
	for _, tpl := range c.templates {
		if tpl.Priority == model.PriorityCritical || tpl.Trigger.Holds(ctx) {
			out = append(out, tpl)
		}
	}
	return out
}

// LineItems returns all reference line items in catalogue order
func (c *Catalog) LineItems() []model.LineItemCode {
	return c.lineItems
}

// Citations returns all citations in catalogue order
func (c *Catalog) Citations() []model.CodeCitation {
	return c.citations
}

// Templates returns all omitted item templates in catalogue order
func (c *Catalog) Templates() []model.OmittedItemTemplate {
	return c.templates
}
