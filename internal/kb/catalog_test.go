package kb

import (
	"strings"
	"testing"

	"github.com/scopewright/scopewright/internal/model"
)

func TestDefault_BuiltinCatalogLoads(t *testing.T) {
	catalog := Default()

	if len(catalog.LineItems()) == 0 {
		t.Fatal("built-in catalogue has no line items")
	}
	if len(catalog.Citations()) == 0 {
		t.Fatal("built-in catalogue has no citations")
	}
	if len(catalog.Templates()) == 0 {
		t.Fatal("built-in catalogue has no omitted item templates")
	}
}

func TestCatalog_LookupLineItemCode(t *testing.T) {
	catalog := Default()

	tests := []struct {
		code  string
		found bool
	}{
		{"RFG-DRIP", true},
		{"rfg-drip", true}, // Case-insensitive
		{" RFG-DRIP ", true},
		{"RFG-NOPE", false},
		{"", false},
	}

	for _, tt := range tests {
		li, found := catalog.LookupLineItemCode(tt.code)
		if found != tt.found {
			t.Errorf("LookupLineItemCode(%q) found = %v, want %v", tt.code, found, tt.found)
		}
		if found && li.Code != "RFG-DRIP" {
			t.Errorf("LookupLineItemCode(%q) = %q, want RFG-DRIP", tt.code, li.Code)
		}
	}
}

func TestCatalog_CitationsFor(t *testing.T) {
	catalog := Default()

	citations := catalog.CitationsFor("RFG-DRIP")
	if len(citations) != 1 {
		t.Fatalf("CitationsFor(RFG-DRIP) returned %d citations, want 1", len(citations))
	}
	if citations[0].ID != "IRC-R905.2.8.5" {
		t.Errorf("citation id = %q, want IRC-R905.2.8.5", citations[0].ID)
	}

	if got := catalog.CitationsFor("RFG-NOPE"); len(got) != 0 {
		t.Errorf("CitationsFor on unknown code returned %d citations, want 0", len(got))
	}
}

func TestCatalog_OmittedItemTemplates_TriggerFiltering(t *testing.T) {
	catalog := Default()

	// Low-slope single-story: conditional templates must be excluded
	flat := catalog.OmittedItemTemplates(model.ScopeContext{Pitch: 4, Stories: 1})
	if containsTemplate(flat, "RFG-STEEP") {
		t.Error("steep surcharge template applied to a 4/12 roof")
	}
	if containsTemplate(flat, "LAB-SUPER") {
		t.Error("supervision template applied to a single-story structure")
	}
	// Critical templates are always included
	if !containsTemplate(flat, "RFG-DRIP") {
		t.Error("critical drip edge template missing")
	}
	if !containsTemplate(flat, "RFG-IWS") {
		t.Error("critical ice & water template missing")
	}

	// Steep two-story: conditional templates must appear
	steep := catalog.OmittedItemTemplates(model.ScopeContext{Pitch: 8, Stories: 2})
	if !containsTemplate(steep, "RFG-STEEP") {
		t.Error("steep surcharge template missing for an 8/12 roof")
	}
	if !containsTemplate(steep, "LAB-SUPER") {
		t.Error("supervision template missing for a two-story structure")
	}
}

func TestNew_ReferentialIntegrity(t *testing.T) {
	lineItems := []model.LineItemCode{
		{Code: "X-1", Description: "Item one", Unit: model.UnitEach},
	}

	tests := []struct {
		name      string
		citations []model.CodeCitation
		templates []model.OmittedItemTemplate
		wantErr   string
	}{
		{
			name:      "citation references unknown code",
			citations: []model.CodeCitation{{ID: "C-1", AppliesTo: []string{"X-MISSING"}}},
			wantErr:   "unknown line item code",
		},
		{
			name:      "template references unknown code",
			templates: []model.OmittedItemTemplate{{LineItemCode: "X-MISSING", Name: "thing"}},
			wantErr:   "unknown line item code",
		},
		{
			name:      "template references unknown citation",
			templates: []model.OmittedItemTemplate{{LineItemCode: "X-1", Name: "thing", CitationID: "C-MISSING"}},
			wantErr:   "unknown citation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(lineItems, tt.citations, tt.templates)
			if err == nil {
				t.Fatal("expected referential integrity error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestNew_DuplicateCode(t *testing.T) {
	_, err := New([]model.LineItemCode{
		{Code: "X-1", Description: "a"},
		{Code: "x-1", Description: "b"}, // Same code, different case
	}, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("duplicate code should be rejected, got %v", err)
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("line_items: [not valid")); err == nil {
		t.Error("malformed YAML should fail to parse")
	}
}

func containsTemplate(templates []model.OmittedItemTemplate, code string) bool {
	for _, tpl := range templates {
		if tpl.LineItemCode == code {
			return true
		}
	}
	return false
}
