package export

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/scopewright/scopewright/internal/model"
)

func testPackage() *model.SupplementPackage {
	return &model.SupplementPackage{
		ClaimRef:        "CLM-4821",
		Insured:         "J. Walker",
		PropertyAddress: "12 Oak St, Dayton OH",
		Carrier:         "Acme Mutual",
		LineItems: []model.LineItem{
			{
				Code:        "RFG-DRIP",
				Description: `Drip edge, aluminum, "mill finish"`,
				Quantity:    180,
				Unit:        model.UnitLinearFoot,
				UnitPrice:   3.25,
				RCV:         585.00,
				CitationIDs: []string{"IRC-R905.2.8.5"},
			},
			{
				Code:        "RFG-STEEP",
				Description: "Steep roof charge (7/12 - 9/12)",
				Quantity:    28,
				Unit:        model.UnitSquare,
				UnitPrice:   48.00,
				RCV:         1344.00,
			},
		},
		Citations: []model.CodeCitation{
			{
				ID:                 "IRC-R905.2.8.5",
				Title:              "IRC R905.2.8.5 Drip edge",
				RequirementSummary: "A drip edge shall be provided at eaves and rake edges.",
				Template:           "Per {code_id} ({title}): {requirement} Applies at {property_address}.",
			},
		},
		Photos: []model.PhotoRef{
			{SourceType: model.SourcePhoto, Category: "drip edge", LocationHint: "north eave", DamageSummary: "absent at eave (severe)"},
			{SourceType: model.SourcePhoto, Category: "drip edge", LocationHint: "west rake"},
			{SourceType: model.SourceMeasurement, Category: "valley", LocationHint: "main roof"},
		},
		TotalOriginalRCV:   14250.00,
		TotalSupplementRCV: 1929.00,
	}
}

func TestCSV_RoundTripsThroughStandardParser(t *testing.T) {
	out, err := CSV(testPackage())
	if err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid RFC 4180 CSV: %v", err)
	}

	if len(records) != 3 { // Header + 2 items
		t.Fatalf("got %d records, want 3", len(records))
	}

	header := records[0]
	want := []string{"line", "code", "description", "quantity", "unit", "unitPrice", "rcv"}
	for i, col := range want {
		if header[i] != col {
			t.Errorf("header[%d] = %q, want %q", i, header[i], col)
		}
	}

	// The description with commas and quotes must survive the round trip
	if got := records[1][2]; got != `Drip edge, aluminum, "mill finish"` {
		t.Errorf("description did not round-trip: %q", got)
	}
	if records[1][6] != "585.00" {
		t.Errorf("rcv = %q, want 585.00", records[1][6])
	}
	if records[2][3] != "28" {
		t.Errorf("whole quantity = %q, want 28", records[2][3])
	}
}

func TestCSV_EmptyPackage(t *testing.T) {
	out, err := CSV(&model.SupplementPackage{})
	if err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("empty package should export only the header, got %d records", len(records))
	}
}

func TestDocument_SectionOrder(t *testing.T) {
	doc := Document(testPackage(), DocumentOptions{IncludeFooter: true})

	sections := []string{
		"SUPPLEMENT REQUEST",
		"SUMMARY",
		"SUPPLEMENT LINE ITEMS",
		"CODE REQUIREMENTS",
		"PHOTO INDEX",
	}
	pos := -1
	for _, section := range sections {
		idx := strings.Index(doc, section)
		if idx < 0 {
			t.Fatalf("document missing section %q", section)
		}
		if idx < pos {
			t.Errorf("section %q out of order", section)
		}
		pos = idx
	}

	if !strings.Contains(doc, "CLM-4821") {
		t.Error("document missing claim identity")
	}
	if !strings.Contains(doc, "$1929.00") {
		t.Error("document missing supplement total")
	}
	// Placeholder substitution from package fields
	if !strings.Contains(doc, "Applies at 12 Oak St, Dayton OH.") {
		t.Error("citation template placeholders not substituted")
	}
}

func TestDocument_UnresolvedPlaceholderRendersVisiblyEmpty(t *testing.T) {
	pkg := testPackage()
	pkg.PropertyAddress = ""
	pkg.Citations[0].Template = "Required at {property_address} per {bogus_field}."

	doc := Document(pkg, DocumentOptions{})

	if !strings.Contains(doc, "[property_address]") {
		t.Error("empty-valued placeholder should render as a visible token")
	}
	if !strings.Contains(doc, "[bogus_field]") {
		t.Error("unknown placeholder should render as a visible token, not crash")
	}
}

func TestDocument_FooterToggle(t *testing.T) {
	with := Document(testPackage(), DocumentOptions{IncludeFooter: true})
	without := Document(testPackage(), DocumentOptions{IncludeFooter: false})

	if !strings.Contains(with, "Prepared with scopewright") {
		t.Error("footer missing when enabled")
	}
	if strings.Contains(without, "Prepared with scopewright") {
		t.Error("footer present when disabled")
	}
}

func TestDocument_NarrativeSection(t *testing.T) {
	doc := Document(testPackage(), DocumentOptions{
		Narrative: &model.Narrative{Enabled: true, Text: "The carrier scope omits code-required drip edge."},
	})

	if !strings.Contains(doc, "NARRATIVE") {
		t.Error("narrative section missing")
	}
	if !strings.Contains(doc, "omits code-required drip edge") {
		t.Error("narrative text missing")
	}
}

func TestDocument_Deterministic(t *testing.T) {
	if Document(testPackage(), DocumentOptions{IncludeFooter: true}) != Document(testPackage(), DocumentOptions{IncludeFooter: true}) {
		t.Error("document render is not deterministic")
	}
}

func TestPhotoIndex_GroupsBySourceTypeAndCategory(t *testing.T) {
	index := PhotoIndex(testPackage())

	photoPos := strings.Index(index, "PHOTO\n")
	measurementPos := strings.Index(index, "MEASUREMENT\n")
	if photoPos < 0 || measurementPos < 0 {
		t.Fatalf("index missing source type groups:\n%s", index)
	}
	if photoPos > measurementPos {
		t.Error("groups should follow first-seen order (photo before measurement)")
	}

	if !strings.Contains(index, "drip edge:") {
		t.Error("index missing category grouping")
	}
	if !strings.Contains(index, "location: north eave") {
		t.Error("index missing location hint")
	}
	if !strings.Contains(index, "damage: absent at eave (severe)") {
		t.Error("index missing damage summary")
	}
}

func TestPhotoIndex_EmptyPackage(t *testing.T) {
	index := PhotoIndex(&model.SupplementPackage{ClaimRef: "CLM-1"})

	if !strings.Contains(index, "no photos attached") {
		t.Errorf("empty index should say so:\n%s", index)
	}
}
