package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scopewright/scopewright/internal/model"
)

// writeBundle writes a minimal claim bundle into a temp dir
func writeBundle(t *testing.T, scope, evidence, decisions string) ClaimBundle {
	t.Helper()
	dir := t.TempDir()

	bundle := ClaimBundle{ScopePath: filepath.Join(dir, "claim.scope.json")}
	if err := os.WriteFile(bundle.ScopePath, []byte(scope), 0o644); err != nil {
		t.Fatal(err)
	}
	if evidence != "" {
		bundle.EvidencePath = filepath.Join(dir, "claim.evidence.json")
		if err := os.WriteFile(bundle.EvidencePath, []byte(evidence), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if decisions != "" {
		bundle.DecisionsPath = filepath.Join(dir, "claim.decisions.json")
		if err := os.WriteFile(bundle.DecisionsPath, []byte(decisions), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return bundle
}

const testScopeJSON = `{
	"claim_number": "CLM-4821",
	"insured": "J. Walker",
	"property_address": "12 Oak St, Dayton OH",
	"carrier": "Acme Mutual",
	"line_items": [
		{"code": "RFG-SHGL", "description": "Laminated comp. shingles", "category": "roofing", "quantity": 24, "unit": "SQ", "rcv": 6840.00}
	],
	"totals": {"rcv": 6840.00},
	"roof": {"squares": 24, "pitch": "8/12", "stories": 2}
}`

func TestPipeline_Run_DetectOnly(t *testing.T) {
	p, err := NewPipeline(model.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	bundle := writeBundle(t, testScopeJSON, "", "")
	report, err := p.Run(context.Background(), bundle, RunOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if report.RunID == "" {
		t.Error("report missing run id")
	}
	if report.Scope.ClaimNumber != "CLM-4821" {
		t.Errorf("claim number = %q", report.Scope.ClaimNumber)
	}
	if len(report.Deltas) == 0 {
		t.Fatal("no deltas detected for a scope missing drip edge")
	}
	if report.Package != nil {
		t.Error("package assembled without being requested")
	}
	for _, d := range report.Deltas {
		if d.Status != model.StatusIdentified {
			t.Errorf("delta %q status = %q, want identified", d.Description, d.Status)
		}
	}
}

func TestPipeline_Run_AssembleWithApproveAll(t *testing.T) {
	p, err := NewPipeline(model.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	bundle := writeBundle(t, testScopeJSON, "", "")
	report, err := p.Run(context.Background(), bundle, RunOptions{
		ApproveAll:      true,
		AssemblePackage: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if report.Package == nil {
		t.Fatal("no package assembled")
	}
	if len(report.Package.LineItems) != len(report.Deltas) {
		t.Errorf("priced %d items from %d approved deltas", len(report.Package.LineItems), len(report.Deltas))
	}
	if report.Package.TotalSupplementRCV <= 0 {
		t.Error("supplement total should be positive with reference-priced items")
	}
	if report.Validation == nil {
		t.Fatal("package not validated")
	}
	if !report.Validation.IsValid {
		t.Errorf("complete identity should validate, got %v", report.Validation.Errors)
	}
}

func TestPipeline_Run_DecisionsDriveStatus(t *testing.T) {
	p, err := NewPipeline(model.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	decisions := `[
		{"match": "RFG-DRIP", "action": "approve"},
		{"match": "ice & water", "action": "deny"}
	]`
	bundle := writeBundle(t, testScopeJSON, "", decisions)

	report, err := p.Run(context.Background(), bundle, RunOptions{AssemblePackage: true})
	if err != nil {
		t.Fatal(err)
	}

	var drip, iws *model.DeltaItem
	for i := range report.Deltas {
		switch report.Deltas[i].LineItemCode {
		case "RFG-DRIP":
			drip = &report.Deltas[i]
		case "RFG-IWS":
			iws = &report.Deltas[i]
		}
	}
	if drip == nil || drip.Status != model.StatusApproved {
		t.Errorf("drip edge should be approved, got %+v", drip)
	}
	if iws == nil || iws.Status != model.StatusDenied {
		t.Errorf("ice & water should be denied, got %+v", iws)
	}

	// Only approved deltas are priced
	for _, li := range report.Package.LineItems {
		if li.Code == "RFG-IWS" {
			t.Error("denied delta was priced into the package")
		}
	}
}

func TestPipeline_WriteArtifacts(t *testing.T) {
	p, err := NewPipeline(model.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	bundle := writeBundle(t, testScopeJSON, "", "")
	report, err := p.Run(context.Background(), bundle, RunOptions{ApproveAll: true, AssemblePackage: true})
	if err != nil {
		t.Fatal(err)
	}

	outDir := t.TempDir()
	if err := p.WriteArtifacts(report, outDir); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"report.json", "package.csv", "package.txt", "photo-index.txt"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("artifact %s not written: %v", name, err)
		}
	}
}

func TestApplyDecisions_IllegalTransitionIsHardError(t *testing.T) {
	deltas := []model.DeltaItem{
		{LineItemCode: "RFG-DRIP", Description: "Drip edge", Status: model.StatusDenied},
	}
	decisions := []Decision{{Match: "RFG-DRIP", Action: "approve"}}

	_, err := ApplyDecisions(deltas, decisions)
	if err == nil {
		t.Fatal("approving a denied delta must be rejected")
	}
	if !strings.Contains(err.Error(), "denied") {
		t.Errorf("error should name the offending transition, got %v", err)
	}
}

func TestApplyDecisions_UnmatchedDecisionWarns(t *testing.T) {
	deltas := []model.DeltaItem{
		{LineItemCode: "RFG-DRIP", Description: "Drip edge", Status: model.StatusIdentified},
	}
	decisions := []Decision{{Match: "chimney cricket", Action: "approve"}}

	warnings, err := ApplyDecisions(deltas, decisions)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "chimney cricket") {
		t.Errorf("expected an unmatched-decision warning, got %v", warnings)
	}
	if deltas[0].Status != model.StatusIdentified {
		t.Errorf("unmatched decision must not change status, got %q", deltas[0].Status)
	}
}

func TestApplyDecisions_UnknownAction(t *testing.T) {
	deltas := []model.DeltaItem{
		{LineItemCode: "RFG-DRIP", Description: "Drip edge", Status: model.StatusIdentified},
	}

	_, err := ApplyDecisions(deltas, []Decision{{Match: "RFG-DRIP", Action: "maybe"}})
	if err == nil || !strings.Contains(err.Error(), "maybe") {
		t.Errorf("unknown action should be rejected by name, got %v", err)
	}
}

func TestApproveAll(t *testing.T) {
	deltas := []model.DeltaItem{
		{Description: "Drip edge", Status: model.StatusIdentified},
		{Description: "Starter course", Status: model.StatusIdentified},
	}

	if err := ApproveAll(deltas); err != nil {
		t.Fatal(err)
	}
	for _, d := range deltas {
		if d.Status != model.StatusApproved {
			t.Errorf("delta %q status = %q, want approved", d.Description, d.Status)
		}
	}
}
