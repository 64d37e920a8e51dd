// Package pipeline orchestrates the claim flow: normalize the raw scope,
// detect deltas, apply reviewer decisions, assemble and validate the
// package, and render export artifacts. Stages may also be invoked
// independently as long as each receives the prior stage's output.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/scopewright/scopewright/internal/assemble"
	"github.com/scopewright/scopewright/internal/detect"
	"github.com/scopewright/scopewright/internal/export"
	"github.com/scopewright/scopewright/internal/kb"
	"github.com/scopewright/scopewright/internal/model"
	"github.com/scopewright/scopewright/internal/normalize"
	"github.com/scopewright/scopewright/internal/prose"
	"github.com/scopewright/scopewright/internal/validate"
)

// Pipeline wires the engine stages together for one configuration
type Pipeline struct {
	catalog    *kb.Catalog
	normalizer *normalize.Normalizer
	engine     *detect.Engine
	assembler  *assemble.Assembler
	writer     *prose.Writer // Optional narrative writer (nil if disabled)
	config     *model.Config
}

// NewPipeline creates a pipeline from configuration. The catalogue loads
// once here and is injected into every stage.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	catalog := kb.Default()
	if cfg.Catalog.Path != "" {
		custom, err := kb.LoadFile(cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("load catalogue: %w", err)
		}
		catalog = custom
	}

	var writer *prose.Writer
	if cfg.LLM.Provider != "" {
		w, err := prose.NewWriter(prose.ConfigFromModel(cfg.LLM))
		if err != nil {
			// Narrative generation is presentation only: a broken provider
			// must not block supplement work
			fmt.Fprintf(os.Stderr, "Warning: prose provider unavailable: %v\n", err)
		} else {
			writer = w
		}
	}

	return &Pipeline{
		catalog:    catalog,
		normalizer: normalize.NewNormalizer(),
		engine:     detect.NewEngine(catalog),
		assembler:  assemble.NewAssembler(catalog),
		writer:     writer,
		config:     cfg,
	}, nil
}

// Catalog exposes the loaded catalogue (for the catalog CLI command)
func (p *Pipeline) Catalog() *kb.Catalog {
	return p.catalog
}

// RunOptions controls a full claim run
type RunOptions struct {
	// ApproveAll approves every detected delta when no decisions file is
	// given, producing a draft package
	ApproveAll bool

	// AssemblePackage controls whether assembly/validation run after
	// detection
	AssemblePackage bool

	// Narrative requests LLM prose for the package when a provider is
	// configured
	Narrative bool
}

// Run executes the causal stage order for one claim bundle:
// detection -> decisions -> assembly -> validation -> narrative.
func (p *Pipeline) Run(ctx context.Context, bundle ClaimBundle, opts RunOptions) (*model.Report, error) {
	raw, err := ReadRawScope(bundle.ScopePath)
	if err != nil {
		return nil, err
	}
	evidence, err := ReadEvidence(bundle.EvidencePath)
	if err != nil {
		return nil, err
	}
	decisions, err := ReadDecisions(bundle.DecisionsPath)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
	}

	scope, warnings := p.normalizer.Normalize(raw)
	report.Scope = scope
	report.Warnings = append(report.Warnings, warnings...)

	report.Deltas = p.engine.DetectDeltas(scope, evidence)

	switch {
	case len(decisions) > 0:
		decisionWarnings, err := ApplyDecisions(report.Deltas, decisions)
		report.Warnings = append(report.Warnings, decisionWarnings...)
		if err != nil {
			return nil, err
		}
	case opts.ApproveAll:
		if err := ApproveAll(report.Deltas); err != nil {
			return nil, err
		}
	}

	if !opts.AssemblePackage {
		return report, nil
	}

	pkg := p.assembler.Assemble(scope, report.Deltas)
	report.Package = pkg
	report.Warnings = append(report.Warnings, pkg.Warnings...)

	result := validate.Package(pkg)
	report.Validation = &result

	if opts.Narrative {
		report.Narrative = p.narrative(ctx, pkg, approvedDeltas(report.Deltas), report)
	}

	return report, nil
}

// narrative generates optional prose, degrading to nil (templated export
// only) on any failure
func (p *Pipeline) narrative(ctx context.Context, pkg *model.SupplementPackage, deltas []model.DeltaItem, report *model.Report) *model.Narrative {
	if p.writer == nil {
		report.Warnings = append(report.Warnings, "narrative requested but no prose provider is configured")
		return nil
	}
	narrative, err := p.writer.Narrative(ctx, pkg, deltas)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("narrative generation failed: %v", err))
		return nil
	}
	return narrative
}

// approvedDeltas filters to the approved subset
func approvedDeltas(deltas []model.DeltaItem) []model.DeltaItem {
	var approved []model.DeltaItem
	for _, d := range deltas {
		if d.Status == model.StatusApproved {
			approved = append(approved, d)
		}
	}
	return approved
}

// WriteArtifacts renders the report and its export artifacts into a
// directory: report.json always; package.csv, package.txt, and
// photo-index.txt when a package was assembled. Invalid packages still
// export - partial export is allowed, with validator output carried in
// the report.
func (p *Pipeline) WriteArtifacts(report *model.Report, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.json"), data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if report.Package == nil {
		return nil
	}

	csvOut, err := export.CSV(report.Package)
	if err != nil {
		return fmt.Errorf("render csv: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "package.csv"), []byte(csvOut), 0o644); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	doc := export.Document(report.Package, export.DocumentOptions{
		IncludeFooter: p.config.Output.IncludeFooter,
		Narrative:     report.Narrative,
	})
	if err := os.WriteFile(filepath.Join(dir, "package.txt"), []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	index := export.PhotoIndex(report.Package)
	if err := os.WriteFile(filepath.Join(dir, "photo-index.txt"), []byte(index), 0o644); err != nil {
		return fmt.Errorf("write photo index: %w", err)
	}

	return nil
}
