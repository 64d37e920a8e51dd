package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scopewright/scopewright/internal/model"
	"github.com/scopewright/scopewright/internal/pipeline"
)

var (
	assembleEvidence   string
	assembleDecisions  string
	assembleCatalog    string
	assembleOutDir     string
	assembleApproveAll bool
	assembleTimeout    time.Duration
	assembleLLM        bool
	assembleProvider   string
	assembleModel      string
)

// assembleCmd represents the assemble command
var assembleCmd = &cobra.Command{
	Use:   "assemble <scope.json>",
	Short: "Detect, price, validate, and export a supplement package",
	Long: `Assemble runs the full claim flow: delta detection, reviewer decisions
(or draft-mode approval of everything), pricing from the reference
catalogue, package validation, and export of CSV, document, and
photo-index artifacts.

Validation failures never block assembly - a draft package is always
produced for review, with errors and warnings recorded in the report.

Example:
  scopewright assemble claim.scope.json --approve-all --out out/
  scopewright assemble claim.scope.json --evidence claim.evidence.json \
      --decisions claim.decisions.json --out out/
  scopewright assemble claim.scope.json --approve-all --llm --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runAssemble,
}

func init() {
	rootCmd.AddCommand(assembleCmd)

	assembleCmd.Flags().StringVar(&assembleEvidence, "evidence", "", "evidence signal JSON path")
	assembleCmd.Flags().StringVar(&assembleDecisions, "decisions", "", "reviewer decision JSON path")
	assembleCmd.Flags().StringVar(&assembleCatalog, "catalog", "", "custom catalogue YAML (default: built-in)")
	assembleCmd.Flags().StringVar(&assembleOutDir, "out", "out", "output directory for report and exports")
	assembleCmd.Flags().BoolVar(&assembleApproveAll, "approve-all", false, "approve every detected delta (draft mode)")
	assembleCmd.Flags().DurationVar(&assembleTimeout, "timeout", 2*time.Minute, "overall run timeout")

	// LLM flags
	assembleCmd.Flags().BoolVar(&assembleLLM, "llm", false, "generate narrative prose for the package")
	assembleCmd.Flags().StringVar(&assembleProvider, "llm-provider", "openai", "prose provider (openai, ollama)")
	assembleCmd.Flags().StringVar(&assembleModel, "llm-model", "", "prose model name")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), assembleTimeout)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.Catalog.Path = assembleCatalog
	cfg.Output.Verbose = verbose

	if assembleLLM {
		cfg.LLM.Provider = assembleProvider
		cfg.LLM.Model = assembleModel
		switch assembleProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	report, err := p.Run(ctx, pipeline.ClaimBundle{
		ScopePath:     args[0],
		EvidencePath:  assembleEvidence,
		DecisionsPath: assembleDecisions,
	}, pipeline.RunOptions{
		ApproveAll:      assembleApproveAll && assembleDecisions == "",
		AssemblePackage: true,
		Narrative:       assembleLLM,
	})
	if err != nil {
		return fmt.Errorf("assemble failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Detected %d deltas\n", len(report.Deltas))
		fmt.Fprintf(os.Stderr, "✓ Priced %d line items\n", len(report.Package.LineItems))
		if report.Narrative != nil && report.Narrative.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated narrative using %s/%s\n", report.Narrative.Provider, report.Narrative.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	printPackageSummary(report)

	if err := p.WriteArtifacts(report, assembleOutDir); err != nil {
		return err
	}
	fmt.Printf("\n✓ Wrote report and exports to %s/\n", assembleOutDir)

	return nil
}

// printPackageSummary writes package totals and validation outcome to stdout
func printPackageSummary(report *model.Report) {
	pkg := report.Package
	fmt.Printf("Claim:           %s\n", orDash(pkg.ClaimRef))
	fmt.Printf("Supplement RCV:  $%.2f (%d line items)\n", pkg.TotalSupplementRCV, len(pkg.LineItems))
	fmt.Printf("Original RCV:    $%.2f\n", pkg.TotalOriginalRCV)

	v := report.Validation
	if v.IsValid {
		fmt.Printf("Validation:      OK (%d warnings)\n", len(v.Warnings))
	} else {
		fmt.Printf("Validation:      BLOCKED from sending (%d errors, %d warnings)\n", len(v.Errors), len(v.Warnings))
	}
	for _, e := range v.Errors {
		fmt.Printf("  error:   %s\n", e)
	}
	for _, w := range v.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}
