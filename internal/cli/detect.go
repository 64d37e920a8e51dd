package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scopewright/scopewright/internal/model"
	"github.com/scopewright/scopewright/internal/pipeline"
)

var (
	detectEvidence string
	detectCatalog  string
	detectOut      string
	detectTimeout  time.Duration
)

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect <scope.json>",
	Short: "Detect deltas between a carrier scope and ground truth",
	Long: `Detect normalizes a raw extracted carrier scope, diffs it against the
knowledge base and any photo/measurement evidence, and reports every
discrepancy worth supplementing - without pricing or assembling a
package.

Example:
  scopewright detect claim-4821.scope.json
  scopewright detect claim-4821.scope.json --evidence claim-4821.evidence.json
  scopewright detect claim-4821.scope.json --json deltas.json`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringVar(&detectEvidence, "evidence", "", "evidence signal JSON path")
	detectCmd.Flags().StringVar(&detectCatalog, "catalog", "", "custom catalogue YAML (default: built-in)")
	detectCmd.Flags().StringVar(&detectOut, "json", "", "write full delta report JSON to this path")
	detectCmd.Flags().DurationVar(&detectTimeout, "timeout", 30*time.Second, "overall run timeout")
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), detectTimeout)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.Catalog.Path = detectCatalog
	cfg.Output.Verbose = verbose

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	report, err := p.Run(ctx, pipeline.ClaimBundle{
		ScopePath:    args[0],
		EvidencePath: detectEvidence,
	}, pipeline.RunOptions{})
	if err != nil {
		return fmt.Errorf("detect failed: %w", err)
	}

	printDeltaSummary(report)

	if detectOut != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		if err := os.WriteFile(detectOut, data, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("✓ Wrote delta report: %s\n", detectOut)
	}

	return nil
}

// printDeltaSummary writes a human-readable delta listing to stdout
func printDeltaSummary(report *model.Report) {
	fmt.Printf("Claim:  %s\n", orDash(report.Scope.ClaimNumber))
	fmt.Printf("Deltas: %d detected\n\n", len(report.Deltas))

	for i, d := range report.Deltas {
		code := d.LineItemCode
		if code == "" {
			code = "-"
		}
		fmt.Printf("  %2d. [%-13s %-8s] %-11s %s\n", i+1, d.Type, d.Priority, code, d.Description)
		if verbose && d.Rationale != "" {
			fmt.Printf("      %s\n", d.Rationale)
		}
		if verbose && len(d.EvidenceRefs) > 0 {
			fmt.Printf("      evidence: %d supporting signal(s)\n", len(d.EvidenceRefs))
		}
		if verbose && len(d.EvidenceRefs) == 0 && len(d.EvidenceHints) > 0 {
			fmt.Printf("      suggested evidence: %s\n", strings.Join(d.EvidenceHints, "; "))
		}
	}

	if len(report.Warnings) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, w := range report.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
