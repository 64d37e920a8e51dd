package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scopewright/scopewright/internal/model"
	"github.com/scopewright/scopewright/internal/pipeline"
	"github.com/scopewright/scopewright/internal/worker"
)

var (
	batchWorkers int
	batchOutDir  string
	batchTimeout time.Duration
	batchApprove bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Process a directory of claim bundles concurrently",
	Long: `Batch discovers claim bundles in a directory and runs each through the
full assemble flow in parallel. Claims are independent, so there is no
cross-claim coordination.

A bundle is a <name>.scope.json file, optionally paired with
<name>.evidence.json and <name>.decisions.json alongside it. Outputs
land in <out>/<name>/.

Example:
  scopewright batch ./claims --out ./out --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "concurrent claim workers")
	batchCmd.Flags().StringVar(&batchOutDir, "out", "out", "output directory root")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "overall batch timeout")
	batchCmd.Flags().BoolVar(&batchApprove, "approve-all", false, "approve every detected delta when no decisions file exists")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	bundles, err := discoverBundles(args[0])
	if err != nil {
		return err
	}
	if len(bundles) == 0 {
		return fmt.Errorf("no *.scope.json files found in %s", args[0])
	}

	cfg := model.DefaultConfig()
	cfg.Output.Verbose = verbose
	cfg.Concurrency.BatchWorkers = batchWorkers

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Processing %d claims with %d workers\n\n", len(bundles), batchWorkers)
	}

	processor := worker.NewBatchProcessor(p, batchWorkers)
	results := processor.ProcessBundles(ctx, bundles, pipeline.RunOptions{
		ApproveAll:      batchApprove,
		AssemblePackage: true,
	})

	failed := 0
	for _, result := range results {
		name := bundleName(result.Bundle)
		if result.Error != nil {
			failed++
			fmt.Printf("✗ %-30s %v\n", name, result.Error)
			continue
		}
		if err := p.WriteArtifacts(result.Report, filepath.Join(batchOutDir, name)); err != nil {
			failed++
			fmt.Printf("✗ %-30s %v\n", name, err)
			continue
		}
		fmt.Printf("✓ %-30s %d deltas, supplement $%.2f\n",
			name, len(result.Report.Deltas), result.Report.Package.TotalSupplementRCV)
	}

	fmt.Printf("\nProcessed %d claims (%d failed)\n", len(results), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d claims failed", failed, len(results))
	}
	return nil
}

// discoverBundles finds *.scope.json files and their optional companions
func discoverBundles(dir string) ([]pipeline.ClaimBundle, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.scope.json"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	var bundles []pipeline.ClaimBundle
	for _, scopePath := range matches {
		bundle := pipeline.ClaimBundle{ScopePath: scopePath}

		base := strings.TrimSuffix(scopePath, ".scope.json")
		if evidencePath := base + ".evidence.json"; fileExists(evidencePath) {
			bundle.EvidencePath = evidencePath
		}
		if decisionsPath := base + ".decisions.json"; fileExists(decisionsPath) {
			bundle.DecisionsPath = decisionsPath
		}
		bundles = append(bundles, bundle)
	}
	return bundles, nil
}

// bundleName derives the per-claim output directory name
func bundleName(bundle pipeline.ClaimBundle) string {
	return strings.TrimSuffix(filepath.Base(bundle.ScopePath), ".scope.json")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
