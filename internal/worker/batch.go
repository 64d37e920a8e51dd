package worker

import (
	"context"

	"github.com/scopewright/scopewright/internal/model"
	"github.com/scopewright/scopewright/internal/pipeline"
)

// Runner processes one claim bundle end to end
type Runner interface {
	Run(ctx context.Context, bundle pipeline.ClaimBundle, opts pipeline.RunOptions) (*model.Report, error)
}

// ClaimJob processes one claim bundle
type ClaimJob struct {
	Bundle pipeline.ClaimBundle
	Opts   pipeline.RunOptions
	Runner Runner
}

// Execute runs the claim through the pipeline
func (j *ClaimJob) Execute(ctx context.Context) Result {
	report, err := j.Runner.Run(ctx, j.Bundle, j.Opts)
	return &ClaimResult{
		Bundle: j.Bundle,
		Report: report,
		Error:  err,
	}
}

// ClaimResult is the outcome of one claim run
type ClaimResult struct {
	Bundle pipeline.ClaimBundle
	Report *model.Report
	Error  error
}

// GetError returns the error from the claim run
func (r *ClaimResult) GetError() error {
	return r.Error
}

// BatchProcessor runs many independent claims concurrently
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessBundles runs every bundle through the pipeline, returning one
// result per bundle in completion order
func (b *BatchProcessor) ProcessBundles(ctx context.Context, bundles []pipeline.ClaimBundle, opts pipeline.RunOptions) []*ClaimResult {
	if len(bundles) == 0 {
		return []*ClaimResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start(ctx)

	go func() {
		for _, bundle := range bundles {
			submitted := pool.Submit(&ClaimJob{
				Bundle: bundle,
				Opts:   opts,
				Runner: b.runner,
			})
			if !submitted {
				break
			}
		}
		pool.Close()
	}()

	var results []*ClaimResult
	for result := range pool.Results() {
		results = append(results, result.(*ClaimResult))
	}
	return results
}
