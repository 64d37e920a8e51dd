package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/scopewright/scopewright/internal/model"
	"github.com/scopewright/scopewright/internal/pipeline"
)

// fakeRunner succeeds or fails based on the scope path
type fakeRunner struct{}

func (f *fakeRunner) Run(ctx context.Context, bundle pipeline.ClaimBundle, opts pipeline.RunOptions) (*model.Report, error) {
	if strings.Contains(bundle.ScopePath, "bad") {
		return nil, errors.New("normalize failed")
	}
	return &model.Report{RunID: bundle.ScopePath}, nil
}

func TestBatchProcessor_ProcessBundles(t *testing.T) {
	bundles := []pipeline.ClaimBundle{
		{ScopePath: "a.scope.json"},
		{ScopePath: "bad.scope.json"},
		{ScopePath: "c.scope.json"},
	}

	processor := NewBatchProcessor(&fakeRunner{}, 2)
	results := processor.ProcessBundles(context.Background(), bundles, pipeline.RunOptions{})

	if len(results) != len(bundles) {
		t.Fatalf("got %d results, want %d", len(results), len(bundles))
	}

	failed := 0
	for _, result := range results {
		if result.Error != nil {
			failed++
			continue
		}
		if result.Report == nil {
			t.Error("successful result missing report")
		}
	}
	if failed != 1 {
		t.Errorf("got %d failures, want 1", failed)
	}
}

func TestBatchProcessor_ReturnsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bundles := make([]pipeline.ClaimBundle, 10)
	for i := range bundles {
		bundles[i] = pipeline.ClaimBundle{ScopePath: fmt.Sprintf("claim-%d.scope.json", i)}
	}

	done := make(chan []*ClaimResult, 1)
	go func() {
		done <- NewBatchProcessor(&fakeRunner{}, 1).ProcessBundles(ctx, bundles, pipeline.RunOptions{})
	}()

	select {
	case results := <-done:
		if len(results) > len(bundles) {
			t.Errorf("got %d results for %d bundles", len(results), len(bundles))
		}
	case <-time.After(3 * time.Second):
		t.Fatal("ProcessBundles did not return after context cancellation")
	}
}

func TestBatchProcessor_EmptyInput(t *testing.T) {
	processor := NewBatchProcessor(&fakeRunner{}, 2)
	results := processor.ProcessBundles(context.Background(), nil, pipeline.RunOptions{})
	if len(results) != 0 {
		t.Errorf("got %d results for empty input", len(results))
	}
}
