package prose

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/scopewright/scopewright/internal/model"
)

// cacheTTL bounds how long a generated narrative is reused for an
// unchanged package
const cacheTTL = 1 * time.Hour

// Writer generates narratives through a provider, rate-limiting calls and
// caching responses per package fingerprint so batch runs don't pay for
// duplicate generations.
type Writer struct {
	provider Provider
	config   Config
	cache    *gocache.Cache
	limiter  *rate.Limiter
}

// NewWriter creates a narrative writer. A nil return with nil error means
// no provider is configured and narratives are disabled.
func NewWriter(config Config) (*Writer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, nil
	}

	rpm := config.RequestsPerMinute
	if rpm <= 0 {
		rpm = 20
	}

	return &Writer{
		provider: provider,
		config:   config,
		cache:    gocache.New(cacheTTL, 10*time.Minute),
		limiter:  rate.NewLimiter(rate.Limit(rpm/60), 1),
	}, nil
}

// NewWriterWithProvider creates a writer around an existing provider.
// Used by tests to substitute fake providers.
func NewWriterWithProvider(provider Provider, config Config) *Writer {
	return &Writer{
		provider: provider,
		config:   config,
		cache:    gocache.New(cacheTTL, 10*time.Minute),
		limiter:  rate.NewLimiter(rate.Inf, 1),
	}
}

// Narrative generates prose for a package. Citation ids referenced by the
// model but absent from the package's allowlist are recorded as warnings
// on the narrative; strict mode never fails the run, it only flags leaks.
func (w *Writer) Narrative(ctx context.Context, pkg *model.SupplementPackage, deltas []model.DeltaItem) (*model.Narrative, error) {
	allowed := allowedCitationIDs(pkg)

	key, err := fingerprint(pkg, deltas)
	if err == nil {
		if cached, found := w.cache.Get(key); found {
			narrative := cached.(model.Narrative)
			return &narrative, nil
		}
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := w.provider.Write(ctx, WriteRequest{
		Package:            pkg,
		Deltas:             deltas,
		AllowedCitationIDs: allowed,
		MaxTokens:          w.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate narrative: %w", err)
	}

	narrative := model.Narrative{
		Enabled:  true,
		Provider: w.provider.Name(),
		Model:    resp.Model,
		Text:     resp.Text,
	}

	if w.config.StrictCitations {
		for _, id := range resp.CitedIDs {
			if !containsID(allowed, id) {
				narrative.Warnings = append(narrative.Warnings,
					fmt.Sprintf("narrative references citation %q which is not in the package", id))
			}
		}
	}

	if key != "" {
		w.cache.Set(key, narrative, cacheTTL)
	}
	return &narrative, nil
}

// allowedCitationIDs collects the package's citation ids in order
func allowedCitationIDs(pkg *model.SupplementPackage) []string {
	var ids []string
	for _, cit := range pkg.Citations {
		ids = append(ids, cit.ID)
	}
	return ids
}

// fingerprint hashes the narrative-relevant inputs for cache keying
func fingerprint(pkg *model.SupplementPackage, deltas []model.DeltaItem) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	if err := enc.Encode(pkg); err != nil {
		return "", err
	}
	if err := enc.Encode(deltas); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
