// Package prose generates publication-quality narrative text for a
// supplement package via a hosted language model. The narrative is
// presentation only: detection, pricing, validation, and the templated
// document export never depend on it, and the engine functions fully when
// no provider is configured.
package prose

import (
	"context"
	"fmt"
	"strings"

	"github.com/scopewright/scopewright/internal/model"
)

// Provider defines the interface for prose-generation providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Write generates narrative text for a supplement package
	Write(ctx context.Context, req WriteRequest) (*WriteResponse, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// WriteRequest is the input for narrative generation
type WriteRequest struct {
	// Package is the assembled supplement package to narrate
	Package *model.SupplementPackage

	// Deltas are the approved discrepancies backing the package
	Deltas []model.DeltaItem

	// AllowedCitationIDs is the STRICT allowlist of citation ids the
	// model may reference. Anything outside it is a citation leak.
	AllowedCitationIDs []string

	// Prompt overrides the default prompt when non-empty
	Prompt string

	// Model is the provider-specific model name
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// WriteResponse is the generated narrative
type WriteResponse struct {
	// Text is the narrative body
	Text string

	// CitedIDs are citation ids the model actually referenced
	CitedIDs []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds prose provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for OpenAI-compatible endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// StrictCitations enforces the citation allowlist (should always be true)
	StrictCitations bool

	// MaxTokens for response generation
	MaxTokens int

	// RequestsPerMinute caps the provider call rate
	RequestsPerMinute float64
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:          "", // Disabled by default
		Timeout:           30,
		StrictCitations:   true,
		MaxTokens:         1200,
		RequestsPerMinute: 20,
	}
}

// ConfigFromModel converts model.LLMConfig to prose.Config
func ConfigFromModel(cfg model.LLMConfig) Config {
	return Config{
		Provider:          cfg.Provider,
		Model:             cfg.Model,
		APIKey:            cfg.APIKey,
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.Timeout,
		StrictCitations:   cfg.StrictCitations,
		MaxTokens:         cfg.MaxTokens,
		RequestsPerMinute: cfg.RequestsPerMinute,
	}
}

// BuildPrompt constructs the default narrative prompt. The structured
// facts come from the package; the model is only asked to word them.
func BuildPrompt(pkg *model.SupplementPackage, deltas []model.DeltaItem, allowedCitations []string) string {
	var b strings.Builder

	b.WriteString(`You are writing the narrative section of a roofing insurance supplement request on behalf of a licensed contractor.

CRITICAL RULES:
1. You may ONLY reference building-code citations from this allowed list:
`)
	if len(allowedCitations) == 0 {
		b.WriteString("   (none - do not reference any code citation)\n")
	}
	for _, id := range allowedCitations {
		fmt.Fprintf(&b, "   - %s\n", id)
	}
	b.WriteString(`2. Do NOT invent prices, quantities, code sections, or damage not listed below.
3. State facts from the data; do not speculate about carrier intent.
4. Keep a professional, factual tone suitable for an adjuster audience.

Claim facts:
`)
	fmt.Fprintf(&b, "- Claim: %s\n", orUnknown(pkg.ClaimRef))
	fmt.Fprintf(&b, "- Insured: %s\n", orUnknown(pkg.Insured))
	fmt.Fprintf(&b, "- Property: %s\n", orUnknown(pkg.PropertyAddress))
	fmt.Fprintf(&b, "- Original estimate RCV: $%.2f\n", pkg.TotalOriginalRCV)
	fmt.Fprintf(&b, "- Requested supplement RCV: $%.2f\n", pkg.TotalSupplementRCV)

	b.WriteString("\nApproved supplement items:\n")
	for _, d := range deltas {
		fmt.Fprintf(&b, "- [%s/%s] %s", d.Type, d.Priority, d.Description)
		if d.CitationID != "" {
			fmt.Fprintf(&b, " (citation: %s)", d.CitationID)
		}
		if d.Rationale != "" {
			fmt.Fprintf(&b, " - %s", d.Rationale)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nWrite 2-4 paragraphs explaining why each item is owed, citing the allowed code sections where applicable.\n")
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "(not provided)"
	}
	return s
}
