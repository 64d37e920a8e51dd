package prose

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/sashabaranov/go-openai"
)

// citationIDPattern matches citation-id-shaped tokens in generated prose
// (e.g., IRC-R905.2.8.5, OSHA-1926.501)
var citationIDPattern = regexp.MustCompile(`\b[A-Z]{2,}-[A-Z0-9][A-Z0-9.]+\b`)

// OpenAIProvider implements Provider for OpenAI and OpenAI-compatible
// endpoints (Ollama via BaseURL)
type OpenAIProvider struct {
	client *openai.Client
	config Config
	name   string
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" && config.BaseURL == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	name := "openai"
	if config.Provider != "" {
		name = config.Provider
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   name,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable checks if the provider is configured and reachable
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	if err != nil {
		// Surface the underlying error so API key issues are diagnosable
		fmt.Fprintf(os.Stderr, "prose provider check failed: %v\n", err)
		return false
	}
	return true
}

// Write generates narrative text via the Chat Completions API
func (p *OpenAIProvider) Write(ctx context.Context, req WriteRequest) (*WriteResponse, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Package, req.Deltas, req.AllowedCitationIDs)
	}

	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1200
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write factual insurance supplement narratives. You never invent code citations, prices, or damage beyond the supplied data.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from %s", p.name)
	}

	text := resp.Choices[0].Message.Content
	return &WriteResponse{
		Text:       text,
		CitedIDs:   extractCitedIDs(text),
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// extractCitedIDs pulls citation-id-shaped tokens from prose for
// allowlist verification
func extractCitedIDs(text string) []string {
	matches := citationIDPattern.FindAllString(text, -1)
	seen := make(map[string]bool)
	var ids []string
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			ids = append(ids, m)
		}
	}
	return ids
}
