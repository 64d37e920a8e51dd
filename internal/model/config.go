package model

// Config is the top-level application configuration. Populated from
// defaults, the config file, SCOPEWRIGHT_* environment variables, and CLI
// flags (in increasing priority).
type Config struct {
	Catalog     CatalogConfig     `yaml:"catalog"`
	LLM         LLMConfig         `yaml:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// CatalogConfig controls which knowledge-base catalogue is loaded
type CatalogConfig struct {
	// Path to a custom catalogue YAML. Empty means the built-in catalogue.
	Path string `yaml:"path"`
}

// LLMConfig configures the optional prose-generation provider
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai", "ollama", "" (disabled)
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Timeout  int    `yaml:"timeout"` // seconds

	// StrictCitations enforces that generated prose only references
	// citation ids present in the package. Should always be true.
	StrictCitations bool `yaml:"strict_citations"`

	MaxTokens         int     `yaml:"max_tokens"`
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
}

// ConcurrencyConfig controls batch processing parallelism
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Path: "",
		},
		LLM: LLMConfig{
			Provider:          "", // Disabled by default
			Timeout:           30,
			StrictCitations:   true,
			MaxTokens:         1200,
			RequestsPerMinute: 20,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
