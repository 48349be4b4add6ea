// Package config loads the application configuration from an optional YAML
// file overlaid with environment variables.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the assistant. Zero values are filled with
// defaults after the YAML file and environment have been applied, so env
// vars win over the file and the file wins over defaults.
type Config struct {
	// Server
	HTTPPort int `env:"HTTP_PORT" yaml:"http_port"`

	// LLM (OpenAI-compatible endpoint; Mistral's API works unchanged)
	LLMAPIKey  string `env:"LLM_API_KEY" yaml:"llm_api_key"`
	LLMBaseURL string `env:"LLM_BASE_URL" yaml:"llm_base_url"`
	LLMModel   string `env:"LLM_MODEL" yaml:"llm_model"`

	// Embeddings
	EmbeddingAPIKey  string `env:"EMBEDDING_API_KEY" yaml:"embedding_api_key"`
	EmbeddingBaseURL string `env:"EMBEDDING_BASE_URL" yaml:"embedding_base_url"`
	EmbeddingModel   string `env:"EMBEDDING_MODEL" yaml:"embedding_model"`

	// Vector backend: "qdrant" or "memory"
	VectorStore      string `env:"VECTOR_STORE" yaml:"vector_store"`
	QdrantURL        string `env:"QDRANT_URL" yaml:"qdrant_url"`
	QdrantAPIKey     string `env:"QDRANT_API_KEY" yaml:"qdrant_api_key"`
	QdrantCollection string `env:"QDRANT_COLLECTION" yaml:"qdrant_collection"`

	// Online search
	TavilyAPIKey   string   `env:"TAVILY_API_KEY" yaml:"tavily_api_key"`
	TavilyBaseURL  string   `env:"TAVILY_BASE_URL" yaml:"tavily_base_url"`
	AllowedDomains []string `env:"ALLOWED_DOMAINS" envSeparator:"," yaml:"allowed_domains"`
	PolicyPath     string   `env:"SEARCH_POLICY_PATH" yaml:"search_policy_path"`

	SearchTimeoutSecs   int `env:"SEARCH_TIMEOUT_SECS" yaml:"search_timeout_secs"`
	SearchCacheTTLSecs  int `env:"SEARCH_CACHE_TTL_SECS" yaml:"search_cache_ttl_secs"`
	FetchTimeoutSecs    int `env:"FETCH_TIMEOUT_SECS" yaml:"fetch_timeout_secs"`
	FetchCacheTTLSecs   int `env:"FETCH_CACHE_TTL_SECS" yaml:"fetch_cache_ttl_secs"`
	ProcessTimeoutSecs  int `env:"PROCESS_TIMEOUT_SECS" yaml:"process_timeout_secs"`
	StatusRetainSecs    int `env:"STATUS_RETAIN_SECS" yaml:"status_retain_secs"`
	SessionMaxAgeSecs   int `env:"SESSION_MAX_AGE_SECS" yaml:"session_max_age_secs"`
	HistoryTokenBudget  int `env:"HISTORY_TOKEN_BUDGET" yaml:"history_token_budget"`
	MinContentLength    int `env:"MIN_CONTENT_LENGTH" yaml:"min_content_length"`
	RetrievalMaxResults int `env:"RETRIEVAL_MAX_RESULTS" yaml:"retrieval_max_results"`
	SummaryWorkers      int `env:"SUMMARY_WORKERS" yaml:"summary_workers"`
	MaxWorkers          int `env:"MAX_WORKERS" yaml:"max_workers"`

	ConfidenceThreshold float64 `env:"CONFIDENCE_THRESHOLD" yaml:"confidence_threshold"`

	// Session store: "memory" or "sqlite"
	SessionStore string `env:"SESSION_STORE" yaml:"session_store"`
	SessionDB    string `env:"SESSION_DB" yaml:"session_db"`

	// Mode selects mock adapters for offline runs ("MOCK").
	Mode string `env:"JURISOL_MODE" yaml:"mode"`
}

// EnvConfigFile names the env var pointing at the optional YAML file.
const EnvConfigFile = "JURISOL_CONFIG"

// Load builds the configuration: YAML file (if any), then environment
// overrides, then defaults for whatever is still unset.
func Load() (*Config, error) {
	cfg := &Config{}

	if path := os.Getenv(EnvConfigFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = 8000
	}
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = "https://api.mistral.ai/v1"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "mistral-small-latest"
	}
	if cfg.EmbeddingAPIKey == "" {
		cfg.EmbeddingAPIKey = cfg.LLMAPIKey
	}
	if cfg.EmbeddingBaseURL == "" {
		cfg.EmbeddingBaseURL = cfg.LLMBaseURL
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "mistral-embed"
	}
	if cfg.VectorStore == "" {
		cfg.VectorStore = "qdrant"
	}
	if cfg.QdrantURL == "" {
		cfg.QdrantURL = "http://localhost:6333"
	}
	if cfg.QdrantCollection == "" {
		cfg.QdrantCollection = "jurisol-legal-embeddings"
	}
	if cfg.TavilyBaseURL == "" {
		cfg.TavilyBaseURL = "https://api.tavily.com"
	}
	if len(cfg.AllowedDomains) == 0 {
		cfg.AllowedDomains = []string{"gov.in", "nic.in"}
	}
	if cfg.SearchTimeoutSecs == 0 {
		cfg.SearchTimeoutSecs = 30
	}
	if cfg.SearchCacheTTLSecs == 0 {
		cfg.SearchCacheTTLSecs = 3600
	}
	if cfg.FetchTimeoutSecs == 0 {
		cfg.FetchTimeoutSecs = 15
	}
	if cfg.FetchCacheTTLSecs == 0 {
		cfg.FetchCacheTTLSecs = 86400
	}
	if cfg.ProcessTimeoutSecs == 0 {
		cfg.ProcessTimeoutSecs = 180
	}
	if cfg.StatusRetainSecs == 0 {
		cfg.StatusRetainSecs = 300
	}
	if cfg.SessionMaxAgeSecs == 0 {
		cfg.SessionMaxAgeSecs = 86400
	}
	if cfg.HistoryTokenBudget == 0 {
		cfg.HistoryTokenBudget = 100000
	}
	if cfg.MinContentLength == 0 {
		cfg.MinContentLength = 50
	}
	if cfg.RetrievalMaxResults == 0 {
		cfg.RetrievalMaxResults = 5
	}
	if cfg.SummaryWorkers == 0 {
		cfg.SummaryWorkers = 4
	}
	if cfg.MaxWorkers == 0 {
		cfg.MaxWorkers = defaultWorkers()
	}
	if cfg.SessionStore == "" {
		cfg.SessionStore = "memory"
	}
	if cfg.SessionDB == "" {
		cfg.SessionDB = "file:jurisol.db?cache=shared&mode=rwc"
	}
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Duration helpers keep call sites free of second-to-Duration noise.

func (c *Config) SearchTimeout() time.Duration { return secs(c.SearchTimeoutSecs) }
func (c *Config) SearchCacheTTL() time.Duration { return secs(c.SearchCacheTTLSecs) }
func (c *Config) FetchTimeout() time.Duration  { return secs(c.FetchTimeoutSecs) }
func (c *Config) FetchCacheTTL() time.Duration { return secs(c.FetchCacheTTLSecs) }
func (c *Config) ProcessTimeout() time.Duration { return secs(c.ProcessTimeoutSecs) }
func (c *Config) StatusRetain() time.Duration  { return secs(c.StatusRetainSecs) }
func (c *Config) SessionMaxAge() time.Duration { return secs(c.SessionMaxAgeSecs) }

func secs(n int) time.Duration { return time.Duration(n) * time.Second }
