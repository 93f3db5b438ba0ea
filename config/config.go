package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the search service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Site      SiteConfig      `yaml:"site"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Sparse    SparseConfig    `yaml:"sparse"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	LLM       LLMConfig       `yaml:"llm"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	PageTitle string `yaml:"page_title"`
}

// SiteConfig holds the default content site.
type SiteConfig struct {
	DefaultBase string `yaml:"default_base"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Path    string       `yaml:"path"`    // bbolt database file
	Backend string       `yaml:"backend"` // "bolt" or "qdrant" (dense vectors only)
	Qdrant  QdrantConfig `yaml:"qdrant"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbeddingConfig holds dense embedding configuration.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"` // "openai", "langchain", "mock"
	Model            string `yaml:"model"`
	BaseURL          string `yaml:"base_url"`
	APIKeyEnv        string `yaml:"api_key_env"`
	Dimension        int    `yaml:"dimension"`
	BatchSize        int    `yaml:"batch_size"`
	ChunkSize        int    `yaml:"chunk_size"` // max tokens fed to the embedder per entry
	QueryInstruction string `yaml:"query_instruction"`
}

// SparseConfig holds the sparse (lexical) model configuration.
type SparseConfig struct {
	Model    string  `yaml:"model"` // only "bm25" is implemented
	Stemming bool    `yaml:"stemming"`
	K1       float64 `yaml:"k1"`
	B        float64 `yaml:"b"`
}

// IngestConfig holds crawling configuration.
type IngestConfig struct {
	PerPage      int      `yaml:"per_page"`
	MaxPages     int      `yaml:"max_pages"`
	SitemapLimit int      `yaml:"sitemap_limit"`
	FetchDelayMS int      `yaml:"fetch_delay_ms"`
	TimeoutSecs  int      `yaml:"timeout_secs"`
	ExcludeURLs  []string `yaml:"exclude_urls"` // glob patterns matched against sitemap URL paths
}

// RetrieveConfig holds default retrieval parameters.
type RetrieveConfig struct {
	K       int     `yaml:"k"`
	SparseK int     `yaml:"sparse_k"`
	Alpha   float64 `yaml:"alpha"`
}

// LLMConfig is carried for configuration surface parity; retrieval does
// not call a language model.
type LLMConfig struct {
	Model string `yaml:"model"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			PageTitle: "Site Search (Hybrid)",
		},
		Site: SiteConfig{
			DefaultBase: "https://www.scsengineers.com",
		},
		Store: StoreConfig{
			Path:    "wpsearch.db",
			Backend: "bolt",
			Qdrant: QdrantConfig{
				APIKeyEnv:   "QDRANT_API_KEY",
				Collection:  "wp_hybrid",
				TimeoutSecs: 20,
			},
		},
		Embedding: EmbeddingConfig{
			Provider:         "openai",
			Model:            "text-embedding-3-small",
			BaseURL:          "https://api.openai.com/v1",
			APIKeyEnv:        "OPENAI_API_KEY",
			Dimension:        1536,
			BatchSize:        32,
			ChunkSize:        512,
			QueryInstruction: "",
		},
		Sparse: SparseConfig{
			Model:    "bm25",
			Stemming: true,
			K1:       1.2,
			B:        0.75,
		},
		Ingest: IngestConfig{
			PerPage:      50,
			MaxPages:     200,
			SitemapLimit: 200,
			FetchDelayMS: 200,
			TimeoutSecs:  20,
		},
		Retrieve: RetrieveConfig{
			K:       10,
			SparseK: 50,
			Alpha:   0.5,
		},
		LLM: LLMConfig{
			Model: "llama-3.3-70b",
		},
	}
}

// Load loads configuration from a YAML file, then applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnv overlays the environment-variable surface on top of the file
// values. Each variable is a plain key-value override.
func (c *Config) applyEnv() {
	if v := os.Getenv("QDRANT_URL"); v != "" {
		c.Store.Qdrant.URL = v
		c.Store.Backend = "qdrant"
	}
	if v := os.Getenv("QDRANT_COLLECTION"); v != "" {
		c.Store.Qdrant.Collection = v
	}
	if v := os.Getenv("SPARSE_MODEL"); v != "" {
		c.Sparse.Model = v
	}
	if v := os.Getenv("DEFAULT_SITE_BASE"); v != "" {
		c.Site.DefaultBase = v
	}
	if v := os.Getenv("SEARCH_PAGE_TITLE"); v != "" {
		c.Server.PageTitle = v
	}
	if v := os.Getenv("EMBED_MODEL"); v != "" {
		c.Embedding.Model = v
	}
	if v := os.Getenv("CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Embedding.ChunkSize = n
		}
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
}
