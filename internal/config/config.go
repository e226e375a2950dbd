// Package config loads and validates ctxsearch's configuration.
//
// Configuration is loaded once at process start from, in override order,
// (1) a YAML file if present, then (2) environment variables. The result is
// an immutable, typed Config value shared read-only by every component.
package config

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/ctxsearch/internal/apperr"
)

// LLMProvider identifies a completion backend.
type LLMProvider string

const (
	ProviderOllama      LLMProvider = "ollama"
	ProviderOpenAI      LLMProvider = "openai"
	ProviderElectronHub LLMProvider = "electronhub"
)

// EmbedProvider identifies an embedding backend.
type EmbedProvider string

const (
	EmbedProviderOpenAI EmbedProvider = "openai"
	EmbedProviderOllama EmbedProvider = "ollama"
)

// IndexMode is the default mode assigned to newly created collections.
type IndexMode string

const (
	IndexModeVector IndexMode = "vector"
	IndexModeGraph  IndexMode = "graph"
	IndexModeHybrid IndexMode = "hybrid"
	IndexModeAuto   IndexMode = "auto"
)

// RefreshSchedule is the cadence of the documentation refresh scheduler.
type RefreshSchedule string

const (
	ScheduleDaily   RefreshSchedule = "daily"
	ScheduleWeekly  RefreshSchedule = "weekly"
	ScheduleMonthly RefreshSchedule = "monthly"
)

// Interval returns the time.Duration a schedule corresponds to.
func (s RefreshSchedule) Interval() time.Duration {
	switch s {
	case ScheduleWeekly:
		return 7 * 24 * time.Hour
	case ScheduleMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// RoutingMode controls how a documentation framework's queries are served.
type RoutingMode string

const (
	RoutingIndexed  RoutingMode = "indexed"
	RoutingContext7 RoutingMode = "context7"
	RoutingWeb      RoutingMode = "web"
)

// Config is the complete, validated configuration for the service.
type Config struct {
	LLMProvider     LLMProvider `koanf:"llm_provider"`
	FastModel       string      `koanf:"fast_model"`
	ComplexModel    string      `koanf:"complex_model"`
	ComplexAltModel string      `koanf:"complex_alt_model"`

	EmbedProvider    EmbedProvider `koanf:"embed_provider"`
	OpenAIEmbedModel string        `koanf:"openai_embed_model"`
	OllamaEmbedModel string        `koanf:"ollama_embed_model"`

	// VectorStoreProvider selects the dense-vector backend: "chromem" (the
	// default, an embedded pure-Go store with no external service) or
	// "qdrant" (a gRPC server, better suited to larger or multi-node corpora).
	VectorStoreProvider string `koanf:"vector_store_provider"`
	ChromemPath         string `koanf:"chromem_path"`
	ChromemCompress     bool   `koanf:"chromem_compress"`

	QdrantURL        string `koanf:"qdrant_url"`
	CollectionPrefix string `koanf:"collection_prefix"`

	HTTPAddr string `koanf:"http_addr"`

	RedisHost    string `koanf:"redis_host"`
	RedisPort    int    `koanf:"redis_port"`
	CacheTTLS    int    `koanf:"cache_ttl_s"`
	RedisEnabled bool   `koanf:"redis_enabled"`

	ChunkSize    int `koanf:"chunk_size"`
	ChunkOverlap int `koanf:"chunk_overlap"`
	NumWorkers   int `koanf:"num_workers"`

	IndexMode IndexMode `koanf:"index_mode"`

	Indexing      IndexingConfig      `koanf:"indexing"`
	Documentation DocumentationConfig `koanf:"documentation"`

	EnableHybrid bool `koanf:"enable_hybrid"`
	CrawlDepth   int  `koanf:"crawl_depth"`

	// OpenAIAPIKey, ElectronHubAPIKey, ElectronHubBaseURL, and SpiderAPIKey are
	// read directly from OPENAI_API_KEY / ELECTRONHUB_API_KEY /
	// ELECTRONHUB_BASE_URL / SPIDER_API_KEY rather than the koanf tree, mirroring
	// how secrets are kept out of the config file in the teacher's layering.
	OpenAIAPIKey       string `koanf:"-"`
	ElectronHubAPIKey  string `koanf:"-"`
	ElectronHubBaseURL string `koanf:"-"`
	SpiderAPIKey       string `koanf:"-"`
}

// IndexingConfig controls directory ingestion.
type IndexingConfig struct {
	Recursive       bool     `koanf:"recursive"`
	FileExtensions  []string `koanf:"file_extensions"`
	ExcludePatterns []string `koanf:"exclude_patterns"`
	IncludePaths    []string `koanf:"include_paths"`
}

// DocumentationConfig controls documentation-framework ingestion and routing.
type DocumentationConfig struct {
	OfflineMode     bool                        `koanf:"offline_mode"`
	OfflineDocsPath string                      `koanf:"offline_docs_path"`
	SharedDocsPath  string                      `koanf:"shared_docs_path"`
	Refresh         RefreshConfig               `koanf:"refresh"`
	AutoIndex       map[string]AutoIndexConfig  `koanf:"auto_index"`
	Routing         map[string]RoutingMode      `koanf:"routing"`
}

// RefreshConfig controls the periodic documentation refresh scheduler.
type RefreshConfig struct {
	Enabled    bool            `koanf:"enabled"`
	Schedule   RefreshSchedule `koanf:"schedule"`
	Frameworks []string        `koanf:"frameworks"`
}

// AutoIndexConfig controls automatic indexing of a single framework's docs.
type AutoIndexConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
}

// Default returns a Config populated with the service's hardcoded defaults,
// applied before the file and environment layers are merged in.
func Default() Config {
	return Config{
		LLMProvider:      ProviderOllama,
		FastModel:        "llama3.1:8b",
		ComplexModel:     "llama3.1:70b",
		ComplexAltModel:  "qwen2.5:32b",
		EmbedProvider:    EmbedProviderOllama,
		OllamaEmbedModel: "nomic-embed-text",

		VectorStoreProvider: "chromem",
		ChromemPath:         "~/.config/ctxsearch/vectorstore",

		QdrantURL:        "http://localhost:6334",
		CollectionPrefix: "",
		HTTPAddr:         ":8080",
		RedisHost:        "localhost",
		RedisPort:        6379,
		CacheTTLS:        3600,
		RedisEnabled:     true,
		ChunkSize:        512,
		ChunkOverlap:     50,
		NumWorkers:       4,
		IndexMode:        IndexModeVector,
		Indexing: IndexingConfig{
			Recursive: true,
			FileExtensions: []string{
				".py", ".js", ".ts", ".tsx", ".jsx", ".java", ".cpp", ".c", ".cs",
				".go", ".rs", ".php", ".rb", ".scala", ".kt", ".swift", ".m", ".r",
				".sql", ".md", ".txt", ".rst",
			},
			ExcludePatterns: []string{
				".git/**", "node_modules/**", "vendor/**", "__pycache__/**",
				"dist/**", "build/**", ".venv/**",
			},
		},
		EnableHybrid: false,
		CrawlDepth:   2,
	}
}

// Validate checks that the fields required by the selected providers are
// present. Unknown keys loaded from file or environment are retained but
// ignored by koanf's Unmarshal; this method only rejects missing required
// fields.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOllama:
		// No required secret; local daemon assumed reachable at default URL.
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return apperr.New(apperr.ConfigErrorKind, "OPENAI_API_KEY is required when llm_provider=openai")
		}
	case ProviderElectronHub:
		if c.ElectronHubAPIKey == "" {
			return apperr.New(apperr.ConfigErrorKind, "ELECTRONHUB_API_KEY is required when llm_provider=electronhub")
		}
	default:
		return apperr.New(apperr.ConfigErrorKind, fmt.Sprintf("unsupported llm_provider: %q", c.LLMProvider))
	}

	switch c.EmbedProvider {
	case EmbedProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return apperr.New(apperr.ConfigErrorKind, "OPENAI_API_KEY is required when embed_provider=openai")
		}
	case EmbedProviderOllama:
	default:
		return apperr.New(apperr.ConfigErrorKind, fmt.Sprintf("unsupported embed_provider: %q", c.EmbedProvider))
	}

	switch c.VectorStoreProvider {
	case "chromem", "":
		// Embedded store; no external endpoint to validate.
	case "qdrant":
		if c.QdrantURL == "" {
			return apperr.New(apperr.ConfigErrorKind, "qdrant_url is required when vector_store_provider=qdrant")
		}
	default:
		return apperr.New(apperr.ConfigErrorKind, fmt.Sprintf("unsupported vector_store_provider: %q", c.VectorStoreProvider))
	}

	switch c.IndexMode {
	case IndexModeVector, IndexModeGraph, IndexModeHybrid, IndexModeAuto:
	default:
		return apperr.New(apperr.ConfigErrorKind, fmt.Sprintf("unsupported index_mode: %q", c.IndexMode))
	}

	if c.ChunkSize <= 0 {
		return apperr.New(apperr.ConfigErrorKind, "chunk_size must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return apperr.New(apperr.ConfigErrorKind, "chunk_overlap must be non-negative and less than chunk_size")
	}
	if c.NumWorkers <= 0 {
		return apperr.New(apperr.ConfigErrorKind, "num_workers must be positive")
	}

	return nil
}

// ModelTimeout returns the request deadline for a given LLM kind, per §5.
func ModelTimeout(kind string) time.Duration {
	switch kind {
	case "complex":
		return 120 * time.Second
	case "complex_alt":
		return 90 * time.Second
	default:
		return 60 * time.Second
	}
}
