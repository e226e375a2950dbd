package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// flatSections lists the top-level nested struct fields whose env var form is
// SECTION_FIELD rather than a single flat key. Everything else is loaded as
// one flat dotless key, since most of this service's settings (qdrant_url,
// cache_ttl_s, chunk_size, ...) are themselves already underscore-joined
// words rather than section.field pairs.
var flatSections = []string{"indexing_", "documentation_"}

// Load reads configuration from a YAML file (if configPath is non-empty and
// exists) and then overrides with environment variables, in that precedence
// order, applying Default() first and Validate() last.
//
// Environment variable mapping:
//
//	QDRANT_URL            -> qdrant_url
//	REDIS_ENABLED         -> redis_enabled
//	INDEXING_RECURSIVE    -> indexing.recursive
//	DOCUMENTATION_OFFLINE_MODE -> documentation.offline_mode
//
// Map-valued fields (documentation.auto_index, documentation.routing) are
// configured only via the YAML file; koanf's env transform has no way to
// distinguish a map key from a struct field in a flat KEY=VALUE pair.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	cfg := Default()
	if err := k.Load(structProvider(cfg), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.ElectronHubAPIKey = os.Getenv("ELECTRONHUB_API_KEY")
	cfg.ElectronHubBaseURL = os.Getenv("ELECTRONHUB_BASE_URL")
	cfg.SpiderAPIKey = os.Getenv("SPIDER_API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func envTransform(s string) string {
	lower := strings.ToLower(s)
	for _, section := range flatSections {
		if strings.HasPrefix(lower, section) {
			name := strings.TrimSuffix(section, "_")
			return name + "." + strings.TrimPrefix(lower, section)
		}
	}
	return lower
}

// structProvider adapts an already-populated Config as a koanf.Provider so
// Default() can be loaded through the same Unmarshal path as the file and
// env layers, instead of being applied as an ad hoc post-processing step.
func structProvider(cfg Config) koanf.Provider {
	return defaultsProvider{cfg: cfg}
}

type defaultsProvider struct{ cfg Config }

func (d defaultsProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("defaultsProvider does not support ReadBytes")
}

func (d defaultsProvider) Read() (map[string]interface{}, error) {
	return map[string]interface{}{
		"llm_provider":       string(d.cfg.LLMProvider),
		"fast_model":         d.cfg.FastModel,
		"complex_model":      d.cfg.ComplexModel,
		"complex_alt_model":  d.cfg.ComplexAltModel,
		"embed_provider":     string(d.cfg.EmbedProvider),
		"openai_embed_model": d.cfg.OpenAIEmbedModel,
		"ollama_embed_model": d.cfg.OllamaEmbedModel,
		"qdrant_url":         d.cfg.QdrantURL,
		"collection_prefix":  d.cfg.CollectionPrefix,
		"http_addr":          d.cfg.HTTPAddr,
		"redis_host":         d.cfg.RedisHost,
		"redis_port":         d.cfg.RedisPort,
		"cache_ttl_s":        d.cfg.CacheTTLS,
		"redis_enabled":      d.cfg.RedisEnabled,
		"chunk_size":         d.cfg.ChunkSize,
		"chunk_overlap":      d.cfg.ChunkOverlap,
		"num_workers":        d.cfg.NumWorkers,
		"index_mode":         string(d.cfg.IndexMode),
		"enable_hybrid":      d.cfg.EnableHybrid,
		"crawl_depth":        d.cfg.CrawlDepth,
		"indexing": map[string]interface{}{
			"recursive":        d.cfg.Indexing.Recursive,
			"file_extensions":  d.cfg.Indexing.FileExtensions,
			"exclude_patterns": d.cfg.Indexing.ExcludePatterns,
			"include_paths":    d.cfg.Indexing.IncludePaths,
		},
	}, nil
}
