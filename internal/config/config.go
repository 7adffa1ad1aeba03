package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xxxsen/common/logger"
)

const (
	AIProviderDisabled = "disabled"
	AIProviderOpenAI   = "openai"
	AIProviderExternal = "external"
	AIProviderGemini   = "gemini"
	AIProviderLocal    = "local"
)

type Config struct {
	Port             int              `json:"port"`
	Database         DatabaseConfig   `json:"database"`
	LogConfig        logger.LogConfig `json:"log_config"`
	Metadata         MetadataConfig   `json:"metadata"`
	AI               AIConfig         `json:"ai"`
	Search           SearchConfig     `json:"search"`
	Jobs             JobsConfig       `json:"jobs"`
	CORSAllowOrigins []string         `json:"cors_allow_origins"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type MetadataConfig struct {
	GoogleBooks GoogleBooksConfig `json:"google_books"`
	OpenLibrary OpenLibraryConfig `json:"open_library"`
}

type GoogleBooksConfig struct {
	Enabled  *bool  `json:"enabled"`
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint"`
	Timeout  int    `json:"timeout"`
}

func (c GoogleBooksConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

type OpenLibraryConfig struct {
	Enabled       *bool  `json:"enabled"`
	BaseURL       string `json:"base_url"`
	Timeout       int    `json:"timeout"`
	AuthorTimeout int    `json:"author_timeout"`
}

func (c OpenLibraryConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// AIConfig is passed as-is to the embedding provider factory, which picks
// up api_key and base_url from it.
type AIConfig struct {
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	APIKey         string `json:"api_key"`
	BaseURL        string `json:"base_url"`
	Timeout        int    `json:"timeout"`
	QueryCacheSize int    `json:"query_cache_size"`
	QueryCacheTTL  int    `json:"query_cache_ttl"`
}

type SearchConfig struct {
	DefaultTopK         int `json:"default_top_k"`
	RecommendLimit      int `json:"recommend_limit"`
	SemanticRateLimitMs int `json:"semantic_rate_limit_ms"`
}

type JobsConfig struct {
	EmbeddingBackfillSpec string `json:"embedding_backfill_spec"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyEnv(&cfg, os.LookupEnv)
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) {
	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		cfg.Database.DSN = v
	}
	if v, ok := lookup("GOOGLE_BOOKS_API_KEY"); ok && v != "" {
		cfg.Metadata.GoogleBooks.APIKey = v
	}
	if v, ok := lookupBool(lookup, "GOOGLE_BOOKS_ENABLED"); ok {
		cfg.Metadata.GoogleBooks.Enabled = &v
	}
	if v, ok := lookupBool(lookup, "OPEN_LIBRARY_ENABLED"); ok {
		cfg.Metadata.OpenLibrary.Enabled = &v
	}
	if v, ok := lookup("AI_PROVIDER"); ok && v != "" {
		cfg.AI.Provider = v
	}
	if cfg.AI.APIKey != "" {
		return
	}
	switch strings.ToLower(strings.TrimSpace(cfg.AI.Provider)) {
	case AIProviderOpenAI, AIProviderExternal:
		if v, ok := lookup("OPENAI_API_KEY"); ok {
			cfg.AI.APIKey = v
		}
	case AIProviderGemini:
		if v, ok := lookup("GEMINI_API_KEY"); ok {
			cfg.AI.APIKey = v
		}
	}
}

func lookupBool(lookup lookupFunc, key string) (bool, bool) {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return false, false
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, false
	}
	return v, true
}

func normalize(cfg *Config) error {
	if cfg.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Metadata.GoogleBooks.Timeout <= 0 {
		cfg.Metadata.GoogleBooks.Timeout = 10
	}
	if cfg.Metadata.OpenLibrary.Timeout <= 0 {
		cfg.Metadata.OpenLibrary.Timeout = 10
	}
	if cfg.Metadata.OpenLibrary.AuthorTimeout <= 0 {
		cfg.Metadata.OpenLibrary.AuthorTimeout = 5
	}
	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	switch cfg.AI.Provider {
	case "":
		cfg.AI.Provider = AIProviderDisabled
	case AIProviderDisabled, AIProviderLocal:
	case AIProviderOpenAI, AIProviderExternal, AIProviderGemini:
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required for provider %s", cfg.AI.Provider)
		}
	default:
		return fmt.Errorf("ai.provider must be one of disabled, local, openai, external, gemini")
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 10
	}
	if cfg.AI.QueryCacheSize <= 0 {
		cfg.AI.QueryCacheSize = 256
	}
	if cfg.AI.QueryCacheTTL <= 0 {
		cfg.AI.QueryCacheTTL = 600
	}
	if cfg.Search.DefaultTopK <= 0 {
		cfg.Search.DefaultTopK = 10
	}
	if cfg.Search.RecommendLimit <= 0 {
		cfg.Search.RecommendLimit = 5
	}
	return nil
}
