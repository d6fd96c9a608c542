// Package config loads application configuration from file and
// environment. Every setting can be overridden with a CYBERSYN_*
// environment variable (dots become underscores, e.g.
// CYBERSYN_LLM_API_KEY).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the research assistant.
type Config struct {
	General  GeneralConfig  `mapstructure:"general"`
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Search   SearchConfig   `mapstructure:"search"`
	Research ResearchConfig `mapstructure:"research"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server and auth settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
	// AccessToken, when set, gates the /api routes behind a bearer token.
	AccessToken string   `mapstructure:"access_token"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// LLMConfig contains the generation provider settings.
type LLMConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
	Referer string        `mapstructure:"referer"`
	Title   string        `mapstructure:"title"`
}

func (l LLMConfig) Validate() error {
	if strings.TrimSpace(l.APIKey) == "" {
		return fmt.Errorf("llm.api_key required (set CYBERSYN_LLM_API_KEY)")
	}
	return nil
}

// SearchConfig contains transcript index settings.
type SearchConfig struct {
	IndexPath string `mapstructure:"index_path"`
	PageSize  int    `mapstructure:"page_size"`
}

// ResearchConfig tunes the research pipeline.
type ResearchConfig struct {
	MaxContextTokens    int     `mapstructure:"max_context_tokens"`
	ChunkTokens         int     `mapstructure:"chunk_tokens"`
	OverlapTokens       int     `mapstructure:"overlap_tokens"`
	MaxConcurrentChunks int     `mapstructure:"max_concurrent_chunks"`
	Temperature         float64 `mapstructure:"temperature"`
	MaxOutputTokens     int     `mapstructure:"max_output_tokens"`
	DedupPrefix         int     `mapstructure:"dedup_prefix"`
}

// RedisConfig contains the optional plan-cache connection settings.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func (r RedisConfig) Validate() error {
	if r.Enabled && strings.TrimSpace(r.Addr) == "" {
		return fmt.Errorf("redis.addr required when redis is enabled")
	}
	return nil
}

// LoadConfig loads config from file and environment. path may be empty,
// in which case the usual locations are searched and a missing file is
// fine; environment variables and defaults still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")

	// Every key needs a default so the matching CYBERSYN_* variable is
	// visible to Unmarshal even without a config file entry.
	v.SetDefault("general.debug", false)
	v.SetDefault("general.log_level", "info")
	v.SetDefault("server.address", ":8787")
	v.SetDefault("server.access_token", "")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.model", "anthropic/claude-3.5-sonnet")
	v.SetDefault("llm.timeout", 2*time.Minute)
	v.SetDefault("llm.title", "Documentary Research Assistant")
	v.SetDefault("search.index_path", "cybersyn.bleve")
	v.SetDefault("search.page_size", 200)
	v.SetDefault("research.max_context_tokens", 128000)
	v.SetDefault("research.chunk_tokens", 100000)
	v.SetDefault("research.overlap_tokens", 2000)
	v.SetDefault("research.max_concurrent_chunks", 10)
	v.SetDefault("research.temperature", 0.7)
	v.SetDefault("research.max_output_tokens", 4000)
	v.SetDefault("research.dedup_prefix", 200)
	v.SetDefault("llm.referer", "")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		v.AddConfigPath(exeDir)
		v.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("CYBERSYN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Redis.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
