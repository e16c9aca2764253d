package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezone lookups must not depend on the host's zoneinfo

	"github.com/spf13/viper"
)

// Config holds all application configuration.
// Values are loaded from environment variables (and an optional config file)
// with sensible defaults.
type Config struct {
	// Server
	Port        int
	LogLevel    string
	CORSOrigins []string

	// Calendar
	Timezone string
	SeedData bool

	// Gemini (OpenAI-compatible endpoint)
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
// If INSIGHT_CONFIG points at a file (yaml, toml, json) it is read first and
// environment variables still take precedence.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("timezone", "Asia/Bangkok")
	v.SetDefault("seed_data", true)
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_base_url", "https://generativelanguage.googleapis.com/v1beta/openai")
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("http_timeout", 30*time.Second)
	v.SetDefault("max_retries", 2)
	v.SetDefault("initial_backoff", 200*time.Millisecond)
	v.SetDefault("max_concurrency", 4)
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("otel_exporter_otlp_endpoint", "")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// The upstream SDK convention for the key is API_KEY; accept it too.
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "API_KEY")

	if path := v.GetString("insight_config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return &Config{
		Port:        v.GetInt("port"),
		LogLevel:    v.GetString("log_level"),
		CORSOrigins: splitList(v.GetString("cors_origins")),

		Timezone: v.GetString("timezone"),
		SeedData: v.GetBool("seed_data"),

		GeminiAPIKey:  v.GetString("gemini_api_key"),
		GeminiBaseURL: strings.TrimRight(v.GetString("gemini_base_url"), "/"),
		GeminiModel:   v.GetString("gemini_model"),

		HTTPTimeout: v.GetDuration("http_timeout"),

		MaxRetries:     v.GetInt("max_retries"),
		InitialBackoff: v.GetDuration("initial_backoff"),
		MaxConcurrency: v.GetInt("max_concurrency"),

		CacheTTL: v.GetDuration("cache_ttl"),

		OTLPEndpoint: v.GetString("otel_exporter_otlp_endpoint"),
	}, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Port))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("invalid timezone %q: %v", c.Timezone, err))
	}
	if c.MaxConcurrency < 1 {
		problems = append(problems, fmt.Sprintf("invalid max concurrency %d: must be at least 1", c.MaxConcurrency))
	}
	if c.MaxRetries < 0 {
		problems = append(problems, fmt.Sprintf("invalid max retries %d: must not be negative", c.MaxRetries))
	}
	if c.InitialBackoff <= 0 {
		problems = append(problems, fmt.Sprintf("invalid initial backoff %v: must be positive", c.InitialBackoff))
	}
	if c.CacheTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid cache ttl %v: must be positive", c.CacheTTL))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Location returns the configured timezone. Call Validate first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
