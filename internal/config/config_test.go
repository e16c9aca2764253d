package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/merchant-insight-bfa-go/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.Timezone != "Asia/Bangkok" {
		t.Errorf("expected Asia/Bangkok, got %s", cfg.Timezone)
	}
	if !cfg.SeedData {
		t.Error("expected seed data enabled by default")
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("expected default model, got %s", cfg.GeminiModel)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("expected 5m cache ttl, got %v", cfg.CacheTTL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("expected [*] origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SEED_DATA", "false")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("GEMINI_BASE_URL", "http://localhost:1234/v1/")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("API_KEY", "legacy-key")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.SeedData {
		t.Error("expected seed data disabled")
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.HTTPTimeout)
	}
	if cfg.GeminiBaseURL != "http://localhost:1234/v1" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.GeminiBaseURL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.GeminiAPIKey != "legacy-key" {
		t.Errorf("expected API_KEY fallback, got '%s'", cfg.GeminiAPIKey)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.yaml")
	if err := os.WriteFile(path, []byte("port: 7070\ngemini_model: gemini-2.0-flash\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INSIGHT_CONFIG", path)
	t.Setenv("GEMINI_MODEL", "from-env")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("expected port from file, got %d", cfg.Port)
	}
	if cfg.GeminiModel != "from-env" {
		t.Errorf("expected env to win over file, got %s", cfg.GeminiModel)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("INSIGHT_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}

	cfg.Port = 0
	cfg.Timezone = "Mars/Olympus_Mons"
	cfg.MaxConcurrency = 0

	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"invalid port", "invalid timezone", "invalid max concurrency"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nDOTENV_NEW=from-file\nDOTENV_EXISTING=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOTENV_EXISTING", "from-env")
	t.Setenv("DOTENV_NEW", "")
	os.Unsetenv("DOTENV_NEW")

	if err := config.LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := os.Getenv("DOTENV_NEW"); got != "from-file" {
		t.Errorf("expected from-file, got '%s'", got)
	}
	if got := os.Getenv("DOTENV_EXISTING"); got != "from-env" {
		t.Errorf("expected env to win, got '%s'", got)
	}
}
