package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
server:
  port: "9090"
generation:
  provider: openai
  timeout: 30s
  fallback_policy: atomic
extraction:
  min_text_chars: 80
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("LOG_MODE", "production")
	t.Setenv("STUDYQUIZ_CONFIG", path)
	t.Setenv("PORT", "7070")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("port got=%q want=7070", cfg.Server.Port)
	}
	if cfg.Generation.Provider != "openai" || cfg.Generation.Timeout != 30*time.Second {
		t.Fatalf("generation got=%+v", cfg.Generation)
	}
	if cfg.Extraction.MinTextChars != 80 || cfg.Extraction.MinAlnumRatio != 0.3 {
		t.Fatalf("extraction got=%+v", cfg.Extraction)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins got=%v", cfg.Server.AllowedOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("LOG_MODE", "production")
	t.Setenv("STUDYQUIZ_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("LOG_MODE", "production")
	t.Setenv("STUDYQUIZ_CONFIG", "")
	t.Setenv("GENERATION_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad duration")
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Generation.FallbackPolicy = "sometimes"
	cfg.Store.Driver = "mongo"
	cfg.Extraction.MinAlnumRatio = 2

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"GEMINI_API_KEY", "fallback policy", "MONGO_URI", "min_alnum_ratio"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}
