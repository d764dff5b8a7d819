package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("LLM_RETRY_MAX_ATTEMPTS", "")
	t.Setenv("NORMALIZE_SERIALIZE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StoreBackend != BackendMemory {
		t.Fatalf("expected default store backend memory, got %q", cfg.StoreBackend)
	}
	if cfg.LLMRetryMaxAttempts != 1 {
		t.Fatalf("expected single model attempt by default, got %d", cfg.LLMRetryMaxAttempts)
	}
	if !cfg.NormalizeSerialize {
		t.Fatalf("expected normalization to be serialized by default")
	}
	if cfg.UsesPostgres() {
		t.Fatalf("memory defaults must not need postgres")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("RESOLVE_PARALLEL_READS", "true")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StoreBackend != BackendPostgres || !cfg.UsesPostgres() {
		t.Fatalf("expected postgres store backend, got %q", cfg.StoreBackend)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if !cfg.ResolveParallelReads {
		t.Fatalf("expected parallel reads override")
	}
	if cfg.RedisDB != 0 {
		t.Fatalf("expected invalid int to fall back, got %d", cfg.RedisDB)
	}
}

func TestLoadFileFillsUnsetKeysAndEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dinelog.yaml")
	body := "API_PORT: 9999\nollama_gen_model: qwen2.5\nEMBED_CACHE_SIZE: 42\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_PORT", "8081")
	t.Setenv("OLLAMA_GEN_MODEL", "")
	t.Setenv("EMBED_CACHE_SIZE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "8081" {
		t.Fatalf("expected env to win, got %q", cfg.APIPort)
	}
	if cfg.OllamaGenModel != "qwen2.5" {
		t.Fatalf("expected file value, got %q", cfg.OllamaGenModel)
	}
	if cfg.EmbedCacheSize != 42 {
		t.Fatalf("expected cache size from file, got %d", cfg.EmbedCacheSize)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SESSION_BACKEND", "mongo")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown session backend")
	}
}

func TestLoadRequiresGeminiKey(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without gemini api key")
	}
}
