package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"movienight/internal/config"
)

func TestLoadDefaultConfigUsesEnvTMDBKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantDB := filepath.Join(tempHome, ".local", "share", "movienight", "movienight.db")
	if cfg.Paths.DatabasePath != wantDB {
		t.Fatalf("unexpected db path: got %q want %q", cfg.Paths.DatabasePath, wantDB)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, ".local", "share", "movienight", "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.TMDB.APIKey != "test-key" {
		t.Fatalf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.BaseURL != config.Default().TMDB.BaseURL {
		t.Fatalf("unexpected TMDB base url: %q", cfg.TMDB.BaseURL)
	}
	if cfg.OMDB.APIKey != "" {
		t.Fatalf("expected OMDb key empty by default, got %q", cfg.OMDB.APIKey)
	}
	if !cfg.Scraper.Enabled {
		t.Fatal("expected scraper enabled by default")
	}
	if cfg.Matcher.Threshold != 0.8 {
		t.Fatalf("unexpected matcher threshold: %v", cfg.Matcher.Threshold)
	}
	if cfg.Trailer.SearchRetries != 3 {
		t.Fatalf("unexpected trailer retries: %d", cfg.Trailer.SearchRetries)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{filepath.Dir(cfg.Paths.DatabasePath), cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "movienight.toml")

	type payload struct {
		TMDB struct {
			APIKey  string `toml:"api_key"`
			BaseURL string `toml:"base_url"`
		} `toml:"tmdb"`
		Matcher struct {
			Threshold float64 `toml:"threshold"`
		} `toml:"matcher"`
		Trailer struct {
			SearchRetries int `toml:"search_retries"`
		} `toml:"trailer"`
	}
	custom := payload{}
	custom.TMDB.APIKey = "abc123"
	custom.TMDB.BaseURL = "https://example.com/tmdb"
	custom.Matcher.Threshold = 0.9
	custom.Trailer.SearchRetries = 5
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.TMDB.APIKey != "abc123" {
		t.Fatalf("expected TMDB key from file, got %q", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.BaseURL != "https://example.com/tmdb" {
		t.Fatalf("expected TMDB base url override, got %q", cfg.TMDB.BaseURL)
	}
	if cfg.Matcher.Threshold != 0.9 {
		t.Fatalf("expected matcher threshold 0.9, got %v", cfg.Matcher.Threshold)
	}
	if cfg.Trailer.SearchRetries != 5 {
		t.Fatalf("expected trailer retries 5, got %d", cfg.Trailer.SearchRetries)
	}
}

func TestEnvVarOverridesConfigFileForAPIKeys(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "movienight.toml")

	type payload struct {
		TMDB struct {
			APIKey string `toml:"api_key"`
		} `toml:"tmdb"`
		OMDB struct {
			APIKey string `toml:"api_key"`
		} `toml:"omdb"`
		YouTube struct {
			APIKey string `toml:"api_key"`
		} `toml:"youtube"`
	}
	custom := payload{}
	custom.TMDB.APIKey = "file-tmdb"
	custom.OMDB.APIKey = "file-omdb"
	custom.YouTube.APIKey = "file-youtube"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("TMDB_API_KEY", "env-tmdb")
	t.Setenv("OMDB_API_KEY", "env-omdb")
	t.Setenv("YOUTUBE_API_KEY", "env-youtube")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.TMDB.APIKey != "env-tmdb" {
		t.Errorf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if cfg.OMDB.APIKey != "env-omdb" {
		t.Errorf("expected OMDb key from env, got %q", cfg.OMDB.APIKey)
	}
	if cfg.YouTube.APIKey != "env-youtube" {
		t.Errorf("expected YouTube key from env, got %q", cfg.YouTube.APIKey)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_tmdb_api_key_here") {
		t.Fatalf("sample config missing placeholder TMDB key: %s", contents)
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Matcher.Threshold != 0.8 {
		t.Fatalf("expected sample threshold 0.8, got %v", cfg.Matcher.Threshold)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.TMDB.APIKey = "key"
	cfg.Matcher.Threshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for threshold above 1")
	}

	cfg = config.Default()
	cfg.TMDB.APIKey = "key"
	cfg.Matcher.RuntimeToleranceMinutes = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative runtime tolerance")
	}

	cfg = config.Default()
	cfg.TMDB.APIKey = "key"
	cfg.YouTube.MaxResults = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero max results")
	}

	cfg = config.Default()
	cfg.TMDB.APIKey = "key"
	cfg.Trailer.SearchRetries = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero search retries")
	}

	cfg = config.Default()
	cfg.TMDB.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing TMDb key")
	}
}
