package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"movienight/internal/catalog"
	"movienight/internal/config"
	"movienight/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	// Keys from the machine environment must not leak into the loaded
	// config; an empty value makes the override a no-op.
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("OMDB_API_KEY", "")
	t.Setenv("YOUTUBE_API_KEY", "")

	cfg := testsupport.NewConfig(t)
	cfg.Logging.Level = "error"

	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndb_path = %q\nlog_dir = %q\n\n[tmdb]\napi_key = %q\n\n[logging]\nlevel = %q\n",
		cfg.Paths.DatabasePath,
		cfg.Paths.LogDir,
		cfg.TMDB.APIKey,
		cfg.Logging.Level,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// seedStore opens the catalogue outside the CLI for test fixtures. The
// store must be closed again before the next runCLI call so the file
// lock is free.
func seedStore(t *testing.T, cfg *config.Config, fn func(ctx context.Context, store *catalog.Store)) {
	t.Helper()
	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	defer store.Close()
	fn(context.Background(), store)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
