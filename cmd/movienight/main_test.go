package main

import (
	"path/filepath"
	"testing"
)

func TestRootHelpListsCommands(t *testing.T) {
	out, _, err := runCLI(t, []string{"--help"}, "")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, name := range []string{"config", "import", "discover", "enrich", "trailers", "trends", "refresh", "pick", "stats", "show"} {
		requireContains(t, out, name)
	}
}

func TestUnknownCommandFails(t *testing.T) {
	if _, _, err := runCLI(t, []string{"frobnicate"}, ""); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestMissingConfigFailsValidation(t *testing.T) {
	setupCLITestEnv(t)

	absent := filepath.Join(t.TempDir(), "absent.toml")
	_, _, err := runCLI(t, []string{"stats"}, absent)
	if err == nil {
		t.Fatal("expected validation error without a TMDb key")
	}
	requireContains(t, err.Error(), "tmdb.api_key is required")
}
