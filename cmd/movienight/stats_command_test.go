package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"movienight/internal/catalog"
	"movienight/internal/enrich"
	"movienight/internal/testsupport"
)

func TestStatsCommandSummarizesCatalogue(t *testing.T) {
	env := setupCLITestEnv(t)

	csvPath := filepath.Join(env.baseDir, "watchlist.csv")
	testsupport.WriteFile(t, csvPath, "Heat,1995\nRan,1985\n")
	if _, _, err := runCLI(t, []string{"import", csvPath, "--list", "classics"}, env.configPath); err != nil {
		t.Fatalf("import: %v", err)
	}

	out, _, err := runCLI(t, []string{"stats"}, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "Movies")
	requireContains(t, out, "Missing trailer")
	requireContains(t, out, "Pick lists")
	if strings.Contains(out, "Paused sweeps") {
		t.Fatalf("expected no paused sweeps in output:\n%s", out)
	}
}

func TestStatsCommandReportsPausedSweeps(t *testing.T) {
	env := setupCLITestEnv(t)

	csvPath := filepath.Join(env.baseDir, "watchlist.csv")
	testsupport.WriteFile(t, csvPath, "Heat,1995\n")
	if _, _, err := runCLI(t, []string{"import", csvPath, "--list", "classics"}, env.configPath); err != nil {
		t.Fatalf("import: %v", err)
	}

	seedStore(t, env.cfg, func(ctx context.Context, store *catalog.Store) {
		if err := store.SetCheckpoint(ctx, enrich.JobMetadata, 1); err != nil {
			t.Fatalf("SetCheckpoint: %v", err)
		}
	})

	out, _, err := runCLI(t, []string{"stats"}, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "Paused sweeps")
	requireContains(t, out, enrich.JobMetadata)
}
