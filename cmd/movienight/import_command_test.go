package main

import (
	"context"
	"path/filepath"
	"testing"

	"movienight/internal/catalog"
	"movienight/internal/testsupport"
)

func TestImportCommandCreatesListAndMovies(t *testing.T) {
	env := setupCLITestEnv(t)

	csvPath := filepath.Join(env.baseDir, "watchlist.csv")
	testsupport.WriteFile(t, csvPath, "title,year\nHeat,1995\nRan,1985\n")

	out, _, err := runCLI(t, []string{"import", csvPath, "--list", "classics"}, env.configPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, `Imported 2 rows into "classics": 2 new, 0 matched, 0 skipped.`)

	seedStore(t, env.cfg, func(ctx context.Context, store *catalog.Store) {
		movies, err := store.MoviesInList(ctx, "classics")
		if err != nil {
			t.Fatalf("MoviesInList: %v", err)
		}
		if len(movies) != 2 {
			t.Fatalf("expected 2 movies in list, got %d", len(movies))
		}
	})

	// The same file again matches every row instead of duplicating.
	out, _, err = runCLI(t, []string{"import", csvPath, "--list", "classics"}, env.configPath)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	requireContains(t, out, "2 matched")
}

func TestImportCommandRequiresList(t *testing.T) {
	env := setupCLITestEnv(t)

	csvPath := filepath.Join(env.baseDir, "watchlist.csv")
	testsupport.WriteFile(t, csvPath, "Heat,1995\n")

	if _, _, err := runCLI(t, []string{"import", csvPath}, env.configPath); err == nil {
		t.Fatal("expected error when --list is missing")
	}
}

func TestImportCommandRejectsMissingFile(t *testing.T) {
	env := setupCLITestEnv(t)

	missing := filepath.Join(env.baseDir, "nope.csv")
	if _, _, err := runCLI(t, []string{"import", missing, "--list", "classics"}, env.configPath); err == nil {
		t.Fatal("expected error for missing import file")
	}
}
