package testsupport

import (
	"context"
	"testing"

	"movienight/internal/catalog"
	"movienight/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewMovie creates a movie row for tests using the provided store.
func NewMovie(t testing.TB, store *catalog.Store, title string) *catalog.Movie {
	t.Helper()

	movie, err := store.CreateMovie(context.Background(), title)
	if err != nil {
		t.Fatalf("store.CreateMovie: %v", err)
	}
	return movie
}
