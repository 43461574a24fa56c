package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"movienight/internal/catalog"
	"movienight/internal/services"
	"movienight/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	movie, err := store.CreateMovie(ctx, "Arrival")
	if err != nil {
		t.Fatalf("CreateMovie failed: %v", err)
	}
	if movie.ID == 0 {
		t.Fatal("expected movie ID to be assigned")
	}
	if movie.CreatedAt.IsZero() || movie.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps set, got %#v", movie)
	}

	fetched, err := store.GetByID(ctx, movie.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.Title != "Arrival" {
		t.Fatalf("unexpected fetched movie: %#v", fetched)
	}

	found, err := store.FindByTitle(ctx, "Arrival")
	if err != nil {
		t.Fatalf("FindByTitle failed: %v", err)
	}
	if found == nil || found.ID != movie.ID {
		t.Fatalf("expected to find inserted movie, got %#v", found)
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	fetched, err := store.GetByID(context.Background(), 4242)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched != nil {
		t.Fatalf("expected nil for unknown id, got %#v", fetched)
	}
}

func TestCreateMovieRequiresTitle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.CreateMovie(context.Background(), "   "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank title, got %v", err)
	}
}

func TestOpenSecondInstanceLocked(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.MustOpenStore(t, cfg)

	if _, err := catalog.Open(cfg); !errors.Is(err, catalog.ErrLocked) {
		t.Fatalf("expected ErrLocked for second open, got %v", err)
	}
}

func TestFindByTitleFallsBackToAliases(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	movie := testsupport.NewMovie(t, store, "Le Fabuleux Destin d'Amélie Poulain")
	if err := store.AddAlias(ctx, movie.ID, "Amélie"); err != nil {
		t.Fatalf("AddAlias failed: %v", err)
	}

	found, err := store.FindByTitle(ctx, "Amélie")
	if err != nil {
		t.Fatalf("FindByTitle alias failed: %v", err)
	}
	if found == nil || found.ID != movie.ID {
		t.Fatalf("expected alias lookup to resolve movie, got %#v", found)
	}

	missing, err := store.FindByTitle(ctx, "Ratatouille")
	if err != nil {
		t.Fatalf("FindByTitle unknown failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown title, got %#v", missing)
	}
}

func TestFindByTMDBID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	movie := testsupport.NewMovie(t, store, "Dune")
	if err := store.UpdateField(ctx, movie.ID, "tmdb_id", int64(438631)); err != nil {
		t.Fatalf("UpdateField tmdb_id failed: %v", err)
	}

	found, err := store.FindByTMDBID(ctx, 438631)
	if err != nil {
		t.Fatalf("FindByTMDBID failed: %v", err)
	}
	if found == nil || found.ID != movie.ID || found.TMDBID != 438631 {
		t.Fatalf("unexpected lookup result: %#v", found)
	}

	missing, err := store.FindByTMDBID(ctx, 999999)
	if err != nil {
		t.Fatalf("FindByTMDBID unknown failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown tmdb id, got %#v", missing)
	}
}

func TestUpdateFieldValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	movie := testsupport.NewMovie(t, store, "Heat")

	if err := store.UpdateField(ctx, movie.ID, "drop_table", "x"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unknown column, got %v", err)
	}
	if err := store.UpdateField(ctx, movie.ID, "combined_score", 120.0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for out-of-range score, got %v", err)
	}
	if err := store.UpdateField(ctx, 9999, "year", 1995); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error for unknown movie, got %v", err)
	}

	if err := store.UpdateField(ctx, movie.ID, "year", 1995); err != nil {
		t.Fatalf("UpdateField year failed: %v", err)
	}
	updated, err := store.GetByID(ctx, movie.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Year != 1995 {
		t.Fatalf("expected year 1995, got %d", updated.Year)
	}
}

func TestIsFieldMissingKeepsNullApartFromZero(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	movie := testsupport.NewMovie(t, store, "Moon")

	missing, err := store.IsFieldMissing(ctx, movie.ID, "google_trend_score")
	if err != nil {
		t.Fatalf("IsFieldMissing failed: %v", err)
	}
	if !missing {
		t.Fatal("expected fresh score column to read missing")
	}

	if err := store.UpdateField(ctx, movie.ID, "google_trend_score", 0.0); err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}
	missing, err = store.IsFieldMissing(ctx, movie.ID, "google_trend_score")
	if err != nil {
		t.Fatalf("IsFieldMissing after set failed: %v", err)
	}
	if missing {
		t.Fatal("a stored zero score must not count as missing")
	}

	// Whitespace-only text counts as missing.
	if err := store.UpdateField(ctx, movie.ID, "plot_desc", "   "); err != nil {
		t.Fatalf("UpdateField plot failed: %v", err)
	}
	missing, err = store.IsFieldMissing(ctx, movie.ID, "plot_desc")
	if err != nil {
		t.Fatalf("IsFieldMissing plot failed: %v", err)
	}
	if !missing {
		t.Fatal("expected whitespace plot to read missing")
	}

	missing, err = store.IsFieldMissing(ctx, 9999, "plot_desc")
	if err != nil {
		t.Fatalf("IsFieldMissing unknown movie failed: %v", err)
	}
	if !missing {
		t.Fatal("expected unknown movie to read missing")
	}
}

func TestScoreColumnsScanAsPointers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	movie := testsupport.NewMovie(t, store, "Sunshine")

	fresh, err := store.GetByID(ctx, movie.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fresh.GoogleTrendScore != nil || fresh.ActorTrendScore != nil || fresh.CombinedScore != nil {
		t.Fatalf("expected nil score pointers before scoring, got %#v", fresh)
	}

	if err := store.UpdateField(ctx, movie.ID, "combined_score", 74.25); err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}
	scored, err := store.GetByID(ctx, movie.ID)
	if err != nil {
		t.Fatalf("GetByID after score failed: %v", err)
	}
	if scored.CombinedScore == nil || *scored.CombinedScore != 74.25 {
		t.Fatalf("expected combined score 74.25, got %#v", scored.CombinedScore)
	}
}

func TestMoviesMissingFieldResumesAfterID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		movie := testsupport.NewMovie(t, store, fmt.Sprintf("Movie %d", i))
		ids = append(ids, movie.ID)
	}
	if err := store.UpdateField(ctx, ids[1], "youtube_link", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"); err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}

	missing, err := store.MoviesMissingField(ctx, "youtube_link", 0)
	if err != nil {
		t.Fatalf("MoviesMissingField failed: %v", err)
	}
	if len(missing) != 2 || missing[0].ID != ids[0] || missing[1].ID != ids[2] {
		t.Fatalf("unexpected missing set: %#v", missing)
	}

	resumed, err := store.MoviesMissingField(ctx, "youtube_link", ids[0])
	if err != nil {
		t.Fatalf("MoviesMissingField resume failed: %v", err)
	}
	if len(resumed) != 1 || resumed[0].ID != ids[2] {
		t.Fatalf("expected resume past first id, got %#v", resumed)
	}
}

func TestMoviesWalksInOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	a := testsupport.NewMovie(t, store, "Alpha")
	b := testsupport.NewMovie(t, store, "Beta")
	c := testsupport.NewMovie(t, store, "Gamma")

	all, err := store.Movies(ctx, 0)
	if err != nil {
		t.Fatalf("Movies failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != a.ID || all[1].ID != b.ID || all[2].ID != c.ID {
		t.Fatalf("expected ascending id order, got %#v", all)
	}

	tail, err := store.Movies(ctx, a.ID)
	if err != nil {
		t.Fatalf("Movies after id failed: %v", err)
	}
	if len(tail) != 2 || tail[0].ID != b.ID {
		t.Fatalf("expected walk to resume after id %d, got %#v", a.ID, tail)
	}
}

func TestGenresThemesAndLists(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	movie := testsupport.NewMovie(t, store, "The Thing")

	for _, genre := range []string{"Horror", "Science Fiction", "Horror"} {
		if err := store.LinkGenre(ctx, movie.ID, genre); err != nil {
			t.Fatalf("LinkGenre failed: %v", err)
		}
	}
	genres, err := store.GenresFor(ctx, movie.ID)
	if err != nil {
		t.Fatalf("GenresFor failed: %v", err)
	}
	if len(genres) != 2 || genres[0] != "Horror" || genres[1] != "Science Fiction" {
		t.Fatalf("expected deduped sorted genres, got %v", genres)
	}

	if err := store.LinkTheme(ctx, movie.ID, "isolation"); err != nil {
		t.Fatalf("LinkTheme failed: %v", err)
	}
	themes, err := store.ThemesFor(ctx, movie.ID)
	if err != nil {
		t.Fatalf("ThemesFor failed: %v", err)
	}
	if len(themes) != 1 || themes[0] != "isolation" {
		t.Fatalf("unexpected themes: %v", themes)
	}

	if err := store.AddToList(ctx, movie.ID, "halloween"); err != nil {
		t.Fatalf("AddToList failed: %v", err)
	}
	other := testsupport.NewMovie(t, store, "Alien")
	if err := store.AddToList(ctx, other.ID, "halloween"); err != nil {
		t.Fatalf("AddToList second failed: %v", err)
	}

	listed, err := store.MoviesInList(ctx, "halloween")
	if err != nil {
		t.Fatalf("MoviesInList failed: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != movie.ID || listed[1].ID != other.ID {
		t.Fatalf("unexpected list contents: %#v", listed)
	}

	empty, err := store.MoviesInList(ctx, "no-such-list")
	if err != nil {
		t.Fatalf("MoviesInList unknown failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty result for unknown list, got %#v", empty)
	}

	names, err := store.ListNames(ctx)
	if err != nil {
		t.Fatalf("ListNames failed: %v", err)
	}
	if len(names) != 1 || names[0] != "halloween" {
		t.Fatalf("unexpected list names: %v", names)
	}
}

func TestUpsertRatingOverwrites(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	movie := testsupport.NewMovie(t, store, "Paddington 2")

	if err := store.UpsertRating(ctx, movie.ID, "imdb", 76, 250000); err != nil {
		t.Fatalf("UpsertRating failed: %v", err)
	}
	if err := store.UpsertRating(ctx, movie.ID, "imdb", 78, 260000); err != nil {
		t.Fatalf("UpsertRating overwrite failed: %v", err)
	}
	if err := store.UpsertRating(ctx, movie.ID, "rt_critic", 99, 240); err != nil {
		t.Fatalf("UpsertRating second source failed: %v", err)
	}

	samples, err := store.RatingsFor(ctx, movie.ID)
	if err != nil {
		t.Fatalf("RatingsFor failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].Source != "imdb" || samples[0].Score != 78 || samples[0].SampleCount != 260000 {
		t.Fatalf("expected overwrite to win, got %#v", samples[0])
	}
	if samples[1].Source != "rt_critic" || samples[1].Score != 99 {
		t.Fatalf("unexpected second sample: %#v", samples[1])
	}

	if err := store.UpsertRating(ctx, movie.ID, "", 50, 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank source, got %v", err)
	}
	if err := store.UpsertRating(ctx, movie.ID, "imdb", 101, 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for out-of-range score, got %v", err)
	}
}

func TestGradesAndAttendance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	movie := testsupport.NewMovie(t, store, "Clue")

	alice, err := store.EnsureUser(ctx, "alice")
	if err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}
	again, err := store.EnsureUser(ctx, "alice")
	if err != nil {
		t.Fatalf("EnsureUser repeat failed: %v", err)
	}
	if alice != again {
		t.Fatalf("expected stable user id, got %d then %d", alice, again)
	}
	bob, err := store.EnsureUser(ctx, "bob")
	if err != nil {
		t.Fatalf("EnsureUser bob failed: %v", err)
	}

	if err := store.UpsertGrade(ctx, alice, movie.ID, 60); err != nil {
		t.Fatalf("UpsertGrade failed: %v", err)
	}
	if err := store.UpsertGrade(ctx, alice, movie.ID, 80); err != nil {
		t.Fatalf("UpsertGrade replace failed: %v", err)
	}
	if err := store.UpsertGrade(ctx, bob, movie.ID, 90); err != nil {
		t.Fatalf("UpsertGrade bob failed: %v", err)
	}
	if err := store.UpsertGrade(ctx, bob, movie.ID, 101); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for out-of-range grade, got %v", err)
	}

	summary, err := store.GradeSummaryFor(ctx, movie.ID)
	if err != nil {
		t.Fatalf("GradeSummaryFor failed: %v", err)
	}
	if summary.Count != 2 || math.Abs(summary.Average-85) > 1e-9 {
		t.Fatalf("expected average 85 over 2 grades, got %#v", summary)
	}

	other := testsupport.NewMovie(t, store, "Knives Out")
	blank, err := store.GradeSummaryFor(ctx, other.ID)
	if err != nil {
		t.Fatalf("GradeSummaryFor empty failed: %v", err)
	}
	if blank.Count != 0 || blank.Average != 0 {
		t.Fatalf("expected empty summary, got %#v", blank)
	}

	if err := store.RefreshAttendanceCounts(ctx); err != nil {
		t.Fatalf("RefreshAttendanceCounts failed: %v", err)
	}
}

func TestCheckpoints(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	last, err := store.Checkpoint(ctx, "metadata")
	if err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}
	if last != 0 {
		t.Fatalf("expected zero checkpoint when absent, got %d", last)
	}

	if err := store.SetCheckpoint(ctx, "metadata", 42); err != nil {
		t.Fatalf("SetCheckpoint failed: %v", err)
	}
	if err := store.SetCheckpoint(ctx, "trailers", 7); err != nil {
		t.Fatalf("SetCheckpoint second job failed: %v", err)
	}

	last, err = store.Checkpoint(ctx, "metadata")
	if err != nil {
		t.Fatalf("Checkpoint after set failed: %v", err)
	}
	if last != 42 {
		t.Fatalf("expected checkpoint 42, got %d", last)
	}

	if err := store.ClearCheckpoint(ctx, "metadata"); err != nil {
		t.Fatalf("ClearCheckpoint failed: %v", err)
	}
	last, err = store.Checkpoint(ctx, "metadata")
	if err != nil {
		t.Fatalf("Checkpoint after clear failed: %v", err)
	}
	if last != 0 {
		t.Fatalf("expected cleared checkpoint, got %d", last)
	}

	other, err := store.Checkpoint(ctx, "trailers")
	if err != nil {
		t.Fatalf("Checkpoint trailers failed: %v", err)
	}
	if other != 7 {
		t.Fatalf("expected independent job checkpoint 7, got %d", other)
	}
}

func TestTrendCachePerDay(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, ok, err := store.CachedTrend(ctx, "dune", "2026-08-20"); err != nil || ok {
		t.Fatalf("expected cache miss, got ok=%v err=%v", ok, err)
	}

	if err := store.StoreTrend(ctx, "dune", "2026-08-20", 63.5); err != nil {
		t.Fatalf("StoreTrend failed: %v", err)
	}

	value, ok, err := store.CachedTrend(ctx, "dune", "2026-08-20")
	if err != nil {
		t.Fatalf("CachedTrend failed: %v", err)
	}
	if !ok || value != 63.5 {
		t.Fatalf("expected cached 63.5, got ok=%v value=%v", ok, value)
	}

	if _, ok, err := store.CachedTrend(ctx, "dune", "2026-08-21"); err != nil || ok {
		t.Fatalf("expected miss for different day, got ok=%v err=%v", ok, err)
	}

	// Same term and day overwrites.
	if err := store.StoreTrend(ctx, "dune", "2026-08-20", 70); err != nil {
		t.Fatalf("StoreTrend overwrite failed: %v", err)
	}
	value, ok, err = store.CachedTrend(ctx, "dune", "2026-08-20")
	if err != nil || !ok || value != 70 {
		t.Fatalf("expected overwrite to 70, got ok=%v value=%v err=%v", ok, value, err)
	}
}

func TestCountryStatsSeededOnOpen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	shares, err := store.PopulationShares(ctx)
	if err != nil {
		t.Fatalf("PopulationShares failed: %v", err)
	}
	if len(shares) == 0 {
		t.Fatal("expected seeded population shares")
	}
	if shares["US"] <= 0 || shares["US"] >= 1 {
		t.Fatalf("unexpected US population share: %v", shares["US"])
	}

	pen, err := store.InternetPenetration(ctx)
	if err != nil {
		t.Fatalf("InternetPenetration failed: %v", err)
	}
	if pen["US"] <= 0 || pen["US"] > 1 {
		t.Fatalf("unexpected US internet penetration: %v", pen["US"])
	}
}

func TestCatalogueShares(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	empty, err := store.CatalogueShares(ctx)
	if err != nil {
		t.Fatalf("CatalogueShares empty failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no shares for empty catalogue, got %v", empty)
	}

	for i, origin := range []string{"US", "us", "JP", ""} {
		movie := testsupport.NewMovie(t, store, fmt.Sprintf("Origin %d", i))
		if origin == "" {
			continue
		}
		if err := store.UpdateField(ctx, movie.ID, "origin", origin); err != nil {
			t.Fatalf("UpdateField origin failed: %v", err)
		}
	}

	shares, err := store.CatalogueShares(ctx)
	if err != nil {
		t.Fatalf("CatalogueShares failed: %v", err)
	}
	if len(shares) != 2 {
		t.Fatalf("expected 2 origins, got %v", shares)
	}
	if math.Abs(shares["US"]-2.0/3.0) > 1e-9 {
		t.Fatalf("expected case-folded US share 2/3, got %v", shares["US"])
	}
	if math.Abs(shares["JP"]-1.0/3.0) > 1e-9 {
		t.Fatalf("expected JP share 1/3, got %v", shares["JP"])
	}
}

func TestSummarize(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	a := testsupport.NewMovie(t, store, "Summary A")
	b := testsupport.NewMovie(t, store, "Summary B")
	testsupport.NewMovie(t, store, "Summary C")

	if err := store.UpdateField(ctx, a.ID, "youtube_link", "https://www.youtube.com/watch?v=abcdefghijk"); err != nil {
		t.Fatalf("UpdateField trailer failed: %v", err)
	}
	if err := store.UpdateField(ctx, a.ID, "combined_score", 81.0); err != nil {
		t.Fatalf("UpdateField score failed: %v", err)
	}
	if err := store.UpsertRating(ctx, b.ID, "imdb", 70, 1000); err != nil {
		t.Fatalf("UpsertRating failed: %v", err)
	}
	if err := store.AddToList(ctx, b.ID, "backlog"); err != nil {
		t.Fatalf("AddToList failed: %v", err)
	}
	if _, err := store.EnsureUser(ctx, "carol"); err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}

	summary, err := store.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary.TotalMovies != 3 {
		t.Fatalf("expected 3 movies, got %d", summary.TotalMovies)
	}
	if summary.WithTrailer != 1 || summary.WithoutTrailer != 2 {
		t.Fatalf("unexpected trailer counts: %#v", summary)
	}
	if summary.Scored != 1 || summary.RatingSamples != 1 {
		t.Fatalf("unexpected score counts: %#v", summary)
	}
	if summary.Lists != 1 || summary.Users != 1 {
		t.Fatalf("unexpected list/user counts: %#v", summary)
	}
}
