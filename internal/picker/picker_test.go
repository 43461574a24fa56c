package picker

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"movienight/internal/catalog"
	"movienight/internal/services"
	"movienight/internal/testsupport"
)

type stubSource struct {
	movies []*catalog.Movie
	err    error
}

func (s *stubSource) MoviesInList(ctx context.Context, listName string) ([]*catalog.Movie, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.movies, nil
}

func seededPicker(t *testing.T, source Source, seed uint64) *Picker {
	t.Helper()

	p, err := New(source, WithRand(rand.New(rand.NewPCG(seed, seed+1))))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return p
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestDrawReturnsDistinctMoviesFromList(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	pool := map[int64]bool{}
	for _, title := range []string{"Heat", "Ran", "Rear Window", "La Haine", "Memories of Murder"} {
		movie := testsupport.NewMovie(t, store, title)
		if err := store.AddToList(ctx, movie.ID, "shortlist"); err != nil {
			t.Fatalf("AddToList returned error: %v", err)
		}
		pool[movie.ID] = true
	}

	p := seededPicker(t, store, 42)
	drawn, err := p.Draw(ctx, "shortlist", 3)
	if err != nil {
		t.Fatalf("Draw returned error: %v", err)
	}
	if len(drawn) != 3 {
		t.Fatalf("expected 3 movies, got %d", len(drawn))
	}
	seen := map[int64]bool{}
	for _, movie := range drawn {
		if !pool[movie.ID] {
			t.Fatalf("movie %d (%s) is not on the list", movie.ID, movie.Title)
		}
		if seen[movie.ID] {
			t.Fatalf("movie %d drawn twice", movie.ID)
		}
		seen[movie.ID] = true
	}
}

func TestDrawWithSeededRandIsDeterministic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, title := range []string{"Alien", "Brazil", "Chinatown", "Diva", "Election", "Fargo"} {
		movie := testsupport.NewMovie(t, store, title)
		if err := store.AddToList(ctx, movie.ID, "night"); err != nil {
			t.Fatalf("AddToList returned error: %v", err)
		}
	}

	first := seededPicker(t, store, 7)
	second := seededPicker(t, store, 7)

	a, err := first.Draw(ctx, "night", 4)
	if err != nil {
		t.Fatalf("first Draw returned error: %v", err)
	}
	b, err := second.Draw(ctx, "night", 4)
	if err != nil {
		t.Fatalf("second Draw returned error: %v", err)
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("draws diverged at %d: %s vs %s", i, a[i].Title, b[i].Title)
		}
	}
}

func TestDrawLeavesSourceOrderAlone(t *testing.T) {
	movies := []*catalog.Movie{
		{ID: 1, Title: "Alpha"},
		{ID: 2, Title: "Beta"},
		{ID: 3, Title: "Gamma"},
		{ID: 4, Title: "Delta"},
	}
	source := &stubSource{movies: movies}

	p := seededPicker(t, source, 3)
	if _, err := p.Draw(context.Background(), "any", 4); err != nil {
		t.Fatalf("Draw returned error: %v", err)
	}
	for i, want := range []int64{1, 2, 3, 4} {
		if movies[i].ID != want {
			t.Fatalf("source slice mutated: position %d holds movie %d", i, movies[i].ID)
		}
	}
}

func TestDrawValidatesSize(t *testing.T) {
	source := &stubSource{movies: []*catalog.Movie{{ID: 1, Title: "Solo"}}}
	p := seededPicker(t, source, 1)

	if _, err := p.Draw(context.Background(), "night", 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for zero draw, got %v", err)
	}
	if _, err := p.Draw(context.Background(), "night", 2); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for oversized draw, got %v", err)
	}
}

func TestDrawUnknownListNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	p := seededPicker(t, store, 1)
	if _, err := p.Draw(context.Background(), "no-such-list", 1); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestDrawPropagatesSourceErrors(t *testing.T) {
	boom := errors.New("database locked")
	p := seededPicker(t, &stubSource{err: boom}, 1)

	if _, err := p.Draw(context.Background(), "night", 1); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestSpinLandsWithinTable(t *testing.T) {
	p := seededPicker(t, &stubSource{}, 99)

	for i := 0; i < 100; i++ {
		spin := p.Spin(4)
		if spin.Seat < 1 || spin.Seat > 4 {
			t.Fatalf("seat %d out of range for 4 attendees", spin.Seat)
		}
		if spin.Direction != DirectionClockwise && spin.Direction != DirectionCounterClockwise {
			t.Fatalf("unexpected direction %q", spin.Direction)
		}
	}
}

func TestSpinHandlesTinyTables(t *testing.T) {
	p := seededPicker(t, &stubSource{}, 5)

	for _, attendees := range []int{0, -3, 1} {
		spin := p.Spin(attendees)
		if spin.Seat != 1 {
			t.Fatalf("expected seat 1 for %d attendees, got %d", attendees, spin.Seat)
		}
	}
}

func TestPlaylistURLBuildsWatchVideosLink(t *testing.T) {
	p, err := New(&stubSource{}, WithNow(func() time.Time {
		return time.Date(2026, time.March, 14, 19, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	movies := []*catalog.Movie{
		{Title: "First", YouTubeLink: "https://www.youtube.com/watch?v=Way9Dexny3w"},
		{Title: "Short", YouTubeLink: "https://youtu.be/dQw4w9WgXcQ"},
		{Title: "Missing"},
		nil,
		{Title: "Broken", YouTubeLink: "not a link"},
	}

	got := p.PlaylistURL(movies)
	want := "https://www.youtube.com/watch_videos?video_ids=Way9Dexny3w,dQw4w9WgXcQ&title=Movie+Night+2026-03-14&feature=share"
	if got != want {
		t.Fatalf("playlist URL mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestPlaylistURLWithoutLinks(t *testing.T) {
	p, err := New(&stubSource{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if got := p.PlaylistURL([]*catalog.Movie{{Title: "Bare"}}); got != "" {
		t.Fatalf("expected empty playlist URL, got %q", got)
	}
}
