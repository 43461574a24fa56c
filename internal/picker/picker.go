package picker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"movienight/internal/catalog"
	"movienight/internal/logging"
	"movienight/internal/metadata/videos"
	"movienight/internal/services"
)

// Source lists the movies on a named pick list. *catalog.Store satisfies
// it.
type Source interface {
	MoviesInList(ctx context.Context, listName string) ([]*catalog.Movie, error)
}

// Spin directions, as announced to the room.
const (
	DirectionClockwise        = "clockwise"
	DirectionCounterClockwise = "counter-clockwise"
)

// Spin carries the who-goes-first result shown with a draw: a direction
// around the table and the seat count to land on.
type Spin struct {
	Direction string
	Seat      int
}

// Picker draws movie-night candidates from a pick list.
type Picker struct {
	source Source
	rng    *rand.Rand
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Picker.
type Option func(*Picker)

// WithRand replaces the random source. Two pickers sharing a seed produce
// identical draws and spins.
func WithRand(rng *rand.Rand) Option {
	return func(p *Picker) {
		if rng != nil {
			p.rng = rng
		}
	}
}

// WithNow pins the clock used for playlist titles.
func WithNow(now func() time.Time) Option {
	return func(p *Picker) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger attaches a logger for draw diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Picker) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Picker over the given list source.
func New(source Source, opts ...Option) (*Picker, error) {
	if source == nil {
		return nil, errors.New("source must not be nil")
	}
	picker := &Picker{
		source: source,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(picker)
	}
	return picker, nil
}

// Draw samples n distinct movies uniformly from the named list. The list
// must hold at least n movies; the stored list order is left untouched.
func (p *Picker) Draw(ctx context.Context, listName string, n int) ([]*catalog.Movie, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: draw size must be at least 1, got %d", services.ErrValidation, n)
	}
	movies, err := p.source.MoviesInList(ctx, listName)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, fmt.Errorf("%w: list %q has no movies", services.ErrNotFound, listName)
	}
	if n > len(movies) {
		return nil, fmt.Errorf("%w: not enough movies in list %q: have %d, want %d", services.ErrValidation, listName, len(movies), n)
	}

	drawn := make([]*catalog.Movie, len(movies))
	copy(drawn, movies)
	p.rng.Shuffle(len(drawn), func(i, j int) {
		drawn[i], drawn[j] = drawn[j], drawn[i]
	})
	drawn = drawn[:n]

	p.logger.Info("draw complete",
		logging.String("list", listName),
		logging.Int("pool", len(movies)),
		logging.Int("drawn", n))
	return drawn, nil
}

// Spin picks the direction and seat count that decide who starts the
// night. Attendee counts below one are treated as a table of one.
func (p *Picker) Spin(attendees int) Spin {
	if attendees < 1 {
		attendees = 1
	}
	spin := Spin{
		Direction: DirectionClockwise,
		Seat:      1 + p.rng.IntN(attendees),
	}
	if p.rng.IntN(2) == 1 {
		spin.Direction = DirectionCounterClockwise
	}
	return spin
}

// PlaylistURL renders the anonymous YouTube playlist link for the drawn
// movies' stored trailers, titled with the night's date. Movies without a
// parseable link are left out; when none remain the result is empty.
func (p *Picker) PlaylistURL(movies []*catalog.Movie) string {
	ids := make([]string, 0, len(movies))
	for _, movie := range movies {
		if movie == nil || movie.YouTubeLink == "" {
			continue
		}
		id := videos.ExtractVideoID(movie.YouTubeLink)
		if id == "" {
			p.logger.Warn("skipping unparseable trailer link",
				logging.String("title", movie.Title),
				logging.String("link", movie.YouTubeLink))
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return ""
	}
	title := url.QueryEscape("Movie Night " + p.now().Format("2006-01-02"))
	return "https://www.youtube.com/watch_videos?video_ids=" + strings.Join(ids, ",") + "&title=" + title + "&feature=share"
}
