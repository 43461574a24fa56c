package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"movienight/internal/catalog"
	"movienight/internal/logging"
	"movienight/internal/services"
)

// Store is the catalogue surface an import needs. *catalog.Store
// satisfies it.
type Store interface {
	FindByTitle(ctx context.Context, title string) (*catalog.Movie, error)
	CreateMovie(ctx context.Context, title string) (*catalog.Movie, error)
	UpdateField(ctx context.Context, movieID int64, column string, value any) error
	EnsureList(ctx context.Context, name string) (int64, error)
	AddToList(ctx context.Context, movieID int64, listName string) error
}

// Summary counts what an import did.
type Summary struct {
	Rows    int
	Created int
	Matched int
	Skipped int
}

// Importer reads title[,year] rows into a named pick list.
type Importer struct {
	store  Store
	logger *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger attaches a logger for per-row diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New creates an Importer over the given store.
func New(store Store, opts ...Option) (*Importer, error) {
	if store == nil {
		return nil, errors.New("store must not be nil")
	}
	imp := &Importer{
		store:  store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp, nil
}

// ImportFile imports the CSV at path into the named list.
func (i *Importer) ImportFile(ctx context.Context, path, listName string) (Summary, error) {
	file, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open import file: %w", err)
	}
	defer file.Close()
	return i.Import(ctx, file, listName)
}

// Import reads title[,year] records from r into the named list. The list
// is created up front, so an empty file still leaves it behind. A first
// row whose leading field is "title" is treated as a header. Blank titles
// are skipped and counted; a year column only fills movies that have
// none.
func (i *Importer) Import(ctx context.Context, r io.Reader, listName string) (Summary, error) {
	listName = strings.TrimSpace(listName)
	if listName == "" {
		return Summary{}, fmt.Errorf("%w: list name must not be empty", services.ErrValidation)
	}
	if _, err := i.store.EnsureList(ctx, listName); err != nil {
		return Summary{}, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var summary Summary
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("read import row: %w", err)
		}
		if first {
			first = false
			if isHeader(record) {
				continue
			}
		}
		summary.Rows++

		title := ""
		if len(record) > 0 {
			title = strings.TrimSpace(record[0])
		}
		if title == "" {
			summary.Skipped++
			continue
		}
		year := 0
		if len(record) > 1 {
			year = i.parseYear(title, record[1])
		}

		movie, err := i.store.FindByTitle(ctx, title)
		if err != nil {
			return summary, err
		}
		if movie == nil {
			movie, err = i.store.CreateMovie(ctx, title)
			if err != nil {
				return summary, err
			}
			summary.Created++
			i.logger.Info("created movie from import",
				logging.String("title", title),
				logging.Int64("movie_id", movie.ID))
		} else {
			summary.Matched++
		}
		if year > 0 && movie.Year == 0 {
			if err := i.store.UpdateField(ctx, movie.ID, "year", year); err != nil {
				return summary, err
			}
		}
		if err := i.store.AddToList(ctx, movie.ID, listName); err != nil {
			return summary, err
		}
	}

	i.logger.Info("import finished",
		logging.String("list", listName),
		logging.Int("rows", summary.Rows),
		logging.Int("created", summary.Created),
		logging.Int("matched", summary.Matched),
		logging.Int("skipped", summary.Skipped))
	return summary, nil
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "title")
}

// parseYear is lenient: an unparseable or non-positive year keeps the row
// but drops the column.
func (i *Importer) parseYear(title, raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		i.logger.Warn("ignoring unparseable year",
			logging.String("title", title),
			logging.String("year", raw))
		return 0
	}
	return year
}
