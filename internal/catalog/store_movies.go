package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"movienight/internal/services"
)

const movieColumns = "id, title, tmdb_id, plot_desc, year, release_window, rating_cert, duration_seconds, youtube_link, box_office_expected, box_office_actual, google_trend_score, actor_trend_score, combined_score, franchise, origin, created_at, updated_at"

// allowedMovieFields lists the columns UpdateField and IsFieldMissing may
// touch. Anything else is a programming error surfaced as validation.
var allowedMovieFields = map[string]struct{}{
	"title":               {},
	"tmdb_id":             {},
	"plot_desc":           {},
	"year":                {},
	"release_window":      {},
	"rating_cert":         {},
	"duration_seconds":    {},
	"youtube_link":        {},
	"box_office_expected": {},
	"box_office_actual":   {},
	"google_trend_score":  {},
	"actor_trend_score":   {},
	"combined_score":      {},
	"franchise":           {},
	"origin":              {},
}

var scoreFields = map[string]struct{}{
	"google_trend_score": {},
	"actor_trend_score":  {},
	"combined_score":     {},
}

// CreateMovie inserts a bare movie row for a title and returns the stored
// record. Everything beyond the title is filled later, field by field.
func (s *Store) CreateMovie(ctx context.Context, title string) (*Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: movie title is empty", services.ErrValidation)
	}
	now := timestamp()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO movies (title, created_at, updated_at) VALUES (?, ?, ?)`,
		title, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert movie: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a movie by identifier. Returns nil when the id is
// unknown.
func (s *Store) GetByID(ctx context.Context, id int64) (*Movie, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
	movie, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	return movie, nil
}

// FindByTitle resolves a title to a movie, checking exact titles first and
// aliases second. Returns nil when nothing matches.
func (s *Store) FindByTitle(ctx context.Context, title string) (*Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE title = ? ORDER BY id LIMIT 1`, title)
	movie, err := scanMovie(row)
	if err == nil {
		return movie, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find by title: %w", err)
	}

	row = s.db.QueryRowContext(
		ctx,
		`SELECT `+prefixedMovieColumns("m")+` FROM movies m
         JOIN movie_aliases a ON a.movie_id = m.id
         WHERE a.alt_title = ? ORDER BY m.id LIMIT 1`,
		title,
	)
	movie, err = scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by alias: %w", err)
	}
	return movie, nil
}

// FindByTMDBID resolves a TMDb external id to a movie, or nil.
func (s *Store) FindByTMDBID(ctx context.Context, tmdbID int64) (*Movie, error) {
	if tmdbID == 0 {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE tmdb_id = ?`, tmdbID)
	movie, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by tmdb id: %w", err)
	}
	return movie, nil
}

// UpdateField sets a single column on a movie and bumps updated_at. Score
// columns must stay inside [0,100].
func (s *Store) UpdateField(ctx context.Context, id int64, column string, value any) error {
	if _, ok := allowedMovieFields[column]; !ok {
		return fmt.Errorf("%w: unknown movie column %q", services.ErrValidation, column)
	}
	if _, scored := scoreFields[column]; scored {
		if v, ok := value.(float64); ok && (v < 0 || v > 100) {
			return fmt.Errorf("%w: %s %.2f out of range [0,100]", services.ErrValidation, column, v)
		}
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE movies SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value, timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("update movie %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: movie %d", services.ErrNotFound, id)
	}
	return nil
}

// IsFieldMissing reports whether a column is NULL or whitespace-only for a
// movie. Unknown movie ids count as missing.
func (s *Store) IsFieldMissing(ctx context.Context, id int64, column string) (bool, error) {
	if _, ok := allowedMovieFields[column]; !ok {
		return false, fmt.Errorf("%w: unknown movie column %q", services.ErrValidation, column)
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT TRIM(COALESCE(CAST(`+column+` AS TEXT), '')) FROM movies WHERE id = ?`,
		id,
	)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return true, nil
		}
		return false, fmt.Errorf("check movie field: %w", err)
	}
	return value == "", nil
}

// Movies returns catalogue rows with id greater than afterID in ascending
// id order. afterID 0 walks the whole catalogue.
func (s *Store) Movies(ctx context.Context, afterID int64) ([]*Movie, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id > ? ORDER BY id`,
		afterID,
	)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()
	return collectMovies(rows)
}

// MoviesMissingField returns rows past afterID whose column is NULL or
// blank, ascending by id. Sweeps use this to resume mid-catalogue.
func (s *Store) MoviesMissingField(ctx context.Context, column string, afterID int64) ([]*Movie, error) {
	if _, ok := allowedMovieFields[column]; !ok {
		return nil, fmt.Errorf("%w: unknown movie column %q", services.ErrValidation, column)
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+movieColumns+` FROM movies
         WHERE TRIM(COALESCE(CAST(`+column+` AS TEXT), '')) = '' AND id > ?
         ORDER BY id`,
		afterID,
	)
	if err != nil {
		return nil, fmt.Errorf("list movies missing %s: %w", column, err)
	}
	defer rows.Close()
	return collectMovies(rows)
}

// AddAlias records an alternate title for a movie. Duplicate aliases are
// ignored.
func (s *Store) AddAlias(ctx context.Context, movieID int64, altTitle string) error {
	altTitle = strings.TrimSpace(altTitle)
	if altTitle == "" {
		return nil
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO movie_aliases (movie_id, alt_title) VALUES (?, ?)`,
		movieID, altTitle,
	)
	if err != nil {
		return fmt.Errorf("add alias: %w", err)
	}
	return nil
}

func collectMovies(rows *sql.Rows) ([]*Movie, error) {
	var movies []*Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	return movies, rows.Err()
}

func prefixedMovieColumns(alias string) string {
	parts := strings.Split(movieColumns, ", ")
	for i, part := range parts {
		parts[i] = alias + "." + part
	}
	return strings.Join(parts, ", ")
}

func scanMovie(scanner interface{ Scan(dest ...any) error }) (*Movie, error) {
	var (
		id          int64
		title       string
		tmdbID      sql.NullInt64
		plotDesc    sql.NullString
		year        sql.NullInt64
		window      sql.NullString
		ratingCert  sql.NullString
		duration    sql.NullInt64
		youtubeLink sql.NullString
		boxExpected sql.NullFloat64
		boxActual   sql.NullFloat64
		googleTrend sql.NullFloat64
		actorTrend  sql.NullFloat64
		combined    sql.NullFloat64
		franchise   sql.NullString
		origin      sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&tmdbID,
		&plotDesc,
		&year,
		&window,
		&ratingCert,
		&duration,
		&youtubeLink,
		&boxExpected,
		&boxActual,
		&googleTrend,
		&actorTrend,
		&combined,
		&franchise,
		&origin,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	movie := &Movie{
		ID:                id,
		Title:             title,
		TMDBID:            tmdbID.Int64,
		PlotDesc:          plotDesc.String,
		Year:              int(year.Int64),
		ReleaseWindow:     window.String,
		RatingCert:        ratingCert.String,
		DurationSeconds:   int(duration.Int64),
		YouTubeLink:       youtubeLink.String,
		BoxOfficeExpected: boxExpected.Float64,
		BoxOfficeActual:   boxActual.Float64,
		Franchise:         franchise.String,
		Origin:            origin.String,
	}
	if googleTrend.Valid {
		v := googleTrend.Float64
		movie.GoogleTrendScore = &v
	}
	if actorTrend.Valid {
		v := actorTrend.Float64
		movie.ActorTrendScore = &v
	}
	if combined.Valid {
		v := combined.Float64
		movie.CombinedScore = &v
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		movie.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		movie.UpdatedAt = updated
	}
	return movie, nil
}
