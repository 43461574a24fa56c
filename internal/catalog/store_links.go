package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ensureNamed returns the id for a name row in one of the nm tables
// (genres, themes, lists), inserting it when absent. The table name is
// always a compile-time constant at the call sites.
func (s *Store) ensureNamed(ctx context.Context, table, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("empty name")
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO `+table+` (name) VALUES (?)`, name); err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	var id int64
	row := s.db.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE name = ?`, name)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve %s id: %w", table, err)
	}
	return id, nil
}

func (s *Store) linkNamed(ctx context.Context, linkTable, fkColumn, nameTable string, movieID int64, name string) error {
	id, err := s.ensureNamed(ctx, nameTable, name)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO `+linkTable+` (movie_id, `+fkColumn+`) VALUES (?, ?)`,
		movieID, id,
	)
	if err != nil {
		return fmt.Errorf("link %s: %w", linkTable, err)
	}
	return nil
}

func (s *Store) namesFor(ctx context.Context, nameTable, linkTable, fkColumn string, movieID int64) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT n.name FROM `+nameTable+` n
         JOIN `+linkTable+` l ON l.`+fkColumn+` = n.id
         WHERE l.movie_id = ? ORDER BY n.name`,
		movieID,
	)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", nameTable, err)
	}
	defer rows.Close()
	return collectStrings(rows)
}

// LinkGenre attaches a genre name to a movie, creating the genre row on
// first sight.
func (s *Store) LinkGenre(ctx context.Context, movieID int64, name string) error {
	return s.linkNamed(ctx, "movie_genres", "genre_id", "genres", movieID, name)
}

// GenresFor returns the sorted genre names linked to a movie.
func (s *Store) GenresFor(ctx context.Context, movieID int64) ([]string, error) {
	return s.namesFor(ctx, "genres", "movie_genres", "genre_id", movieID)
}

// LinkTheme attaches a theme name to a movie, creating the theme row on
// first sight.
func (s *Store) LinkTheme(ctx context.Context, movieID int64, name string) error {
	return s.linkNamed(ctx, "movie_themes", "theme_id", "themes", movieID, name)
}

// ThemesFor returns the sorted theme names linked to a movie.
func (s *Store) ThemesFor(ctx context.Context, movieID int64) ([]string, error) {
	return s.namesFor(ctx, "themes", "movie_themes", "theme_id", movieID)
}

// EnsureList returns the id of a named pick list, creating it when absent.
func (s *Store) EnsureList(ctx context.Context, name string) (int64, error) {
	return s.ensureNamed(ctx, "lists", name)
}

// AddToList places a movie on a named pick list.
func (s *Store) AddToList(ctx context.Context, movieID int64, listName string) error {
	return s.linkNamed(ctx, "movie_lists", "list_id", "lists", movieID, listName)
}

// MoviesInList returns the movies on a named list in ascending id order.
// An unknown list yields an empty result, not an error.
func (s *Store) MoviesInList(ctx context.Context, listName string) ([]*Movie, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+prefixedMovieColumns("m")+` FROM movies m
         JOIN movie_lists ml ON ml.movie_id = m.id
         JOIN lists l ON l.id = ml.list_id
         WHERE l.name = ? ORDER BY m.id`,
		strings.TrimSpace(listName),
	)
	if err != nil {
		return nil, fmt.Errorf("query list movies: %w", err)
	}
	defer rows.Close()
	return collectMovies(rows)
}

// ListNames returns all pick list names in alphabetical order.
func (s *Store) ListNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM lists ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query lists: %w", err)
	}
	defer rows.Close()
	return collectStrings(rows)
}

func collectStrings(rows *sql.Rows) ([]string, error) {
	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, rows.Err()
}
