package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"movienight/internal/reference"
)

// Checkpoint returns the last movie id a sweep finished, or 0 when the
// sweep has never run or ran to completion.
func (s *Store) Checkpoint(ctx context.Context, job string) (int64, error) {
	row := s.db.QueryRowContext(ctx, `SELECT last_id FROM checkpoints WHERE job = ?`, job)
	var lastID int64
	if err := row.Scan(&lastID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read checkpoint: %w", err)
	}
	return lastID, nil
}

// SetCheckpoint records the last movie id a sweep finished so an
// interrupted run can resume past it.
func (s *Store) SetCheckpoint(ctx context.Context, job string, lastID int64) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO checkpoints (job, last_id, updated_at) VALUES (?, ?, ?)`,
		job, lastID, timestamp(),
	)
	if err != nil {
		return fmt.Errorf("set checkpoint: %w", err)
	}
	return nil
}

// ClearCheckpoint resets a sweep's resume point, so its next run starts
// from the beginning of the catalogue.
func (s *Store) ClearCheckpoint(ctx context.Context, job string) error {
	return s.SetCheckpoint(ctx, job, 0)
}

// CachedTrend returns the trend value stored for a term on a given day
// (formatted 2006-01-02).
func (s *Store) CachedTrend(ctx context.Context, term, day string) (float64, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT value FROM trend_cache WHERE term = ? AND as_of = ?`,
		term, day,
	)
	var value float64
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read trend cache: %w", err)
	}
	return value, true, nil
}

// StoreTrend caches a trend value for a term and day, replacing any
// earlier snapshot for the same pair.
func (s *Store) StoreTrend(ctx context.Context, term, day string, value float64) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO trend_cache (term, as_of, value) VALUES (?, ?, ?)`,
		term, day, value,
	)
	if err != nil {
		return fmt.Errorf("store trend: %w", err)
	}
	return nil
}

// seedCountryStats loads the embedded baseline figures on first open.
// Existing rows are left alone so manual SQL edits survive restarts.
func (s *Store) seedCountryStats(ctx context.Context) error {
	baselines := reference.CountryBaselines()
	codes := make([]string, 0, len(baselines))
	for code := range baselines {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		b := baselines[code]
		_, err := s.db.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO country_stats (country, population_share, internet_penetration) VALUES (?, ?, ?)`,
			code, b.PopulationShare, b.InternetPenetration,
		)
		if err != nil {
			return fmt.Errorf("seed country stats: %w", err)
		}
	}
	return nil
}

// PopulationShares returns each country's share of global internet users.
func (s *Store) PopulationShares(ctx context.Context) (map[string]float64, error) {
	return s.countryColumn(ctx, "population_share")
}

// InternetPenetration returns the online-population fraction per country.
func (s *Store) InternetPenetration(ctx context.Context) (map[string]float64, error) {
	return s.countryColumn(ctx, "internet_penetration")
}

func (s *Store) countryColumn(ctx context.Context, column string) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT country, `+column+` FROM country_stats`)
	if err != nil {
		return nil, fmt.Errorf("query country stats: %w", err)
	}
	defer rows.Close()

	values := make(map[string]float64)
	for rows.Next() {
		var (
			country string
			value   float64
		)
		if err := rows.Scan(&country, &value); err != nil {
			return nil, err
		}
		values[country] = value
	}
	return values, rows.Err()
}

// CatalogueShares computes each origin country's share of the catalogue,
// over movies whose origin is known. Shares sum to 1 when any origin is
// recorded.
func (s *Store) CatalogueShares(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT origin, COUNT(1) FROM movies
         WHERE origin IS NOT NULL AND TRIM(origin) <> ''
         GROUP BY origin`,
	)
	if err != nil {
		return nil, fmt.Errorf("query catalogue shares: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	total := 0
	for rows.Next() {
		var (
			origin string
			count  int
		)
		if err := rows.Scan(&origin, &count); err != nil {
			return nil, err
		}
		origin = strings.ToUpper(strings.TrimSpace(origin))
		counts[origin] += count
		total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	shares := make(map[string]float64, len(counts))
	if total == 0 {
		return shares, nil
	}
	for origin, count := range counts {
		shares[origin] = float64(count) / float64(total)
	}
	return shares, nil
}

// Summarize gathers the headline catalogue counts for the stats view.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	var summary Summary

	queries := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(1) FROM movies`, &summary.TotalMovies},
		{`SELECT COUNT(1) FROM movies WHERE youtube_link IS NOT NULL AND TRIM(youtube_link) <> ''`, &summary.WithTrailer},
		{`SELECT COUNT(1) FROM movies WHERE combined_score IS NOT NULL`, &summary.Scored},
		{`SELECT COUNT(1) FROM ratings`, &summary.RatingSamples},
		{`SELECT COUNT(1) FROM lists`, &summary.Lists},
		{`SELECT COUNT(1) FROM users`, &summary.Users},
	}
	for _, q := range queries {
		row := s.db.QueryRowContext(ctx, q.query)
		if err := row.Scan(q.dest); err != nil {
			return Summary{}, fmt.Errorf("catalogue summary: %w", err)
		}
	}
	summary.WithoutTrailer = summary.TotalMovies - summary.WithTrailer
	return summary, nil
}
