package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"movienight/internal/services"
)

// UpsertRating records one source's score for a movie, overwriting any
// previous sample from the same source.
func (s *Store) UpsertRating(ctx context.Context, movieID int64, source string, score float64, sampleCount int) error {
	source = strings.TrimSpace(source)
	if source == "" {
		return fmt.Errorf("%w: rating source is empty", services.ErrValidation)
	}
	if score < 0 || score > 100 {
		return fmt.Errorf("%w: rating score %.2f out of range [0,100]", services.ErrValidation, score)
	}
	if sampleCount < 0 {
		sampleCount = 0
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO ratings (movie_id, source, score, sample_count, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(movie_id, source) DO UPDATE SET
             score = excluded.score,
             sample_count = excluded.sample_count,
             updated_at = excluded.updated_at`,
		movieID, source, score, sampleCount, timestamp(),
	)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

// RatingsFor returns all rating samples recorded for a movie, ordered by
// source name.
func (s *Store) RatingsFor(ctx context.Context, movieID int64) ([]RatingSample, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT movie_id, source, score, sample_count, updated_at
         FROM ratings WHERE movie_id = ? ORDER BY source`,
		movieID,
	)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var samples []RatingSample
	for rows.Next() {
		var (
			sample     RatingSample
			updatedRaw string
		)
		if err := rows.Scan(&sample.MovieID, &sample.Source, &sample.Score, &sample.SampleCount, &updatedRaw); err != nil {
			return nil, err
		}
		if updated, err := parseTimeString(updatedRaw); err == nil {
			sample.UpdatedAt = updated
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// EnsureUser returns the id for a night attendee, creating the row when
// the name is new.
func (s *Store) EnsureUser(ctx context.Context, name string) (int64, error) {
	return s.ensureNamed(ctx, "users", name)
}

// UpsertGrade records an attendee's 0-100 grade for a movie, replacing any
// earlier grade from the same attendee.
func (s *Store) UpsertGrade(ctx context.Context, userID, movieID int64, grade float64) error {
	if grade < 0 || grade > 100 {
		return fmt.Errorf("%w: grade %.2f out of range [0,100]", services.ErrValidation, grade)
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO user_ratings (user_id, movie_id, rating) VALUES (?, ?, ?)`,
		userID, movieID, grade,
	)
	if err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

// GradeSummaryFor aggregates attendee grades for a movie. Count 0 means
// nobody has graded it yet.
func (s *Store) GradeSummaryFor(ctx context.Context, movieID int64) (GradeSummary, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT COALESCE(AVG(rating), 0), COUNT(1) FROM user_ratings WHERE movie_id = ?`,
		movieID,
	)
	var summary GradeSummary
	if err := row.Scan(&summary.Average, &summary.Count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GradeSummary{}, nil
		}
		return GradeSummary{}, fmt.Errorf("grade summary: %w", err)
	}
	return summary, nil
}

// RefreshAttendanceCounts recomputes users.attendance_count from the
// recorded grades.
func (s *Store) RefreshAttendanceCounts(ctx context.Context) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE users SET attendance_count = (
            SELECT COUNT(1) FROM user_ratings ur WHERE ur.user_id = users.id
        )`,
	)
	if err != nil {
		return fmt.Errorf("refresh attendance counts: %w", err)
	}
	return nil
}
