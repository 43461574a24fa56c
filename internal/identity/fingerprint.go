package identity

import (
	"regexp"
	"strconv"
	"strings"

	"movienight/internal/textutil"
)

// Fingerprint is a source-independent projection of one film record used
// for cross-source identity comparison. Zero values mean the source did
// not report the field. Fingerprints are never persisted.
type Fingerprint struct {
	IMDBID         string
	Title          string
	TitleVec       []float64
	RuntimeMinutes int
	Year           int
}

var minutesPattern = regexp.MustCompile(`(?i)(\d+)\s*min`)

// ParseMinutes extracts the first minutes figure from free-text runtime
// such as "142 min". Returns 0 when no figure is present.
func ParseMinutes(raw string) int {
	m := minutesPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}
	minutes, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return minutes
}

// ParseYear reads a year from the first four characters of a date or year
// string, so both "1994" and "1994-10-14" work. Returns 0 on malformed
// input.
func ParseYear(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if len(raw) > 4 {
		raw = raw[:4]
	}
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return year
}

func titleVector(title string) []float64 {
	if strings.TrimSpace(title) == "" {
		return nil
	}
	return textutil.TitleVector(title)
}

// FromTMDB builds a fingerprint from TMDb movie details. Runtime arrives
// already numeric; the year comes from the release date.
func FromTMDB(imdbID, title string, runtimeMinutes int, releaseDate string) Fingerprint {
	return Fingerprint{
		IMDBID:         strings.TrimSpace(imdbID),
		Title:          title,
		TitleVec:       titleVector(title),
		RuntimeMinutes: runtimeMinutes,
		Year:           ParseYear(releaseDate),
	}
}

// FromOMDB builds a fingerprint from an OMDb payload. Runtime is the raw
// "142 min" form; the year is taken from the release date when present,
// falling back to the year field.
func FromOMDB(imdbID, title, runtime, released, year string) Fingerprint {
	yearSource := released
	if strings.TrimSpace(yearSource) == "" {
		yearSource = year
	}
	return Fingerprint{
		IMDBID:         strings.TrimSpace(imdbID),
		Title:          title,
		TitleVec:       titleVector(title),
		RuntimeMinutes: ParseMinutes(runtime),
		Year:           ParseYear(yearSource),
	}
}

// FromRecord builds a fingerprint from fields already in catalog form:
// numeric runtime and numeric year. Used when comparing a stored movie
// against a fresh provider payload.
func FromRecord(imdbID, title string, runtimeMinutes, year int) Fingerprint {
	return Fingerprint{
		IMDBID:         strings.TrimSpace(imdbID),
		Title:          title,
		TitleVec:       titleVector(title),
		RuntimeMinutes: runtimeMinutes,
		Year:           year,
	}
}
