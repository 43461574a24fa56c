// Package trends reads interest scores from the unofficial Google Trends
// endpoints.
//
// A lookup walks explore (which issues a widget token) and then the
// interest-over-time widget data, averaging the 7-day series. Results are
// cached twice: per calendar day in the catalogue store, and in a short
// in-process TTL cache so batch sweeps do not re-query the store for every
// movie.
package trends
