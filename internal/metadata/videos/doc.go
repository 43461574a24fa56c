// Package videos searches YouTube for trailer candidates.
//
// The client wraps the Data API v3 search endpoint. Exact mode accepts a
// result only when the video title, stripped of trailer boilerplate, names
// precisely the queried film; fuzzy mode takes the first hit. Empty
// responses are retried within a caller-supplied budget and successful
// lookups are memoized for a short TTL.
package videos
