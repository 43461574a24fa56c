// Package enrich orchestrates metadata acquisition for catalogue movies.
//
// EnrichMovie fills the missing fields of one movie from the providers in
// a fixed priority order (TMDb, OMDb, the IMDb detail scraper, the trailer
// cascade, trend scores) and then recomputes the combined score. Existing
// values are never overwritten; only genres are additive. The package also
// carries the batch sweeps that walk the catalogue with resume-after-id
// checkpoints so an interrupted or rate-limited run can pick up where it
// stopped.
package enrich
