// Package tmdb provides the TMDb API client used for metadata enrichment
// and catalogue discovery.
//
// It authenticates requests and exposes exact-title movie search, full
// detail retrieval (certifications, trailer videos, collection, revenue),
// the per-region discover feed, and the supported-country listing.
// Responses are strongly typed so the enrichment orchestrator can write
// them field by field. Options allow tests to supply custom HTTP clients
// or rate limiters without modifying production code.
package tmdb
