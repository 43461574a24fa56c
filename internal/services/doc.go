// Package services defines shared utilities consumed by the enrichment
// orchestrator and the provider integrations.
//
// Key responsibilities:
//   - Context helpers that stamp movie IDs, sweep names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent sweep outcomes (halt vs skip-and-continue).
//
// Use these helpers when wiring new provider logic so operational behaviour
// (error handling, observability, resumability) stays uniform.
package services
