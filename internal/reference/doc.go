// Package reference provides static lookup data used during enrichment:
// per-country theatrical release windows, certification age mappings, and
// population/internet-penetration baselines.
//
// All tables are embedded constants so classification works offline and
// produces the same answer on every run.
package reference
