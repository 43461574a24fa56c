// Package catalog persists the movie catalogue in SQLite and exposes the
// queries the enrichment sweeps, scoring, and CLI views run against it.
//
// Movies are created when a title is first referenced and are then mutated
// field-by-field; the core never deletes them. A field counts as missing
// when it is NULL or holds only whitespace, and sweeps gate their provider
// calls on that test. Sweep resume state lives in the checkpoints table,
// daily trend snapshots in trend_cache, and demographic reference figures
// in country_stats (seeded once from embedded data, editable via SQL).
//
// The Store holds a file lock beside the database so two movienight
// processes cannot interleave sweeps against the same catalogue.
package catalog
