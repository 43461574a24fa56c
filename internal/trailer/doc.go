// Package trailer locates a YouTube trailer for a film title.
//
// Resolution walks a cascade of sources ordered by trust: a link already
// in the catalogue, the trailer TMDb attaches to an exact title match, an
// exact-mode YouTube search against the canonical title, and finally a
// broad search that takes whatever comes back first. Each hit carries the
// source it came from and a fixed confidence so callers can decide how
// much to believe a stored link later.
package trailer
