// Package main hosts the movienight CLI entrypoint and command graph.
//
// The Cobra-based command tree covers catalogue imports, the TMDb
// discovery and metadata sweeps, trailer repair, trend refreshes, the
// movie-night draw and the read-only stats and show views. It centralizes
// configuration resolution, store locking and structured logging setup so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags
// here.
package main
