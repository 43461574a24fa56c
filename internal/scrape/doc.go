// Package scrape pulls rating detail off IMDb title ratings pages.
//
// IMDb exposes no public API for the vote histogram or the demographic
// splits, so the scraper reads the embedded page scripts and extracts the
// JSON blobs with the same shapes the site renders from. The scraper is an
// optional data source: any fetch or parse failure yields a nil result,
// never an error that would stop an enrichment pass.
package scrape
