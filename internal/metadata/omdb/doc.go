// Package omdb provides the OMDb API client used as the secondary
// metadata provider.
//
// One payload is fetched per imdb id or title and memoized in a small LRU,
// so repeated granular reads (runtime, box office, plot, ratings) never hit
// omdbapi.com twice for the same film. "N/A" values decode to absent.
package omdb
