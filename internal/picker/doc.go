// Package picker runs the movie-night draw.
//
// A draw samples distinct candidates uniformly from a named pick list,
// spins a direction and seat count to decide who starts, and renders the
// anonymous YouTube playlist link for the drawn trailers. The random
// source is injectable so a seeded night can be replayed.
package picker
