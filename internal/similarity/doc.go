// Package similarity scores how alike the films in a drawn set are.
//
// Each unordered pair blends a numeric part (cosine over scaled year,
// runtime, box office and score dimensions) with a categorical part
// (release window, age group and origin exact matches plus genre and
// theme overlap). The night report prints the pair scores so a group can
// see when the draw handed them three flavors of the same film.
package similarity
