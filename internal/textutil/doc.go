// Package textutil provides text processing utilities for title matching and
// set similarity.
//
// The primary use cases are:
//   - Normalizing titles for exact-match comparison and search queries
//   - Building fixed-length hashed trigram vectors for title similarity
//   - Computing cosine similarity between vectors and Jaccard overlap
//     between string sets
//
// Title vectors hash character trigrams of the normalized title into a fixed
// number of buckets and are L2-normalized, so cosine similarity of two
// vectors is a stable measure independent of title length.
package textutil
