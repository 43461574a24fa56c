package textutil

import (
	"hash/fnv"
	"math"
)

// TitleVectorDims is the fixed length of hashed title vectors.
const TitleVectorDims = 128

// TitleVector builds a fixed-length character-trigram vector for the given
// text. Trigrams of the normalized title are hashed into TitleVectorDims
// buckets and the result is L2-normalized. Text that normalizes to the empty
// string yields the zero vector.
func TitleVector(text string) []float64 {
	vec := make([]float64, TitleVectorDims)
	key := Normalize(text)
	if key == "" {
		return vec
	}
	for _, gram := range trigrams(key) {
		h := fnv.New32a()
		h.Write([]byte(gram))
		vec[h.Sum32()%TitleVectorDims]++
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

func trigrams(key string) []string {
	if len(key) < 3 {
		return []string{key}
	}
	out := make([]string, 0, len(key)-2)
	for i := 0; i+3 <= len(key); i++ {
		out = append(out, key[i:i+3])
	}
	return out
}

// Cosine computes the cosine similarity between two equal-length vectors.
// Returns 0 when the lengths differ or either vector has zero norm.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
