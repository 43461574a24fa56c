// Package identity reconciles film records reported by different metadata
// sources. Each source payload is reduced to a Fingerprint and a Matcher
// decides whether two fingerprints describe the same film, returning a
// confidence score alongside the verdict.
package identity
