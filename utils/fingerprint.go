package utils

import "hash/fnv"

// FingerprintString returns the fnv-64a hash of s. Query texts are keyed by
// this value in the rewrite plan cache.
func FingerprintString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
