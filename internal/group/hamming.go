package group

import "math/bits"

// Similarity computes the Hamming similarity percentage between two
// fingerprints over their common prefix (the shorter of the two lengths).
// If the common prefix is empty, ok is false and similarity is undefined.
func Similarity(a, b []uint32) (similarity float64, ok bool) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0, false
	}
	var distance int
	for i := 0; i < n; i++ {
		distance += bits.OnesCount32(a[i] ^ b[i])
	}
	totalBits := 32 * n
	return 100 * (1 - float64(distance)/float64(totalBits)), true
}
