// Package fingerprint computes the 4096-bit locality-sensitive
// similarity hash used for file-clustering diagnostics (spec component
// C3). Distance between two hashes is the popcount of their XOR.
package fingerprint

import (
	"math"
	"math/bits"

	"github.com/dolthub/diarc/internal/gearchunk"
	"github.com/zeebo/xxh3"
)

const (
	words            = 64   // 64 * 64 bits = 4096-bit hash
	chunkMin         = 1 << 10
	chunkAvg         = 1 << 14
	chunkMax         = 1 << 15
	entropyThreshold = 7.0 // bits/byte; chunks above this are skipped
)

// chunker drives the content-defined splitting pass; mask bits are
// chosen so the expected boundary interval is chunkAvg, matching
// spec.md §4.C3's FastCDC-class requirement.
var chunker = gearchunk.New(uint64(chunkAvg-1), chunkMin, chunkMax)

// Hash is the 4096-bit accumulator, represented as 64 64-bit words.
type Hash [words]uint64

// Distance returns the popcount of the XOR of a and b: 0 for identical
// inputs, growing with dissimilarity, bounded by 4096.
func Distance(a, b Hash) int {
	var d int
	for i := range a {
		d += bits.OnesCount64(a[i] ^ b[i])
	}
	return d
}

// Of computes the fingerprint of buf. The input is first BCJ-normalized
// in place on a private copy so architecture-specific branch
// immediates do not perturb the hash, then split into content-defined
// chunks; each low-entropy chunk contributes one set bit (by XOR, so a
// chunk recurring an even number of times cancels out).
func Of(buf []byte) Hash {
	normalized := append([]byte(nil), buf...)
	normalizeBCJ(normalized)

	var h Hash
	for _, c := range chunker.Split(normalized) {
		if shannonEntropy(c.Data) > entropyThreshold {
			continue
		}
		sum := xxh3.Hash(c.Data)
		word := sum % words
		bit := (sum >> 32) % 64
		h[word] ^= uint64(1) << bit
	}
	return h
}

// normalizeBCJ neutralizes ARM and ARM-Thumb branch-target immediates
// in place so code-containing files match regardless of load address.
func normalizeBCJ(buf []byte) {
	// 32-bit ARM BL/B: 4-byte aligned word whose top byte is 0xEB.
	for i := 0; i+4 <= len(buf); i += 4 {
		if buf[i+3] == 0xEB {
			buf[i] = 0
			buf[i+1] = 0
			buf[i+2] = 0
		}
	}

	// Thumb BL: 4-byte aligned pair of halfwords matching the BL pattern.
	for i := 0; i+4 <= len(buf); i += 4 {
		hi1 := buf[i+1]
		lo1 := buf[i+3]
		if (hi1&0xF8) == 0xF0 && (lo1&0xF8) == 0xF8 {
			buf[i] = 0
			buf[i+1] &= 0xF8
			buf[i+2] = 0
			buf[i+3] &= 0xF8
		}
	}
}

// shannonEntropy returns the Shannon entropy of buf in bits/byte.
func shannonEntropy(buf []byte) float64 {
	if len(buf) == 0 {
		return 0
	}
	var freq [256]int
	for _, b := range buf {
		freq[b]++
	}
	n := float64(len(buf))
	var h float64
	for _, c := range freq {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}
