// Package reservoir implements the first of the dictionary miner's two
// parallel passes: a random reservoir of file prefixes fed to the
// codec's native dictionary trainer (spec component C5).
package reservoir

import (
	"github.com/dolthub/diarc/internal/compressor"
	"github.com/zeebo/xxh3"
)

const (
	// DefaultN is the default reservoir capacity.
	DefaultN = 128
	// DefaultMaxSampleSize bounds how much of each file is retained.
	DefaultMaxSampleSize = 32 * 1024
	// seedPrefixSize is how much of each file feeds the pseudo-random
	// source used for reservoir admission decisions.
	seedPrefixSize = 1024
	hashSeed       = 1234
	// seedDictSize is the target size of the trained "seed" dictionary
	// prefixed to the miner's output.
	seedDictSize = 256
)

// Sampler is a streaming reservoir of up to N byte-slice prefixes.
type Sampler struct {
	n              int
	maxSampleSize  int
	samples        [][]byte
	processedCount uint64
}

// New returns a Sampler with capacity n, each entry truncated to
// maxSampleSize bytes.
func New(n, maxSampleSize int) *Sampler {
	if n <= 0 {
		n = DefaultN
	}
	if maxSampleSize <= 0 {
		maxSampleSize = DefaultMaxSampleSize
	}
	return &Sampler{n: n, maxSampleSize: maxSampleSize}
}

// PushSample offers one file's contents to the reservoir. data is
// copied (truncated to maxSampleSize) only when it is actually
// retained.
func (s *Sampler) PushSample(data []byte) {
	seedLen := seedPrefixSize
	if seedLen > len(data) {
		seedLen = len(data)
	}
	hasher := xxh3.NewSeed(hashSeed)
	hasher.Write(data[:seedLen])
	sum := hasher.Sum64()

	prefixLen := s.maxSampleSize
	if prefixLen > len(data) {
		prefixLen = len(data)
	}

	if len(s.samples) < s.n {
		s.samples = append(s.samples, append([]byte(nil), data[:prefixLen]...))
		s.processedCount++
		return
	}

	if sum%s.processedCount < uint64(s.n) {
		slot := (sum >> 32) % uint64(s.n)
		s.samples[slot] = append([]byte(nil), data[:prefixLen]...)
	}
	s.processedCount++
}

// Dictionary trains a short seed dictionary from the retained samples
// via the codec library's native trainer, targeting seedDictSize bytes.
// It returns nil if no sample was ever pushed.
func (s *Sampler) Dictionary() []byte {
	if len(s.samples) == 0 {
		return nil
	}
	return compressor.BuildDict(s.samples, seedDictSize)
}
