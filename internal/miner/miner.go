// Package miner orchestrates the dictionary miner's two parallel passes
// over a corpus of files: the reservoir sampler (C5) and the chunk
// ranker (C6), concatenating their outputs into one bounded dictionary
// (spec component C7).
package miner

import (
	"github.com/dolthub/diarc/internal/gearchunk"
	"github.com/dolthub/diarc/internal/ranker"
	"github.com/dolthub/diarc/internal/reservoir"
)

// Config bundles every tunable the miner needs. Zero-value fields fall
// back to DefaultConfig()'s values.
type Config struct {
	DictionarySize      int
	ReservoirN          int
	MaxSampleSize       int
	SketchWidth         uint64
	ExcessSamplesFactor int
	GearMask            uint64
	GearMin             int
	GearMax             int
}

// DefaultConfig returns spec.md's defaults: 512 KiB dictionary, 128
// reservoir slots of up to 32 KiB, a 2^26-entry sketch, K scaled by a
// factor of 2, and a gear chunker with chunker.max at the spec's
// stated typical 256 B (min 16, averaging ~64 B), matching
// config.Default()'s gear fields so the two default sources agree.
func DefaultConfig() Config {
	return Config{
		DictionarySize:      512 * 1024,
		ReservoirN:          reservoir.DefaultN,
		MaxSampleSize:       reservoir.DefaultMaxSampleSize,
		SketchWidth:         ranker.DefaultH,
		ExcessSamplesFactor: ranker.DefaultExcessSamplesFactor,
		GearMask:            1<<6 - 1, // ~64 B average boundary interval
		GearMin:             16,
		GearMax:             256,
	}
}

// Miner holds the live state of one archive build's dictionary mining
// pass. It is dropped after Dictionary() is called (spec.md §3).
type Miner struct {
	cfg      Config
	chunker  gearchunk.Chunker
	sampler  *reservoir.Sampler
	ranker   *ranker.Ranker
	seedSize int
}

// New constructs a Miner from cfg, filling in defaults for any
// unset field.
func New(cfg Config) *Miner {
	def := DefaultConfig()
	if cfg.DictionarySize <= 0 {
		cfg.DictionarySize = def.DictionarySize
	}
	if cfg.ReservoirN <= 0 {
		cfg.ReservoirN = def.ReservoirN
	}
	if cfg.MaxSampleSize <= 0 {
		cfg.MaxSampleSize = def.MaxSampleSize
	}
	if cfg.SketchWidth == 0 {
		cfg.SketchWidth = def.SketchWidth
	}
	if cfg.ExcessSamplesFactor <= 0 {
		cfg.ExcessSamplesFactor = def.ExcessSamplesFactor
	}
	if cfg.GearMask == 0 {
		cfg.GearMask = def.GearMask
	}
	if cfg.GearMin <= 0 {
		cfg.GearMin = def.GearMin
	}
	if cfg.GearMax <= 0 {
		cfg.GearMax = def.GearMax
	}

	k := (cfg.DictionarySize / cfg.GearMin) * cfg.ExcessSamplesFactor
	if k < 1 {
		k = 1
	}

	const seedSize = 256

	return &Miner{
		cfg:      cfg,
		chunker:  gearchunk.New(cfg.GearMask, cfg.GearMin, cfg.GearMax),
		sampler:  reservoir.New(cfg.ReservoirN, cfg.MaxSampleSize),
		ranker:   ranker.New(cfg.SketchWidth, k, cfg.GearMax, cfg.GearMask),
		seedSize: seedSize,
	}
}

// PushFile feeds one file's full contents into both passes: the
// reservoir sampler sees the whole file (truncated internally to its
// sample cap), and every chunker-produced chunk is scored by the
// ranker.
func (m *Miner) PushFile(data []byte) {
	m.sampler.PushSample(data)
	for _, c := range m.chunker.Split(data) {
		m.ranker.PushChunk(c.Data)
	}
}

// Dictionary concatenates the reservoir's trained seed dictionary with
// the chunk ranker's top-K bytes, truncated to cfg.DictionarySize:
// reservoir_dict(256) ‖ chunk_ranker_dict(target_size - 256).
func (m *Miner) Dictionary() []byte {
	seed := m.sampler.Dictionary()
	if len(seed) > m.seedSize {
		seed = seed[:m.seedSize]
	}

	remaining := m.cfg.DictionarySize - len(seed)
	if remaining < 0 {
		remaining = 0
	}
	body := m.ranker.Emit(remaining)

	out := make([]byte, 0, len(seed)+len(body))
	out = append(out, seed...)
	out = append(out, body...)
	if len(out) > m.cfg.DictionarySize {
		out = out[:m.cfg.DictionarySize]
	}
	return out
}
