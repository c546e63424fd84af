// Package config holds the tunables spec.md names as defaults,
// optionally overridden by a TOML file via github.com/BurntSushi/toml,
// the teacher's config-decoding library.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config bundles every knob the dictionary miner, ranker, chunker, and
// codec need. Zero-valued dictionary, reservoir, sketch, excess-factor,
// and gear min/max fields are replaced with the same defaults by
// miner.New. GearAvgBytes and the codec fields are passed on as given:
// a zero there is not replaced by Default()'s value.
type Config struct {
	Debug bool `toml:"debug"`

	DictionarySizeBytes int `toml:"dictionary_size_bytes"`
	ReservoirN          int `toml:"reservoir_n"`
	ReservoirMaxSample  int `toml:"reservoir_max_sample_bytes"`
	SketchWidth         uint64 `toml:"sketch_width"`
	ExcessSamplesFactor int    `toml:"excess_samples_factor"`

	GearMinBytes int `toml:"gear_min_bytes"`
	GearAvgBytes int `toml:"gear_avg_bytes"`
	GearMaxBytes int `toml:"gear_max_bytes"`

	CodecLevel           int `toml:"codec_level"`
	CodecDictionaryLevel int `toml:"codec_dictionary_level"`
	WindowLog            int `toml:"window_log"`
	HashLog              int `toml:"hash_log"`
}

// Default returns spec.md's named defaults.
func Default() Config {
	return Config{
		DictionarySizeBytes: 512 * 1024,
		ReservoirN:          128,
		ReservoirMaxSample:  32 * 1024,
		SketchWidth:         1 << 26,
		ExcessSamplesFactor: 2,

		// spec.md §9: chunker.max is typically 256 B and the ranker's
		// priority-queue capacity K (= dictionary_size / chunker.min ×
		// excess_samples_factor) is tens of thousands; with the
		// 512 KiB default dictionary size and factor 2 below, min=16
		// puts K at 65536.
		GearMinBytes: 16,
		GearAvgBytes: 64,
		GearMaxBytes: 256,

		CodecLevel:           6,
		CodecDictionaryLevel: 15,
		WindowLog:            30,
		HashLog:              30,
	}
}

// Load decodes a TOML file at path over Default(); fields absent from
// the file keep their default values. There are no environment
// variables or CLI flags, per spec.md's Non-goals around invocation
// surfaces — file-or-default is the only override path.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: decode %s", path)
	}
	return cfg, nil
}
