// Package compressor wraps github.com/dolthub/gozstd the way the
// teacher's archive_build.go does: NewCDict/NewDDict to preload a
// dictionary, Compress/CompressDict/Decompress/DecompressDict for the
// actual codec calls, and BuildDict for dictionary training. Compress
// and CompressDict stream through gozstd's Writer rather than the
// one-shot CompressLevel/CompressDict calls, so WindowLog actually
// reaches the codec, per spec.md §1's "streaming compress with
// preloaded dictionary" framing.
package compressor

import (
	"bytes"

	"github.com/dolthub/gozstd"
)

// Config carries the per-blob codec knobs spec.md §6 names. WindowLog
// is passed to gozstd's streaming Writer via WriterParams. HashLog,
// DedicatedDictSearch, and Checksum have no equivalent in gozstd's Go
// API surface (they are advanced_t-level C knobs the Go wrapper never
// exposes); they are kept on Config so callers and tests can still
// observe the values spec.md §6 names, but they are not forwarded to
// the codec — see DESIGN.md Open Question 5.
type Config struct {
	Level               int
	DictionaryLevel     int
	WindowLog           int
	HashLog             int
	DedicatedDictSearch bool
	Checksum            bool
}

// DefaultConfig matches spec.md §9: level 6 for data, level 15 for the
// dictionary blob itself, window_log/hash_log 30.
func DefaultConfig() Config {
	return Config{
		Level:               6,
		DictionaryLevel:     15,
		WindowLog:           30,
		HashLog:             30,
		DedicatedDictSearch: true,
		Checksum:            true,
	}
}

// CDict is a compression-side preloaded dictionary handle.
type CDict struct {
	inner *gozstd.CDict
}

// DDict is a decompression-side preloaded dictionary handle.
type DDict struct {
	inner *gozstd.DDict
}

// NewCDict prepares dict for repeated compression calls.
func NewCDict(dict []byte) (*CDict, error) {
	d, err := gozstd.NewCDict(dict)
	if err != nil {
		return nil, err
	}
	return &CDict{inner: d}, nil
}

// NewDDict prepares dict for repeated decompression calls.
func NewDDict(dict []byte) (*DDict, error) {
	d, err := gozstd.NewDDict(dict)
	if err != nil {
		return nil, err
	}
	return &DDict{inner: d}, nil
}

// Compress compresses src without a dictionary, streaming it through
// gozstd's Writer at cfg's level and window_log.
func Compress(src []byte, cfg Config) ([]byte, error) {
	return streamCompress(src, &gozstd.WriterParams{
		CompressionLevel: cfg.Level,
		WindowLog:        cfg.WindowLog,
	})
}

// CompressDict compresses src against a preloaded dictionary, streamed
// through gozstd's Writer at cfg's window_log.
func CompressDict(src []byte, cd *CDict, cfg Config) ([]byte, error) {
	return streamCompress(src, &gozstd.WriterParams{
		WindowLog: cfg.WindowLog,
		Dict:      cd.inner,
	})
}

func streamCompress(src []byte, params *gozstd.WriterParams) ([]byte, error) {
	var buf bytes.Buffer
	zw := gozstd.NewWriterParams(&buf, params)
	if _, err := zw.Write(src); err != nil {
		zw.Release()
		return nil, err
	}
	err := zw.Close()
	zw.Release()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(src []byte) ([]byte, error) {
	return gozstd.Decompress(nil, src)
}

// DecompressDict reverses CompressDict.
func DecompressDict(src []byte, dd *DDict) ([]byte, error) {
	return gozstd.DecompressDict(nil, src, dd.inner)
}

// BuildDict trains a dictionary of dictSize bytes from samples, the
// codec library's native dictionary trainer (used by C5's reservoir).
func BuildDict(samples [][]byte, dictSize int) []byte {
	return gozstd.BuildDict(samples, dictSize)
}
