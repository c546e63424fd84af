package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesNamedConstants(t *testing.T) {
	cfg := Default()
	require.Equal(t, 512*1024, cfg.DictionarySizeBytes)
	require.Equal(t, 128, cfg.ReservoirN)
	require.Equal(t, uint64(1<<26), cfg.SketchWidth)
	require.Equal(t, 2, cfg.ExcessSamplesFactor)
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diarc.toml")
	require.NoError(t, os.WriteFile(path, []byte("debug = true\ncodec_level = 9\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.Debug)
	require.Equal(t, 9, cfg.CodecLevel)
	require.Equal(t, 128, cfg.ReservoirN) // untouched field keeps its default
}
