package miner

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDictionaryBoundedBySize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DictionarySize = 4096
	m := New(cfg)

	for i := 0; i < 50; i++ {
		data := bytes.Repeat([]byte{byte(i)}, 4096)
		m.PushFile(data)
	}

	dict := m.Dictionary()
	require.LessOrEqual(t, len(dict), 4096)
}

func TestCommonPrefixSurfacesInDictionary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DictionarySize = 8192
	m := New(cfg)

	for i := 0; i < 1000; i++ {
		var buf bytes.Buffer
		buf.WriteString("prefix=")
		buf.Write(bytes.Repeat([]byte{byte(i % 251)}, 16))
		m.PushFile(buf.Bytes())
	}

	dict := m.Dictionary()
	require.NotEmpty(t, dict)
	require.Contains(t, string(dict), "prefix=")
}
