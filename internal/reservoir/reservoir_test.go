package reservoir

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReservoirCapsAtN(t *testing.T) {
	s := New(8, 1024)
	for i := 0; i < 100; i++ {
		s.PushSample([]byte(fmt.Sprintf("sample-%d", i)))
	}
	require.LessOrEqual(t, len(s.samples), 8)
}

func TestPrefixIsTruncated(t *testing.T) {
	s := New(4, 4)
	s.PushSample([]byte("abcdefgh"))
	require.Len(t, s.samples[0], 4)
	require.Equal(t, []byte("abcd"), s.samples[0])
}

func TestDictionaryNilWhenEmpty(t *testing.T) {
	s := New(4, 1024)
	require.Nil(t, s.Dictionary())
}
