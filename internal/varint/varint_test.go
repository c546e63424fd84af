package varint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 129, 1 << 13, 1<<21 - 1, 1 << 35, math.MaxUint64}
	for _, c := range cases {
		buf := AppendUint(nil, c)
		require.True(t, len(buf) >= 1 && len(buf) <= MaxLen)
		v, n := Uint(buf)
		require.Equal(t, len(buf), n)
		require.Equal(t, c, v)
	}
}

func TestIntRoundTrip(t *testing.T) {
	cases := []int64{0, -1, 1, -64, 64, math.MinInt64, math.MaxInt64}
	for _, c := range cases {
		buf := AppendInt(nil, c)
		v, n := Int(buf)
		require.Equal(t, len(buf), n)
		require.Equal(t, c, v)
	}
}

func TestTruncatedBufferIsIncomplete(t *testing.T) {
	buf := AppendUint(nil, 1<<40)
	_, n := Uint(buf[:len(buf)-1])
	require.Equal(t, 0, n)
}
