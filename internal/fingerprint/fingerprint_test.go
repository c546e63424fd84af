package fingerprint

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func block(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	buf := make([]byte, n)
	r.Read(buf)
	return buf
}

func TestIdenticalFilesDistanceZero(t *testing.T) {
	a := make([]byte, 0, 8*16*1024)
	for i := 0; i < 8; i++ {
		a = append(a, block(16*1024, int64(i))...)
	}
	b := append([]byte(nil), a...)

	ha := Of(a)
	hb := Of(b)
	require.Equal(t, 0, Distance(ha, hb))
	require.Equal(t, 0, Distance(ha, ha))
}

func TestSingleBlockDifferenceIsSmallDistance(t *testing.T) {
	blocks := make([][]byte, 8)
	for i := range blocks {
		blocks[i] = block(16*1024, int64(i))
	}
	flatten := func(bs [][]byte) []byte {
		var out []byte
		for _, b := range bs {
			out = append(out, b...)
		}
		return out
	}

	a := flatten(blocks)
	blocks[3] = block(16*1024, 999)
	b := flatten(blocks)

	ha := Of(a)
	hb := Of(b)
	d := Distance(ha, hb)
	require.GreaterOrEqual(t, d, 0)
	require.LessOrEqual(t, d, 4)
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := block(1 << 16, 5)
	b := block(1 << 16, 6)
	ha, hb := Of(a), Of(b)
	require.Equal(t, Distance(ha, hb), Distance(hb, ha))
}
