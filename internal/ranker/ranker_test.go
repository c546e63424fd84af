package ranker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitRespectsMaxSize(t *testing.T) {
	r := New(1<<16, 16, 64, 0xFFFF)
	for i := 0; i < 200; i++ {
		data := make([]byte, 64)
		for j := range data {
			data[j] = byte((i + j) % 256)
		}
		r.PushChunk(data)
	}
	dict := r.Emit(256)
	require.LessOrEqual(t, len(dict), 256)
}

func TestRepeatedChunkIncreasesPriority(t *testing.T) {
	r := New(1<<16, 8, 32, 0xFFFF)
	chunk := make([]byte, 32)
	for i := range chunk {
		chunk[i] = byte(i)
	}

	r.PushChunk(chunk)
	first := r.q.cells[0].priority

	for i := 0; i < 10; i++ {
		r.PushChunk(chunk)
	}
	last := r.q.cells[r.q.index[r.q.cells[0].Hash]].priority

	require.GreaterOrEqual(t, last, first)
}

func TestQueueNeverExceedsK(t *testing.T) {
	r := New(1<<16, 4, 16, 0xFFFF)
	for i := 0; i < 100; i++ {
		data := make([]byte, 16)
		for j := range data {
			data[j] = byte((i * 7 + j) % 256)
		}
		r.PushChunk(data)
	}
	require.LessOrEqual(t, r.q.Len(), 4)
}
