package countsink

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountAccumulates(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	n, err := s.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, uint64(5), s.Count())

	_, err = s.Write([]byte(" world"))
	require.NoError(t, err)
	require.Equal(t, uint64(11), s.Count())
	require.Equal(t, "hello world", buf.String())
}
