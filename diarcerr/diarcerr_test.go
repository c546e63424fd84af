package diarcerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsMatchesKind(t *testing.T) {
	err := IO(errors.New("disk full"), "writing blob")
	require.True(t, Is(err, KindIO))
	require.False(t, Is(err, KindInternal))
}

func TestObjectIDError(t *testing.T) {
	err := ObjectID(42)
	require.True(t, Is(err, KindObjectID))
	require.Contains(t, err.Error(), "42")
}
