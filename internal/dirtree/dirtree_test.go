package dirtree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWalkSortsChildrenByName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zeta.txt"), []byte("z"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.txt"), []byte("a"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "mid"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mid", "inner.txt"), []byte("i"), 0o644))

	root, err := Walk(dir)
	require.NoError(t, err)
	require.True(t, root.IsDir)
	require.Len(t, root.Children, 3)
	require.Equal(t, "alpha.txt", root.Children[0].Name)
	require.Equal(t, "mid", root.Children[1].Name)
	require.Equal(t, "zeta.txt", root.Children[2].Name)
}

func TestAddChildRejectsDuplicateNames(t *testing.T) {
	dir := NewDir("root")
	require.NoError(t, dir.AddChild(NewFile("a.txt", DataSource{Bytes: []byte("1")})))
	err := dir.AddChild(NewFile("a.txt", DataSource{Bytes: []byte("2")}))
	require.Error(t, err)
}
