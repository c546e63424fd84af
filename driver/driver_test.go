package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/diarc/archive"
	"github.com/dolthub/diarc/config"
	"github.com/dolthub/diarc/internal/dirtree"
)

func buildSmallTree() *dirtree.Node {
	root := dirtree.NewDir("root")
	fileA := dirtree.NewFile("a.txt", dirtree.DataSource{Bytes: bytes.Repeat([]byte("hello world "), 200)})
	fileB := dirtree.NewFile("b.txt", dirtree.DataSource{Bytes: bytes.Repeat([]byte("hello world "), 200)})
	sub := dirtree.NewDir("sub")
	fileC := dirtree.NewFile("c.txt", dirtree.DataSource{Bytes: []byte("distinct content here")})

	_ = sub.AddChild(fileC)
	_ = root.AddChild(fileA)
	_ = root.AddChild(fileB)
	_ = root.AddChild(sub)
	return root
}

func TestCompressProducesReadableArchive(t *testing.T) {
	root := buildSmallTree()
	var buf bytes.Buffer

	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.diarc")
	f, err := os.Create(outPath)
	require.NoError(t, err)

	cfg := config.Default()
	stats, err := Compress(context.Background(), root, f, &cfg)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Equal(t, 3, stats.FilesSeen)
	require.Equal(t, 0, stats.FilesSkipped)
	// a.txt and b.txt are byte-identical, so the dedup cache should
	// skip recompressing the second one, but it must still get its own
	// BlobPlain object: identical content is still 2 distinct files.
	require.Equal(t, 1, stats.DedupedFiles)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	buf.Write(data)

	r, err := archive.NewReader(buf.Bytes())
	require.NoError(t, err)
	rootObj, ok, err := r.ReadRoot()
	require.NoError(t, err)
	require.True(t, ok)

	topData, _, err := r.ReadArchive(rootObj.Main)
	require.NoError(t, err)

	topDir, err := r.ReadDirectory(topData)
	require.NoError(t, err)
	require.Len(t, topDir.Entries, 3)

	var aID, bID archive.ObjectId
	for _, e := range topDir.Entries {
		switch e.Name {
		case "a.txt":
			aID = e.Data
		case "b.txt":
			bID = e.Data
		}
	}
	require.NotEqual(t, archive.NoneID, aID)
	require.NotEqual(t, archive.NoneID, bID)
	require.NotEqual(t, aID, bID, "identical-content files must still produce distinct BlobPlain objects")
}

func TestCompressToFileIsAtomic(t *testing.T) {
	root := buildSmallTree()
	dir := t.TempDir()
	outPath := filepath.Join(dir, "archive.diarc")

	cfg := config.Default()
	_, err := CompressToFile(context.Background(), root, outPath, &cfg)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "archive.diarc", entries[0].Name())
}
