package archive

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTripBlobDirectoryRoot(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)

	plainFilter, err := w.WriteFilterZstd(nil)
	require.NoError(t, err)

	payload := []byte("hello, archive")
	blob, err := w.WriteBlob(payload, []ObjectId{plainFilter})
	require.NoError(t, err)

	dir, err := w.WriteDirectory([]DirEntry{
		{Data: blob, Metadata: NoneID, Name: "hello.txt"},
	})
	require.NoError(t, err)

	archiveObj, err := w.WriteArchive(dir, Metadata{})
	require.NoError(t, err)

	root, err := w.WriteRoot(archiveObj, nil, Metadata{})
	require.NoError(t, err)

	require.NoError(t, w.Finish(root))

	r, err := NewReader(buf.Bytes())
	require.NoError(t, err)

	gotRoot, ok, err := r.ReadRoot()
	require.NoError(t, err)
	require.True(t, ok)

	archiveData, _, err := r.ReadArchive(gotRoot.Main)
	require.NoError(t, err)

	gotDir, err := r.ReadDirectory(archiveData)
	require.NoError(t, err)
	require.Len(t, gotDir.Entries, 1)
	require.Equal(t, "hello.txt", gotDir.Entries[0].Name)

	gotPayload, filters, err := r.ReadBlobPayload(gotDir.Entries[0].Data)
	require.NoError(t, err)
	require.Equal(t, payload, gotPayload)
	require.Len(t, filters, 1)

	sources, err := r.ReadFilterZstd(filters[0])
	require.NoError(t, err)
	require.Empty(t, sources)
}

func TestEmptyArchiveHasNoRoot(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.Finish(NoneID))

	r, err := NewReader(buf.Bytes())
	require.NoError(t, err)
	_, ok, err := r.ReadRoot()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRootAtOffsetZeroIsDistinguishableFromNoRoot(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)

	root, err := w.WriteRoot(NoneID, nil, Metadata{})
	require.NoError(t, err)
	require.NoError(t, w.Finish(root))

	r, err := NewReader(buf.Bytes())
	require.NoError(t, err)
	got, ok, err := r.ReadRoot()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, NoneID, got.Main)
}

func TestOffsetsStrictlyIncrease(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)

	f1, err := w.WriteFilterZstd(nil)
	require.NoError(t, err)
	f2, err := w.WriteFilterZstd([]ObjectId{f1})
	require.NoError(t, err)

	require.Less(t, w.offsets[f1], w.offsets[f2])
}
