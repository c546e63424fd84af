package archive

import (
	"encoding/binary"
	"io"

	"github.com/dolthub/diarc/diarcerr"
	"github.com/dolthub/diarc/internal/countsink"
	"github.com/dolthub/diarc/internal/varint"
)

// HeaderMagic and TrailerMagic bracket the object stream (spec.md §6).
const (
	HeaderMagic  = "DiarArc1"
	TrailerMagic = "DiarEnd1"
)

// Writer is the append-only object-graph emitter. It moves through
// exactly two states: Open (while write methods may be called) and
// Finalized (after Finish), matching spec.md §4.C8.
type Writer struct {
	sink      *countsink.Sink
	headerLen uint64
	nextID    ObjectId
	offsets   map[ObjectId]uint64
	finalized bool
}

// NewWriter writes the header magic to out and returns a Writer ready
// to accept objects.
func NewWriter(out io.Writer) (*Writer, error) {
	sink := countsink.New(out)
	if _, err := sink.Write([]byte(HeaderMagic)); err != nil {
		return nil, diarcerr.IO(err, "archive: write header magic")
	}
	return &Writer{
		sink:      sink,
		headerLen: sink.Count(),
		offsets:   make(map[ObjectId]uint64),
	}, nil
}

func (w *Writer) checkOpen() error {
	if w.finalized {
		return diarcerr.Internal("archive: writer already finalized")
	}
	return nil
}

// currentOffset is the byte offset, relative to the post-header start
// of the stream, that the next header would begin at.
func (w *Writer) currentOffset() uint64 {
	return w.sink.Count() - w.headerLen
}

// ref resolves id to its wire encoding: 0 for NoneID, offset+1
// otherwise. This makes NONE unambiguous regardless of whether a real
// object ever lands at offset 0, resolving the wire-format ambiguity
// spec.md §6 leaves implicit.
func (w *Writer) ref(id ObjectId) (uint64, error) {
	if id == NoneID {
		return 0, nil
	}
	off, ok := w.offsets[id]
	if !ok {
		return 0, diarcerr.ObjectID(id)
	}
	return off + 1, nil
}

func (w *Writer) writeRef(buf []byte, id ObjectId) ([]byte, error) {
	r, err := w.ref(id)
	if err != nil {
		return nil, err
	}
	return varint.AppendUint(buf, r), nil
}

func (w *Writer) writeString(buf []byte, s string) []byte {
	buf = varint.AppendUint(buf, uint64(len(s)))
	return append(buf, s...)
}

func (w *Writer) writeValue(buf []byte, v Value) ([]byte, error) {
	buf = append(buf, byte(v.Kind))
	switch v.Kind {
	case KindVarInt:
		buf = varint.AppendInt(buf, v.Int)
	case KindVarUInt:
		buf = varint.AppendUint(buf, v.UInt)
	case KindObjectRef:
		var err error
		buf, err = w.writeRef(buf, v.Ref)
		if err != nil {
			return nil, err
		}
	case KindString:
		buf = w.writeString(buf, v.Str)
	default:
		return nil, diarcerr.Internal("archive: unknown value kind")
	}
	return buf, nil
}

func (w *Writer) writeMetadataBody(buf []byte, md Metadata) ([]byte, error) {
	for i, k := range md.Keys {
		buf = w.writeString(buf, k)
		var err error
		buf, err = w.writeValue(buf, md.Values[i])
		if err != nil {
			return nil, err
		}
	}
	buf = append(buf, endTag)
	return buf, nil
}

// emit assigns an ObjectId to the object whose header (tag+body) is
// header, recording the current offset before writing. Call only
// after any preceding raw payload has already been written to the
// sink.
func (w *Writer) emit(header []byte) (ObjectId, error) {
	offset := w.currentOffset()
	if _, err := w.sink.Write(header); err != nil {
		return NoneID, diarcerr.IO(err, "archive: write object header")
	}
	w.nextID++
	id := w.nextID
	w.offsets[id] = offset
	return id, nil
}

// WriteBlob writes a BlobPlain object. payload must already be
// filtered (compressed) by the caller; it is written to the stream
// immediately before the object's own header, per spec.md §4.C8. The
// header also carries payload's length explicitly, so a reader can
// locate the preceding payload without external bookkeeping.
func (w *Writer) WriteBlob(payload []byte, filters []ObjectId) (ObjectId, error) {
	if err := w.checkOpen(); err != nil {
		return NoneID, err
	}
	if _, err := w.sink.Write(payload); err != nil {
		return NoneID, diarcerr.IO(err, "archive: write blob payload")
	}

	var header []byte
	header = varint.AppendUint(header, uint64(TypeBlobPlain))
	header = varint.AppendUint(header, uint64(len(payload)))
	for _, f := range filters {
		var err error
		header, err = w.writeRef(header, f)
		if err != nil {
			return NoneID, err
		}
	}
	var err error
	header, err = w.writeRef(header, NoneID)
	if err != nil {
		return NoneID, err
	}

	return w.emit(header)
}

// WriteDirectory writes a Directory object: an ordered list of
// (data, metadata, name) triples terminated by a NONE data ref.
func (w *Writer) WriteDirectory(entries []DirEntry) (ObjectId, error) {
	if err := w.checkOpen(); err != nil {
		return NoneID, err
	}

	var body []byte
	body = varint.AppendUint(body, uint64(TypeDirectory))
	for _, e := range entries {
		var err error
		body, err = w.writeRef(body, e.Data)
		if err != nil {
			return NoneID, err
		}
		body, err = w.writeRef(body, e.Metadata)
		if err != nil {
			return NoneID, err
		}
		body = w.writeString(body, e.Name)
	}
	var err error
	body, err = w.writeRef(body, NoneID)
	if err != nil {
		return NoneID, err
	}

	return w.emit(body)
}

// WriteMetadata writes a Metadata object.
func (w *Writer) WriteMetadata(md Metadata) (ObjectId, error) {
	if err := w.checkOpen(); err != nil {
		return NoneID, err
	}
	var body []byte
	body = varint.AppendUint(body, uint64(TypeMetadata))
	body, err := w.writeMetadataBody(body, md)
	if err != nil {
		return NoneID, err
	}
	return w.emit(body)
}

// WriteArchive writes an Archive object: root data id plus a metadata
// map.
func (w *Writer) WriteArchive(root ObjectId, md Metadata) (ObjectId, error) {
	if err := w.checkOpen(); err != nil {
		return NoneID, err
	}
	var body []byte
	body = varint.AppendUint(body, uint64(TypeArchive))
	body, err := w.writeRef(body, root)
	if err != nil {
		return NoneID, err
	}
	body, err = w.writeMetadataBody(body, md)
	if err != nil {
		return NoneID, err
	}
	return w.emit(body)
}

// WriteRoot writes a Root object: main archive id, an alternate-name
// map, and a metadata map.
func (w *Writer) WriteRoot(main ObjectId, alts []AltEntry, md Metadata) (ObjectId, error) {
	if err := w.checkOpen(); err != nil {
		return NoneID, err
	}
	var body []byte
	body = varint.AppendUint(body, uint64(TypeRoot))
	body, err := w.writeRef(body, main)
	if err != nil {
		return NoneID, err
	}
	body = varint.AppendUint(body, uint64(len(alts)))
	for _, a := range alts {
		body = w.writeString(body, a.Name)
		body, err = w.writeRef(body, a.Data)
		if err != nil {
			return NoneID, err
		}
	}
	body, err = w.writeMetadataBody(body, md)
	if err != nil {
		return NoneID, err
	}
	return w.emit(body)
}

// WriteFilterZstd writes a FilterZstd object: an ordered list of
// dictionary-source ObjectIds, terminated by NONE. An empty list is
// the "plain" (no-dictionary) zstd filter.
func (w *Writer) WriteFilterZstd(dictSources []ObjectId) (ObjectId, error) {
	if err := w.checkOpen(); err != nil {
		return NoneID, err
	}
	var body []byte
	body = varint.AppendUint(body, uint64(TypeFilterZstd))
	for _, id := range dictSources {
		var err error
		body, err = w.writeRef(body, id)
		if err != nil {
			return NoneID, err
		}
	}
	var err error
	body, err = w.writeRef(body, NoneID)
	if err != nil {
		return NoneID, err
	}
	return w.emit(body)
}

// WriteZstdPreloadList writes a ZstdPreloadList object: ObjectIds to
// prefetch before decoding a family of blobs.
func (w *Writer) WriteZstdPreloadList(ids []ObjectId) (ObjectId, error) {
	if err := w.checkOpen(); err != nil {
		return NoneID, err
	}
	var body []byte
	body = varint.AppendUint(body, uint64(TypeZstdPreloadList))
	for _, id := range ids {
		var err error
		body, err = w.writeRef(body, id)
		if err != nil {
			return NoneID, err
		}
	}
	var err error
	body, err = w.writeRef(body, NoneID)
	if err != nil {
		return NoneID, err
	}
	return w.emit(body)
}

// Finish writes the trailer (magic, archive length, root offset) and
// moves the writer into the Finalized state. No further writes are
// permitted afterward. The trailer's root field uses the same
// offset+1 encoding as in-body refs (0 meaning NONE) so a root landing
// at body offset 0 can never be confused with an archive that has no
// Root at all.
func (w *Writer) Finish(root ObjectId) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	rootRef, err := w.ref(root)
	if err != nil {
		return err
	}

	archiveLength := w.currentOffset()

	if _, err := w.sink.Write([]byte(TrailerMagic)); err != nil {
		return diarcerr.IO(err, "archive: write trailer magic")
	}

	var lenBuf, offBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], archiveLength)
	binary.LittleEndian.PutUint64(offBuf[:], rootRef)
	if _, err := w.sink.Write(lenBuf[:]); err != nil {
		return diarcerr.IO(err, "archive: write trailer length")
	}
	if _, err := w.sink.Write(offBuf[:]); err != nil {
		return diarcerr.IO(err, "archive: write trailer root offset")
	}

	w.finalized = true
	return nil
}
