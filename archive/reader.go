package archive

import (
	"encoding/binary"

	"github.com/dolthub/diarc/diarcerr"
	"github.com/dolthub/diarc/internal/varint"
)

// Reader parses a complete archive byte stream held in memory and
// resolves the object graph by offset. diarc's read path is
// graph-driven full traversal only (no seek-by-path random access;
// that is an explicit Non-goal, spec.md §1).
type Reader struct {
	// body is the slice of bytes between the header and trailer magics,
	// i.e. offset 0 of body corresponds to "offset 0 relative to the
	// archive's first post-header byte" in spec.md §3.
	body          []byte
	archiveLength uint64
	// rootRef is the trailer's root field using the same offset+1
	// encoding as in-body refs (0 meaning NONE).
	rootRef uint64
}

// NewReader validates the header/trailer magics and framing of data,
// a complete archive byte stream, and returns a Reader over it.
func NewReader(data []byte) (*Reader, error) {
	if len(data) < len(HeaderMagic)+len(TrailerMagic)+16 {
		return nil, diarcerr.Internal("archive: input too short to be a valid archive")
	}
	if string(data[:len(HeaderMagic)]) != HeaderMagic {
		return nil, diarcerr.Internal("archive: missing header magic")
	}

	trailerStart := len(data) - len(TrailerMagic) - 16
	if string(data[trailerStart:trailerStart+len(TrailerMagic)]) != TrailerMagic {
		return nil, diarcerr.Internal("archive: missing trailer magic")
	}

	lenOff := trailerStart + len(TrailerMagic)
	archiveLength := binary.LittleEndian.Uint64(data[lenOff : lenOff+8])
	rootRef := binary.LittleEndian.Uint64(data[lenOff+8 : lenOff+16])

	body := data[len(HeaderMagic):trailerStart]
	if uint64(len(body)) != archiveLength {
		return nil, diarcerr.Internal("archive: trailer archive_length does not match body size")
	}

	return &Reader{body: body, archiveLength: archiveLength, rootRef: rootRef}, nil
}

// refToOffset converts a wire ref (0 meaning NONE, else offset+1) back
// to a body offset, reporting ok=false for NONE.
func refToOffset(ref uint64) (offset uint64, ok bool) {
	if ref == 0 {
		return 0, false
	}
	return ref - 1, true
}

type rawObject struct {
	typ  ObjectType
	data []byte // body bytes, starting right after the type tag
}

// readAt parses the object whose header begins at body offset off.
func (r *Reader) readAt(off uint64) (rawObject, error) {
	if off >= uint64(len(r.body)) {
		return rawObject{}, diarcerr.Internal("archive: object offset out of range")
	}
	tagVal, n := varint.Uint(r.body[off:])
	if n == 0 {
		return rawObject{}, diarcerr.Internal("archive: truncated object tag")
	}
	return rawObject{typ: ObjectType(tagVal), data: r.body[off+uint64(n):]}, nil
}

// Root is the decoded form of a Root object.
type Root struct {
	Main ObjectId
	Alts []AltEntry
	Meta Metadata
}

// ReadRoot decodes the archive's Root object. ok is false for an empty
// archive whose trailer carries no Root (spec.md §8 scenario S2).
func (r *Reader) ReadRoot() (root Root, ok bool, err error) {
	off, present := refToOffset(r.rootRef)
	if !present {
		return Root{}, false, nil
	}
	obj, err := r.readAt(off)
	if err != nil {
		return Root{}, false, err
	}
	if obj.typ != TypeRoot {
		return Root{}, false, diarcerr.Internal("archive: trailer root_offset does not name a Root object")
	}

	buf := obj.data
	mainRef, n := varint.Uint(buf)
	if n == 0 {
		return Root{}, false, diarcerr.Internal("archive: truncated Root body")
	}
	buf = buf[n:]

	altCount, n := varint.Uint(buf)
	if n == 0 {
		return Root{}, false, diarcerr.Internal("archive: truncated Root alt count")
	}
	buf = buf[n:]

	alts := make([]AltEntry, 0, altCount)
	for i := uint64(0); i < altCount; i++ {
		name, rest, err := readString(buf)
		if err != nil {
			return Root{}, false, err
		}
		buf = rest
		ref, n := varint.Uint(buf)
		if n == 0 {
			return Root{}, false, diarcerr.Internal("archive: truncated Root alt ref")
		}
		buf = buf[n:]
		dataOff, present := refToOffset(ref)
		id := NoneID
		if present {
			id = offsetID(dataOff)
		}
		alts = append(alts, AltEntry{Name: name, Data: id})
	}

	md, _, err := readMetadataBody(buf)
	if err != nil {
		return Root{}, false, err
	}

	mainOff, present := refToOffset(mainRef)
	mainID := NoneID
	if present {
		mainID = offsetID(mainOff)
	}

	return Root{Main: mainID, Alts: alts, Meta: md}, true, nil
}

// offsetID packages a resolved body offset as a synthetic ObjectId the
// reader's own accessor methods understand: the reader addresses
// objects by offset directly, so ObjectId here is the offset plus one,
// keeping NoneID (0) distinct from an object at offset 0 (there is no
// writer-side id/offset split to preserve once the archive is closed).
func offsetID(off uint64) ObjectId { return ObjectId(off + 1) }

func idOffset(id ObjectId) (uint64, bool) {
	if id == NoneID {
		return 0, false
	}
	return uint64(id) - 1, true
}

func readString(buf []byte) (string, []byte, error) {
	l, n := varint.Uint(buf)
	if n == 0 {
		return "", nil, diarcerr.Internal("archive: truncated string length")
	}
	buf = buf[n:]
	if uint64(len(buf)) < l {
		return "", nil, diarcerr.Internal("archive: truncated string body")
	}
	return string(buf[:l]), buf[l:], nil
}

func readMetadataBody(buf []byte) (Metadata, []byte, error) {
	var md Metadata
	for {
		if len(buf) == 0 {
			return Metadata{}, nil, diarcerr.Internal("archive: metadata missing end tag")
		}
		if buf[0] == endTag {
			return md, buf[1:], nil
		}
		key, rest, err := readString(buf)
		if err != nil {
			return Metadata{}, nil, err
		}
		buf = rest
		if len(buf) == 0 {
			return Metadata{}, nil, diarcerr.Internal("archive: truncated metadata value kind")
		}
		kind := ValueKind(buf[0])
		buf = buf[1:]
		var v Value
		v.Kind = kind
		switch kind {
		case KindVarInt:
			iv, n := varint.Int(buf)
			if n == 0 {
				return Metadata{}, nil, diarcerr.Internal("archive: truncated VarInt value")
			}
			v.Int = iv
			buf = buf[n:]
		case KindVarUInt:
			uv, n := varint.Uint(buf)
			if n == 0 {
				return Metadata{}, nil, diarcerr.Internal("archive: truncated VarUInt value")
			}
			v.UInt = uv
			buf = buf[n:]
		case KindObjectRef:
			ref, n := varint.Uint(buf)
			if n == 0 {
				return Metadata{}, nil, diarcerr.Internal("archive: truncated ObjectRef value")
			}
			buf = buf[n:]
			off, present := refToOffset(ref)
			if present {
				v.Ref = offsetID(off)
			}
		case KindString:
			s, rest, err := readString(buf)
			if err != nil {
				return Metadata{}, nil, err
			}
			v.Str = s
			buf = rest
		default:
			return Metadata{}, nil, diarcerr.Internal("archive: unknown metadata value kind")
		}
		md.Set(key, v)
	}
}

// ReadArchive decodes an Archive object's root-data ref and metadata.
func (r *Reader) ReadArchive(id ObjectId) (data ObjectId, md Metadata, err error) {
	off, present := idOffset(id)
	if !present {
		return NoneID, Metadata{}, diarcerr.Internal("archive: NONE is not an Archive")
	}
	obj, err := r.readAt(off)
	if err != nil {
		return NoneID, Metadata{}, err
	}
	if obj.typ != TypeArchive {
		return NoneID, Metadata{}, diarcerr.Internal("archive: object is not an Archive")
	}

	dataRef, n := varint.Uint(obj.data)
	if n == 0 {
		return NoneID, Metadata{}, diarcerr.Internal("archive: truncated Archive body")
	}
	md, _, err = readMetadataBody(obj.data[n:])
	if err != nil {
		return NoneID, Metadata{}, err
	}

	dataOff, present := refToOffset(dataRef)
	if !present {
		return NoneID, md, nil
	}
	return offsetID(dataOff), md, nil
}

// Directory is the decoded form of a Directory object.
type Directory struct {
	Entries []DirEntry
}

// ReadDirectory decodes the Directory object named by id.
func (r *Reader) ReadDirectory(id ObjectId) (Directory, error) {
	off, present := idOffset(id)
	if !present {
		return Directory{}, diarcerr.Internal("archive: NONE is not a Directory")
	}
	obj, err := r.readAt(off)
	if err != nil {
		return Directory{}, err
	}
	if obj.typ != TypeDirectory {
		return Directory{}, diarcerr.Internal("archive: object is not a Directory")
	}

	buf := obj.data
	var entries []DirEntry
	for {
		dataRef, n := varint.Uint(buf)
		if n == 0 {
			return Directory{}, diarcerr.Internal("archive: truncated Directory entry")
		}
		buf = buf[n:]
		if dataRef == 0 {
			break
		}
		dataOff, _ := refToOffset(dataRef)

		metaRef, n := varint.Uint(buf)
		if n == 0 {
			return Directory{}, diarcerr.Internal("archive: truncated Directory metadata ref")
		}
		buf = buf[n:]
		metaID := NoneID
		if metaOff, present := refToOffset(metaRef); present {
			metaID = offsetID(metaOff)
		}

		name, rest, err := readString(buf)
		if err != nil {
			return Directory{}, err
		}
		buf = rest

		entries = append(entries, DirEntry{Data: offsetID(dataOff), Metadata: metaID, Name: name})
	}

	return Directory{Entries: entries}, nil
}

// ReadBlobPayload returns the raw (still-filtered/compressed) payload
// bytes and filter ObjectIds of the BlobPlain object named by id.
func (r *Reader) ReadBlobPayload(id ObjectId) ([]byte, []ObjectId, error) {
	off, present := idOffset(id)
	if !present {
		return nil, nil, diarcerr.Internal("archive: NONE is not a BlobPlain")
	}
	obj, err := r.readAt(off)
	if err != nil {
		return nil, nil, err
	}
	if obj.typ != TypeBlobPlain {
		return nil, nil, diarcerr.Internal("archive: object is not a BlobPlain")
	}

	buf := obj.data
	payloadLen, n := varint.Uint(buf)
	if n == 0 {
		return nil, nil, diarcerr.Internal("archive: truncated BlobPlain length")
	}
	buf = buf[n:]

	var filters []ObjectId
	for {
		ref, n := varint.Uint(buf)
		if n == 0 {
			return nil, nil, diarcerr.Internal("archive: truncated BlobPlain filter list")
		}
		buf = buf[n:]
		if ref == 0 {
			break
		}
		filterOff, _ := refToOffset(ref)
		filters = append(filters, offsetID(filterOff))
	}

	if payloadLen > off {
		return nil, nil, diarcerr.Internal("archive: BlobPlain payload length exceeds preceding bytes")
	}
	payload := r.body[off-payloadLen : off]
	return payload, filters, nil
}

// ReadFilterZstd decodes a FilterZstd object's dictionary-source list.
func (r *Reader) ReadFilterZstd(id ObjectId) ([]ObjectId, error) {
	off, present := idOffset(id)
	if !present {
		return nil, diarcerr.Internal("archive: NONE is not a FilterZstd")
	}
	obj, err := r.readAt(off)
	if err != nil {
		return nil, err
	}
	if obj.typ != TypeFilterZstd {
		return nil, diarcerr.Internal("archive: object is not a FilterZstd")
	}

	buf := obj.data
	var sources []ObjectId
	for {
		ref, n := varint.Uint(buf)
		if n == 0 {
			return nil, diarcerr.Internal("archive: truncated FilterZstd body")
		}
		buf = buf[n:]
		if ref == 0 {
			break
		}
		srcOff, _ := refToOffset(ref)
		sources = append(sources, offsetID(srcOff))
	}
	return sources, nil
}
