// Package archive implements the object graph and writer/reader state
// machine spec.md §3/§4.C8 describes: a DAG of typed objects, each
// materialized to a byte offset on write and addressed by that offset
// on read, anchored by a trailer that points at a Root object.
package archive

// ObjectId is a process-local, opaque handle issued when an object is
// written. It is distinct from the byte offset the object is
// ultimately materialized to; NoneID is never issued for a real
// object.
type ObjectId uint64

// NoneID is the distinguished sentinel meaning "no object" (spec.md
// §3).
const NoneID ObjectId = 0

// ObjectType tags the start of every object's header.
type ObjectType byte

const (
	TypeBlobPlain ObjectType = iota + 1
	TypeDirectory
	TypeMetadata
	TypeArchive
	TypeRoot
	TypeFilterZstd
	TypeZstdPreloadList
)

// endTag terminates a Metadata/Archive/Root key-value body.
const endTag = 0x7F

// ValueKind discriminates the typed values a Metadata map can hold.
type ValueKind byte

const (
	KindVarInt ValueKind = iota + 1
	KindVarUInt
	KindObjectRef
	KindString
)

// Value is a single typed metadata value.
type Value struct {
	Kind ValueKind
	Int  int64
	UInt uint64
	Ref  ObjectId
	Str  string
}

// VarIntValue constructs a VarInt-kind Value.
func VarIntValue(v int64) Value { return Value{Kind: KindVarInt, Int: v} }

// VarUIntValue constructs a VarUInt-kind Value.
func VarUIntValue(v uint64) Value { return Value{Kind: KindVarUInt, UInt: v} }

// RefValue constructs an ObjectRef-kind Value.
func RefValue(id ObjectId) Value { return Value{Kind: KindObjectRef, Ref: id} }

// StringValue constructs a String-kind Value.
func StringValue(v string) Value { return Value{Kind: KindString, Str: v} }

// Metadata is an ordered key-value map; order is preserved for
// deterministic output (spec.md §8.1).
type Metadata struct {
	Keys   []string
	Values []Value
}

// Set appends a key-value pair. Callers are responsible for not
// repeating a key if they want map-like semantics; the format itself
// does not forbid repeats.
func (m *Metadata) Set(key string, v Value) {
	m.Keys = append(m.Keys, key)
	m.Values = append(m.Values, v)
}

// DirEntry is one (data, metadata, name) triple inside a Directory
// object body.
type DirEntry struct {
	Data     ObjectId
	Metadata ObjectId
	Name     string
}

// AltEntry is one alternate-name mapping inside a Root object body.
type AltEntry struct {
	Name string
	Data ObjectId
}
