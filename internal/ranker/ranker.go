// Package ranker implements the chunk ranker: a count-min-sketched
// top-K chunk store backed by a double-ended priority queue (spec
// component C6, the core algorithm of the dictionary miner).
//
// Grounded on the teacher's archive_build.go dictionary-scoring
// approach (compression-ratio-based chunkGroup scoring, freelist-style
// reuse via its alloc patterns) generalized to the spec's count-min
// sketch and byte-weighted priorities, using the pack's
// github.com/esote/minmaxheap for the double-ended queue instead of two
// separate heaps.
package ranker

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/esote/minmaxheap"
	"github.com/zeebo/xxh3"
)

const (
	// DefaultH is the default count-min sketch width.
	DefaultH = 1 << 26
	// DefaultExcessSamplesFactor scales K relative to the expected
	// chunk count the dictionary can hold.
	DefaultExcessSamplesFactor = 2

	maskSeedConst = 0x092887b6049aa1fd
	hashBXor      = 0x13b75835cec06997
	hashCXor      = 0x907c1340fc4f2ba7
)

// Cell mirrors spec.md §3's PriorityCell: hash identity plus a fixed
// chunker.max-sized payload buffer, truncated by data_size logically
// but (per Open Question 1) emitted in full.
type Cell struct {
	Hash     uint64
	Data     []byte
	DataSize int
	priority uint64
}

// queue is the sort.Interface + heap.Interface-style adapter
// minmaxheap.Interface expects, over a slice of *Cell with an index
// kept in sync so individual cells can be located by hash.
type queue struct {
	cells []*Cell
	index map[uint64]int
}

func (q *queue) Len() int { return len(q.cells) }
func (q *queue) Less(i, j int) bool {
	return q.cells[i].priority < q.cells[j].priority
}
func (q *queue) Swap(i, j int) {
	q.cells[i], q.cells[j] = q.cells[j], q.cells[i]
	q.index[q.cells[i].Hash] = i
	q.index[q.cells[j].Hash] = j
}
func (q *queue) Push(x interface{}) {
	c := x.(*Cell)
	q.index[c.Hash] = len(q.cells)
	q.cells = append(q.cells, c)
}
func (q *queue) Pop() interface{} {
	n := len(q.cells)
	c := q.cells[n-1]
	q.cells = q.cells[:n-1]
	delete(q.index, c.Hash)
	return c
}

// Ranker tracks chunk byte-frequency via a three-hash count-min sketch
// and keeps the top-K chunks (by sketch-min, byte-weighted) in q.
type Ranker struct {
	hashCount []uint64
	h         uint64
	k         int
	chunkMax  int
	mask      uint64

	q     queue
	free  []*Cell // alloc_cells freelist
}

// New returns a Ranker sized for a count-min sketch of width h and a
// queue capacity of k, where chunks are copied into chunkMax-sized
// cells. mask is the gear chunker's mask, folded into the hash_a seed
// per spec.md §4.C6 step 1.
func New(h uint64, k, chunkMax int, mask uint64) *Ranker {
	if h == 0 {
		h = DefaultH
	}
	r := &Ranker{
		hashCount: make([]uint64, h),
		h:         h,
		k:         k,
		chunkMax:  chunkMax,
		mask:      mask,
		q:         queue{index: make(map[uint64]int, k)},
	}
	return r
}

// PushChunk scores one chunk against the sketch and admits it into the
// top-K queue if it clears the current minimum.
func (r *Ranker) PushChunk(data []byte) {
	hashA := xxh3.HashSeed(data, r.mask*maskSeedConst)

	// hash_b and hash_c each get their own independent hasher instance
	// (Open Question 3): sharing one stateful hasher between them would
	// correlate the two counters and weaken the sketch.
	var seedBuf [8]byte

	hb := xxhash.New()
	binary.LittleEndian.PutUint64(seedBuf[:], hashA^hashBXor)
	hb.Write(seedBuf[:])
	hashB := hb.Sum64()

	hc := xxhash.New()
	binary.LittleEndian.PutUint64(seedBuf[:], hashA^hashCXor)
	hc.Write(seedBuf[:])
	hashC := hc.Sum64()

	weight := uint64(len(data))

	countA := r.bump(hashA, weight)
	countB := r.bump(hashB, weight)
	countC := r.bump(hashC, weight)

	count := min3(countA, countB, countC)

	if idx, ok := r.q.index[hashA]; ok {
		r.q.cells[idx].priority = count
		minmaxheap.Init(&r.q)
		return
	}

	if r.q.Len() > 0 {
		minPriority := minOf(&r.q)
		if count <= minPriority {
			return
		}
	}

	var cell *Cell
	if n := len(r.free); n > 0 {
		cell = r.free[n-1]
		r.free = r.free[:n-1]
	} else if r.q.Len() < r.k {
		cell = &Cell{Data: make([]byte, r.chunkMax)}
	} else {
		evicted := minmaxheap.PopMin(&r.q).(*Cell)
		cell = evicted
	}

	cell.Hash = hashA
	cell.DataSize = len(data)
	if cell.DataSize > r.chunkMax {
		cell.DataSize = r.chunkMax
	}
	for i := range cell.Data {
		cell.Data[i] = 0
	}
	copy(cell.Data, data[:cell.DataSize])
	cell.priority = count

	minmaxheap.Push(&r.q, cell)
}

func (r *Ranker) bump(hash uint64, weight uint64) uint64 {
	idx := hash % r.h
	r.hashCount[idx] += weight
	return r.hashCount[idx]
}

func min3(a, b, c uint64) uint64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func minOf(q *queue) uint64 {
	min := q.cells[0]
	for _, c := range q.cells[1:] {
		if c.priority < min.priority {
			min = c
		}
	}
	return min.priority
}

// Emit drops the bulk sketch/freelist memory and returns the dictionary
// bytes: cells popped in descending priority order, each contributing
// its full Data buffer (padding included, per Open Question 1), until
// the output reaches maxSize, then truncated exactly.
func (r *Ranker) Emit(maxSize int) []byte {
	r.hashCount = nil
	r.free = nil

	out := make([]byte, 0, maxSize)
	for r.q.Len() > 0 && len(out) < maxSize {
		c := minmaxheap.PopMax(&r.q).(*Cell)
		out = append(out, c.Data...)
	}
	if len(out) > maxSize {
		out = out[:maxSize]
	}
	return out
}
