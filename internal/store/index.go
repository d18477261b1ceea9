package store

import (
	"math"
	"sort"

	"github.com/inodb/hgidx/internal/binning"
)

// Entry locates one record in a sequence's bin file: the absolute offset of
// its length prefix, the payload length, and the record's interval.
type Entry struct {
	Offset uint64
	Length uint32
	Start  uint32
	End    uint32
}

// Bin holds the entries assigned to one bin id, in append order. Append
// order means strictly increasing Offset, which the query engine relies on
// to seek within a bin.
type Bin struct {
	ID      uint32
	Entries []Entry
}

// SequenceIndex is the finalized index for one sequence: bins sorted by id,
// the linear index, and whether record starts arrived monotonically.
type SequenceIndex struct {
	Name   string
	Bins   []Bin
	Linear []uint64
	Sorted bool
}

// NumRecords returns the total entry count across all bins.
func (si *SequenceIndex) NumRecords() uint64 {
	var n uint64
	for _, b := range si.Bins {
		n += uint64(len(b.Entries))
	}
	return n
}

// sequenceBuilder accumulates one sequence's index while its records
// stream in.
type sequenceBuilder struct {
	name      string
	geom      binning.Geometry
	bins      map[uint32][]Entry
	linear    []uint64
	lastStart uint32
	sorted    bool
	any       bool
}

func newSequenceBuilder(name string, geom binning.Geometry) *sequenceBuilder {
	return &sequenceBuilder{
		name:   name,
		geom:   geom,
		bins:   make(map[uint32][]Entry),
		sorted: true,
	}
}

// add indexes one record. The caller has already validated the interval
// and written the framed payload at e.Offset.
func (b *sequenceBuilder) add(e Entry) {
	if b.any && e.Start < b.lastStart {
		b.sorted = false
	}
	b.lastStart = e.Start
	b.any = true

	id := b.geom.BinFor(e.Start, e.End)
	b.bins[id] = append(b.bins[id], e)

	// Touch every linear window the interval overlaps with the record's
	// offset; the finalize pass turns these raw minima into the
	// "don't scan past here" lower bounds.
	lo := b.geom.LinearWindow(e.Start)
	hi := b.geom.LinearWindow(e.End - 1)
	for uint32(len(b.linear)) <= hi {
		b.linear = append(b.linear, math.MaxUint64)
	}
	for w := lo; w <= hi; w++ {
		if e.Offset < b.linear[w] {
			b.linear[w] = e.Offset
		}
	}
}

// finalize snapshots the builder into an immutable SequenceIndex. Bins are
// sorted by id; per-bin entry order is append order and is preserved. The
// linear index gets a backward suffix-min pass so that linear[w] is the
// minimum offset of any record ending at or after window w's start, which
// is monotone nondecreasing and leaves no sentinel values.
func (b *sequenceBuilder) finalize() *SequenceIndex {
	bins := make([]Bin, 0, len(b.bins))
	for id, entries := range b.bins {
		bins = append(bins, Bin{ID: id, Entries: entries})
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].ID < bins[j].ID })

	for w := len(b.linear) - 2; w >= 0; w-- {
		if b.linear[w+1] < b.linear[w] {
			b.linear[w] = b.linear[w+1]
		}
	}

	return &SequenceIndex{
		Name:   b.name,
		Bins:   bins,
		Linear: b.linear,
		Sorted: b.sorted,
	}
}
