package store

import (
	"fmt"
	"math"
	"sort"

	"github.com/inodb/hgidx/internal/binning"
)

// Record is a decoded view of one stored record. Payload borrows from the
// reader's memory-mapped bin file: it is valid only while the reader is
// open. Copy it to retain past Close.
type Record struct {
	Start   uint32
	End     uint32
	Payload []byte
}

// QueryOption configures a single query.
type QueryOption func(*queryOptions)

type queryOptions struct {
	sorted bool
}

// Sorted makes the cursor yield records in (start, end, bin id) order
// instead of the cheaper default bin-id streaming order.
func Sorted() QueryOption {
	return func(o *queryOptions) { o.sorted = true }
}

// Query returns a cursor over all records on seq whose interval overlaps
// the half-open range [qs, qe). An unknown sequence or an empty range
// yields an empty cursor, not an error.
func (r *Reader) Query(seq string, qs, qe uint32, opts ...QueryOption) (*Cursor, error) {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}
	if qe > binning.MaxCoord {
		qe = binning.MaxCoord
	}

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("%w: query on closed reader", ErrInvalidState)
	}

	si := r.index.Sequence(seq)
	if si == nil || qs >= qe {
		return &Cursor{}, nil
	}

	// The linear index gives the lowest file offset any record ending at
	// or after qs can have. A query window past the end of the linear
	// index means every record ends before qs.
	w := r.index.Geometry.LinearWindow(qs)
	if w >= uint32(len(si.Linear)) {
		return &Cursor{}, nil
	}
	lo := si.Linear[w]
	if lo == math.MaxUint64 {
		return &Cursor{}, nil
	}

	data, err := r.mapping(seq)
	if err != nil {
		return nil, err
	}

	candidates := r.index.Geometry.CandidateBins(nil, qs, qe)
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

	// Two-pointer intersection of the sorted candidate ids with the
	// id-sorted present bins.
	var bins []*Bin
	i, j := 0, 0
	for i < len(candidates) && j < len(si.Bins) {
		switch {
		case candidates[i] < si.Bins[j].ID:
			i++
		case candidates[i] > si.Bins[j].ID:
			j++
		default:
			bins = append(bins, &si.Bins[j])
			i++
			j++
		}
	}

	c := &Cursor{
		data:   data.Bytes(),
		bins:   bins,
		qs:     qs,
		qe:     qe,
		lo:     lo,
		sorted: si.Sorted,
	}
	if o.sorted {
		if err := c.collectSorted(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Overlapping collects all overlapping records into a slice. The payloads
// still borrow from the reader's mappings.
func (r *Reader) Overlapping(seq string, qs, qe uint32, opts ...QueryOption) ([]Record, error) {
	c, err := r.Query(seq, qs, qe, opts...)
	if err != nil {
		return nil, err
	}
	var out []Record
	for c.Next() {
		out = append(out, c.Record())
	}
	return out, c.Err()
}

// Cursor streams the records matching one query. Typical use:
//
//	c, err := r.Query("chr1", 1000, 2000)
//	for c.Next() {
//		rec := c.Record()
//		...
//	}
//	if err := c.Err(); err != nil { ... }
type Cursor struct {
	data []byte
	bins []*Bin
	qs   uint32
	qe   uint32
	lo   uint64

	// sorted mirrors the sequence's persisted hint: only when true may a
	// bin scan stop at the first entry starting at or past qe.
	sorted bool

	bi, ei int
	seeked bool

	collected []Record
	ci        int
	useSlice  bool

	cur Record
	err error
}

// Next advances to the next overlapping record. It returns false when the
// result set is exhausted or an error occurred; check Err afterwards.
func (c *Cursor) Next() bool {
	if c.err != nil {
		return false
	}
	if c.useSlice {
		if c.ci >= len(c.collected) {
			return false
		}
		c.cur = c.collected[c.ci]
		c.ci++
		return true
	}

	for c.bi < len(c.bins) {
		bin := c.bins[c.bi]
		if !c.seeked {
			// Entries are in append order, so offsets are strictly
			// increasing within a bin; skip straight to the first entry
			// the linear index has not ruled out.
			c.ei = sort.Search(len(bin.Entries), func(i int) bool {
				return bin.Entries[i].Offset >= c.lo
			})
			c.seeked = true
		}
		for c.ei < len(bin.Entries) {
			e := bin.Entries[c.ei]
			c.ei++
			if e.Start >= c.qe {
				if c.sorted {
					break
				}
				continue
			}
			if e.End <= c.qs {
				continue
			}
			rec, err := c.decode(e)
			if err != nil {
				c.err = err
				return false
			}
			c.cur = rec
			return true
		}
		c.bi++
		c.seeked = false
	}
	return false
}

// Record returns the record produced by the last successful Next.
func (c *Cursor) Record() Record { return c.cur }

// Err returns the first error encountered while iterating.
func (c *Cursor) Err() error { return c.err }

func (c *Cursor) decode(e Entry) (Record, error) {
	start := e.Offset + lengthPrefixSize
	end := start + uint64(e.Length)
	if end > uint64(len(c.data)) {
		return Record{}, fmt.Errorf("%w: entry [%d,%d) overruns bin file of %d bytes",
			ErrCorrupt, e.Offset, end, len(c.data))
	}
	return Record{
		Start:   e.Start,
		End:     e.End,
		Payload: c.data[start:end:end],
	}, nil
}

// collectSorted drains the streaming iteration into a slice ordered by
// (start, end, bin id). Bin order equals iteration order here, so a stable
// sort on (start, end) preserves the bin-id tiebreak.
func (c *Cursor) collectSorted() error {
	for c.Next() {
		c.collected = append(c.collected, c.cur)
	}
	if c.err != nil {
		return c.err
	}
	sort.SliceStable(c.collected, func(i, j int) bool {
		a, b := c.collected[i], c.collected[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End < b.End
	})
	c.useSlice = true
	c.bins = nil
	c.data = nil
	return nil
}
