package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/inodb/hgidx/internal/binning"
)

// Master index layout (all integers little-endian):
//
//	magic      u64
//	version    u32
//	geometry   base_shift u8, level_shift u8, num_levels u8
//	metadata   present u8; if present: len u32, bytes
//	sequences  count u32, then per sequence:
//	  name         len u16, bytes
//	  sorted_hint  u8
//	  linear       count u32, count x u64
//	  bins         count u32, then per bin:
//	    bin_id u32, entry count u32,
//	    entries x { offset u64, length u32, start u32, end u32 }
const (
	indexMagic    uint64 = 0x6867_6964_785F_4D49
	formatVersion uint32 = 1

	entrySize = 8 + 4 + 4 + 4
)

// Index is the decoded master index: the geometry, the optional user
// metadata blob, and the per-sequence indices in build order.
type Index struct {
	Geometry  binning.Geometry
	Metadata  []byte
	Sequences []*SequenceIndex

	byName map[string]*SequenceIndex
}

func newIndex(geom binning.Geometry, metadata []byte, seqs []*SequenceIndex) *Index {
	ix := &Index{Geometry: geom, Metadata: metadata, Sequences: seqs}
	ix.byName = make(map[string]*SequenceIndex, len(seqs))
	for _, si := range seqs {
		ix.byName[si.Name] = si
	}
	return ix
}

// Sequence returns the index for a sequence name, or nil if absent.
func (ix *Index) Sequence(name string) *SequenceIndex {
	return ix.byName[name]
}

type leWriter struct {
	w   *bufio.Writer
	buf [8]byte
	err error
}

func (w *leWriter) u8(v uint8) {
	if w.err == nil {
		w.err = w.w.WriteByte(v)
	}
}

func (w *leWriter) u16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	w.write(w.buf[:2])
}

func (w *leWriter) u32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	w.write(w.buf[:4])
}

func (w *leWriter) u64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[:8], v)
	w.write(w.buf[:8])
}

func (w *leWriter) write(p []byte) {
	if w.err == nil {
		_, w.err = w.w.Write(p)
	}
}

// encodeIndex writes the master index to w.
func encodeIndex(ix *Index, out io.Writer) error {
	w := &leWriter{w: bufio.NewWriterSize(out, 1<<20)}

	w.u64(indexMagic)
	w.u32(formatVersion)
	w.u8(ix.Geometry.BaseShift)
	w.u8(ix.Geometry.LevelShift)
	w.u8(ix.Geometry.NumLevels)

	if ix.Metadata != nil {
		if uint64(len(ix.Metadata)) > math.MaxUint32 {
			return fmt.Errorf("store: metadata blob too large (%d bytes)", len(ix.Metadata))
		}
		w.u8(1)
		w.u32(uint32(len(ix.Metadata)))
		w.write(ix.Metadata)
	} else {
		w.u8(0)
	}

	w.u32(uint32(len(ix.Sequences)))
	for _, si := range ix.Sequences {
		if len(si.Name) > math.MaxUint16 {
			return fmt.Errorf("store: sequence name too long (%d bytes)", len(si.Name))
		}
		w.u16(uint16(len(si.Name)))
		w.write([]byte(si.Name))
		if si.Sorted {
			w.u8(1)
		} else {
			w.u8(0)
		}
		w.u32(uint32(len(si.Linear)))
		for _, off := range si.Linear {
			w.u64(off)
		}
		w.u32(uint32(len(si.Bins)))
		for _, b := range si.Bins {
			w.u32(b.ID)
			w.u32(uint32(len(b.Entries)))
			for _, e := range b.Entries {
				w.u64(e.Offset)
				w.u32(e.Length)
				w.u32(e.Start)
				w.u32(e.End)
			}
		}
	}

	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}

type leReader struct {
	data []byte
	off  int
	bad  bool
}

func (r *leReader) take(n int) []byte {
	if r.bad || n < 0 || len(r.data)-r.off < n {
		r.bad = true
		return nil
	}
	p := r.data[r.off : r.off+n]
	r.off += n
	return p
}

func (r *leReader) u8() uint8 {
	p := r.take(1)
	if p == nil {
		return 0
	}
	return p[0]
}

func (r *leReader) u16() uint16 {
	p := r.take(2)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(p)
}

func (r *leReader) u32() uint32 {
	p := r.take(4)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(p)
}

func (r *leReader) u64() uint64 {
	p := r.take(8)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(p)
}

// remainingAtLeast guards count-driven allocations: a count is only
// plausible if the remaining input can hold count items of unit bytes.
func (r *leReader) remainingAtLeast(count uint32, unit int) bool {
	return !r.bad && uint64(len(r.data)-r.off) >= uint64(count)*uint64(unit)
}

// decodeIndex parses the master index from data.
func decodeIndex(data []byte) (*Index, error) {
	r := &leReader{data: data}

	magic := r.u64()
	if r.bad {
		return nil, fmt.Errorf("%w: index truncated at header", ErrCorrupt)
	}
	if magic != indexMagic {
		return nil, fmt.Errorf("%w: got %#x", ErrBadMagic, magic)
	}
	version := r.u32()
	if r.bad {
		return nil, fmt.Errorf("%w: index truncated at header", ErrCorrupt)
	}
	if version != formatVersion {
		return nil, fmt.Errorf("%w: file version %d, supported version %d", ErrVersionMismatch, version, formatVersion)
	}

	base, level, num := r.u8(), r.u8(), r.u8()
	if r.bad {
		return nil, fmt.Errorf("%w: index truncated at geometry", ErrCorrupt)
	}
	geom, err := binning.Parse(base, level, num)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var metadata []byte
	if r.u8() == 1 {
		n := r.u32()
		if !r.remainingAtLeast(n, 1) {
			return nil, fmt.Errorf("%w: metadata length overruns file", ErrCorrupt)
		}
		metadata = append([]byte(nil), r.take(int(n))...)
	}

	seqCount := r.u32()
	if !r.remainingAtLeast(seqCount, 2) {
		return nil, fmt.Errorf("%w: sequence count overruns file", ErrCorrupt)
	}
	seqs := make([]*SequenceIndex, 0, seqCount)
	for i := uint32(0); i < seqCount; i++ {
		nameLen := r.u16()
		name := string(r.take(int(nameLen)))

		sorted := r.u8() == 1

		linCount := r.u32()
		if !r.remainingAtLeast(linCount, 8) {
			return nil, fmt.Errorf("%w: linear index overruns file", ErrCorrupt)
		}
		linear := make([]uint64, linCount)
		for w := range linear {
			linear[w] = r.u64()
		}

		binCount := r.u32()
		if !r.remainingAtLeast(binCount, 8) {
			return nil, fmt.Errorf("%w: bin count overruns file", ErrCorrupt)
		}
		bins := make([]Bin, 0, binCount)
		for j := uint32(0); j < binCount; j++ {
			id := r.u32()
			entryCount := r.u32()
			if !r.remainingAtLeast(entryCount, entrySize) {
				return nil, fmt.Errorf("%w: entry count overruns file", ErrCorrupt)
			}
			entries := make([]Entry, entryCount)
			for k := range entries {
				entries[k] = Entry{
					Offset: r.u64(),
					Length: r.u32(),
					Start:  r.u32(),
					End:    r.u32(),
				}
			}
			bins = append(bins, Bin{ID: id, Entries: entries})
		}

		if r.bad {
			return nil, fmt.Errorf("%w: index truncated in sequence %q", ErrCorrupt, name)
		}
		seqs = append(seqs, &SequenceIndex{Name: name, Bins: bins, Linear: linear, Sorted: sorted})
	}

	if r.off != len(r.data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(r.data)-r.off)
	}
	return newIndex(geom, metadata, seqs), nil
}
