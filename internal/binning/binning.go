// Package binning implements the hierarchical binning scheme used by the
// UCSC Genome Browser and tabix, generalized to a parameterizable geometry.
//
// The coordinate space [0, 2^31) is partitioned into bins at NumLevels
// levels. The finest level has bins of width 2^BaseShift; each coarser
// level is 2^LevelShift times wider, so level k (finest first) holds
// 2^(31 - BaseShift - LevelShift*k) bins. An interval is assigned to the
// finest bin that fully contains it. Global bin ids are contiguous
// level-by-level from coarsest to finest: the coarsest level starts at id
// 0, and each finer level starts where the previous one ended. This
// assignment is baked into the on-disk index, so it must never change for
// a given format version.
package binning

import "fmt"

// MaxCoord is the exclusive upper bound on genomic coordinates.
const MaxCoord = uint32(1) << 31

// RootBin is the id of the implicit bin spanning the whole coordinate
// space. Intervals that cross a coarsest-level bin boundary fit no
// configured bin and land here; queries always include it.
const RootBin = ^uint32(0)

// Schema names a preset geometry.
type Schema string

const (
	SchemaUCSC  Schema = "ucsc"
	SchemaDense Schema = "dense"
)

// Geometry defines a binning scheme. The zero value is not valid; use New
// or a preset constructor.
type Geometry struct {
	BaseShift  uint8
	LevelShift uint8
	NumLevels  uint8

	// binOffsets[k] is the id of the first bin of level k, ordered finest
	// level first. Derived from the shifts; never persisted.
	binOffsets []uint32
}

// UCSC returns the default geometry: 128 KiB base bins, 8x scaling,
// 5 levels.
func UCSC() Geometry { return New(17, 3, 5) }

// Dense returns a geometry tuned for small, tightly packed features:
// 16 KiB base bins, 4x scaling, 6 levels.
func Dense() Geometry { return New(14, 2, 6) }

// New builds a geometry from the raw shift parameters.
// It panics if the shifts address bits beyond the coordinate space; callers
// constructing geometries from user input should use Parse.
func New(baseShift, levelShift, numLevels uint8) Geometry {
	g, err := Parse(baseShift, levelShift, numLevels)
	if err != nil {
		panic(err)
	}
	return g
}

// Parse validates the raw shift parameters and builds a geometry.
func Parse(baseShift, levelShift, numLevels uint8) (Geometry, error) {
	if baseShift == 0 || levelShift == 0 || numLevels == 0 {
		return Geometry{}, fmt.Errorf("binning: shifts and levels must be nonzero (base=%d level=%d levels=%d)",
			baseShift, levelShift, numLevels)
	}
	top := uint32(baseShift) + uint32(levelShift)*uint32(numLevels-1)
	if top > 31 {
		return Geometry{}, fmt.Errorf("binning: coarsest level shift %d exceeds 31-bit coordinate space", top)
	}
	g := Geometry{BaseShift: baseShift, LevelShift: levelShift, NumLevels: numLevels}
	g.binOffsets = make([]uint32, numLevels)
	var sum uint32
	for k := int(numLevels) - 1; k >= 0; k-- {
		g.binOffsets[k] = sum
		sum += g.levelCount(k)
	}
	return g, nil
}

// levelCount is the number of bins at level k (finest first). Because
// bin widths are powers of two no wider than the coordinate space, this is
// exactly 2^(31 - shift).
func (g Geometry) levelCount(k int) uint32 {
	return uint32(1) << (31 - g.shift(k))
}

// shift returns the width exponent of level k, finest first.
func (g Geometry) shift(k int) uint32 {
	return uint32(g.BaseShift) + uint32(g.LevelShift)*uint32(k)
}

// Equal reports whether two geometries describe the same binning scheme.
func (g Geometry) Equal(o Geometry) bool {
	return g.BaseShift == o.BaseShift && g.LevelShift == o.LevelShift && g.NumLevels == o.NumLevels
}

// TotalBins is the number of bin ids across all levels (excluding RootBin).
func (g Geometry) TotalBins() uint32 {
	return g.binOffsets[0] + g.levelCount(0)
}

// LevelOffsets returns the first bin id of each level, finest first.
func (g Geometry) LevelOffsets() []uint32 {
	out := make([]uint32, len(g.binOffsets))
	copy(out, g.binOffsets)
	return out
}

// BinFor assigns the half-open interval [start, end) to the finest bin that
// fully contains it, or RootBin if the interval crosses a coarsest-level
// boundary. The caller guarantees start < end <= MaxCoord.
func (g Geometry) BinFor(start, end uint32) uint32 {
	startBin := start >> g.BaseShift
	endBin := (end - 1) >> g.BaseShift
	for _, offset := range g.binOffsets {
		if startBin == endBin {
			return offset + startBin
		}
		startBin >>= g.LevelShift
		endBin >>= g.LevelShift
	}
	return RootBin
}

// Level returns the level (finest first) that the bin id belongs to, or -1
// for RootBin.
func (g Geometry) Level(bin uint32) int {
	if bin == RootBin {
		return -1
	}
	for k := 0; k < len(g.binOffsets); k++ {
		if bin >= g.binOffsets[k] {
			return k
		}
	}
	return len(g.binOffsets) - 1
}

// BinRange returns the coordinate span [lo, hi) covered by the bin id.
// RootBin spans the whole coordinate space.
func (g Geometry) BinRange(bin uint32) (lo, hi uint32) {
	if bin == RootBin {
		return 0, MaxCoord
	}
	k := g.Level(bin)
	within := uint64(bin - g.binOffsets[k])
	width := uint64(1) << g.shift(k)
	loWide := within * width
	hiWide := loWide + width
	if hiWide > uint64(MaxCoord) {
		hiWide = uint64(MaxCoord)
	}
	return uint32(loWide), uint32(hiWide)
}

// CandidateBins appends to dst the ids of every bin that could hold an
// interval overlapping [start, end), finest level first, ending with
// RootBin, and returns the extended slice. The caller guarantees
// start < end.
func (g Geometry) CandidateBins(dst []uint32, start, end uint32) []uint32 {
	startBin := start >> g.BaseShift
	endBin := (end - 1) >> g.BaseShift
	for _, offset := range g.binOffsets {
		for b := startBin; b <= endBin; b++ {
			dst = append(dst, offset+b)
		}
		startBin >>= g.LevelShift
		endBin >>= g.LevelShift
	}
	return append(dst, RootBin)
}

// LinearWindow maps a coordinate to its linear-index window.
func (g Geometry) LinearWindow(pos uint32) uint32 {
	return pos >> g.BaseShift
}

func (g Geometry) String() string {
	return fmt.Sprintf("binning(base=%d level=%d levels=%d)", g.BaseShift, g.LevelShift, g.NumLevels)
}
