package binning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelOffsets_UCSC(t *testing.T) {
	g := UCSC()
	// Coarsest level: 2^(31-29) = 4 bins starting at id 0, then 32, 256,
	// 2048, and 16384 finest bins.
	assert.Equal(t, []uint32{2340, 292, 36, 4, 0}, g.LevelOffsets())
	assert.Equal(t, uint32(18724), g.TotalBins())
}

func TestLevelOffsets_Dense(t *testing.T) {
	g := Dense()
	assert.Equal(t, []uint32{43648, 10880, 2688, 640, 128, 0}, g.LevelOffsets())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse(0, 3, 5)
	assert.Error(t, err)

	_, err = Parse(17, 3, 6) // 17 + 3*5 = 32 > 31
	assert.Error(t, err)

	_, err = Parse(17, 3, 5)
	assert.NoError(t, err)
}

func TestBinFor_UCSC(t *testing.T) {
	g := UCSC()

	// From the UCSC documentation: 100_000_000 >> 17 == 762 within the
	// finest level.
	assert.Equal(t, uint32(762+2340), g.BinFor(100_000_000, 100_000_100))

	// Small interval lands in the first finest-level bin.
	assert.Equal(t, uint32(2340), g.BinFor(0, 1000))

	// 1 Mb interval spans finest bins, settles two levels up (8 Mb bins).
	assert.Equal(t, uint32(36), g.BinFor(1_000_000, 2_000_000))

	// 10 Mb interval goes to the 64 Mb level.
	assert.Equal(t, uint32(4), g.BinFor(10_000_000, 20_000_000))

	// Very large intervals land in the first coarsest bin.
	assert.Equal(t, uint32(0), g.BinFor(100_000_000, 200_000_000))
	assert.Equal(t, uint32(0), g.BinFor(0, 500_000_000))

	// Exact bin boundaries.
	const kib = 1024
	assert.Equal(t, uint32(2340), g.BinFor(0, 128*kib))
	assert.Equal(t, uint32(2341), g.BinFor(128*kib, 256*kib))

	// Adjacent regions get different bins.
	assert.NotEqual(t, g.BinFor(0, 128_000), g.BinFor(128_000, 256_000))

	// Coordinates in the upper half of the space stay within TotalBins.
	hi := g.BinFor(1<<30, 1<<30+100)
	assert.Less(t, hi, g.TotalBins())
}

func TestBinFor_RootBin(t *testing.T) {
	g := UCSC()

	// The coarsest UCSC bin spans 512 Mb; an interval crossing that
	// boundary fits no configured bin.
	span := uint32(1) << 29
	assert.Equal(t, RootBin, g.BinFor(span-1, span+1))

	// With the dense geometry the coarsest span is only 16 Mb, so root
	// assignment is routine.
	d := Dense()
	dspan := uint32(1) << 24
	assert.Equal(t, RootBin, d.BinFor(dspan-10, dspan+10))
	assert.NotEqual(t, RootBin, d.BinFor(dspan, dspan+10))
}

func TestBinRange_ContainsAssignedInterval(t *testing.T) {
	for _, g := range []Geometry{UCSC(), Dense(), New(20, 4, 3)} {
		cases := []struct{ start, end uint32 }{
			{0, 1},
			{1000, 2000},
			{100_000_000, 100_191_121},
			{1 << 24, 1<<24 + 1},
			{1<<29 - 1, 1<<29 + 1},
			{MaxCoord - 100, MaxCoord},
		}
		for _, c := range cases {
			bin := g.BinFor(c.start, c.end)
			lo, hi := g.BinRange(bin)
			assert.LessOrEqual(t, lo, c.start, "%v [%d,%d) bin %d", g, c.start, c.end, bin)
			assert.GreaterOrEqual(t, hi, c.end, "%v [%d,%d) bin %d", g, c.start, c.end, bin)
		}
	}
}

func TestCandidateBins_ContainAssignedBin(t *testing.T) {
	// Any interval overlapping the query must live in a candidate bin.
	for _, g := range []Geometry{UCSC(), Dense()} {
		queries := []struct{ qs, qe uint32 }{
			{0, 1000},
			{1000, 2000},
			{100_000_000, 100_191_121},
			{0, 10_000_000},
			{1<<24 - 5, 1<<24 + 5},
			{1 << 30, 1<<30 + 5000},
		}
		intervals := []struct{ start, end uint32 }{
			{500, 1500},
			{0, MaxCoord},
			{100_000_000, 100_000_001},
			{1<<24 - 1, 1<<24 + 1},
			{999, 1000},
			{1<<30 + 100, 1<<30 + 200},
		}
		for _, q := range queries {
			bins := g.CandidateBins(nil, q.qs, q.qe)
			set := make(map[uint32]bool, len(bins))
			for _, b := range bins {
				set[b] = true
			}
			assert.True(t, set[RootBin])
			for _, iv := range intervals {
				if iv.start < q.qe && iv.end > q.qs {
					assert.True(t, set[g.BinFor(iv.start, iv.end)],
						"%v query [%d,%d) interval [%d,%d)", g, q.qs, q.qe, iv.start, iv.end)
				}
			}
		}
	}
}

func TestCandidateBins_Unique(t *testing.T) {
	g := UCSC()
	bins := g.CandidateBins(nil, 0, 10_000_000)
	seen := make(map[uint32]bool)
	for _, b := range bins {
		require.False(t, seen[b], "duplicate bin %d", b)
		seen[b] = true
	}
}

func TestLinearWindow(t *testing.T) {
	g := UCSC()
	assert.Equal(t, uint32(0), g.LinearWindow(0))
	assert.Equal(t, uint32(0), g.LinearWindow(1<<17-1))
	assert.Equal(t, uint32(1), g.LinearWindow(1<<17))
	assert.Equal(t, uint32(762), g.LinearWindow(100_000_000))
}

func TestLevel(t *testing.T) {
	g := UCSC()
	assert.Equal(t, 4, g.Level(0))
	assert.Equal(t, 4, g.Level(3))
	assert.Equal(t, 3, g.Level(4))
	assert.Equal(t, 3, g.Level(35))
	assert.Equal(t, 2, g.Level(36))
	assert.Equal(t, 0, g.Level(2340))
	assert.Equal(t, 0, g.Level(2340+16383))
	assert.Equal(t, -1, g.Level(RootBin))
}
