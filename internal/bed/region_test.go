package bed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/hgidx/internal/binning"
)

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion("chr17:7661779-7687538")
	require.NoError(t, err)
	assert.Equal(t, Region{Chrom: "chr17", Start: 7661778, End: 7687538}, r)

	r, err = ParseRegion("chr1:1-100")
	require.NoError(t, err)
	assert.Equal(t, Region{Chrom: "chr1", Start: 0, End: 100}, r)

	// Thousands separators are tolerated, like samtools regions.
	r, err = ParseRegion("chr1:1,000-2,000")
	require.NoError(t, err)
	assert.Equal(t, Region{Chrom: "chr1", Start: 999, End: 2000}, r)
}

func TestParseRegion_WholeSequence(t *testing.T) {
	r, err := ParseRegion("chrX")
	require.NoError(t, err)
	assert.Equal(t, Region{Chrom: "chrX", Start: 0, End: binning.MaxCoord}, r)
}

func TestParseRegion_Invalid(t *testing.T) {
	for _, s := range []string{
		":1-100",
		"chr1:100",
		"chr1:abc-200",
		"chr1:0-100", // 1-based starts cannot be zero
		"chr1:1-2147483649",
	} {
		_, err := ParseRegion(s)
		assert.Error(t, err, "region %q", s)
	}
}

func TestReadRegions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.bed")
	require.NoError(t, os.WriteFile(path, []byte("chr1\t100\t200\nchr2\t0\t50\n"), 0o644))

	regions, err := ReadRegions(path)
	require.NoError(t, err)
	assert.Equal(t, []Region{
		{Chrom: "chr1", Start: 100, End: 200},
		{Chrom: "chr2", Start: 0, End: 50},
	}, regions)
}

func TestRegion_String(t *testing.T) {
	assert.Equal(t, "chr1:100-200", Region{Chrom: "chr1", Start: 99, End: 200}.String())
}
