// Package bedgen generates random BED fixtures for testing and
// benchmarking. Output is sorted by (chromosome, start) so the packed
// store gets the sorted-input fast path.
package bedgen

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/inodb/hgidx/internal/bed"
	"github.com/inodb/hgidx/internal/binning"
)

var chroms = []string{"chr1", "chr2", "chr3", "chr4", "chr5", "chrX", "chrY"}

var featureTypes = []string{
	"gene", "exon", "promoter", "enhancer", "UTR",
	"intron", "repeat", "peak", "binding_site", "methylation",
}

// Config bounds the generated records.
type Config struct {
	NumRecords int
	MaxStart   uint32 // exclusive; defaults to 2^28
	MinLength  uint32 // defaults to 50
	MaxLength  uint32 // inclusive; below MinLength it becomes MinLength+4950 (5000 by default)
	Seed       int64
}

func (c *Config) setDefaults() {
	if c.MaxStart == 0 {
		c.MaxStart = 1 << 28
	}
	if c.MinLength == 0 {
		c.MinLength = 50
	}
	if c.MaxLength < c.MinLength {
		c.MaxLength = c.MinLength + 4950
	}
}

// Generate produces cfg.NumRecords random records, sorted by chromosome
// (natural order) then start. The same seed yields the same records.
func Generate(cfg Config) []bed.Record {
	cfg.setDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))

	records := make([]bed.Record, cfg.NumRecords)
	for i := range records {
		start := rng.Uint32() % cfg.MaxStart
		length := cfg.MinLength + uint32(rng.Int63n(int64(cfg.MaxLength-cfg.MinLength+1)))
		if end := uint64(start) + uint64(length); end > uint64(binning.MaxCoord) {
			start = binning.MaxCoord - length
		}
		feature := featureTypes[rng.Intn(len(featureTypes))]
		score := rng.Intn(1000)
		strand := "+"
		if rng.Intn(2) == 1 {
			strand = "-"
		}
		records[i] = bed.Record{
			Chrom: chroms[rng.Intn(len(chroms))],
			Start: start,
			End:   start + length,
			Rest:  fmt.Sprintf("%s_%d\t%d\t%s", feature, i, score, strand),
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if c := compareChroms(records[i].Chrom, records[j].Chrom); c != 0 {
			return c < 0
		}
		return records[i].Start < records[j].Start
	})
	return records
}

// compareChroms orders chromosome names naturally: numbered chromosomes
// numerically, then X, Y, M/MT, and anything else lexically.
func compareChroms(a, b string) int {
	ra, rb := chromRank(a), chromRank(b)
	if ra != rb {
		return ra - rb
	}
	return strings.Compare(a, b)
}

func chromRank(name string) int {
	s := strings.TrimPrefix(name, "chr")
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	switch s {
	case "X":
		return 100
	case "Y":
		return 101
	case "M", "MT":
		return 102
	}
	return 200
}
