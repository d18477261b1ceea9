package bed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inodb/hgidx/internal/binning"
)

// Region is a query range on one sequence, 0-based half-open.
type Region struct {
	Chrom string
	Start uint32
	End   uint32
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start+1, r.End)
}

// ParseRegion parses the tabix-style region syntax "seq:start-end", where
// start and end are 1-based inclusive. "seq" alone queries the whole
// sequence.
func ParseRegion(s string) (Region, error) {
	name, coords, ok := strings.Cut(s, ":")
	if name == "" {
		return Region{}, fmt.Errorf("region %q: empty sequence name", s)
	}
	if !ok {
		return Region{Chrom: name, Start: 0, End: binning.MaxCoord}, nil
	}

	startStr, endStr, ok := strings.Cut(coords, "-")
	if !ok {
		return Region{}, fmt.Errorf("region %q: expected seq:start-end", s)
	}
	start, err := strconv.ParseUint(strings.ReplaceAll(startStr, ",", ""), 10, 32)
	if err != nil {
		return Region{}, fmt.Errorf("region %q: bad start: %w", s, err)
	}
	end, err := strconv.ParseUint(strings.ReplaceAll(endStr, ",", ""), 10, 32)
	if err != nil {
		return Region{}, fmt.Errorf("region %q: bad end: %w", s, err)
	}
	if start == 0 {
		return Region{}, fmt.Errorf("region %q: start is 1-based and must be positive", s)
	}
	if end > uint64(binning.MaxCoord) {
		return Region{}, fmt.Errorf("region %q: end past coordinate space", s)
	}
	// 1-based inclusive to 0-based half-open: start shifts down, end stays.
	return Region{Chrom: name, Start: uint32(start - 1), End: uint32(end)}, nil
}

// ReadRegions loads query regions from a BED file: each record's interval
// becomes one region (coordinates already 0-based half-open).
func ReadRegions(path string) ([]Region, error) {
	p, err := NewParser(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	var regions []Region
	for {
		rec, err := p.Next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return regions, nil
		}
		regions = append(regions, Region{Chrom: rec.Chrom, Start: rec.Start, End: rec.End})
	}
}
