// Package bed reads and writes BED/TSV interval records. Only the first
// three columns (chrom, start, end) are interpreted; everything after the
// third tab is carried as an opaque payload string.
package bed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inodb/hgidx/internal/binning"
)

// Record is one BED line: a half-open interval on a sequence plus the
// remaining columns, untouched.
type Record struct {
	Chrom string
	Start uint32
	End   uint32
	Rest  string
}

// ParseLine parses a single BED line. oneBased shifts the start column
// down by one for inputs using 1-based inclusive starts.
func ParseLine(line string, oneBased bool) (Record, error) {
	fields := strings.SplitN(line, "\t", 4)
	if len(fields) < 3 {
		return Record{}, fmt.Errorf("bed: need at least 3 fields, got %d", len(fields))
	}

	start, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("bed: bad start %q: %w", fields[1], err)
	}
	end, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("bed: bad end %q: %w", fields[2], err)
	}
	if oneBased {
		if start == 0 {
			return Record{}, fmt.Errorf("bed: start must be positive with 1-based input")
		}
		start--
	}
	if end > uint64(binning.MaxCoord) {
		return Record{}, fmt.Errorf("bed: end %d past coordinate space", end)
	}

	r := Record{Chrom: fields[0], Start: uint32(start), End: uint32(end)}
	if len(fields) == 4 {
		r.Rest = fields[3]
	}
	return r, nil
}

// String renders the record as a BED line (without trailing newline).
func (r Record) String() string {
	if r.Rest == "" {
		return fmt.Sprintf("%s\t%d\t%d", r.Chrom, r.Start, r.End)
	}
	return fmt.Sprintf("%s\t%d\t%d\t%s", r.Chrom, r.Start, r.End, r.Rest)
}

// PayloadCodec stores a record's Rest column as raw bytes. Decode copies
// the bytes into a string, so decoded payloads outlive the store's
// memory-mapped region.
type PayloadCodec struct{}

func (PayloadCodec) Encode(rest string) ([]byte, error) { return []byte(rest), nil }

func (PayloadCodec) Decode(data []byte) (string, error) { return string(data), nil }
