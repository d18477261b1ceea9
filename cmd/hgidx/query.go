package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/inodb/hgidx/internal/bed"
	"github.com/inodb/hgidx/internal/store"
)

func newQueryCmd() *cobra.Command {
	var (
		input       string
		output      string
		regionsFile string
		sorted      bool
	)

	cmd := &cobra.Command{
		Use:   "query [SEQ:START-END]",
		Short: "Print records overlapping a region as BED",
		Long: `Query prints all records overlapping the given region to stdout as BED.
Regions use the tabix convention: 1-based inclusive start and end
(chr17:7661779-7687538), or a bare sequence name for everything on it.
With --regions, each interval of a BED file is queried in turn.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var region string
			if len(args) == 1 {
				region = args[0]
			}
			if (region == "") == (regionsFile == "") {
				return parseError{fmt.Errorf("need exactly one of a region argument or --regions")}
			}
			return runQuery(input, output, region, regionsFile, sorted)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input store directory (default: the single *"+StoreSuffix+" in the working directory)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, .gz for compressed (default: stdout)")
	cmd.Flags().StringVar(&regionsFile, "regions", "", "BED file of regions to query")
	cmd.Flags().BoolVar(&sorted, "sorted", false, "Emit records in (start, end) order per region")

	return cmd
}

func runQuery(input, output, region, regionsFile string, sorted bool) error {
	started := time.Now()
	logger := newLogger()
	defer logger.Sync()

	input, err := resolveStorePath(input)
	if err != nil {
		return err
	}

	var regions []bed.Region
	if regionsFile != "" {
		regions, err = bed.ReadRegions(regionsFile)
		if err != nil {
			return parseError{err}
		}
	} else {
		r, err := bed.ParseRegion(region)
		if err != nil {
			return parseError{err}
		}
		regions = []bed.Region{r}
	}

	r, err := store.Open(input, store.WithReaderLogger(logger))
	if err != nil {
		return err
	}
	defer r.Close()

	out, err := bed.NewOutputWriter(output)
	if err != nil {
		return err
	}
	defer out.Close()

	var opts []store.QueryOption
	if sorted {
		opts = append(opts, store.Sorted())
	}

	var payloads bed.PayloadCodec
	var found uint64
	for _, reg := range regions {
		c, err := r.Query(reg.Chrom, reg.Start, reg.End, opts...)
		if err != nil {
			return err
		}
		for c.Next() {
			rec := c.Record()
			rest, err := payloads.Decode(rec.Payload)
			if err != nil {
				return err
			}
			if err := out.WriteRecord(bed.Record{
				Chrom: reg.Chrom,
				Start: rec.Start,
				End:   rec.End,
				Rest:  rest,
			}); err != nil {
				return err
			}
			found++
		}
		if err := c.Err(); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "%d records found in %s\n", found, time.Since(started).Round(time.Millisecond))
	return nil
}

// resolveStorePath returns path unchanged when given, otherwise looks for
// exactly one *.hgidx entry in the working directory.
func resolveStorePath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("input store %s: %w", path, err)
		}
		return path, nil
	}

	entries, err := os.ReadDir(".")
	if err != nil {
		return "", err
	}
	var matches []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), StoreSuffix) {
			matches = append(matches, e.Name())
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no *%s store found in the working directory, use --input", StoreSuffix)
	default:
		return "", fmt.Errorf("multiple *%s stores found (%s), use --input", StoreSuffix, strings.Join(matches, ", "))
	}
}
