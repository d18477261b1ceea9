package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inodb/hgidx/internal/bed"
	"github.com/inodb/hgidx/internal/binning"
	"github.com/inodb/hgidx/internal/export"
	"github.com/inodb/hgidx/internal/store"
)

const exportBatchSize = 10_000

func newExportCmd() *cobra.Command {
	var (
		input       string
		dbPath      string
		regionsFile string
	)

	cmd := &cobra.Command{
		Use:   "export [SEQ:START-END]",
		Short: "Export overlap-query results into a DuckDB database",
		Long: `Export streams records into the "intervals" table of a DuckDB database
for SQL analysis. With a region argument or --regions only matching
records are exported; otherwise the whole store is.`,
		Example: `  hgidx export --db out.duckdb
  hgidx export -i scores.hgidx --db out.duckdb chr17:7661779-7687538`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var region string
			if len(args) == 1 {
				region = args[0]
			}
			if region != "" && regionsFile != "" {
				return parseError{fmt.Errorf("a region argument and --regions are mutually exclusive")}
			}
			return runExport(input, dbPath, region, regionsFile)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input store directory (default: the single *"+StoreSuffix+" in the working directory)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Output DuckDB database path")
	cmd.Flags().StringVar(&regionsFile, "regions", "", "BED file of regions to export")
	cmd.MarkFlagRequired("db")

	return cmd
}

func runExport(input, dbPath, region, regionsFile string) error {
	logger := newLogger()
	defer logger.Sync()

	input, err := resolveStorePath(input)
	if err != nil {
		return err
	}

	r, err := store.Open(input, store.WithReaderLogger(logger))
	if err != nil {
		return err
	}
	defer r.Close()

	var regions []bed.Region
	switch {
	case regionsFile != "":
		regions, err = bed.ReadRegions(regionsFile)
		if err != nil {
			return parseError{err}
		}
	case region != "":
		reg, err := bed.ParseRegion(region)
		if err != nil {
			return parseError{err}
		}
		regions = []bed.Region{reg}
	default:
		for _, seq := range r.Sequences() {
			regions = append(regions, bed.Region{Chrom: seq, Start: 0, End: binning.MaxCoord})
		}
	}

	db, err := export.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	var payloads bed.PayloadCodec
	batch := make([]bed.Record, 0, exportBatchSize)
	var total uint64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := db.WriteRecords(batch); err != nil {
			return err
		}
		total += uint64(len(batch))
		batch = batch[:0]
		return nil
	}

	for _, reg := range regions {
		c, err := r.Query(reg.Chrom, reg.Start, reg.End)
		if err != nil {
			return err
		}
		for c.Next() {
			rec := c.Record()
			rest, err := payloads.Decode(rec.Payload)
			if err != nil {
				return err
			}
			batch = append(batch, bed.Record{Chrom: reg.Chrom, Start: rec.Start, End: rec.End, Rest: rest})
			if len(batch) == exportBatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err := c.Err(); err != nil {
			return err
		}
	}
	if err := flush(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Exported %d records to %s\n", total, dbPath)
	return nil
}
