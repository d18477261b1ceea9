package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/hgidx/internal/bed"
	"github.com/inodb/hgidx/internal/binning"
	"github.com/inodb/hgidx/internal/codec"
	"github.com/inodb/hgidx/internal/store"
)

// StoreSuffix names store directories produced by pack.
const StoreSuffix = ".hgidx"

// packMetadata is recorded in the master index for provenance.
type packMetadata struct {
	Source    string `json:"source"`
	Records   uint64 `json:"records"`
	CreatedAt string `json:"created_at"`
	Tool      string `json:"tool"`
}

func newPackCmd() *cobra.Command {
	var (
		output   string
		schema   string
		force    bool
		oneBased bool
		comment  string
	)

	cmd := &cobra.Command{
		Use:   "pack <input.bed[.gz]>",
		Short: "Pack a BED/TSV file into an indexed store",
		Example: `  hgidx pack scores.bed
  hgidx pack scores.bed.gz -o scores.hgidx --schema dense
  hgidx pack scores.bed --schema custom:14,2,6 --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if schema == "" {
				schema = viper.GetString("schema")
			}
			return runPack(args[0], output, schema, force, oneBased, comment)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output store directory (default: input path with "+StoreSuffix+")")
	cmd.Flags().StringVar(&schema, "schema", "", "Binning schema: ucsc, dense, or custom:b,s,L (default from config)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing output store")
	cmd.Flags().BoolVar(&oneBased, "one-based", false, "Treat input start coordinates as 1-based inclusive")
	cmd.Flags().StringVar(&comment, "comment", "#", "Skip input lines starting with this prefix")

	return cmd
}

func runPack(input, output, schema string, force, oneBased bool, comment string) error {
	started := time.Now()
	logger := newLogger()
	defer logger.Sync()

	if output == "" {
		output = defaultStorePath(input)
	}
	if _, err := os.Stat(output); err == nil {
		if !force {
			return fmt.Errorf("output %s exists, use --force to overwrite", output)
		}
		if err := os.RemoveAll(output); err != nil {
			return fmt.Errorf("removing existing output: %w", err)
		}
	}

	geom, err := parseSchema(schema)
	if err != nil {
		return parseError{err}
	}

	parser, err := bed.NewParser(input, bed.WithComment(comment), bed.WithOneBased(oneBased))
	if err != nil {
		return err
	}
	defer parser.Close()

	w, err := store.Create(output, store.WithGeometry(geom), store.WithWriterLogger(logger))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Packing %s to %s (%s)\n", input, output, geom)

	var payloads bed.PayloadCodec
	var count uint64
	for {
		rec, err := parser.Next()
		if err != nil {
			return parseError{err}
		}
		if rec == nil {
			break
		}
		payload, err := payloads.Encode(rec.Rest)
		if err != nil {
			return err
		}
		if err := w.AddRecord(rec.Chrom, rec.Start, rec.End, payload); err != nil {
			return fmt.Errorf("line %d: %w", parser.LineNumber(), err)
		}
		count++
	}

	meta, err := codec.JSON[packMetadata]{}.Encode(packMetadata{
		Source:    input,
		Records:   count,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Tool:      "hgidx " + version,
	})
	if err != nil {
		return err
	}
	w.SetMetadata(meta)

	if err := w.Finalize(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Packed %d records in %s\n", count, time.Since(started).Round(time.Millisecond))
	return nil
}

// defaultStorePath swaps the input's .bed/.bed.gz suffix for .hgidx.
func defaultStorePath(input string) string {
	out := strings.TrimSuffix(input, ".gz")
	out = strings.TrimSuffix(out, ".bed")
	out = strings.TrimSuffix(out, ".tsv")
	return out + StoreSuffix
}

// parseSchema resolves a schema name or custom:b,s,L spec to a geometry.
func parseSchema(s string) (binning.Geometry, error) {
	switch s {
	case string(binning.SchemaUCSC):
		return binning.UCSC(), nil
	case string(binning.SchemaDense):
		return binning.Dense(), nil
	}
	if spec, ok := strings.CutPrefix(s, "custom:"); ok {
		parts := strings.Split(spec, ",")
		if len(parts) != 3 {
			return binning.Geometry{}, fmt.Errorf("custom schema %q: expected custom:b,s,L", s)
		}
		vals := make([]uint8, 3)
		for i, p := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return binning.Geometry{}, fmt.Errorf("custom schema %q: %w", s, err)
			}
			vals[i] = uint8(v)
		}
		return binning.Parse(vals[0], vals[1], vals[2])
	}
	return binning.Geometry{}, fmt.Errorf("unknown schema %q (want ucsc, dense, or custom:b,s,L)", s)
}
