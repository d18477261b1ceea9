package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inodb/hgidx/internal/stats"
	"github.com/inodb/hgidx/internal/store"
)

func newStatsCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics for a store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(input)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input store directory (default: the single *"+StoreSuffix+" in the working directory)")

	return cmd
}

func runStats(input string) error {
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

	if meta := r.Metadata(); meta != nil {
		fmt.Fprintf(os.Stdout, "metadata:        %s\n", meta)
	}

	rep, err := stats.Analyze(r)
	if err != nil {
		return err
	}
	return rep.WriteText(os.Stdout)
}
