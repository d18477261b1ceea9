// Package main provides the hgidx command-line tool: pack BED-like
// interval tracks into a binning-indexed store and query them.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// parseError marks failures caused by malformed user input (BED lines,
// region strings, flag values); they exit with ExitUsage.
type parseError struct {
	err error
}

func (e parseError) Error() string { return e.err.Error() }
func (e parseError) Unwrap() error { return e.err }

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var pe parseError
		if errors.As(err, &pe) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "hgidx",
		Short:   "Binning-indexed storage for genomic interval tracks",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Long: `hgidx packs BED/TSV interval records into an on-disk store with a
hierarchical binning index, then answers overlap queries against it with
memory-mapped, zero-copy reads.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return parseError{err}
	})

	root.AddCommand(newPackCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newRandomBedCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig loads ~/.hgidx.yaml if present and sets defaults.
func initConfig() error {
	viper.SetConfigName(".hgidx")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetDefault("schema", "ucsc")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// newLogger builds the CLI logger: quiet by default, debug with --verbose.
func newLogger() *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
