package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackQueryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.bed")
	content := "# track comment\n" +
		"chr1\t1000\t2000\tgene1\t960\t+\n" +
		"chr1\t1500\t2500\tgene2\t850\t-\n" +
		"chr2\t10\t20\tgene3\t1\t+\n"
	require.NoError(t, os.WriteFile(input, []byte(content), 0o644))

	storePath := filepath.Join(dir, "in.hgidx")
	require.NoError(t, runPack(input, storePath, "ucsc", false, false, "#"))

	// Tabix-style region 1801-1900 is 0-based [1800, 1900): hits both
	// chr1 records.
	out := filepath.Join(dir, "out.bed")
	require.NoError(t, runQuery(storePath, out, "chr1:1801-1900", "", false))
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		"chr1\t1000\t2000\tgene1\t960\t+\n"+
			"chr1\t1500\t2500\tgene2\t850\t-\n",
		string(got))

	// Half-open: a query starting at end 2000 misses the first record.
	require.NoError(t, runQuery(storePath, out, "chr1:2001-2400", "", false))
	got, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "chr1\t1500\t2500\tgene2\t850\t-\n", string(got))

	// Unknown sequence: empty output, success.
	require.NoError(t, runQuery(storePath, out, "chrZZ:1-100", "", false))
	got, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Empty(t, string(got))

	// Existing output without --force fails; with --force it succeeds.
	err = runPack(input, storePath, "ucsc", false, false, "#")
	require.Error(t, err)
	require.NoError(t, runPack(input, storePath, "ucsc", true, false, "#"))
}

func TestRunPack_ParseFailureIsUsageError(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bad.bed")
	require.NoError(t, os.WriteFile(input, []byte("chr1\tnot-a-number\t10\n"), 0o644))

	err := runPack(input, filepath.Join(dir, "bad.hgidx"), "ucsc", false, false, "#")
	require.Error(t, err)
	assert.IsType(t, parseError{}, err)
}
