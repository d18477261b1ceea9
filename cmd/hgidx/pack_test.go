package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/hgidx/internal/binning"
)

func TestParseSchema(t *testing.T) {
	g, err := parseSchema("ucsc")
	require.NoError(t, err)
	assert.True(t, g.Equal(binning.UCSC()))

	g, err = parseSchema("dense")
	require.NoError(t, err)
	assert.True(t, g.Equal(binning.Dense()))

	g, err = parseSchema("custom:14,2,6")
	require.NoError(t, err)
	assert.True(t, g.Equal(binning.Dense()))

	g, err = parseSchema("custom: 20, 4, 3")
	require.NoError(t, err)
	assert.True(t, g.Equal(binning.New(20, 4, 3)))

	for _, s := range []string{"", "tabix", "custom:14,2", "custom:a,b,c", "custom:17,3,6"} {
		_, err := parseSchema(s)
		assert.Error(t, err, "schema %q", s)
	}
}

func TestDefaultStorePath(t *testing.T) {
	assert.Equal(t, "scores.hgidx", defaultStorePath("scores.bed"))
	assert.Equal(t, "scores.hgidx", defaultStorePath("scores.bed.gz"))
	assert.Equal(t, "data/scores.hgidx", defaultStorePath("data/scores.tsv"))
	assert.Equal(t, "weird.txt.hgidx", defaultStorePath("weird.txt"))
}
