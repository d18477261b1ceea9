package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/hgidx/internal/binning"
)

func sampleIndex() *Index {
	return newIndex(binning.Dense(), []byte(`{"build":"GRCh38"}`), []*SequenceIndex{
		{
			Name: "chr1",
			Bins: []Bin{
				{ID: 640, Entries: []Entry{
					{Offset: 4, Length: 10, Start: 1000, End: 2000},
					{Offset: 18, Length: 7, Start: 1500, End: 2500},
				}},
				{ID: binning.RootBin, Entries: []Entry{
					{Offset: 29, Length: 3, Start: 16_777_000, End: 16_778_000},
				}},
			},
			Linear: []uint64{4, 4, 18},
			Sorted: true,
		},
		{
			Name:   "chr2",
			Bins:   nil,
			Linear: nil,
			Sorted: false,
		},
	})
}

func TestIndex_EncodeDecodeRoundTrip(t *testing.T) {
	ix := sampleIndex()

	var buf bytes.Buffer
	require.NoError(t, encodeIndex(ix, &buf))

	got, err := decodeIndex(buf.Bytes())
	require.NoError(t, err)

	assert.True(t, got.Geometry.Equal(ix.Geometry))
	assert.Equal(t, ix.Metadata, got.Metadata)
	require.Len(t, got.Sequences, 2)
	assert.Equal(t, ix.Sequences[0], got.Sequences[0])
	assert.Equal(t, "chr2", got.Sequences[1].Name)
	assert.False(t, got.Sequences[1].Sorted)
	assert.NotNil(t, got.Sequence("chr1"))
	assert.Nil(t, got.Sequence("chr3"))
}

func TestIndex_DecodeRejectsTruncation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, encodeIndex(sampleIndex(), &buf))
	full := buf.Bytes()

	// Every proper prefix must fail cleanly, never panic.
	for n := 0; n < len(full); n++ {
		_, err := decodeIndex(full[:n])
		require.Error(t, err, "prefix of %d bytes decoded successfully", n)
	}
}

func TestIndex_DecodeRejectsTrailingGarbage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, encodeIndex(sampleIndex(), &buf))
	buf.WriteString("extra")

	_, err := decodeIndex(buf.Bytes())
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestIndex_DecodeRejectsAbsurdCounts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, encodeIndex(newIndex(binning.UCSC(), nil, nil), &buf))
	data := buf.Bytes()

	// Inflate the sequence count field (last 4 bytes of a sequence-free
	// index) far past what the file could hold.
	copy(data[len(data)-4:], []byte{0xff, 0xff, 0xff, 0x7f})
	_, err := decodeIndex(data)
	assert.ErrorIs(t, err, ErrCorrupt)
}
