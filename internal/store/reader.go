package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/hgidx/internal/binning"
	"github.com/inodb/hgidx/internal/mmap"
)

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithReaderLogger attaches a logger to the reader.
func WithReaderLogger(l *zap.Logger) ReaderOption {
	return func(r *Reader) { r.logger = l }
}

// Reader opens a finalized store for queries. Bin files are memory-mapped
// lazily on first access; record payloads returned by queries borrow from
// the mapped regions and become invalid when the reader is closed.
//
// A Reader is safe for concurrent use. No writer may be live on the same
// directory.
type Reader struct {
	dir    string
	index  *Index
	logger *zap.Logger

	mu     sync.Mutex
	maps   map[string]*mmap.File
	closed bool
}

// Open loads and validates the master index of the store at dir.
func Open(dir string, opts ...ReaderOption) (*Reader, error) {
	data, err := os.ReadFile(filepath.Join(dir, IndexFileName))
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", dir, err)
	}
	ix, err := decodeIndex(data)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", dir, err)
	}

	r := &Reader{
		dir:    dir,
		index:  ix,
		logger: zap.NewNop(),
		maps:   make(map[string]*mmap.File),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger.Debug("store opened",
		zap.String("dir", dir),
		zap.Int("sequences", len(ix.Sequences)),
		zap.Stringer("geometry", ix.Geometry))
	return r, nil
}

// Geometry returns the persisted binning geometry.
func (r *Reader) Geometry() binning.Geometry { return r.index.Geometry }

// Metadata returns the user metadata blob recorded at build time, or nil.
func (r *Reader) Metadata() []byte { return r.index.Metadata }

// Sequences returns the sequence names in build order.
func (r *Reader) Sequences() []string {
	names := make([]string, len(r.index.Sequences))
	for i, si := range r.index.Sequences {
		names[i] = si.Name
	}
	return names
}

// SequenceIndex exposes the finalized index for one sequence (nil if the
// store never saw it). Used by the stats analyzer.
func (r *Reader) SequenceIndex(name string) *SequenceIndex {
	return r.index.Sequence(name)
}

// NumRecords returns the total record count across all sequences.
func (r *Reader) NumRecords() uint64 {
	var n uint64
	for _, si := range r.index.Sequences {
		n += si.NumRecords()
	}
	return n
}

// mapping returns the memory-mapped bin file for a sequence, mapping it on
// first use and validating its magic.
func (r *Reader) mapping(seq string) (*mmap.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, fmt.Errorf("%w: reader is closed", ErrInvalidState)
	}
	if m, ok := r.maps[seq]; ok {
		return m, nil
	}

	m, err := mmap.Open(filepath.Join(r.dir, BinFileName(seq)))
	if err != nil {
		return nil, fmt.Errorf("map bin file for %s: %w", seq, err)
	}
	if m.Len() < int(BinFilePrefixSize) || !bytes.Equal(m.Bytes()[:BinFilePrefixSize], []byte(binFileMagic)) {
		m.Close()
		return nil, fmt.Errorf("%w: bin file for %s", ErrBadMagic, seq)
	}
	r.maps[seq] = m
	return m, nil
}

// Close unmaps all bin files. Outstanding cursors and record views become
// invalid.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	var first error
	for seq, m := range r.maps {
		if err := m.Close(); err != nil && first == nil {
			first = fmt.Errorf("unmap %s: %w", seq, err)
		}
	}
	r.maps = nil
	return first
}
