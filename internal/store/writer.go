package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/inodb/hgidx/internal/binning"
)

const (
	// IndexFileName is the master index file inside a store directory.
	IndexFileName = "index.bin"

	// BinFileSuffix is appended to each sequence name to form its bin
	// file name.
	BinFileSuffix = ".bin"

	// binFileMagic prefixes every bin file; record offsets start after it.
	binFileMagic = "GIDX"

	lengthPrefixSize = 4
)

// BinFilePrefixSize is the byte length of the bin-file magic; the first
// record's offset equals it.
const BinFilePrefixSize = uint64(len(binFileMagic))

// BinFileName returns the bin file name for a sequence.
func BinFileName(seq string) string { return seq + BinFileSuffix }

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithGeometry selects the binning geometry (default binning.UCSC()).
func WithGeometry(g binning.Geometry) WriterOption {
	return func(w *Writer) { w.geom = g }
}

// WithWriterLogger attaches a logger to the writer.
func WithWriterLogger(l *zap.Logger) WriterOption {
	return func(w *Writer) { w.logger = l }
}

// Writer builds a store: it streams records into per-sequence bin files
// and accumulates the master index, committed atomically by Finalize.
//
// Records for a sequence must be contiguous in the input stream; within a
// sequence any order is accepted, though sorted input queries faster. The
// writer is single-threaded and assumes exclusive ownership of the
// directory.
type Writer struct {
	dir       string
	geom      binning.Geometry
	logger    *zap.Logger
	metadata  []byte
	active    *activeSequence
	done      []*SequenceIndex
	seen      map[string]bool
	finalized bool
}

type activeSequence struct {
	name    string
	file    *os.File
	buf     *bufio.Writer
	offset  uint64
	builder *sequenceBuilder
}

// Create prepares a store directory for writing. The directory is created
// if needed; an existing master index in it will be overwritten at
// Finalize.
func Create(dir string, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		dir:    dir,
		geom:   binning.UCSC(),
		logger: zap.NewNop(),
		seen:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return w, nil
}

// Geometry returns the writer's binning geometry.
func (w *Writer) Geometry() binning.Geometry { return w.geom }

// SetMetadata attaches an opaque metadata blob to be persisted in the
// master index. Pass the output of your metadata codec.
func (w *Writer) SetMetadata(blob []byte) { w.metadata = blob }

// AddRecord appends one record: the payload bytes are framed with a u32
// little-endian length prefix and written to the sequence's bin file, and
// the interval is indexed.
func (w *Writer) AddRecord(seq string, start, end uint32, payload []byte) error {
	if w.finalized {
		return fmt.Errorf("%w: add record after finalize", ErrInvalidState)
	}
	if start >= end || end > binning.MaxCoord {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidInterval, start, end)
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return fmt.Errorf("store: payload of %d bytes exceeds u32 framing", len(payload))
	}

	if w.active == nil || w.active.name != seq {
		if err := w.switchSequence(seq); err != nil {
			return err
		}
	}

	a := w.active
	var prefix [lengthPrefixSize]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := a.buf.Write(prefix[:]); err != nil {
		return fmt.Errorf("write record for %s: %w", seq, err)
	}
	if _, err := a.buf.Write(payload); err != nil {
		return fmt.Errorf("write record for %s: %w", seq, err)
	}

	a.builder.add(Entry{
		Offset: a.offset,
		Length: uint32(len(payload)),
		Start:  start,
		End:    end,
	})
	a.offset += lengthPrefixSize + uint64(len(payload))
	return nil
}

func (w *Writer) switchSequence(seq string) error {
	if w.seen[seq] {
		return fmt.Errorf("%w: %q reappeared after its group was closed", ErrOutOfOrderSequence, seq)
	}
	if err := w.closeActive(); err != nil {
		return err
	}

	path := filepath.Join(w.dir, BinFileName(seq))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bin file for %s: %w", seq, err)
	}
	buf := bufio.NewWriterSize(f, 1<<20)
	if _, err := buf.WriteString(binFileMagic); err != nil {
		f.Close()
		return fmt.Errorf("write bin file magic for %s: %w", seq, err)
	}

	w.seen[seq] = true
	w.active = &activeSequence{
		name:    seq,
		file:    f,
		buf:     buf,
		offset:  BinFilePrefixSize,
		builder: newSequenceBuilder(seq, w.geom),
	}
	w.logger.Debug("opened sequence", zap.String("sequence", seq))
	return nil
}

func (w *Writer) closeActive() error {
	a := w.active
	if a == nil {
		return nil
	}
	w.active = nil

	if err := a.buf.Flush(); err != nil {
		a.file.Close()
		return fmt.Errorf("flush bin file for %s: %w", a.name, err)
	}
	if err := a.file.Close(); err != nil {
		return fmt.Errorf("close bin file for %s: %w", a.name, err)
	}

	si := a.builder.finalize()
	w.done = append(w.done, si)
	w.logger.Info("sequence finalized",
		zap.String("sequence", a.name),
		zap.Uint64("records", si.NumRecords()),
		zap.Int("bins", len(si.Bins)),
		zap.Bool("sorted", si.Sorted))
	return nil
}

// Finalize closes the last open bin file and commits the master index by
// writing it to a temporary file in the store directory and renaming it
// into place. Calling Finalize again after it succeeds is a no-op.
func (w *Writer) Finalize() error {
	if w.finalized {
		return nil
	}
	if err := w.closeActive(); err != nil {
		return err
	}

	ix := newIndex(w.geom, w.metadata, w.done)
	final := filepath.Join(w.dir, IndexFileName)
	tmp := final + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create index temp file: %w", err)
	}
	if err := encodeIndex(ix, f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write index: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync index: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit index: %w", err)
	}

	w.finalized = true
	w.logger.Info("store finalized",
		zap.String("dir", w.dir),
		zap.Int("sequences", len(w.done)))
	return nil
}
