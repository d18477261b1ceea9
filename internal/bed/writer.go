package bed

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// OutputWriter writes BED lines to a file or stdout, gzip-compressing when
// the path ends in ".gz".
type OutputWriter struct {
	buf  *bufio.Writer
	gz   *gzip.Writer
	file *os.File
}

// NewOutputWriter opens path for writing, or stdout when path is empty.
func NewOutputWriter(path string) (*OutputWriter, error) {
	w := &OutputWriter{}

	var sink io.Writer
	if path == "" {
		sink = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		w.file = f
		sink = f
	}

	if path != "" && strings.HasSuffix(path, ".gz") {
		w.gz = gzip.NewWriter(sink)
		sink = w.gz
	}
	w.buf = bufio.NewWriterSize(sink, 256*1024)
	return w, nil
}

// WriteRecord writes one record as a BED line.
func (w *OutputWriter) WriteRecord(r Record) error {
	if _, err := w.buf.WriteString(r.String()); err != nil {
		return err
	}
	return w.buf.WriteByte('\n')
}

// Close flushes buffered output and closes the underlying handles.
func (w *OutputWriter) Close() error {
	err := w.buf.Flush()
	if w.gz != nil {
		if cerr := w.gz.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if w.file != nil {
		if cerr := w.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
