package bed

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Parser streams records from a BED file. Plain and gzipped files are both
// accepted; gzip is detected from the magic bytes, not the file name.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	comment    string
	oneBased   bool
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithComment sets the line prefix that marks comment lines (default "#").
// An empty prefix disables comment skipping.
func WithComment(prefix string) ParserOption {
	return func(p *Parser) { p.comment = prefix }
}

// WithOneBased treats input start columns as 1-based inclusive.
func WithOneBased(oneBased bool) ParserOption {
	return func(p *Parser) { p.oneBased = oneBased }
}

// NewParser opens a BED parser for the given path, or stdin for "-".
func NewParser(path string, opts ...ParserOption) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin, opts...), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bed file: %w", err)
	}

	p := &Parser{file: file, comment: "#"}
	for _, opt := range opts {
		opt(p)
	}

	// Sniff the gzip magic.
	var magic [2]byte
	if _, err := io.ReadFull(file, magic[:]); err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		file.Close()
		return nil, fmt.Errorf("read bed file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek bed file: %w", err)
	}

	if magic[0] == 0x1f && magic[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		p.reader = bufio.NewReaderSize(p.gzipReader, 128*1024)
	} else {
		p.reader = bufio.NewReaderSize(file, 128*1024)
	}
	return p, nil
}

// NewParserFromReader wraps an io.Reader (e.g. stdin). The input must be
// uncompressed.
func NewParserFromReader(r io.Reader, opts ...ParserOption) *Parser {
	p := &Parser{reader: bufio.NewReaderSize(r, 128*1024), comment: "#"}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Next returns the next record, or (nil, nil) at end of input. Blank and
// comment lines are skipped. Parse failures carry the line number.
func (p *Parser) Next() (*Record, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if line == "" && err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read bed line: %w", err)
		}
		p.lineNumber++
		line = strings.TrimRight(line, "\r\n")

		if line == "" || (p.comment != "" && strings.HasPrefix(line, p.comment)) {
			if err == io.EOF {
				return nil, nil
			}
			continue
		}

		rec, perr := ParseLine(line, p.oneBased)
		if perr != nil {
			return nil, fmt.Errorf("line %d: %w", p.lineNumber, perr)
		}
		if err == io.EOF {
			p.reader = bufio.NewReader(strings.NewReader(""))
		}
		return &rec, nil
	}
}

// LineNumber returns the number of lines consumed so far.
func (p *Parser) LineNumber() int { return p.lineNumber }

// Close releases the underlying file handles.
func (p *Parser) Close() error {
	var err error
	if p.gzipReader != nil {
		err = p.gzipReader.Close()
		p.gzipReader = nil
	}
	if p.file != nil {
		if cerr := p.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
		p.file = nil
	}
	return err
}
