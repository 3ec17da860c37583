package core

// streaming.go wraps import files before they reach the CSV or JSON decoder:
//
//   - the UTF-8 byte order mark that spreadsheet tools prepend is dropped,
//     otherwise it would be glued to the first header name
//   - invalid UTF-8 is replaced with U+FFFD so PostgreSQL accepts the text
//   - bytes read are counted for the import summary

import (
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// NewUTF8Reader strips a leading BOM from r and replaces invalid UTF-8.
func NewUTF8Reader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
}

// importFile is an open import source. Close releases the file handle.
type importFile struct {
	file    *os.File
	counter *CountingReader
	reader  io.Reader
}

// openImportFile opens path for reading as clean UTF-8. Counting sits below
// decoding so Bytes reports the size on disk.
func openImportFile(op, path string) (*importFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioFailure(op, "open "+path, err)
	}
	counter := NewCountingReader(f)
	return &importFile{file: f, counter: counter, reader: NewUTF8Reader(counter)}, nil
}

func (f *importFile) Read(p []byte) (int, error) { return f.reader.Read(p) }

func (f *importFile) Bytes() int64 { return f.counter.BytesRead }

func (f *importFile) Close() error { return f.file.Close() }
