// Package compression reads and writes gzip, xz and plain document files.
package compression

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/monotint/internal/security"
)

// Format identifies a compression container.
type Format int

const (
	// None is an uncompressed stream.
	None Format = iota
	// Gzip is RFC 1952 gzip.
	Gzip
	// Xz is the xz/LZMA2 container.
	Xz
	// Bzip2 is bzip2 (read only).
	Bzip2
)

// String returns the conventional file extension without the dot.
func (f Format) String() string {
	switch f {
	case Gzip:
		return "gz"
	case Xz:
		return "xz"
	case Bzip2:
		return "bz2"
	default:
		return "none"
	}
}

var (
	magicGzip  = []byte{0x1f, 0x8b}
	magicXz    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicBzip2 = []byte{'B', 'Z', 'h'}
)

// FormatFromPath returns the format implied by the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return Gzip
	case ".xz":
		return Xz
	case ".bz2":
		return Bzip2
	default:
		return None
	}
}

// Sniff detects the format from the leading magic bytes of data.
func Sniff(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, magicXz):
		return Xz
	case bytes.HasPrefix(data, magicGzip):
		return Gzip
	case bytes.HasPrefix(data, magicBzip2):
		return Bzip2
	default:
		return None
	}
}

// NewReader wraps r in a decompressor for format f.
// The caller must Close the returned reader.
func NewReader(r io.Reader, f Format) (io.ReadCloser, error) {
	switch f {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzr, nil
	case Xz:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return io.NopCloser(xzr), nil
	case Bzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression format: %d", f)
	}
}

// NewWriter wraps w in a compressor for format f.
// Bzip2 has no writer in the standard library and is rejected.
func NewWriter(w io.Writer, f Format) (io.WriteCloser, error) {
	switch f {
	case None:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Xz:
		xzw, err := xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xzw, nil
	default:
		return nil, fmt.Errorf("writing %s compressed files is not supported", f)
	}
}

// Open opens path and returns a reader over its decompressed contents.
// The format is sniffed from the content, so a misnamed file still decodes.
// Output is capped at maxBytes; zero means security.DefaultMaxDocumentSize.
func Open(path string, maxBytes int64) (io.ReadCloser, error) {
	if maxBytes <= 0 {
		maxBytes = security.DefaultMaxDocumentSize
	}

	file, err := os.Open(path) // #nosec G304 - User-specified document path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	br := bufio.NewReader(file)
	head, _ := br.Peek(len(magicXz))

	dec, err := NewReader(br, Sniff(head))
	if err != nil {
		file.Close()
		return nil, err
	}

	return &readCloser{
		Reader:  security.NewLimitedReader(dec, maxBytes),
		closers: []io.Closer{dec, file},
	}, nil
}

// File is a compressed file being written. Output goes to a temporary
// file beside the target, so the target is untouched until Close succeeds.
type File struct {
	io.Writer
	enc  io.WriteCloser
	tmp  *os.File
	path string
	done bool
}

// Create returns a File that compresses according to the path's extension.
// Close flushes the compressor and renames the result over path. Abort
// discards everything written.
func Create(path string) (*File, error) {
	f := FormatFromPath(path)
	if f == Bzip2 {
		return nil, fmt.Errorf("writing %s compressed files is not supported", f)
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	enc, err := NewWriter(tmp, f)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	return &File{Writer: enc, enc: enc, tmp: tmp, path: path}, nil
}

// Close flushes and syncs the temporary file and moves it into place.
// On any failure the temporary file is removed and path keeps its old content.
func (w *File) Close() error {
	if w.done {
		return nil
	}
	w.done = true

	err := w.enc.Close()
	if err == nil {
		err = w.tmp.Sync()
	}
	if cerr := w.tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(w.tmp.Name(), w.path)
	}
	if err != nil {
		os.Remove(w.tmp.Name())
		return err
	}
	return nil
}

// Abort discards the temporary file. It is a no-op after Close.
func (w *File) Abort() {
	if w.done {
		return
	}
	w.done = true
	w.tmp.Close()
	os.Remove(w.tmp.Name())
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	return closeAll(r.closers)
}

// closeAll closes every closer in order and returns the first error.
func closeAll(closers []io.Closer) error {
	var first error
	for _, c := range closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
