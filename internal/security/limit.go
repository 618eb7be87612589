// Package security provides input hardening helpers for monotint.
package security

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrSizeLimit is returned once a LimitedReader has delivered its budget
// and the underlying reader still has data.
var ErrSizeLimit = errors.New("decompression size limit exceeded")

// DefaultMaxDocumentSize bounds how many decoded bytes a document may expand to.
const DefaultMaxDocumentSize = 256 * 1024 * 1024

// LimitedReader wraps an io.Reader and limits the total bytes that can be read.
// Unlike io.LimitedReader it fails loudly instead of truncating, which keeps a
// compressed document from silently decoding to half a tree.
type LimitedReader struct {
	R         io.Reader
	Remaining int64
}

// Read implements io.Reader with size limits.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Remaining <= 0 {
		var extra [1]byte
		n, err := l.R.Read(extra[:])
		if n == 0 && err != nil {
			return 0, err
		}
		return 0, ErrSizeLimit
	}
	if int64(len(p)) > l.Remaining {
		p = p[:l.Remaining]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	return n, err
}

// NewLimitedReader creates a new LimitedReader with the specified size limit.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{
		R:         r,
		Remaining: maxBytes,
	}
}

// ValidateDocumentPath rejects empty paths and paths carrying NUL bytes.
func ValidateDocumentPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("document path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("document path contains a NUL byte")
	}
	return nil
}
