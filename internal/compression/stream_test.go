package compression

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/monotint/internal/security"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"doc.json", None},
		{"doc.json.gz", Gzip},
		{"DOC.JSON.XZ", Xz},
		{"doc.json.bz2", Bzip2},
		{"doc", None},
	}
	for _, tt := range tests {
		if got := FormatFromPath(tt.path); got != tt.want {
			t.Errorf("FormatFromPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	payload := strings.Repeat(`{"id":"1:1","fills":[]}`, 200)

	for _, f := range []Format{None, Gzip, Xz} {
		t.Run(f.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(&buf, f)
			if err != nil {
				t.Fatalf("NewWriter() error = %v", err)
			}
			if _, err := io.WriteString(w, payload); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			if got := Sniff(buf.Bytes()); got != f {
				t.Errorf("Sniff() = %v, want %v", got, f)
			}

			r, err := NewReader(&buf, f)
			if err != nil {
				t.Fatalf("NewReader() error = %v", err)
			}
			defer r.Close()
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != payload {
				t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(payload))
			}
		})
	}
}

func TestBzip2WriteUnsupported(t *testing.T) {
	if _, err := NewWriter(io.Discard, Bzip2); err == nil {
		t.Error("NewWriter(Bzip2) error = nil, want error")
	}
	if _, err := Create(filepath.Join(t.TempDir(), "doc.json.bz2")); err == nil {
		t.Error("Create(.bz2) error = nil, want error")
	}
}

func TestOpenSniffsMisnamedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json.xz")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	io.WriteString(w, "hello")
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	renamed := filepath.Join(filepath.Dir(path), "doc.json")
	if err := os.Rename(path, renamed); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	r, err := Open(renamed, 0)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Open() content = %q, want %q", got, "hello")
	}
}

func TestOpenSizeLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.json.gz")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	io.WriteString(w, strings.Repeat("x", 4096))
	w.Close()

	r, err := Open(path, 1024)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()
	if _, err := io.ReadAll(r); !errors.Is(err, security.ErrSizeLimit) {
		t.Errorf("ReadAll() error = %v, want ErrSizeLimit", err)
	}

	exact, err := Open(path, 4096)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer exact.Close()
	if got, err := io.ReadAll(exact); err != nil || len(got) != 4096 {
		t.Errorf("ReadAll() at exact limit = %d bytes, %v; want 4096, nil", len(got), err)
	}
}

func TestCreateReplacesOnClose(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"doc.json", "doc.json.gz", "doc.json.xz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}

			w, err := Create(path)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if _, err := io.WriteString(w, "new"); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if got, _ := os.ReadFile(path); string(got) != "old" {
				t.Errorf("target = %q before Close, want it untouched", got)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			r, err := Open(path, 0)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer r.Close()
			got, _ := io.ReadAll(r)
			if string(got) != "new" {
				t.Errorf("content = %q, want new", got)
			}
			fi, err := os.Stat(path)
			if err != nil {
				t.Fatalf("Stat() error = %v", err)
			}
			if fi.Mode().Perm() != 0o600 {
				t.Errorf("mode = %v, want existing 0600 kept", fi.Mode().Perm())
			}
		})
	}
	assertNoTempFiles(t, dir)
}

func TestCreateAbortKeepsTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json.gz")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	io.WriteString(w, `{"half":`)
	w.Abort()
	if err := w.Close(); err != nil {
		t.Errorf("Close() after Abort error = %v, want nil", err)
	}

	if got, _ := os.ReadFile(path); string(got) != "original" {
		t.Errorf("target = %q after Abort, want original", got)
	}
	assertNoTempFiles(t, dir)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temporary file %s left behind", e.Name())
		}
	}
}
