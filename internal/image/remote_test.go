package image

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestCacheName(t *testing.T) {
	tests := []struct {
		url     string
		wantExt string
	}{
		{"https://example.com/wall.png", ".png"},
		{"https://example.com/wall.WEBP?size=large", ".webp"},
		{"https://example.com/wall", ".jpg"},
		{"https://example.com/render.php", ".jpg"},
	}
	for _, tt := range tests {
		got := cacheName(tt.url)
		if !strings.HasSuffix(got, tt.wantExt) || len(got) != 32+len(tt.wantExt) {
			t.Errorf("cacheName(%q) = %q, want 32 hex chars + %s", tt.url, got, tt.wantExt)
		}
	}
	if cacheName("https://a/x.png") == cacheName("https://b/x.png") {
		t.Error("different URLs share a cache name")
	}
}

func TestRemoteLoader(t *testing.T) {
	var buf bytes.Buffer
	red := color.NRGBA{R: 220, G: 40, B: 30, A: 255}
	if err := png.Encode(&buf, striped(16, 16, 16, red, red)); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "monotint/") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		if r.URL.Path != "/wall.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	loader := NewRemoteLoader(t.TempDir())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		img, err := loader.Load(ctx, srv.URL+"/wall.png")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		got, err := DominantColour(img)
		if err != nil {
			t.Fatalf("DominantColour() error = %v", err)
		}
		if got.Hex() != "#dc281e" {
			t.Errorf("DominantColour() = %s, want #dc281e", got.Hex())
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1 (second load cached)", n)
	}

	if _, err := loader.Load(ctx, srv.URL+"/missing.png"); err == nil {
		t.Error("Load(404) error = nil, want error")
	}
	if _, err := loader.Fetch(ctx, "ftp://example.com/a.png"); err == nil {
		t.Error("Fetch(ftp) error = nil, want error")
	}
}
