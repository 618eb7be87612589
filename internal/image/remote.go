package image

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmylchreest/monotint/internal/security"
	"github.com/jmylchreest/monotint/internal/version"
)

const (
	// DefaultFetchTimeout bounds a single image download.
	DefaultFetchTimeout = 10 * time.Second

	// maxRemoteImageSize bounds the bytes accepted from a remote image.
	maxRemoteImageSize = 64 * 1024 * 1024
)

// IsRemote reports whether path is an http or https URL.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// DefaultCacheDir returns where downloaded images are kept.
func DefaultCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "monotint", "images"), nil
	}
	return filepath.Join(cacheDir, "monotint", "images"), nil
}

// RemoteLoader downloads images once and decodes them from a local cache.
type RemoteLoader struct {
	Client   *http.Client
	CacheDir string
	files    *FileLoader
}

// NewRemoteLoader creates a RemoteLoader caching into dir.
// An empty dir uses DefaultCacheDir on first use.
func NewRemoteLoader(dir string) *RemoteLoader {
	return &RemoteLoader{
		Client:   &http.Client{Timeout: DefaultFetchTimeout},
		CacheDir: dir,
		files:    NewFileLoader(),
	}
}

// Load returns the image at url, downloading it unless already cached.
func (l *RemoteLoader) Load(ctx context.Context, url string) (image.Image, error) {
	path, err := l.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return l.files.Load(path)
}

// Fetch makes sure url is in the cache and returns the cached path.
func (l *RemoteLoader) Fetch(ctx context.Context, url string) (string, error) {
	if !IsRemote(url) {
		return "", fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	dir := l.CacheDir
	if dir == "" {
		d, err := DefaultCacheDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	path := filepath.Join(dir, cacheName(url))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	data, err := l.download(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}

	// Write then rename so an interrupted download never looks cached.
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { // #nosec G306 - Cache files need standard read permissions
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	return path, nil
}

func (l *RemoteLoader) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(security.NewLimitedReader(resp.Body, maxRemoteImageSize))
	if err != nil {
		if errors.Is(err, security.ErrSizeLimit) {
			return nil, fmt.Errorf("image larger than %d bytes", maxRemoteImageSize)
		}
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

// cacheName derives a stable file name from url, keeping a supported
// extension so the cached file passes FileLoader's checks.
func cacheName(url string) string {
	hash := sha256.Sum256([]byte(url))

	ext := filepath.Ext(url)
	if i := strings.IndexAny(ext, "?#"); i != -1 {
		ext = ext[:i]
	}
	if !IsImageFile("x" + ext) {
		ext = ".jpg"
	}
	return fmt.Sprintf("%x%s", hash[:16], strings.ToLower(ext))
}
