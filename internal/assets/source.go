// Package assets fetches and decodes the images a tileset is built from.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StatusError is returned when a remote resource answers with a non-2xx status.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.Path, e.Code)
}

// Source reads raw resource bytes from HTTP(S) URLs or the local filesystem.
type Source struct {
	client *http.Client
}

// NewSource creates a source whose remote requests time out after timeout.
// A zero timeout means no limit beyond the caller's context.
func NewSource(timeout time.Duration) *Source {
	return &Source{client: &http.Client{Timeout: timeout}}
}

// Fetch returns the bytes at path.
func (s *Source) Fetch(ctx context.Context, path string) ([]byte, error) {
	if !IsRemote(path) {
		return os.ReadFile(strings.TrimPrefix(path, "file://"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Path: path, Code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// IsRemote reports whether path is an HTTP(S) URL.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// ResolvePath joins a base location and a resource name into one full path.
func ResolvePath(base, name string) string {
	if base == "" {
		return name
	}
	if IsRemote(base) {
		segments := strings.Split(strings.TrimLeft(name, "/"), "/")
		for i, seg := range segments {
			segments[i] = url.PathEscape(seg)
		}
		return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
	}
	if strings.HasPrefix(base, "file://") {
		return "file://" + filepath.Join(strings.TrimPrefix(base, "file://"), name)
	}
	return filepath.Join(base, name)
}
