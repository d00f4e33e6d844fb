package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/terratile/internal/engine/texture"
	"github.com/Faultbox/terratile/internal/logger"
)

// ErrEmptyResource is wrapped when a resource fetch succeeds with no bytes.
var ErrEmptyResource = errors.New("empty resource")

// ResourceLoadError reports a texture or height-map that could not be fetched or decoded.
type ResourceLoadError struct {
	Path string
	Err  error
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("load resource %s: %v", e.Path, e.Err)
}

func (e *ResourceLoadError) Unwrap() error {
	return e.Err
}

// Fetcher returns the raw bytes at a full resource path.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Loader fetches images and decodes them into textures.
type Loader struct {
	fetcher Fetcher
	cache   *Cache
}

// NewLoader creates a loader reading through fetcher.
func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{
		fetcher: fetcher,
		cache:   NewCache(),
	}
}

// Load fetches and decodes the image at a full resource path. Every failure is a
// *ResourceLoadError carrying path. Loads are not retried.
func (l *Loader) Load(ctx context.Context, path string) (*texture.Texture, error) {
	start := time.Now()

	data, err := l.bytes(ctx, path)
	if err != nil {
		return nil, &ResourceLoadError{Path: path, Err: err}
	}

	img, err := decode(path, data)
	if err != nil {
		return nil, &ResourceLoadError{Path: path, Err: err}
	}

	tex := texture.New(path, img)
	logger.Debug("resource loaded",
		zap.String("path", path),
		zap.Int("width", tex.Width()),
		zap.Int("height", tex.Height()),
		zap.Duration("took", time.Since(start)))
	return tex, nil
}

// Forget drops the cached bytes of a resource that will not be loaded again.
func (l *Loader) Forget(path string) {
	l.cache.Delete(path)
}

// Cache returns the loader's byte cache.
func (l *Loader) Cache() *Cache {
	return l.cache
}

func (l *Loader) bytes(ctx context.Context, path string) ([]byte, error) {
	if data, ok := l.cache.Get(path); ok {
		return data, nil
	}
	data, err := l.fetcher.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyResource
	}
	l.cache.Set(path, data)
	return data, nil
}

func decode(resource string, data []byte) (image.Image, error) {
	if strings.EqualFold(path.Ext(resource), ".tga") {
		return texture.DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}
