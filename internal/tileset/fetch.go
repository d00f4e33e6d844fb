package tileset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Faultbox/terratile/internal/assets"
)

// MetadataFetchError reports an unreachable, failing or malformed tileset description.
type MetadataFetchError struct {
	Path   string
	Status int // HTTP status when the server answered, otherwise 0
	Err    error
}

func (e *MetadataFetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch tileset metadata %s: status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("fetch tileset metadata %s: %v", e.Path, e.Err)
}

func (e *MetadataFetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves tileset metadata.
type Fetcher struct {
	source assets.Fetcher
}

// NewFetcher creates a metadata fetcher reading through source.
func NewFetcher(source assets.Fetcher) *Fetcher {
	return &Fetcher{source: source}
}

// FetchMetadata downloads, parses and validates the tileset description at infoPath.
func (f *Fetcher) FetchMetadata(ctx context.Context, infoPath string) (*Metadata, error) {
	data, err := f.source.Fetch(ctx, infoPath)
	if err != nil {
		fetchErr := &MetadataFetchError{Path: infoPath, Err: err}
		var status *assets.StatusError
		if errors.As(err, &status) {
			fetchErr.Status = status.Code
		}
		return nil, fetchErr
	}

	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, &MetadataFetchError{Path: infoPath, Err: fmt.Errorf("parse: %w", err)}
	}
	if err := md.Validate(); err != nil {
		return nil, &MetadataFetchError{Path: infoPath, Err: fmt.Errorf("invalid: %w", err)}
	}
	return &md, nil
}
