package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// FetchFunc streams an object addressed by an s3:// URI.
type FetchFunc func(ctx context.Context, uri string) (io.ReadCloser, error)

// Open returns a reader for source, which is either a local path or s3://bucket/key.
// fetch may be nil when only local paths are expected.
func Open(ctx context.Context, source string, fetch FetchFunc) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "s3://") {
		if fetch == nil {
			return nil, fmt.Errorf("no object store configured for %q", source)
		}
		return fetch(ctx, source)
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open catalog source: %w", err)
	}
	return f, nil
}
