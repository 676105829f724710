package fetcher

import (
	"context"
	"io"

	"github.com/sells-group/leadscout/internal/apperr"
	"github.com/sells-group/leadscout/internal/objstore"
)

// ObjectOpener opens a stored object for reading.
type ObjectOpener interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// ObjectFetcher implements Fetcher for s3://bucket/key URLs.
type ObjectFetcher struct {
	store ObjectOpener
}

// NewObjectFetcher creates an ObjectFetcher reading through store.
func NewObjectFetcher(store ObjectOpener) *ObjectFetcher {
	return &ObjectFetcher{store: store}
}

// Download implements Fetcher.
func (f *ObjectFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	bucket, key, err := objstore.ParseURL(rawURL)
	if err != nil {
		return nil, apperr.NewFetchError(rawURL, 0, err)
	}
	body, err := f.store.Open(ctx, bucket, key)
	if err != nil {
		return nil, apperr.NewFetchError(rawURL, 0, err)
	}
	return body, nil
}
