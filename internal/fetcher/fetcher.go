// Package fetcher downloads profile documents from HTTP(S) URLs and
// S3-compatible object storage into local temp files.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/apperr"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// DownloadToTemp fetches rawURL into a freshly created temp file whose
// name ends in suffix and returns its path. No partial file survives a
// failure. All failures are *apperr.FetchError.
func DownloadToTemp(ctx context.Context, f Fetcher, rawURL, suffix string) (string, error) {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		if apperr.IsFetch(err) {
			return "", err
		}
		return "", apperr.NewFetchError(rawURL, 0, err)
	}
	defer body.Close() //nolint:errcheck

	file, err := os.CreateTemp("", "leadscout-*"+suffix)
	if err != nil {
		return "", apperr.NewFetchError(rawURL, 0, eris.Wrap(err, "create temp file"))
	}
	path := file.Name()

	_, copyErr := io.Copy(file, body)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if copyErr == nil {
			copyErr = closeErr
		}
		return "", apperr.NewFetchError(rawURL, 0, eris.Wrap(copyErr, "write temp file"))
	}

	return path, nil
}

// Router dispatches downloads to a Fetcher by URL scheme.
type Router struct {
	byScheme map[string]Fetcher
}

// NewRouter creates a Router serving http and https through web. Object
// storage URLs (s3://) are served only when objects is non-nil.
func NewRouter(web Fetcher, objects Fetcher) *Router {
	r := &Router{byScheme: map[string]Fetcher{
		"http":  web,
		"https": web,
	}}
	if objects != nil {
		r.byScheme["s3"] = objects
	}
	return r
}

// Download implements Fetcher.
func (r *Router) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, apperr.NewFetchError(rawURL, 0, eris.Wrap(err, "parse url"))
	}
	f, ok := r.byScheme[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, apperr.NewFetchError(rawURL, 0, eris.Errorf("unsupported scheme %q", u.Scheme))
	}
	return f.Download(ctx, u.String())
}
