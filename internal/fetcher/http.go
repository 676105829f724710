package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadscout/internal/apperr"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	// RatePerHost caps requests per second to any single host.
	RatePerHost  float64
	RateLimiters map[string]*rate.Limiter
}

// HTTPFetcher implements Fetcher using net/http with per-host rate
// limiting. Each download is a single attempt.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "leadscout/1.0"
	}
	if opts.RatePerHost <= 0 {
		opts.RatePerHost = 20
	}
	limiters := make(map[string]*rate.Limiter)
	for k, v := range opts.RateLimiters {
		limiters[k] = v
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: limiters,
	}
}

func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if lim, ok := f.limiters[host]; ok {
		return lim
	}
	burst := int(f.opts.RatePerHost)
	if burst < 1 {
		burst = 1
	}
	lim := rate.NewLimiter(rate.Limit(f.opts.RatePerHost), burst)
	f.limiters[host] = lim
	return lim
}

// Download fetches the URL and returns the response body. Any transport
// error or non-200 status is returned as *apperr.FetchError.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperr.NewFetchError(rawURL, 0, eris.Wrap(err, "create request"))
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	if err := f.limiterFor(rawURL).Wait(ctx); err != nil {
		return nil, apperr.NewFetchError(rawURL, 0, eris.Wrap(err, "rate limiter wait"))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		zap.L().Warn("fetcher: request failed", zap.String("url", rawURL), zap.Error(err))
		return nil, apperr.NewFetchError(rawURL, 0, eris.Wrap(err, "download"))
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, apperr.NewFetchError(rawURL, resp.StatusCode,
			eris.Errorf("download: unexpected status %d", resp.StatusCode))
	}

	return resp.Body, nil
}
