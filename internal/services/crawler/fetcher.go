package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"golang.org/x/time/rate"
)

// ErrDisallowedContentType marks a response excluded by the content-type
// allowlist. Not a fetch failure; callers count these separately.
var ErrDisallowedContentType = errors.New("disallowed content type")

// FetchResult carries one fetched response body with its content type
type FetchResult struct {
	URL         string
	ContentType string
	Body        []byte
	StatusCode  int
	Err         error
}

// Fetcher performs bounded-concurrency HTTP fetches with per-domain
// pacing. A semaphore caps in-flight requests across all goroutines and
// a token-bucket limiter per domain enforces the target's crawl delay.
type Fetcher struct {
	client       *http.Client
	logger       arbor.ILogger
	retry        *RetryPolicy
	userAgent    string
	maxBodySize  int64
	allowedTypes []string
	semaphore    chan struct{}

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFetcher creates a fetcher from crawler configuration
func NewFetcher(cfg *common.CrawlerConfig, logger arbor.ILogger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger:       logger,
		retry:        NewRetryPolicy(cfg.RetryAttempts),
		userAgent:    cfg.UserAgent,
		maxBodySize:  cfg.MaxBodySize,
		allowedTypes: cfg.AllowedContentTypes,
		semaphore:    make(chan struct{}, cfg.MaxConcurrency),
		limiters:     make(map[string]*rate.Limiter),
	}
}

// limiterFor returns the pacing limiter for a domain, creating it on
// first use with the given delay between requests
func (f *Fetcher) limiterFor(domain string, delay time.Duration) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	limiter, ok := f.limiters[domain]
	if !ok {
		if delay <= 0 {
			delay = time.Second
		}
		limiter = rate.NewLimiter(rate.Every(delay), 1)
		f.limiters[domain] = limiter
	}
	return limiter
}

// Fetch retrieves one URL, honoring the domain delay and the global
// concurrency cap. Disallowed content types are rejected before the body
// is read. enforceType is false for attachment downloads.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, delay time.Duration, enforceType bool) *FetchResult {
	result := &FetchResult{URL: rawURL}

	domain := common.ExtractDomain(rawURL)
	if err := f.limiterFor(domain, delay).Wait(ctx); err != nil {
		result.Err = err
		return result
	}

	select {
	case f.semaphore <- struct{}{}:
		defer func() { <-f.semaphore }()
	case <-ctx.Done():
		result.Err = ctx.Err()
		return result
	}

	statusCode, err := f.retry.ExecuteWithRetry(ctx, f.logger, func() (int, error) {
		return f.doFetch(ctx, rawURL, enforceType, result)
	})
	result.StatusCode = statusCode
	if err != nil {
		result.Err = err
	}
	return result
}

func (f *Fetcher) doFetch(ctx context.Context, rawURL string, enforceType bool, result *FetchResult) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	contentType := resp.Header.Get("Content-Type")
	result.ContentType = contentType
	if enforceType && !f.contentTypeAllowed(contentType) {
		return resp.StatusCode, fmt.Errorf("%w %q for %s", ErrDisallowedContentType, contentType, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return resp.StatusCode, err
	}
	result.Body = body
	return resp.StatusCode, nil
}

func (f *Fetcher) contentTypeAllowed(contentType string) bool {
	for _, allowed := range f.allowedTypes {
		if strings.HasPrefix(contentType, allowed) {
			return true
		}
	}
	return false
}
