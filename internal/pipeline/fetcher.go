package pipeline

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ppiankov/nounclass/internal/cache"
	"github.com/ppiankov/nounclass/internal/logging"
	"github.com/ppiankov/nounclass/internal/model"
	"github.com/ppiankov/nounclass/internal/util"
)

var (
	// ErrDisallowed marks fetches refused by the host's robots.txt
	ErrDisallowed = errors.New("disallowed by robots.txt")
	// ErrUnexpectedStatus marks non-2xx responses
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	// ErrBodyTooLarge marks bodies above http.max_body_bytes
	ErrBodyTooLarge = errors.New("response body too large")

	errTransport = errors.New("transport failure")
)

// fetchSleepFunc waits between attempts; tests replace it
var fetchSleepFunc = time.Sleep

// StatusError is a non-2xx response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// CrawlDelayer applies a robots.txt crawl delay to later requests for a host
type CrawlDelayer interface {
	SetCrawlDelay(host string, delay time.Duration)
}

// Fetcher downloads corpus texts
type Fetcher struct {
	httpClient  *http.Client
	userAgent   string
	maxBytes    int64
	maxAttempts int
	cache       cache.Cache
	cacheTTL    time.Duration
	robots      *util.RobotsChecker
	delayer     CrawlDelayer
	logger      *zap.Logger
}

// FetchResult contains the fetched body and metadata
type FetchResult struct {
	Body      []byte
	Meta      model.FetchMeta
	FinalURL  string
	FromCache bool
}

// cachedFetch is the cache envelope for a FetchResult
type cachedFetch struct {
	Body        []byte `json:"body"`
	ContentType string `json:"content_type"`
	FinalURL    string `json:"final_url"`
}

// NewFetcher creates a Fetcher for cfg. Proxy settings fall back to the
// environment when empty.
func NewFetcher(cfg model.HTTPConfig, logger *zap.Logger) (*Fetcher, error) {
	proxy, err := util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxy
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via http.insecure_tls
	}

	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return errors.New("stopped after 5 redirects")
				}
				return nil
			},
		},
		userAgent:   cfg.UserAgent,
		maxBytes:    cfg.MaxBodyBytes,
		maxAttempts: attempts,
		logger:      logging.OrNop(logger),
	}, nil
}

// WithCache stores successful fetches in c. A nil cache disables caching.
func (f *Fetcher) WithCache(c cache.Cache, ttl time.Duration) *Fetcher {
	f.cache = c
	f.cacheTTL = ttl
	return f
}

// WithRobots checks robots.txt before every network fetch. Crawl delays
// are passed on to delayer when it is not nil.
func (f *Fetcher) WithRobots(r *util.RobotsChecker, delayer CrawlDelayer) *Fetcher {
	f.robots = r
	f.delayer = delayer
	return f
}

// Client returns the HTTP client, shared with remote taggers and robots.txt
func (f *Fetcher) Client() *http.Client {
	return f.httpClient
}

// FetchWithRetry serves rawURL from the cache when possible, otherwise
// checks robots.txt and fetches it, retrying transient failures with
// exponential backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	key := cache.Key(rawURL)
	if result, ok := f.fromCache(key); ok {
		f.logger.Debug("cache hit", zap.String(logging.FieldURL, rawURL))
		return result, nil
	}

	if err := f.checkRobots(ctx, rawURL); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			f.store(key, result)
			return result, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) || attempt == f.maxAttempts || ctx.Err() != nil {
			break
		}

		backoff := time.Duration(1<<(attempt-1)) * time.Second
		f.logger.Info("retrying fetch",
			zap.String(logging.FieldURL, rawURL),
			zap.Int(logging.FieldAttempt, attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		fetchSleepFunc(backoff)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(ctxErr, "fetch cancelled")
		}
	}

	return nil, lastErr
}

// Fetch performs a single GET of rawURL without cache, robots or retries
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/plain,text/html;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "fetch"), errTransport)
	}
	defer func() { _ = resp.Body.Close() }()

	meta := model.FetchMeta{
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
		Headers:      make(map[string]string),
	}

	for _, key := range []string{"Content-Length", "Server", "Cache-Control"} {
		if val := resp.Header.Get(key); val != "" {
			meta.Headers[key] = val
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Mark(&StatusError{Code: resp.StatusCode, Status: resp.Status}, ErrUnexpectedStatus)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	if int64(len(body)) > f.maxBytes {
		return nil, errors.WithHint(
			errors.Wrapf(ErrBodyTooLarge, "%s is larger than %d bytes", rawURL, f.maxBytes),
			"raise http.max_body_bytes")
	}

	f.logger.Debug("fetched",
		zap.String(logging.FieldURL, rawURL),
		zap.Int(logging.FieldStatus, resp.StatusCode),
		zap.Int(logging.FieldBytes, len(body)),
		zap.Int64(logging.FieldDuration, time.Since(start).Milliseconds()))

	return &FetchResult{
		Body:     body,
		Meta:     meta,
		FinalURL: resp.Request.URL.String(),
	}, nil
}

func (f *Fetcher) checkRobots(ctx context.Context, rawURL string) error {
	if f.robots == nil {
		return nil
	}

	allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
	if err != nil {
		return errors.Wrap(err, "robots.txt")
	}
	if !allowed {
		return errors.WithHint(errors.Wrapf(ErrDisallowed, "%s", rawURL),
			"set http.respect_robots to false only if you have permission to fetch this text")
	}

	if delay > 0 && f.delayer != nil {
		if parsed, err := url.Parse(rawURL); err == nil {
			f.delayer.SetCrawlDelay(strings.ToLower(parsed.Host), delay)
		}
	}
	return nil
}

func (f *Fetcher) fromCache(key string) (*FetchResult, bool) {
	if f.cache == nil {
		return nil, false
	}
	raw, ok := f.cache.Get(key)
	if !ok {
		return nil, false
	}

	var entry cachedFetch
	if err := json.Unmarshal(raw, &entry); err != nil {
		f.logger.Debug("dropping unreadable cache entry", zap.Error(err))
		_ = f.cache.Delete(key)
		return nil, false
	}

	return &FetchResult{
		Body: entry.Body,
		Meta: model.FetchMeta{
			StatusCode:  http.StatusOK,
			ContentType: entry.ContentType,
		},
		FinalURL:  entry.FinalURL,
		FromCache: true,
	}, true
}

func (f *Fetcher) store(key string, result *FetchResult) {
	if f.cache == nil {
		return
	}
	raw, err := json.Marshal(cachedFetch{
		Body:        result.Body,
		ContentType: result.Meta.ContentType,
		FinalURL:    result.FinalURL,
	})
	if err != nil {
		return
	}
	if err := f.cache.Set(key, raw, f.cacheTTL); err != nil {
		f.logger.Warn("cache write failed", zap.String(logging.FieldURL, result.FinalURL), zap.Error(err))
	}
}

// isRetryableFetchError reports whether err is worth another attempt:
// transport failures, 5xx and 429
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == http.StatusTooManyRequests
	}

	return errors.Is(err, errTransport)
}
