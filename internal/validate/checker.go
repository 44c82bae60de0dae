// Package validate checks that configured corpus sources are reachable
// before a classify run spends minutes fetching and tagging them.
package validate

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ppiankov/nounclass/internal/logging"
	"github.com/ppiankov/nounclass/internal/model"
	"github.com/ppiankov/nounclass/internal/util"
)

const checkMaxRetries = 3

// checkSleepFunc is the sleep function used between retries (injectable for tests)
var checkSleepFunc = time.Sleep

// Checker probes sources concurrently with HEAD requests
type Checker struct {
	httpClient   *http.Client
	userAgent    string
	maxBodyBytes int64
	maxWorkers   int
	robots       *util.RobotsChecker
	logger       *zap.Logger
}

// NewChecker creates a checker sharing the fetcher's HTTP settings
func NewChecker(cfg model.HTTPConfig, maxWorkers int, logger *zap.Logger) (*Checker, error) {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	proxyFunc, err := util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
	if err != nil {
		return nil, errors.Wrap(err, "configure proxy")
	}

	timeout := cfg.Timeout
	if timeout <= 0 || timeout > 30*time.Second {
		timeout = 30 * time.Second
	}

	c := &Checker{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: proxyFunc,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return errors.New("stopped after 5 redirects")
				}
				return nil
			},
		},
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
		maxWorkers:   maxWorkers,
		logger:       logging.OrNop(logger),
	}
	if cfg.RespectRobots {
		c.robots = util.NewRobotsChecker(cfg.UserAgent, c.httpClient, c.logger)
	}
	return c, nil
}

// Check probes every source and returns one result per source, in input order
func (c *Checker) Check(ctx context.Context, sources []model.Source) []model.SourceCheck {
	results := make([]model.SourceCheck, len(sources))
	var wg sync.WaitGroup

	semaphore := make(chan struct{}, c.maxWorkers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s model.Source) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = model.SourceCheck{
					Name:  s.Name,
					URL:   s.URL,
					Error: "context cancelled",
				}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = c.checkWithRetry(ctx, s)
			c.logger.Debug("checked source",
				zap.String(logging.FieldSource, s.Name),
				zap.Int(logging.FieldStatus, results[idx].StatusCode),
				zap.Bool("usable", results[idx].Usable()))
		}(i, src)
	}

	wg.Wait()
	return results
}

// checkSingle probes a single source
func (c *Checker) checkSingle(ctx context.Context, src model.Source) model.SourceCheck {
	result := model.SourceCheck{
		Name:          src.Name,
		URL:           src.URL,
		RobotsAllowed: true,
		ContentLength: -1,
	}

	if c.robots != nil {
		allowed, delay, err := c.robots.CanFetch(ctx, src.URL)
		if err != nil {
			result.Error = "robots: " + err.Error()
			result.IsDead = true
			return result
		}
		result.RobotsAllowed = allowed
		result.CrawlDelay = delay
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, src.URL, nil)
	if err != nil {
		result.Error = "create request: " + err.Error()
		result.IsDead = true
		return result
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Error = "request failed: " + err.Error()
		result.IsDead = true
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	result.ContentType = resp.Header.Get("Content-Type")
	result.ContentLength = resp.ContentLength

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.IsAccessible = true
	} else if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		result.IsDead = true
	}

	if c.maxBodyBytes > 0 && result.ContentLength > c.maxBodyBytes {
		result.TooLarge = true
	}

	if final := resp.Request.URL.String(); final != src.URL {
		result.RedirectURL = final
	}

	if lastModified := resp.Header.Get("Last-Modified"); lastModified != "" {
		if t, err := http.ParseTime(lastModified); err == nil {
			result.LastModified = &t
		}
	}

	return result
}

// checkWithRetry retries transient failures with exponential backoff
func (c *Checker) checkWithRetry(ctx context.Context, src model.Source) model.SourceCheck {
	var result model.SourceCheck
	for attempt := 0; attempt < checkMaxRetries; attempt++ {
		result = c.checkSingle(ctx, src)
		if !isRetryableCheck(result) || ctx.Err() != nil {
			return result
		}
		if attempt < checkMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			checkSleepFunc(backoff)
		}
	}
	return result
}

// isRetryableCheck returns true for results that indicate transient failures
func isRetryableCheck(result model.SourceCheck) bool {
	if result.StatusCode >= 500 && result.StatusCode < 600 {
		return true
	}
	if result.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if result.Error != "" {
		return isRetryableNetworkError(result.Error)
	}
	return false
}

// isRetryableNetworkError checks error strings for transient network failures
func isRetryableNetworkError(errMsg string) bool {
	s := strings.ToLower(errMsg)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
