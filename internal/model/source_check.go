package model

import "time"

// SourceCheck is the reachability report for one configured source,
// produced by `nounclass sources --check` before a long classify run
type SourceCheck struct {
	Name          string        `json:"name"`
	URL           string        `json:"url"`
	IsAccessible  bool          `json:"is_accessible"`
	StatusCode    int           `json:"status_code,omitempty"`
	ContentLength int64         `json:"content_length,omitempty"` // -1 when the server does not say
	ContentType   string        `json:"content_type,omitempty"`
	LastModified  *time.Time    `json:"last_modified,omitempty"`
	IsDead        bool          `json:"is_dead"`                 // 404, 410 or request failure
	TooLarge      bool          `json:"too_large"`               // announced length above http.max_body_bytes
	RobotsAllowed bool          `json:"robots_allowed"`          // true when robots.txt is not consulted
	CrawlDelay    time.Duration `json:"crawl_delay,omitempty"`
	RedirectURL   string        `json:"redirect_url,omitempty"` // If redirected
	Error         string        `json:"error,omitempty"`
}

// Usable reports whether classify can be expected to fetch the source
func (c SourceCheck) Usable() bool {
	return c.IsAccessible && c.RobotsAllowed && !c.TooLarge
}
