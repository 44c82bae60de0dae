package model

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Config is the complete nounclass configuration.
// Field tags serve both the YAML file format and viper's decoder.
type Config struct {
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Tagger       TaggerConfig      `yaml:"tagger" mapstructure:"tagger"`
	Sources      []Source          `yaml:"sources" mapstructure:"sources"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls corpus fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxAttempts   int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// CacheConfig controls caching of fetched texts
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig is applied per host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig bounds the fetch+tag worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// TaggerConfig selects and configures the part-of-speech tagger
type TaggerConfig struct {
	Backend       string `yaml:"backend" mapstructure:"backend"`                 // prose, udpipe
	MaxTextLength int    `yaml:"max_text_length" mapstructure:"max_text_length"` // Characters; 0 disables the check
	UDPipeURL     string `yaml:"udpipe_url" mapstructure:"udpipe_url"`
	UDPipeModel   string `yaml:"udpipe_model" mapstructure:"udpipe_model"`
	UDPipeChunk   int    `yaml:"udpipe_chunk_bytes" mapstructure:"udpipe_chunk_bytes"`
}

// Source is one corpus text to fetch
type Source struct {
	Name              string `yaml:"name" mapstructure:"name"`
	URL               string `yaml:"url" mapstructure:"url"`
	Encoding          string `yaml:"encoding" mapstructure:"encoding"` // ascii, utf-8, iso-8859-1, windows-1252
	StripVerseNumbers bool   `yaml:"strip_verse_numbers" mapstructure:"strip_verse_numbers"`
	StripBoilerplate  bool   `yaml:"strip_boilerplate" mapstructure:"strip_boilerplate"` // Project Gutenberg header/footer
}

// OutputConfig controls report rendering
type OutputConfig struct {
	JSONPath      string `yaml:"json" mapstructure:"json"`
	MarkdownPath  string `yaml:"markdown" mapstructure:"markdown"`
	IncludeCounts bool   `yaml:"include_counts" mapstructure:"include_counts"`
	Verbose       bool   `yaml:"-" mapstructure:"-"`
}

// Tagger backends
const (
	TaggerProse  = "prose"
	TaggerUDPipe = "udpipe"
)

// DefaultSources returns the three Project Gutenberg texts of the reference corpus
func DefaultSources() []Source {
	return []Source{
		{
			Name:     "austen",
			URL:      "https://www.gutenberg.org/files/31100/31100.txt",
			Encoding: "ascii",
		},
		{
			Name:     "reviews",
			URL:      "https://www.gutenberg.org/files/62369/62369-0.txt",
			Encoding: "utf-8",
		},
		{
			Name:              "bible",
			URL:               "https://www.gutenberg.org/cache/epub/8294/pg8294.txt",
			Encoding:          "utf-8",
			StripVerseNumbers: true,
		},
	}
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       2 * time.Minute,
			UserAgent:     "nounclass/0.1 (+https://github.com/ppiankov/nounclass)",
			MaxBodyBytes:  16 << 20,
			MaxAttempts:   3,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 3,
		},
		Tagger: TaggerConfig{
			Backend:       TaggerProse,
			MaxTextLength: 5_000_000,
			UDPipeURL:     "https://lindat.mff.cuni.cz/services/udpipe/api/process",
			UDPipeModel:   "english",
			UDPipeChunk:   64 << 10,
		},
		Sources: DefaultSources(),
		Output: OutputConfig{
			IncludeCounts: true,
		},
	}
}

// SourceNameFromURL derives a short source name from the last path segment
// of a URL, without its extension. "https://host/files/31100/31100.txt"
// becomes "31100".
func SourceNameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" || parsed.Path == "/" {
		if err == nil && parsed.Host != "" {
			return parsed.Host
		}
		return rawURL
	}
	base := path.Base(parsed.Path)
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// defaultCacheDir places the text cache under the user cache directory,
// falling back to a relative directory when none is available
func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".nounclass-cache"
	}
	return filepath.Join(dir, "nounclass")
}

// Encoding names accepted for a source, matching corpus.CanonicalEncoding
var knownEncodings = map[string]bool{
	"":             true,
	"ascii":        true,
	"us-ascii":     true,
	"utf-8":        true,
	"utf8":         true,
	"iso-8859-1":   true,
	"latin-1":      true,
	"latin1":       true,
	"windows-1252": true,
	"cp1252":       true,
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return errors.WithHint(errors.New("no corpus sources configured"),
			"add entries under 'sources' in the config file or pass --sources-file")
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		if src.URL == "" {
			return errors.Newf("source %d (%q) has no url", i, src.Name)
		}
		if src.Name != "" && seen[src.Name] {
			return errors.Newf("duplicate source name %q", src.Name)
		}
		seen[src.Name] = true
		if !knownEncodings[strings.ToLower(strings.TrimSpace(src.Encoding))] {
			return errors.Newf("source %q: unsupported encoding %q", src.Name, src.Encoding)
		}
	}

	switch c.Tagger.Backend {
	case TaggerProse, TaggerUDPipe:
	default:
		return errors.Newf("unknown tagger backend %q (supported: %s, %s)", c.Tagger.Backend, TaggerProse, TaggerUDPipe)
	}

	if c.Concurrency.Workers <= 0 {
		return errors.Newf("concurrency.workers must be positive, got %d", c.Concurrency.Workers)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return errors.Newf("http.max_body_bytes must be positive, got %d", c.HTTP.MaxBodyBytes)
	}

	return nil
}
