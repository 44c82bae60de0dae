package model

import "time"

// Report is the complete result of one classification run
type Report struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Tagger      string          `json:"tagger"`          // Tagger backend that produced the documents
	Sources     []SourceSummary `json:"sources"`         // One entry per corpus source, in input order
	Buckets     Buckets         `json:"buckets"`         // The five classification lists
	Nouns       []NounCount     `json:"nouns,omitempty"` // Per-noun tallies, sorted by noun
	Stats       Stats           `json:"stats"`           // Corpus pass counters
}

// SourceSummary describes how a source was acquired
type SourceSummary struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	FinalURL  string    `json:"final_url,omitempty"`
	Bytes     int       `json:"bytes"`  // Raw body size
	Tokens    int       `json:"tokens"` // Tokens after tagging
	FromCache bool      `json:"from_cache"`
	FetchMeta FetchMeta `json:"fetch_meta"`
}

// FetchMeta contains HTTP metadata from fetching a source
type FetchMeta struct {
	StatusCode   int               `json:"status_code"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified string            `json:"last_modified,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// Class is one of the five report buckets
type Class string

const (
	ClassExclusivelyInfo  Class = "exclusively_info"
	ClassMainlyInfo       Class = "mainly_info"
	ClassEqual            Class = "equal"
	ClassMainlyEvent      Class = "mainly_event"
	ClassExclusivelyEvent Class = "exclusively_event"
)

// Classes lists the buckets in report order
var Classes = []Class{
	ClassExclusivelyInfo,
	ClassMainlyInfo,
	ClassEqual,
	ClassMainlyEvent,
	ClassExclusivelyEvent,
}

// Label returns the human-readable heading used by the text report
func (c Class) Label() string {
	switch c {
	case ClassExclusivelyInfo:
		return "Exclusively informational nouns"
	case ClassMainlyInfo:
		return "Primarily informational nouns"
	case ClassEqual:
		return "Equally informational nouns and eventualities"
	case ClassMainlyEvent:
		return "Primarily eventualities"
	case ClassExclusivelyEvent:
		return "Exclusively eventualities"
	default:
		return string(c)
	}
}

// Buckets holds the nouns of each class
type Buckets struct {
	ExclusivelyInfo  []string `json:"exclusively_info"`
	MainlyInfo       []string `json:"mainly_info"`
	Equal            []string `json:"equal"`
	MainlyEvent      []string `json:"mainly_event"`
	ExclusivelyEvent []string `json:"exclusively_event"`
}

func (b *Buckets) slot(c Class) *[]string {
	switch c {
	case ClassExclusivelyInfo:
		return &b.ExclusivelyInfo
	case ClassMainlyInfo:
		return &b.MainlyInfo
	case ClassEqual:
		return &b.Equal
	case ClassMainlyEvent:
		return &b.MainlyEvent
	case ClassExclusivelyEvent:
		return &b.ExclusivelyEvent
	}
	return nil
}

// Get returns the bucket for a class
func (b *Buckets) Get(c Class) []string {
	if s := b.slot(c); s != nil {
		return *s
	}
	return nil
}

// Add appends a noun to the bucket for a class
func (b *Buckets) Add(c Class, noun string) {
	if s := b.slot(c); s != nil {
		*s = append(*s, noun)
	}
}

// Set replaces the bucket for a class
func (b *Buckets) Set(c Class, nouns []string) {
	if s := b.slot(c); s != nil {
		*s = nouns
	}
}

// Total returns the number of bucketed nouns
func (b *Buckets) Total() int {
	n := 0
	for _, c := range Classes {
		n += len(b.Get(c))
	}
	return n
}

// NounCount is the final tally of one noun
type NounCount struct {
	Noun  string `json:"noun"`
	Info  int    `json:"info"`
	Event int    `json:"event"`
	Class Class  `json:"class"`
}

// Stats counts what the corpus pass saw
type Stats struct {
	Documents  int            `json:"documents"`
	Tokens     int            `json:"tokens"`
	Candidates int            `json:"candidates"`        // NOUN tokens inside the detection window
	Skipped    int            `json:"skipped"`           // NOUN tokens too close to a document edge
	Matches    map[string]int `json:"matches,omitempty"` // Matches per detector name
}

// LoadedDocument is a fetched, cleaned and tagged corpus source
type LoadedDocument struct {
	Summary  SourceSummary
	Document Document
}
