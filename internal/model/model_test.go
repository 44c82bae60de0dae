package model

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePOS(t *testing.T) {
	assert.Equal(t, POSNoun, ParsePOS("NOUN"))
	assert.Equal(t, POSSconj, ParsePOS("SCONJ"))
	assert.Equal(t, POSX, ParsePOS("noun"))
	assert.Equal(t, POSX, ParsePOS("NN"))
	assert.Equal(t, POSX, ParsePOS(""))
}

func TestNewDocument(t *testing.T) {
	d := NewDocument("src", []string{"the", "message", "that"}, []POS{POSDet, POSNoun})

	require.Equal(t, 3, d.Len())
	assert.Equal(t, "src", d.Source)
	assert.Equal(t, Token{Text: "message", Tag: POSNoun, Index: 1}, d.At(1))
	// Missing tags fall back to X.
	assert.Equal(t, POSX, d.At(2).Tag)
}

func TestDocumentAt_OutOfRange(t *testing.T) {
	d := NewDocument("src", []string{"a"}, []POS{POSDet})

	for _, i := range []int{-3, -1, 1, 4} {
		tok := d.At(i)
		assert.Empty(t, tok.Text, "position %d", i)
		assert.Empty(t, tok.Tag, "position %d", i)
		assert.Equal(t, i, tok.Index)
	}

	var empty Document
	assert.Equal(t, 0, empty.Len())
	assert.Empty(t, empty.At(0).Text)
}

func TestBuckets_GetAddSet(t *testing.T) {
	var b Buckets
	b.Add(ClassEqual, "report")
	b.Add(ClassEqual, "story")
	b.Add(ClassExclusivelyInfo, "rumour")
	b.Add(Class("unknown"), "ghost")

	assert.Equal(t, []string{"report", "story"}, b.Get(ClassEqual))
	assert.Equal(t, []string{"rumour"}, b.ExclusivelyInfo)
	assert.Nil(t, b.Get(Class("unknown")))
	assert.Equal(t, 3, b.Total())

	b.Set(ClassEqual, []string{"argument"})
	assert.Equal(t, []string{"argument"}, b.Equal)
	assert.Equal(t, 2, b.Total())
}

func TestClassLabels(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Classes {
		label := c.Label()
		assert.NotEqual(t, string(c), label)
		assert.False(t, seen[label], "duplicate label %q", label)
		seen[label] = true
	}
	assert.Equal(t, "Exclusively informational nouns", ClassExclusivelyInfo.Label())
	assert.Equal(t, "Exclusively eventualities", ClassExclusivelyEvent.Label())
	assert.Equal(t, "other", Class("other").Label())
}

func TestSourceNameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.gutenberg.org/files/31100/31100.txt", "31100"},
		{"https://www.gutenberg.org/cache/epub/8294/pg8294.txt", "pg8294"},
		{"https://example.com/texts/emma", "emma"},
		{"https://example.com/", "example.com"},
		{"https://example.com", "example.com"},
		{"https://example.com/.hidden", ".hidden"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SourceNameFromURL(tt.url), tt.url)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Sources, 3)
	assert.Equal(t, "ascii", cfg.Sources[0].Encoding)
	assert.True(t, cfg.Sources[2].StripVerseNumbers)
	assert.False(t, cfg.Sources[0].StripVerseNumbers)
	assert.Equal(t, TaggerProse, cfg.Tagger.Backend)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no sources", func(c *Config) { c.Sources = nil }, "no corpus sources"},
		{"missing url", func(c *Config) { c.Sources[1].URL = "" }, "has no url"},
		{"duplicate name", func(c *Config) { c.Sources[1].Name = "austen" }, "duplicate source name"},
		{"bad encoding", func(c *Config) { c.Sources[0].Encoding = "ebcdic" }, "unsupported encoding"},
		{"bad backend", func(c *Config) { c.Tagger.Backend = "spacy" }, "unknown tagger backend"},
		{"no workers", func(c *Config) { c.Concurrency.Workers = 0 }, "concurrency.workers"},
		{"no body limit", func(c *Config) { c.HTTP.MaxBodyBytes = 0 }, "max_body_bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfigValidate_EncodingAliases(t *testing.T) {
	cfg := DefaultConfig()
	for _, enc := range []string{"US-ASCII", "latin1", "cp1252", " utf8 "} {
		cfg.Sources[0].Encoding = enc
		assert.NoError(t, cfg.Validate(), enc)
	}
}

func TestConfigValidate_NoSourcesHint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sources = nil
	hints := errors.GetAllHints(cfg.Validate())
	require.NotEmpty(t, hints)
	assert.Contains(t, hints[0], "--sources-file")
}

func TestSourceCheckUsable(t *testing.T) {
	ok := SourceCheck{IsAccessible: true, RobotsAllowed: true}
	assert.True(t, ok.Usable())

	blocked := ok
	blocked.RobotsAllowed = false
	assert.False(t, blocked.Usable())

	large := ok
	large.TooLarge = true
	assert.False(t, large.Usable())

	assert.False(t, SourceCheck{RobotsAllowed: true}.Usable())
}
