package tagger

import (
	"context"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/jdkato/prose/tag"
	"github.com/jdkato/prose/tokenize"

	"github.com/ppiankov/nounclass/internal/model"
)

// ProseTagger tags in process with the prose averaged perceptron. Penn
// Treebank tags are mapped to UD.
type ProseTagger struct {
	maxLen    int
	sentences *tokenize.PunktSentenceTokenizer
	words     *tokenize.TreebankWordTokenizer

	mu     sync.Mutex
	tagger *tag.PerceptronTagger
}

// NewProseTagger loads the bundled perceptron model
func NewProseTagger(maxLen int) *ProseTagger {
	return &ProseTagger{
		maxLen:    maxLen,
		sentences: tokenize.NewPunktSentenceTokenizer(),
		words:     tokenize.NewTreebankWordTokenizer(),
		tagger:    tag.NewPerceptronTagger(),
	}
}

// Name returns the backend name
func (p *ProseTagger) Name() string {
	return model.TaggerProse
}

// Tag splits text into sentences, tokenizes and tags each one, and
// concatenates the result into one document
func (p *ProseTagger) Tag(ctx context.Context, source, text string) (model.Document, error) {
	if err := checkLength(source, text, p.maxLen); err != nil {
		return model.Document{}, err
	}

	var words []string
	var tags []model.POS

	for _, sentence := range p.sentences.Tokenize(text) {
		if err := ctx.Err(); err != nil {
			return model.Document{}, err
		}

		tokens := Tokenize(p.words, sentence)
		if len(tokens) == 0 {
			continue
		}

		for _, tok := range p.tag(tokens) {
			words = append(words, tok.Text)
			tags = append(tags, PennToUD(tok.Text, tok.Tag))
		}
	}

	return model.NewDocument(source, words, tags), nil
}

// The perceptron is shared between the worker goroutines
func (p *ProseTagger) tag(tokens []string) []tag.Token {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tagger.Tag(tokens)
}

// Tokenize runs the Treebank word tokenizer over one sentence and splits
// hyphenated compounds into word, "-", word
func Tokenize(t *tokenize.TreebankWordTokenizer, sentence string) []string {
	var out []string
	for _, tok := range t.Tokenize(sentence) {
		out = append(out, SplitHyphens(tok)...)
	}
	return out
}

// SplitHyphens splits a token at every hyphen that sits between a letter
// or digit and a following letter: "three-minute" gives three, -, minute
// while "1990-91" and "-" stay whole
func SplitHyphens(token string) []string {
	if !strings.Contains(token, "-") {
		return []string{token}
	}

	var parts []string
	start := 0
	for i := 0; i < len(token); i++ {
		if token[i] != '-' || i == start {
			continue
		}
		prev, _ := utf8.DecodeLastRuneInString(token[:i])
		next, _ := utf8.DecodeRuneInString(token[i+1:])
		if !(unicode.IsLetter(prev) || unicode.IsDigit(prev)) || !unicode.IsLetter(next) {
			continue
		}
		parts = append(parts, token[start:i], "-")
		start = i + 1
	}
	return append(parts, token[start:])
}
