package classify

import (
	"github.com/ppiankov/nounclass/internal/detect"
	"github.com/ppiankov/nounclass/internal/model"
	"github.com/ppiankov/nounclass/internal/tally"
)

// Aggregator runs the detectors over a corpus and keeps one tally per noun
// surface form. It is not safe for concurrent use; build one Aggregator
// per goroutine and Merge them afterwards.
type Aggregator struct {
	nouns map[string]*tally.Noun
	stats model.Stats
}

// NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{
		nouns: make(map[string]*tally.Noun),
		stats: model.Stats{Matches: make(map[string]int)},
	}
}

// Observe runs one document through the detectors, in token order
func (a *Aggregator) Observe(doc model.Document) {
	a.stats.Documents++
	a.stats.Tokens += doc.Len()

	for i, tok := range doc.Tokens {
		if tok.Tag != model.POSNoun {
			continue
		}
		if !detect.InBounds(doc.Len(), i) {
			a.stats.Skipped++
			continue
		}
		a.stats.Candidates++

		m, ok := detect.Classify(doc, i)
		if !ok {
			continue
		}
		a.record(m)
	}
}

// ObserveAll observes documents in input order
func (a *Aggregator) ObserveAll(docs []model.Document) {
	for _, doc := range docs {
		a.Observe(doc)
	}
}

func (a *Aggregator) record(m detect.Match) {
	a.stats.Matches[m.Detector]++
	if n, ok := a.nouns[m.Noun]; ok {
		n.Increment(m.Kind)
		return
	}
	a.nouns[m.Noun] = tally.New(m.Kind)
}

// Merge adds the tallies and counters of other into a
func (a *Aggregator) Merge(other *Aggregator) {
	for noun, t := range other.nouns {
		if n, ok := a.nouns[noun]; ok {
			n.Merge(t)
			continue
		}
		cp := &tally.Noun{}
		cp.Merge(t)
		a.nouns[noun] = cp
	}

	a.stats.Documents += other.stats.Documents
	a.stats.Tokens += other.stats.Tokens
	a.stats.Candidates += other.stats.Candidates
	a.stats.Skipped += other.stats.Skipped
	for name, count := range other.stats.Matches {
		a.stats.Matches[name] += count
	}
}

// Len returns the number of distinct nouns tallied
func (a *Aggregator) Len() int {
	return len(a.nouns)
}

// Lookup returns the tally for a noun surface form
func (a *Aggregator) Lookup(noun string) (*tally.Noun, bool) {
	n, ok := a.nouns[noun]
	return n, ok
}

// Tallies returns the noun to tally mapping. The map is a copy; the
// tallies are shared.
func (a *Aggregator) Tallies() map[string]*tally.Noun {
	out := make(map[string]*tally.Noun, len(a.nouns))
	for k, v := range a.nouns {
		out[k] = v
	}
	return out
}

// Stats returns a copy of the pass counters
func (a *Aggregator) Stats() model.Stats {
	s := a.stats
	s.Matches = make(map[string]int, len(a.stats.Matches))
	for k, v := range a.stats.Matches {
		s.Matches[k] = v
	}
	return s
}
