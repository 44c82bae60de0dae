// Package detect holds the local-window patterns that decide whether a noun
// occurrence reads as an eventuality or as informational content.
//
// Each detector looks at most three tokens to the left and three to the
// right of the noun. Detectors run in a fixed priority order and the first
// match wins.
package detect

import (
	"github.com/ppiankov/nounclass/internal/model"
	"github.com/ppiankov/nounclass/internal/tally"
)

// Context is the number of tokens a detector may read on each side of the noun
const Context = 3

// Detector names
const (
	NameHyphenatedNumeral = "hyphenated-numeral"
	NamePredicateDuration = "predicate-duration"
	NameComplementizer    = "complementizer"
)

// Detector is one pattern over the window around a candidate noun
type Detector struct {
	Name  string
	Kind  tally.Kind
	match func(w window) bool
}

// Match reports whether the pattern holds around position i.
// It does not check that the token at i is a noun.
func (d Detector) Match(doc model.Document, i int) bool {
	return d.match(window{doc: doc, i: i})
}

// Match is the outcome of classifying one noun occurrence
type Match struct {
	Noun     string
	Detector string
	Kind     tally.Kind
}

// window reads tokens relative to the candidate position
type window struct {
	doc model.Document
	i   int
}

func (w window) tag(offset int) model.POS {
	return w.doc.At(w.i + offset).Tag
}

func (w window) text(offset int) string {
	return w.doc.At(w.i + offset).Text
}

// "three - minute message": a numeral three tokens back, joined by a hyphen
func hyphenatedNumeral(w window) bool {
	return w.tag(-3) == model.POSNum && w.text(-2) == "-"
}

// "message lasted three minutes", "message that lasted three minutes"
func predicateDuration(w window) bool {
	if w.tag(1) == model.POSVerb && w.tag(2) == model.POSNum {
		return true
	}
	return w.text(1) == "that" && w.tag(2) == model.POSVerb && w.tag(3) == model.POSNum
}

// "message that he was late": "that" tagged as a subordinator, not a relative pronoun
func complementizer(w window) bool {
	return w.text(1) == "that" && w.tag(1) == model.POSSconj
}

var ordered = []Detector{
	{Name: NameHyphenatedNumeral, Kind: tally.KindEvent, match: hyphenatedNumeral},
	{Name: NamePredicateDuration, Kind: tally.KindEvent, match: predicateDuration},
	{Name: NameComplementizer, Kind: tally.KindInfo, match: complementizer},
}

// Detectors returns the detectors in priority order
func Detectors() []Detector {
	out := make([]Detector, len(ordered))
	copy(out, ordered)
	return out
}

// InBounds reports whether position i of a document with length tokens is
// evaluated at all. The first token and the last three tokens of every
// document are skipped, so occurrences near a document edge are never
// counted even when the pattern would hold.
func InBounds(length, i int) bool {
	return i >= 1 && i <= length-(Context+1)
}

// Classify runs the detectors in priority order over the token at i.
// It returns false when i is out of bounds, the token is not a noun, or no
// detector matches.
func Classify(doc model.Document, i int) (Match, bool) {
	if !InBounds(doc.Len(), i) {
		return Match{}, false
	}
	tok := doc.At(i)
	if tok.Tag != model.POSNoun {
		return Match{}, false
	}

	w := window{doc: doc, i: i}
	for _, d := range ordered {
		if d.match(w) {
			return Match{Noun: tok.Text, Detector: d.Name, Kind: d.Kind}, true
		}
	}
	return Match{}, false
}
