// Package classify drives the detectors over a tagged corpus and sorts the
// resulting noun tallies into the five report classes.
package classify

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/ppiankov/nounclass/internal/model"
	"github.com/ppiankov/nounclass/internal/tally"
)

// ClassOf maps a tally to its report class. A tally with both counters at
// zero cannot come out of tally.New and the increments; it is reported as
// an assertion failure naming the noun.
func ClassOf(noun string, n *tally.Noun) (model.Class, error) {
	if n == nil {
		return "", errors.AssertionFailedf("noun %q has no tally", noun)
	}

	switch n.Type() {
	case tally.TypeInfo:
		return model.ClassExclusivelyInfo, nil
	case tally.TypeEvent:
		return model.ClassExclusivelyEvent, nil
	case tally.TypeBoth:
		switch n.PrimaryType() {
		case tally.PrimaryInfo:
			return model.ClassMainlyInfo, nil
		case tally.PrimaryEvent:
			return model.ClassMainlyEvent, nil
		default:
			return model.ClassEqual, nil
		}
	default:
		return "", errors.AssertionFailedf("noun %q has no type (info=%d, event=%d)",
			noun, n.InfoCount(), n.EventCount())
	}
}

// Bucketize sorts every tallied noun into its class. Nouns are visited in
// lexicographic order, so each bucket comes out sorted and the result does
// not depend on map iteration order.
func Bucketize(tallies map[string]*tally.Noun) (model.Buckets, error) {
	var b model.Buckets
	for _, noun := range sortedKeys(tallies) {
		class, err := ClassOf(noun, tallies[noun])
		if err != nil {
			return model.Buckets{}, err
		}
		b.Add(class, noun)
	}
	return b, nil
}

// Counts lists the final tally of every noun with its class, sorted by noun
func Counts(tallies map[string]*tally.Noun) ([]model.NounCount, error) {
	out := make([]model.NounCount, 0, len(tallies))
	for _, noun := range sortedKeys(tallies) {
		n := tallies[noun]
		class, err := ClassOf(noun, n)
		if err != nil {
			return nil, err
		}
		out = append(out, model.NounCount{
			Noun:  noun,
			Info:  n.InfoCount(),
			Event: n.EventCount(),
			Class: class,
		})
	}
	return out, nil
}

func sortedKeys(tallies map[string]*tally.Noun) []string {
	keys := make([]string, 0, len(tallies))
	for k := range tallies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
