package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/nounclass/internal/model"
	"github.com/ppiankov/nounclass/internal/tally"
)

// doc builds a document from alternating text/tag pairs
func doc(pairs ...string) model.Document {
	words := make([]string, 0, len(pairs)/2)
	tags := make([]model.POS, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		words = append(words, pairs[i])
		tags = append(tags, model.POS(pairs[i+1]))
	}
	return model.NewDocument("test", words, tags)
}

// pad is enough trailing context to keep a noun inside the window
var pad = []string{"and", "CCONJ", "then", "ADV", "more", "ADJ", ".", "PUNCT"}

func withPad(pairs ...string) model.Document {
	return doc(append(pairs, pad...)...)
}

func TestInBounds(t *testing.T) {
	tests := []struct {
		length, i int
		want      bool
	}{
		{10, 0, false},
		{10, 1, true},
		{10, 6, true},
		{10, 7, false},
		{10, 9, false},
		{5, 1, true},
		{5, 2, false},
		{4, 1, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InBounds(tt.length, tt.i), "InBounds(%d, %d)", tt.length, tt.i)
	}
}

func TestClassify_HyphenatedNumeral(t *testing.T) {
	d := withPad("a", "DET", "three", "NUM", "-", "PUNCT", "minute", "NOUN", "message", "NOUN")

	m, ok := Classify(d, 4)
	require.True(t, ok)
	assert.Equal(t, "message", m.Noun)
	assert.Equal(t, NameHyphenatedNumeral, m.Detector)
	assert.Equal(t, tally.KindEvent, m.Kind)
}

func TestClassify_HyphenatedNumeral_RequiresHyphenText(t *testing.T) {
	d := withPad("a", "DET", "three", "NUM", "--", "PUNCT", "minute", "ADJ", "message", "NOUN")
	_, ok := Classify(d, 4)
	assert.False(t, ok)
}

func TestClassify_PredicateDuration(t *testing.T) {
	t.Run("verb numeral", func(t *testing.T) {
		d := withPad("the", "DET", "message", "NOUN", "lasted", "VERB", "three", "NUM", "minutes", "NOUN")
		m, ok := Classify(d, 1)
		require.True(t, ok)
		assert.Equal(t, NamePredicateDuration, m.Detector)
		assert.Equal(t, tally.KindEvent, m.Kind)
	})

	t.Run("that verb numeral", func(t *testing.T) {
		d := withPad("a", "DET", "message", "NOUN", "that", "PRON", "lasted", "VERB", "three", "NUM", "minutes", "NOUN")
		m, ok := Classify(d, 1)
		require.True(t, ok)
		assert.Equal(t, NamePredicateDuration, m.Detector)
	})

	t.Run("that verb without numeral", func(t *testing.T) {
		d := withPad("a", "DET", "message", "NOUN", "that", "PRON", "lasted", "VERB", "long", "ADV")
		_, ok := Classify(d, 1)
		assert.False(t, ok)
	})
}

func TestClassify_Complementizer(t *testing.T) {
	d := withPad("the", "DET", "message", "NOUN", "that", "SCONJ", "he", "PRON", "was", "AUX", "late", "ADJ")
	m, ok := Classify(d, 1)
	require.True(t, ok)
	assert.Equal(t, NameComplementizer, m.Detector)
	assert.Equal(t, tally.KindInfo, m.Kind)
}

func TestClassify_RelativeThatIsNotInfo(t *testing.T) {
	d := withPad("the", "DET", "message", "NOUN", "that", "PRON", "he", "PRON", "sent", "VERB", "arrived", "VERB")
	_, ok := Classify(d, 1)
	assert.False(t, ok)
}

func TestClassify_ThatMustBeLowercase(t *testing.T) {
	d := withPad("the", "DET", "message", "NOUN", "That", "SCONJ", "he", "PRON", "was", "AUX", "late", "ADJ")
	_, ok := Classify(d, 1)
	assert.False(t, ok)
}

func TestClassify_Priority(t *testing.T) {
	// Satisfies the hyphenated-numeral pattern on the left and the
	// complementizer pattern on the right; the event reading wins.
	d := withPad("a", "DET", "two", "NUM", "-", "PUNCT", "page", "ADJ", "report", "NOUN", "that", "SCONJ", "prices", "NOUN", "rose", "VERB")
	require.True(t, Detectors()[2].Match(d, 4), "window must also satisfy the complementizer")

	m, ok := Classify(d, 4)
	require.True(t, ok)
	assert.Equal(t, NameHyphenatedNumeral, m.Detector)
	assert.Equal(t, tally.KindEvent, m.Kind)
}

func TestClassify_NonNoun(t *testing.T) {
	d := withPad("we", "PRON", "said", "VERB", "that", "SCONJ", "it", "PRON", "rained", "VERB")
	_, ok := Classify(d, 1)
	assert.False(t, ok)
}

func TestClassify_Boundaries(t *testing.T) {
	t.Run("first token", func(t *testing.T) {
		d := withPad("message", "NOUN", "that", "SCONJ", "he", "PRON", "was", "AUX")
		_, ok := Classify(d, 0)
		assert.False(t, ok)
	})

	t.Run("last three tokens", func(t *testing.T) {
		d := doc("a", "DET", "b", "DET", "three", "NUM", "-", "PUNCT", "minute", "ADJ",
			"message", "NOUN", "call", "NOUN", "note", "NOUN")
		for i := d.Len() - 3; i < d.Len(); i++ {
			_, ok := Classify(d, i)
			assert.False(t, ok, "position %d must not be evaluated", i)
		}
	})

	t.Run("near start reads no context", func(t *testing.T) {
		// At i=1 and i=2 the left context falls before the document start.
		d := withPad("three", "NUM", "message", "NOUN", "note", "NOUN", "-", "PUNCT")
		for _, i := range []int{1, 2} {
			assert.NotPanics(t, func() { Classify(d, i) })
			_, ok := Classify(d, i)
			assert.False(t, ok)
		}
	})
}

func TestDetectors_Order(t *testing.T) {
	ds := Detectors()
	require.Len(t, ds, 3)
	assert.Equal(t, NameHyphenatedNumeral, ds[0].Name)
	assert.Equal(t, NamePredicateDuration, ds[1].Name)
	assert.Equal(t, NameComplementizer, ds[2].Name)

	// The returned slice is a copy.
	ds[0] = Detector{}
	assert.Equal(t, NameHyphenatedNumeral, Detectors()[0].Name)
}
