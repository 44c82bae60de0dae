package corpus

import (
	"regexp"
	"strings"

	"github.com/ppiankov/nounclass/internal/model"
)

var verseNumber = regexp.MustCompile(`\d{3}:\d{3}`)

// StripVerseNumbers replaces chapter:verse markers such as "001:002" with a
// single space
func StripVerseNumbers(text string) string {
	return verseNumber.ReplaceAllString(text, " ")
}

const (
	gutenbergStart = "*** START OF"
	gutenbergEnd   = "*** END OF"
)

// StripGutenbergBoilerplate keeps only the text between the Project
// Gutenberg START and END marker lines. Text without markers is returned
// unchanged.
func StripGutenbergBoilerplate(text string) string {
	if i := strings.Index(text, gutenbergStart); i >= 0 {
		rest := text[i:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			text = rest[nl+1:]
		} else {
			text = ""
		}
	}
	if i := strings.Index(text, gutenbergEnd); i >= 0 {
		text = text[:i]
	}
	return text
}

// Prepare decodes a fetched body and applies the cleanups configured for src
func Prepare(src model.Source, body []byte, contentType string) (string, error) {
	text, err := Decode(body, src.Encoding)
	if err != nil {
		return "", err
	}

	if IsHTML(contentType, text) {
		text, err = ExtractText(text)
		if err != nil {
			return "", err
		}
	}

	if src.StripBoilerplate {
		text = StripGutenbergBoilerplate(text)
	}
	if src.StripVerseNumbers {
		text = StripVerseNumbers(text)
	}
	return text, nil
}
