package tagger

import (
	"bufio"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ppiankov/nounclass/internal/model"
)

const conlluColumns = 10

// ParseCoNLLU reads the FORM and UPOS columns of a CoNLL-U stream.
// Comment lines, sentence breaks, multiword token ranges ("1-2") and empty
// nodes ("1.1") are skipped, so the result is the sequence of syntactic
// words.
func ParseCoNLLU(r io.Reader) ([]string, []model.POS, error) {
	var words []string
	var tags []model.POS

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) != conlluColumns {
			return nil, nil, errors.Newf("conllu line %d: expected %d columns, got %d", lineNo, conlluColumns, len(cols))
		}
		if strings.ContainsAny(cols[0], "-.") {
			continue
		}

		words = append(words, cols[1])
		tags = append(tags, model.ParsePOS(cols[3]))
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "read conllu")
	}

	return words, tags, nil
}
