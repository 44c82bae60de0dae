package tagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/jdkato/prose/tokenize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/nounclass/internal/model"
)

func TestNew(t *testing.T) {
	cfg := model.DefaultConfig().Tagger

	tg, err := New(cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TaggerProse, tg.Name())

	cfg.Backend = model.TaggerUDPipe
	tg, err = New(cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TaggerUDPipe, tg.Name())

	cfg.Backend = "spacy"
	_, err = New(cfg, nil, nil)
	assert.Error(t, err)
}

func TestCheckLength(t *testing.T) {
	assert.NoError(t, checkLength("s", "abc", 3))
	assert.NoError(t, checkLength("s", strings.Repeat("x", 100), 0))

	// Characters, not bytes
	assert.NoError(t, checkLength("s", "ééé", 3))

	err := checkLength("austen", "abcd", 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTextTooLong))
	assert.Contains(t, err.Error(), "austen")
}

func TestPennToUD(t *testing.T) {
	tests := []struct {
		word, penn string
		want       model.POS
	}{
		{"message", "NN", model.POSNoun},
		{"messages", "NNS", model.POSNoun},
		{"Elizabeth", "NNP", model.POSPropn},
		{"lasted", "VBD", model.POSVerb},
		{"was", "VBD", model.POSAux},
		{"Is", "VBZ", model.POSAux},
		{"will", "MD", model.POSAux},
		{"three", "CD", model.POSNum},
		{"that", "IN", model.POSSconj},
		{"because", "IN", model.POSSconj},
		{"of", "IN", model.POSAdp},
		{"that", "WDT", model.POSPron},
		{"that", "DT", model.POSDet},
		{"he", "PRP", model.POSPron},
		{"late", "JJ", model.POSAdj},
		{"very", "RB", model.POSAdv},
		{"and", "CC", model.POSCconj},
		{"to", "TO", model.POSPart},
		{"'s", "POS", model.POSPart},
		{"oh", "UH", model.POSIntj},
		{"$", "$", model.POSSym},
		{"-", ":", model.POSPunct},
		{".", ".", model.POSPunct},
		{",", ",", model.POSPunct},
		{"``", "``", model.POSPunct},
		{"(", "-LRB-", model.POSPunct},
		{"-", "HYPH", model.POSPunct},
		{"etc", "FW", model.POSX},
		{"?", "UNKNOWN", model.POSX},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PennToUD(tt.word, tt.penn), "%s/%s", tt.word, tt.penn)
	}
}

func TestSplitHyphens(t *testing.T) {
	tests := map[string][]string{
		"message":           {"message"},
		"three-minute":      {"three", "-", "minute"},
		"3-minute":          {"3", "-", "minute"},
		"three-minute-long": {"three", "-", "minute", "-", "long"},
		"1990-91":           {"1990-91"},
		"-":                 {"-"},
		"--":                {"--"},
		"-ish":              {"-ish"},
		"well-":             {"well-"},
	}
	for in, want := range tests {
		assert.Equal(t, want, SplitHyphens(in), in)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize(tokenize.NewTreebankWordTokenizer(), "He sent a three-minute message.")
	assert.Equal(t, []string{"He", "sent", "a", "three", "-", "minute", "message", "."}, got)
}

func TestProseTagger_Tag(t *testing.T) {
	tg := NewProseTagger(0)

	doc, err := tg.Tag(context.Background(), "austen", "He sent a three-minute message.")
	require.NoError(t, err)

	assert.Equal(t, "austen", doc.Source)
	require.Equal(t, 8, doc.Len())
	words := make([]string, doc.Len())
	for i, tok := range doc.Tokens {
		words[i] = tok.Text
		assert.Equal(t, i, tok.Index)
		assert.Equal(t, tok.Tag, model.ParsePOS(string(tok.Tag)), "tag %q is not UD", tok.Tag)
	}
	assert.Equal(t, []string{"He", "sent", "a", "three", "-", "minute", "message", "."}, words)
	assert.Equal(t, model.POSNum, doc.Tokens[3].Tag)
	assert.Equal(t, model.POSPunct, doc.Tokens[7].Tag)
}

func TestProseTagger_TooLong(t *testing.T) {
	tg := NewProseTagger(10)
	_, err := tg.Tag(context.Background(), "bible", strings.Repeat("word ", 10))
	assert.True(t, errors.Is(err, ErrTextTooLong))
}

func TestProseTagger_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProseTagger(0).Tag(ctx, "s", "A sentence.")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseCoNLLU(t *testing.T) {
	conllu := "# newdoc\n# sent_id = 1\n# text = The message that he wasn't late.\n" +
		"1\tThe\tthe\tDET\tDT\t_\t2\tdet\t_\t_\n" +
		"2\tmessage\tmessage\tNOUN\tNN\t_\t0\troot\t_\t_\n" +
		"3\tthat\tthat\tSCONJ\tIN\t_\t6\tmark\t_\t_\n" +
		"4\the\the\tPRON\tPRP\t_\t6\tnsubj\t_\t_\n" +
		"5-6\twasn't\t_\t_\t_\t_\t_\t_\t_\t_\n" +
		"5\twas\tbe\tAUX\tVBD\t_\t7\tcop\t_\t_\n" +
		"6\tn't\tnot\tPART\tRB\t_\t7\tadvmod\t_\t_\n" +
		"6.1\tgone\tgo\tVERB\tVBN\t_\t_\t_\t_\t_\n" +
		"7\tlate\tlate\tADJ\tJJ\t_\t2\tacl\t_\tSpaceAfter=No\n" +
		"8\t.\t.\tPUNCT\t.\t_\t2\tpunct\t_\t_\n\n"

	words, tags, err := ParseCoNLLU(strings.NewReader(conllu))
	require.NoError(t, err)
	assert.Equal(t, []string{"The", "message", "that", "he", "was", "n't", "late", "."}, words)
	assert.Equal(t, []model.POS{
		model.POSDet, model.POSNoun, model.POSSconj, model.POSPron,
		model.POSAux, model.POSPart, model.POSAdj, model.POSPunct,
	}, tags)
}

func TestParseCoNLLU_BadLine(t *testing.T) {
	_, _, err := ParseCoNLLU(strings.NewReader("1\tonly\tthree\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestChunk(t *testing.T) {
	assert.Nil(t, Chunk("  \n ", 10))
	assert.Equal(t, []string{"short"}, Chunk("short", 10))
	assert.Equal(t, []string{"whole text"}, Chunk("whole text", 0))

	text := "first para.\n\nsecond para.\n\nthird"
	chunks := Chunk(text, 16)
	assert.Equal(t, []string{"first para.\n\n", "second para.\n\n", "third"}, chunks)
	assert.Equal(t, text, strings.Join(chunks, ""))

	// Falls back to spaces, then to rune boundaries
	assert.Equal(t, []string{"aaa ", "bbb ", "ccc"}, Chunk("aaa bbb ccc", 5))
	runes := Chunk("ééééé", 3)
	assert.Equal(t, "ééééé", strings.Join(runes, ""))
	for _, c := range runes {
		assert.LessOrEqual(t, len(c), 3)
		assert.True(t, strings.ToValidUTF8(c, "?") == c, "chunk %q splits a rune", c)
	}
}

func TestUDPipeTagger_Tag(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "english", r.PostForm.Get("model"))
		_, hasTokenizer := r.PostForm["tokenizer"]
		assert.True(t, hasTokenizer)

		var b strings.Builder
		for i, word := range strings.Fields(r.PostForm.Get("data")) {
			b.WriteString(strings.Join([]string{
				itoa(i + 1), word, word, "NOUN", "NN", "_", "0", "root", "_", "_",
			}, "\t"))
			b.WriteString("\n")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"english-ewt","result":` + quote(b.String()) + `}`))
	}))
	defer server.Close()

	cfg := model.DefaultConfig().Tagger
	cfg.Backend = model.TaggerUDPipe
	cfg.UDPipeURL = server.URL
	cfg.UDPipeChunk = 12

	tg := NewUDPipeTagger(cfg, server.Client(), nil)
	doc, err := tg.Tag(context.Background(), "reviews", "one two\n\nthree four")
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	require.Equal(t, 4, doc.Len())
	assert.Equal(t, "four", doc.Tokens[3].Text)
	assert.Equal(t, 3, doc.Tokens[3].Index)
	assert.Equal(t, model.POSNoun, doc.Tokens[3].Tag)
}

func TestUDPipeTagger_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unknown model 'klingon'", http.StatusBadRequest)
	}))
	defer server.Close()

	cfg := model.DefaultConfig().Tagger
	cfg.UDPipeURL = server.URL
	cfg.UDPipeModel = "klingon"

	_, err := NewUDPipeTagger(cfg, server.Client(), nil).Tag(context.Background(), "s", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
	assert.Contains(t, err.Error(), "Unknown model")
}
