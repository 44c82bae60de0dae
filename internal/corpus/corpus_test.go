package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/nounclass/internal/model"
)

func TestCanonicalEncoding(t *testing.T) {
	tests := map[string]string{
		"":             EncodingUTF8,
		"UTF8":         EncodingUTF8,
		"ascii":        EncodingASCII,
		"US-ASCII":     EncodingASCII,
		"latin-1":      EncodingLatin1,
		"ISO-8859-1":   EncodingLatin1,
		"cp1252":       EncodingWindows1252,
		"windows-1252": EncodingWindows1252,
	}
	for in, want := range tests {
		got, err := CanonicalEncoding(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := CanonicalEncoding("ebcdic")
	assert.Error(t, err)
}

func TestDecode_ASCIIDropsNonASCII(t *testing.T) {
	body := []byte("Pride \xe2\x80\x94 and Prejudice, caf\xc3\xa9\n")
	got, err := Decode(body, "ascii")
	require.NoError(t, err)
	assert.Equal(t, "Pride  and Prejudice, caf\n", got)
}

func TestDecode_UTF8(t *testing.T) {
	got, err := Decode([]byte("caf\xc3\xa9 \xe2\x80\x94 r\xc3\xa9sum\xc3\xa9"), "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "café — résumé", got)
}

func TestDecode_UTF8NormalisesToNFC(t *testing.T) {
	// "e" followed by a combining acute accent
	got, err := Decode([]byte("cafe\xcc\x81"), "")
	require.NoError(t, err)
	assert.Equal(t, "café", got)
}

func TestDecode_InvalidUTF8(t *testing.T) {
	_, err := Decode([]byte("caf\xe9"), "utf-8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid UTF-8")
}

func TestDecode_SingleByteCharsets(t *testing.T) {
	got, err := Decode([]byte("caf\xe9"), "iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "café", got)

	got, err = Decode([]byte("\x93quoted\x94"), "windows-1252")
	require.NoError(t, err)
	assert.Equal(t, "“quoted”", got)
}

func TestDecode_UnknownEncoding(t *testing.T) {
	_, err := Decode([]byte("x"), "klingon")
	assert.Error(t, err)
}

func TestStripVerseNumbers(t *testing.T) {
	in := "001:001 In the beginning God created the heaven and the earth.\n001:002 And the earth was"
	want := "  In the beginning God created the heaven and the earth.\n  And the earth was"
	assert.Equal(t, want, StripVerseNumbers(in))

	// Shorter numbers are left alone
	assert.Equal(t, "at 10:30 today", StripVerseNumbers("at 10:30 today"))
}

func TestStripGutenbergBoilerplate(t *testing.T) {
	in := "The Project Gutenberg eBook\nheader\n*** START OF THE PROJECT GUTENBERG EBOOK PERSUASION ***\nChapter 1\nSir Walter Elliot\n*** END OF THE PROJECT GUTENBERG EBOOK PERSUASION ***\nlicense"
	assert.Equal(t, "Chapter 1\nSir Walter Elliot\n", StripGutenbergBoilerplate(in))

	plain := "no markers here"
	assert.Equal(t, plain, StripGutenbergBoilerplate(plain))
}

func TestIsHTML(t *testing.T) {
	assert.True(t, IsHTML("text/html; charset=utf-8", ""))
	assert.True(t, IsHTML("", "  <!DOCTYPE html><html></html>"))
	assert.False(t, IsHTML("text/plain; charset=utf-8", "<html>"))
	assert.False(t, IsHTML("", "Chapter 1"))
}

func TestExtractText(t *testing.T) {
	page := `<html><head><title>t</title><style>p{}</style></head>
<body><h1>The  Message</h1><script>var x = 1;</script>
<p>The message that he was late.</p><p>A three-minute
message.</p></body></html>`

	got, err := ExtractText(page)
	require.NoError(t, err)
	assert.Equal(t, "The Message\nThe message that he was late.\nA three-minute message.", got)
}

func TestPrepare(t *testing.T) {
	src := model.Source{Name: "bible", Encoding: "utf-8", StripVerseNumbers: true}
	got, err := Prepare(src, []byte("001:001 In the beginning"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "  In the beginning", got)

	html := model.Source{Name: "page", Encoding: "utf-8"}
	got, err = Prepare(html, []byte("<html><body><p>A report.</p></body></html>"), "text/html")
	require.NoError(t, err)
	assert.Equal(t, "A report.", got)

	_, err = Prepare(model.Source{Encoding: "utf-8"}, []byte{0xff}, "")
	assert.Error(t, err)
}
