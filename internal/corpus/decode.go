// Package corpus turns fetched bytes into the plain text handed to the
// tagger: charset decoding, HTML text extraction and source cleanup.
package corpus

import (
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Supported source encodings
const (
	EncodingASCII       = "ascii"
	EncodingUTF8        = "utf-8"
	EncodingLatin1      = "iso-8859-1"
	EncodingWindows1252 = "windows-1252"
)

// CanonicalEncoding maps an encoding name and its aliases to one of the
// supported constants. An empty name means UTF-8.
func CanonicalEncoding(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "ascii", "us-ascii":
		return EncodingASCII, nil
	case "iso-8859-1", "latin-1", "latin1":
		return EncodingLatin1, nil
	case "windows-1252", "cp1252":
		return EncodingWindows1252, nil
	default:
		return "", errors.Newf("unsupported encoding %q", name)
	}
}

var dropNonASCII = runes.Remove(runes.Predicate(func(r rune) bool {
	return r > 0x7f
}))

// Decode converts body to a string. ASCII decoding silently drops every
// byte outside the ASCII range. UTF-8 input must be valid and is
// normalised to NFC.
func Decode(body []byte, encoding string) (string, error) {
	enc, err := CanonicalEncoding(encoding)
	if err != nil {
		return "", err
	}

	switch enc {
	case EncodingASCII:
		return decodeASCII(body), nil
	case EncodingLatin1:
		return decodeCharmap(body, charmap.ISO8859_1)
	case EncodingWindows1252:
		return decodeCharmap(body, charmap.Windows1252)
	default:
		if !utf8.Valid(body) {
			return "", errors.WithHint(
				errors.Newf("body is not valid UTF-8 (%d bytes)", len(body)),
				"set the source encoding to ascii, iso-8859-1 or windows-1252")
		}
		return norm.NFC.String(string(body)), nil
	}
}

func decodeASCII(body []byte) string {
	// Each byte above 0x7f becomes one Latin-1 rune and is then removed.
	latin, _ := charmap.ISO8859_1.NewDecoder().Bytes(body)
	out, _, _ := transform.Bytes(dropNonASCII, latin)
	return string(out)
}

func decodeCharmap(body []byte, cm *charmap.Charmap) (string, error) {
	out, _, err := transform.Bytes(cm.NewDecoder(), body)
	if err != nil {
		return "", errors.Wrapf(err, "decode %s", cm.String())
	}
	return string(out), nil
}
