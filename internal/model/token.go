package model

// POS is a Universal Dependencies part-of-speech tag
type POS string

const (
	POSNoun  POS = "NOUN"
	POSVerb  POS = "VERB"
	POSNum   POS = "NUM"
	POSSconj POS = "SCONJ"
	POSPropn POS = "PROPN"
	POSPron  POS = "PRON"
	POSAdj   POS = "ADJ"
	POSAdv   POS = "ADV"
	POSAdp   POS = "ADP"
	POSAux   POS = "AUX"
	POSCconj POS = "CCONJ"
	POSDet   POS = "DET"
	POSIntj  POS = "INTJ"
	POSPart  POS = "PART"
	POSPunct POS = "PUNCT"
	POSSym   POS = "SYM"
	POSX     POS = "X"
)

var knownPOS = map[POS]bool{
	POSNoun: true, POSVerb: true, POSNum: true, POSSconj: true, POSPropn: true,
	POSPron: true, POSAdj: true, POSAdv: true, POSAdp: true, POSAux: true,
	POSCconj: true, POSDet: true, POSIntj: true, POSPart: true, POSPunct: true,
	POSSym: true, POSX: true,
}

// ParsePOS maps a UPOS string to a POS, falling back to X for unknown tags
func ParsePOS(s string) POS {
	if p := POS(s); knownPOS[p] {
		return p
	}
	return POSX
}

// Token is a single tagged token of a document
type Token struct {
	Text  string `json:"text"`
	Tag   POS    `json:"tag"`
	Index int    `json:"index"` // Position in the document's token sequence
}

// Document is the ordered token sequence produced by tagging one raw text
type Document struct {
	Source string  `json:"source"` // Name of the corpus source the text came from
	Tokens []Token `json:"tokens"`
}

// NewDocument builds a document from parallel word and tag slices, assigning positions
func NewDocument(source string, words []string, tags []POS) Document {
	tokens := make([]Token, len(words))
	for i, w := range words {
		tag := POSX
		if i < len(tags) {
			tag = tags[i]
		}
		tokens[i] = Token{Text: w, Tag: tag, Index: i}
	}
	return Document{Source: source, Tokens: tokens}
}

// Len returns the number of tokens
func (d Document) Len() int {
	return len(d.Tokens)
}

// At returns the token at position i. Positions outside the document
// yield the zero Token, which carries no text and no tag.
func (d Document) At(i int) Token {
	if i < 0 || i >= len(d.Tokens) {
		return Token{Index: i}
	}
	return d.Tokens[i]
}
