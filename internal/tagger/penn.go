package tagger

import (
	"strings"
	"unicode"

	"github.com/ppiankov/nounclass/internal/model"
)

var pennToUD = map[string]model.POS{
	"NN": model.POSNoun, "NNS": model.POSNoun,
	"NNP": model.POSPropn, "NNPS": model.POSPropn,
	"VB": model.POSVerb, "VBD": model.POSVerb, "VBG": model.POSVerb,
	"VBN": model.POSVerb, "VBP": model.POSVerb, "VBZ": model.POSVerb,
	"MD":  model.POSAux,
	"CD":  model.POSNum,
	"IN":  model.POSAdp,
	"RP":  model.POSAdp,
	"WDT": model.POSPron, "WP": model.POSPron, "WP$": model.POSPron,
	"PRP": model.POSPron, "PRP$": model.POSPron, "EX": model.POSPron,
	"DT": model.POSDet, "PDT": model.POSDet,
	"JJ": model.POSAdj, "JJR": model.POSAdj, "JJS": model.POSAdj,
	"RB": model.POSAdv, "RBR": model.POSAdv, "RBS": model.POSAdv, "WRB": model.POSAdv,
	"CC":  model.POSCconj,
	"TO":  model.POSPart,
	"POS": model.POSPart,
	"UH":  model.POSIntj,
	"FW":  model.POSX,
	"LS":  model.POSX,
	"SYM": model.POSSym,
	"$":   model.POSSym,
	"#":   model.POSSym,
	"-LRB-": model.POSPunct, "-RRB-": model.POSPunct,
	"HYPH": model.POSPunct, "NFP": model.POSPunct,
}

var beForms = map[string]bool{
	"be": true, "am": true, "is": true, "are": true, "was": true,
	"were": true, "been": true, "being": true, "'m": true, "'re": true,
}

// Prepositions tagged IN that introduce clauses
var subordinators = map[string]bool{
	"that": true, "because": true, "if": true, "whether": true,
	"although": true, "though": true, "while": true, "whereas": true,
	"unless": true, "since": true, "until": true, "till": true,
	"once": true, "lest": true,
}

// PennToUD maps a Penn Treebank tag to its UD part of speech. The word
// decides between AUX and VERB for forms of "be", and between SCONJ and
// ADP for IN.
func PennToUD(word, penn string) model.POS {
	lower := strings.ToLower(word)

	switch {
	case strings.HasPrefix(penn, "VB") && beForms[lower]:
		return model.POSAux
	case penn == "IN" && subordinators[lower]:
		return model.POSSconj
	}

	if pos, ok := pennToUD[penn]; ok {
		return pos
	}
	if !strings.ContainsFunc(penn, unicode.IsLetter) {
		return model.POSPunct
	}
	return model.POSX
}
