package phonetic

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/snonux/dsreview/internal/annotate"
)

// Predictor proposes an ARPAbet sequence for a single word.
type Predictor interface {
	Predict(ctx context.Context, word string) (string, error)
}

// RulePredictor uses the dictionary when it knows the word and otherwise
// applies longest-match letter-to-sound rules.
type RulePredictor struct {
	dict Dictionary
}

// NewRulePredictor creates a rule-based predictor. dict may be nil.
func NewRulePredictor(dict Dictionary) *RulePredictor {
	return &RulePredictor{dict: dict}
}

// Predict returns the first dictionary pronunciation of word, or a rule-based
// guess when the dictionary has none.
func (p *RulePredictor) Predict(ctx context.Context, word string) (string, error) {
	word = strings.Trim(annotate.Clean(word), "'- ")
	if word == "" {
		return "", fmt.Errorf("nothing to predict")
	}

	if p.dict != nil {
		entries, err := p.dict.Lookup(ctx, word)
		if err != nil {
			return "", err
		}
		if len(entries) > 0 {
			return entries[0].Phonemes, nil
		}
	}

	phones := rulesToPhones(word)
	if len(phones) == 0 {
		return "", fmt.Errorf("no letter-to-sound rule matched %q", word)
	}
	return strings.Join(addStress(phones), " "), nil
}

// letterRules maps grapheme clusters to ARPAbet phones. Longer clusters win.
var letterRules = map[string]string{
	"tion": "SH AH N",
	"sion": "ZH AH N",
	"ough": "AO",
	"ight": "AY T",
	"ture": "CH ER",
	"ould": "UH D",
	"ound": "AW N D",
	"ment": "M AH N T",
	"ness": "N AH S",

	"igh": "AY",
	"ing": "IH NG",
	"tch": "CH",
	"dge": "JH",
	"air": "EH R",
	"ear": "IH R",

	"ph": "F",
	"sh": "SH",
	"ch": "CH",
	"th": "TH",
	"wh": "W",
	"ck": "K",
	"ng": "NG",
	"qu": "K W",
	"kn": "N",
	"wr": "R",
	"gh": "",
	"ee": "IY",
	"ea": "IY",
	"oo": "UW",
	"ou": "AW",
	"ow": "OW",
	"oi": "OY",
	"oy": "OY",
	"ai": "EY",
	"ay": "EY",
	"au": "AO",
	"aw": "AO",
	"er": "ER",
	"ir": "ER",
	"ur": "ER",
	"ar": "AA R",
	"or": "AO R",
	"ll": "L",
	"ss": "S",
	"tt": "T",
	"pp": "P",
	"ff": "F",
	"mm": "M",
	"nn": "N",
	"rr": "R",
	"dd": "D",
	"bb": "B",
	"gg": "G",
	"zz": "Z",
	"cc": "K",

	"a": "AE",
	"b": "B",
	"c": "K",
	"d": "D",
	"e": "EH",
	"f": "F",
	"g": "G",
	"h": "HH",
	"i": "IH",
	"j": "JH",
	"k": "K",
	"l": "L",
	"m": "M",
	"n": "N",
	"o": "AA",
	"p": "P",
	"q": "K",
	"r": "R",
	"s": "S",
	"t": "T",
	"u": "AH",
	"v": "V",
	"w": "W",
	"x": "K S",
	"y": "Y",
	"z": "Z",
}

func rulesToPhones(word string) []string {
	// Silent final e: "make" -> "mak".
	if n := len(word); n > 2 && word[n-1] == 'e' && !strings.ContainsRune("aeiouy", rune(word[n-2])) {
		word = word[:n-1]
	}

	var phones []string
	for i := 0; i < len(word); {
		if word[i] == '\'' || word[i] == '-' || word[i] == ' ' {
			i++
			continue
		}
		// A trailing y after a consonant is a vowel: "happy" -> IY.
		if word[i] == 'y' && i == len(word)-1 && i > 0 {
			phones = append(phones, "IY")
			i++
			continue
		}

		matched := false
		for length := 4; length >= 1; length-- {
			if i+length > len(word) {
				continue
			}
			if ph, ok := letterRules[word[i:i+length]]; ok {
				phones = append(phones, strings.Fields(ph)...)
				i += length
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}
	return phones
}

// addStress gives the first vowel primary stress and the others none.
func addStress(phones []string) []string {
	out := make([]string, len(phones))
	primary := false
	for i, ph := range phones {
		if !vowels[ph] {
			out[i] = ph
			continue
		}
		if !primary {
			out[i] = ph + "1"
			primary = true
		} else {
			out[i] = ph + "0"
		}
	}
	return out
}
