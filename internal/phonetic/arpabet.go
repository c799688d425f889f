package phonetic

import (
	"fmt"
	"strings"
)

// arpabetSymbols is the CMU dictionary phone set, without stress markers.
var arpabetSymbols = map[string]bool{
	"AA": true, "AE": true, "AH": true, "AO": true, "AW": true, "AY": true,
	"B": true, "CH": true, "D": true, "DH": true, "EH": true, "ER": true,
	"EY": true, "F": true, "G": true, "HH": true, "IH": true, "IY": true,
	"JH": true, "K": true, "L": true, "M": true, "N": true, "NG": true,
	"OW": true, "OY": true, "P": true, "R": true, "S": true, "SH": true,
	"T": true, "TH": true, "UH": true, "UW": true, "V": true, "W": true,
	"Y": true, "Z": true, "ZH": true,
}

var vowels = map[string]bool{
	"AA": true, "AE": true, "AH": true, "AO": true, "AW": true, "AY": true,
	"EH": true, "ER": true, "EY": true, "IH": true, "IY": true, "OW": true,
	"OY": true, "UH": true, "UW": true,
}

// stripStress removes the trailing stress marker (0, 1, 2) from a phone.
func stripStress(phone string) string {
	if n := len(phone); n > 0 {
		if last := phone[n-1]; last == '0' || last == '1' || last == '2' {
			return phone[:n-1]
		}
	}
	return phone
}

// ValidateARPAbet checks that every space-separated token is a known phone,
// optionally followed by a stress digit. Stress digits are only accepted on
// vowels.
func ValidateARPAbet(s string) error {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return fmt.Errorf("empty ARPAbet sequence")
	}
	for _, tok := range tokens {
		base := stripStress(tok)
		if !arpabetSymbols[base] {
			return fmt.Errorf("unknown ARPAbet symbol %q", tok)
		}
		if base != tok && !vowels[base] {
			return fmt.Errorf("stress marker on consonant %q", tok)
		}
	}
	return nil
}

// Speech wraps an ARPAbet sequence in braces, the inline phoneme notation
// accepted by the TTS service.
func Speech(arpabet string) string {
	return fmt.Sprintf("{ %s }", strings.TrimSpace(arpabet))
}
