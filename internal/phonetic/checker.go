package phonetic

import (
	"context"
	"strings"

	"codeberg.org/snonux/dsreview/internal/annotate"
	"codeberg.org/snonux/dsreview/internal/dictionary"
)

const (
	// MethodDictionary lists words found in the pronunciation dictionary.
	MethodDictionary = "CMU"
	// MethodPredicted lists words that fall back to the predictive model.
	MethodPredicted = "RNN"
)

// Lookup maps a resolution method to the cleaned words it handled.
type Lookup map[string][]string

// Unknown returns the words that were not found in the dictionary.
func (l Lookup) Unknown() []string {
	return l[MethodPredicted]
}

// Known returns the words that were found in the dictionary.
func (l Lookup) Known() []string {
	return l[MethodDictionary]
}

// Checker classifies the words of a text by resolution method.
type Checker interface {
	CheckLookup(ctx context.Context, text string) (Lookup, error)
}

// Dictionary is the part of the dictionary store the checker and the
// predictors need.
type Dictionary interface {
	Contains(ctx context.Context, grapheme string) (bool, error)
	Lookup(ctx context.Context, grapheme string) ([]dictionary.Entry, error)
}

// DictChecker resolves words against a pronunciation dictionary. Anything
// the dictionary lacks is reported under MethodPredicted.
type DictChecker struct {
	dict Dictionary
}

// NewDictChecker creates a checker backed by dict
func NewDictChecker(dict Dictionary) *DictChecker {
	return &DictChecker{dict: dict}
}

// CheckLookup splits text on spaces, cleans each word the same way the
// annotator does and looks it up. Words without letters are skipped. Each
// word is listed once, in order of first appearance.
func (c *DictChecker) CheckLookup(ctx context.Context, text string) (Lookup, error) {
	result := Lookup{}
	seen := make(map[string]bool)

	for _, word := range strings.Split(text, " ") {
		cleaned := annotate.Clean(word)
		if seen[cleaned] || !hasLetter(cleaned) {
			continue
		}
		seen[cleaned] = true

		known, err := c.known(ctx, cleaned)
		if err != nil {
			return nil, err
		}
		if known {
			result[MethodDictionary] = append(result[MethodDictionary], cleaned)
		} else {
			result[MethodPredicted] = append(result[MethodPredicted], cleaned)
		}
	}
	return result, nil
}

// known tries the cleaned word, then the word without surrounding quotes or
// dashes, then every part of a hyphenated compound.
func (c *DictChecker) known(ctx context.Context, word string) (bool, error) {
	ok, err := c.dict.Contains(ctx, word)
	if err != nil || ok {
		return ok, err
	}

	trimmed := strings.Trim(word, "'-")
	if trimmed != word && trimmed != "" {
		ok, err = c.dict.Contains(ctx, trimmed)
		if err != nil || ok {
			return ok, err
		}
	}

	if !strings.Contains(trimmed, "-") {
		return false, nil
	}
	for _, part := range strings.Split(trimmed, "-") {
		if part == "" {
			continue
		}
		ok, err := c.dict.Contains(ctx, part)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
