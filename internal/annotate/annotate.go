// Package annotate splits a transcription into highlighted spans: words the
// phoneme checker could not resolve deterministically, and words that repeat
// the previous word.
package annotate

import (
	"strings"
)

const (
	// TagUnknown marks a word resolved only by the predictive fallback.
	TagUnknown = "CMU"
	// TagRepeat marks a word equal to the word before it.
	TagRepeat = "x2"

	// ColorUnknown is the highlight of TagUnknown spans.
	ColorUnknown = "#faa"
	// ColorRepeat is the highlight of TagRepeat spans.
	ColorRepeat = "#fea"
)

// Span is a unit of rendered text. An empty Tag means plain text.
type Span struct {
	Text  string
	Tag   string
	Color string
}

// Tagged reports whether the span carries a highlight.
func (s Span) Tagged() bool {
	return s.Tag != ""
}

// AddedWords is the set of graphemes already corrected this session.
type AddedWords interface {
	Has(grapheme string) bool
}

// Clean keeps ASCII letters, hyphens, apostrophes and spaces, and lowercases
// the result.
func Clean(word string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r == '-', r == '\'', r == ' ':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return -1
		}
	}, word)
}

// Annotate tags every space-separated word of transcription. unknown lists
// the cleaned words the checker sent to its fallback model; added may be nil.
// Each span's text is the original word plus one trailing space. The word
// before the first one counts as "", so words that clean to nothing (numbers,
// punctuation) repeat it.
func Annotate(transcription string, unknown []string, added AddedWords) []Span {
	if transcription == "" {
		return []Span{}
	}

	unknownSet := make(map[string]struct{}, len(unknown))
	for _, w := range unknown {
		unknownSet[w] = struct{}{}
	}

	words := strings.Split(transcription, " ")
	spans := make([]Span, 0, len(words))
	prior := ""
	for _, word := range words {
		cleaned := Clean(word)
		span := Span{Text: word + " "}

		_, isUnknown := unknownSet[cleaned]
		switch {
		case isUnknown && (added == nil || !added.Has(cleaned)):
			span.Tag, span.Color = TagUnknown, ColorUnknown
		case cleaned == prior:
			span.Tag, span.Color = TagRepeat, ColorRepeat
		}

		spans = append(spans, span)
		prior = cleaned
	}
	return spans
}

// Text concatenates the display text of spans.
func Text(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Count returns how many spans carry tag.
func Count(spans []Span, tag string) int {
	n := 0
	for _, s := range spans {
		if s.Tag == tag {
			n++
		}
	}
	return n
}
