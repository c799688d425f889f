package annotate

import "strings"

const ansiReset = "\x1b[0m"

var ansiStyles = map[string]string{
	TagUnknown: "\x1b[30;41m",
	TagRepeat:  "\x1b[30;43m",
}

// ANSI renders spans for a terminal: tagged words get a colored background
// followed by their tag in brackets.
func ANSI(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		if !s.Tagged() {
			b.WriteString(s.Text)
			continue
		}
		style, ok := ansiStyles[s.Tag]
		if !ok {
			style = "\x1b[7m"
		}
		word := strings.TrimSuffix(s.Text, " ")
		b.WriteString(style + word + " [" + s.Tag + "]" + ansiReset + " ")
	}
	return b.String()
}

// Plain renders spans without escape codes, marking tagged words inline.
func Plain(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		if !s.Tagged() {
			b.WriteString(s.Text)
			continue
		}
		b.WriteString(strings.TrimSuffix(s.Text, " ") + "[" + s.Tag + "] ")
	}
	return b.String()
}
