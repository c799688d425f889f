package batch

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// WordEntry is one word to add to the pronunciation dictionary.
type WordEntry struct {
	Grapheme string
	ARPAbet  string
	// NeedsPrediction is set when the file gave no pronunciation.
	NeedsPrediction bool
	// Line is the 1-based line the entry came from.
	Line int
}

// ReadWordFile reads words from a file and returns WordEntry slice
// Supports formats:
// - Grapheme only: "uberduck" (pronunciation will be predicted)
// - With pronunciation: "uberduck = UW1 B ER0 D AH2 K"
// - Dictionary style: "uberduck UW1 B ER0 D AH2 K"
// Blank lines and lines starting with '#' are skipped.
func ReadWordFile(filename string) ([]WordEntry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read word file: %w", err)
	}
	defer f.Close()

	var entries []WordEntry
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var grapheme, arpabet string
		if before, after, ok := strings.Cut(text, "="); ok {
			grapheme, arpabet = strings.TrimSpace(before), strings.TrimSpace(after)
		} else if before, after, ok := strings.Cut(text, " "); ok {
			grapheme, arpabet = before, strings.TrimSpace(after)
		} else {
			grapheme = text
		}

		if grapheme == "" {
			return nil, fmt.Errorf("%s: line %d: missing word in %q", filename, line, text)
		}
		if strings.ContainsAny(grapheme, " \t") {
			return nil, fmt.Errorf("%s: line %d: word %q contains whitespace", filename, line, grapheme)
		}

		entries = append(entries, WordEntry{
			Grapheme:        strings.ToLower(grapheme),
			ARPAbet:         strings.Join(strings.Fields(arpabet), " "),
			NeedsPrediction: arpabet == "",
			Line:            line,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word file: %w", err)
	}
	return entries, nil
}
