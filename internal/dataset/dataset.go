package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultDelimiter separates the columns of LJSpeech-style filelists.
const DefaultDelimiter = '|'

// Row is one utterance of the filelist. Index is the zero-based position in
// the file and stays fixed when rows are sorted.
type Row struct {
	Index         int
	AudioPath     string
	Transcription string
	// Extra holds columns after the transcription.
	Extra []string
}

// Table is a loaded filelist.
type Table struct {
	Path      string
	Delimiter rune
	Rows      []Row
}

// ParseDelimiter turns a configured delimiter string into a rune. An empty
// string selects DefaultDelimiter; "\t" and "tab" select a tab.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return DefaultDelimiter, nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// Load reads the filelist at path. A zero delimiter selects DefaultDelimiter.
// Fields are split verbatim: quote characters inside transcriptions carry no
// meaning and survive a Save unchanged. Blank lines are skipped.
func Load(path string, delimiter rune) (*Table, error) {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	defer f.Close()

	table := &Table{Path: path, Delimiter: delimiter}
	sep := string(delimiter)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		record := strings.Split(text, sep)
		if len(record) < 2 {
			return nil, &FormatError{Path: path, Line: line, Columns: len(record)}
		}

		row := Row{
			Index:         len(table.Rows),
			AudioPath:     record[0],
			Transcription: record[1],
		}
		if len(record) > 2 {
			row.Extra = record[2:]
		}
		table.Rows = append(table.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, ioError("read", path, err)
	}
	return table, nil
}

// Row returns the row with the given original index.
func (t *Table) Row(index int) (Row, bool) {
	for _, row := range t.Rows {
		if row.Index == index {
			return row, true
		}
	}
	return Row{}, false
}

// SetTranscription replaces the transcription of the row with the given
// original index. It does not touch the file; call Save for that.
func (t *Table) SetTranscription(index int, text string) error {
	for i := range t.Rows {
		if t.Rows[i].Index == index {
			t.Rows[i].Transcription = text
			return nil
		}
	}
	return fmt.Errorf("row %d: out of range (filelist has %d rows)", index, len(t.Rows))
}

// Save rewrites the whole filelist in original row order with the table's
// delimiter. The file is replaced atomically.
func (t *Table) Save() error {
	rows := make([]Row, len(t.Rows))
	copy(rows, t.Rows)
	SortRows(rows, OrderIndex, nil)

	sep := string(t.Delimiter)
	if t.Delimiter == 0 {
		sep = string(DefaultDelimiter)
	}

	var buf bytes.Buffer
	for _, row := range rows {
		fields := append([]string{row.AudioPath, row.Transcription}, row.Extra...)
		for _, field := range fields {
			if strings.Contains(field, sep) || strings.ContainsAny(field, "\r\n") {
				return fmt.Errorf("row %d: field %q contains the delimiter or a line break", row.Index, field)
			}
		}
		buf.WriteString(strings.Join(fields, sep))
		buf.WriteByte('\n')
	}

	return writeFileAtomic(t.Path, buf.Bytes())
}

func writeFileAtomic(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return ioError("create temp for", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return ioError("write", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return ioError("close", tmpName, err)
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return ioError("chmod", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return ioError("rename", path, err)
	}
	return nil
}

// Window returns rows[start:end] clamped to the slice bounds. An empty or
// inverted range yields an empty slice.
func Window(rows []Row, start, end int) []Row {
	start = max(start, 0)
	end = min(end, len(rows))
	if start >= end {
		return []Row{}
	}
	return rows[start:end]
}

// AudioFile resolves the audio path of row against the dataset root.
// Absolute audio paths are returned unchanged.
func AudioFile(root string, row Row) string {
	if filepath.IsAbs(row.AudioPath) {
		return row.AudioPath
	}
	return filepath.Join(root, row.AudioPath)
}
