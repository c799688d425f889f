package dataset

import (
	"errors"
	"fmt"
)

// ErrIO wraps every filesystem failure while reading or writing a filelist.
var ErrIO = errors.New("filelist I/O error")

// FormatError reports a filelist row that does not have both an audio path
// and a transcription.
type FormatError struct {
	Path    string
	Line    int
	Columns int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: line %d: expected at least 2 columns, got %d", e.Path, e.Line, e.Columns)
}

func ioError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}
