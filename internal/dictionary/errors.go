package dictionary

import (
	"errors"
	"fmt"
)

// ErrIO is wrapped by every error caused by reading or writing the backing file.
var ErrIO = errors.New("dictionary i/o error")

// ErrInvalidEntry is returned when a grapheme or phoneme sequence would not
// survive a round trip through the file format.
var ErrInvalidEntry = errors.New("invalid dictionary entry")

// ParseError reports a malformed line in a dictionary file.
type ParseError struct {
	Path string
	Line int
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: line %d: expected \"grapheme phonemes\", got %q", e.Path, e.Line, e.Text)
}

func ioError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}
