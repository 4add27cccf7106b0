package parsers

import (
	"errors"
	"fmt"
)

var (
	ErrHeaderNotFound      = errors.New("could not find a valid transaction header row")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// FormatError aborts processing of a single file. Hint tells the user what
// the file should look like.
type FormatError struct {
	FileName string
	Reason   string
	Hint     string
	Err      error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("error processing file %s: %s", e.FileName, e.Reason)
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }
