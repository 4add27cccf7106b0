package services

import (
	"errors"
	"fmt"

	"github.com/username/gstfolio/src/parsers"
)

var (
	ErrParsingFailed       = errors.New("failed to parse uploaded files")
	ErrNoFiles             = errors.New("no files to process")
	ErrNoTransactions      = errors.New("no transactions in the current session")
	ErrUnknownBank         = parsers.ErrUnknownBank
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found in account table")
	ErrInvalidAccountTable = errors.New("invalid account table")
	ErrClientNotFound      = errors.New("client not found")
	ErrStateSaveFailed     = errors.New("failed to save settings")
)

// StateError reports a failed write to the settings store. The in-memory
// change that preceded it has already been reverted when it is returned.
type StateError struct {
	Op  string
	Err error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrStateSaveFailed, e.Err)
}

func (e *StateError) Unwrap() []error { return []error{ErrStateSaveFailed, e.Err} }
