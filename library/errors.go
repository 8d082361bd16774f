package library

import (
	"errors"
	"fmt"

	"libraryman/store"
)

// ErrNotFound aliases the store sentinel so callers can match either.
var ErrNotFound = store.ErrNotFound

// ErrConflict reports a duplicate: a catalog id that already exists or a
// (session, book) pair that is already issued.
var ErrConflict = errors.New("conflict")

// ErrUnavailable reports that every copy of a book is already issued.
var ErrUnavailable = errors.New("no copies available")

// ErrInvalidInput reports a rejected argument, with the reason in the
// wrapping message.
var ErrInvalidInput = errors.New("invalid input")

// PartialTransactionError is fatal: the ledger half of a two-store
// transaction succeeded but the catalog half failed, leaving the files
// inconsistent. The engine refuses all further mutation until an operator
// reconciles the stores by hand and restarts.
type PartialTransactionError struct {
	Op     string
	BookID string
	Err    error
}

func (e *PartialTransactionError) Error() string {
	return fmt.Sprintf("partial transaction: %s of %s updated the ledger but the catalog write failed: %v", e.Op, e.BookID, e.Err)
}

func (e *PartialTransactionError) Unwrap() error { return e.Err }

func isNotFound(err error) bool { return errors.Is(err, store.ErrNotFound) }
