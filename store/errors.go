package store

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that no record matched a lookup.
var ErrNotFound = errors.New("record not found")

// CorruptRecordError reports a malformed record group: wrong line arity or a
// field that failed to parse. The store aborts the operation without any
// partial write; there is no recovery attempt.
type CorruptRecordError struct {
	Line   int
	Reason string
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt record at line %d: %s", e.Line, e.Reason)
}

// Corruptf builds a CorruptRecordError for the reader's current line.
func Corruptf(r *LineReader, format string, v ...interface{}) error {
	return &CorruptRecordError{Line: r.Line(), Reason: fmt.Sprintf(format, v...)}
}
