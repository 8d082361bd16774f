// Package store implements the flat-file record stores backing the library
// database. A store file is UTF-8 text; each record is a contiguous group of
// lines whose shape is known only to the codec. Stores support sequential
// scan, predicate search, append, and locked whole-file rewrite.
package store

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"libraryman/logging"
)

// Codec translates one record to and from its line group. Decode consumes
// exactly one group from the reader and returns io.EOF at a clean end of
// store; a malformed group is a *CorruptRecordError.
type Codec[T any] interface {
	Decode(r *LineReader) (T, error)
	Encode(w io.Writer, rec T) error
}

// Store is a sequential flat-file record store. All mutation goes through a
// per-store mutex so that a rewrite's read-transform-write window is never
// interleaved with another operation on the same store.
type Store[T any] struct {
	path  string
	codec Codec[T]
	mu    sync.Mutex
}

// New builds a store over the file at path using codec. The file is not
// touched until the first operation.
func New[T any](path string, codec Codec[T]) *Store[T] {
	return &Store[T]{path: path, codec: codec}
}

// Path returns the backing file path.
func (s *Store[T]) Path() string { return s.path }

// EnsureExists creates an empty store file (and its directory) if the file
// does not exist yet. Bootstrap only: a file that goes missing later is an
// I/O error, not an empty store.
func (s *Store[T]) EnsureExists() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create store %s: %w", s.path, err)
	}
	return f.Close()
}

// ReadAll decodes every record in file order.
func (s *Store[T]) ReadAll() ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// readAll is the lock-free scan used by ReadAll and Rewrite.
func (s *Store[T]) readAll() ([]T, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", s.path, err)
	}
	defer f.Close()

	var records []T
	r := NewLineReader(f)
	for {
		rec, err := s.codec.Decode(r)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", s.path, err)
		}
		records = append(records, rec)
	}
}

// Find returns the first record matching pred, or ErrNotFound.
func (s *Store[T]) Find(pred func(T) bool) (T, error) {
	var zero T
	records, err := s.ReadAll()
	if err != nil {
		return zero, err
	}
	for _, rec := range records {
		if pred(rec) {
			return rec, nil
		}
	}
	return zero, ErrNotFound
}

// FindAll returns every record matching pred, preserving file order.
func (s *Store[T]) FindAll(pred func(T) bool) ([]T, error) {
	records, err := s.ReadAll()
	if err != nil {
		return nil, err
	}
	var out []T
	for _, rec := range records {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Append encodes rec at the end of the store without reading the rest of it.
// The record is encoded to memory first so an encoder error cannot leave a
// partial group behind.
func (s *Store[T]) Append(rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := s.codec.Encode(&buf, rec); err != nil {
		return fmt.Errorf("encode for store %s: %w", s.path, err)
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open store %s for append: %w", s.path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("append to store %s: %w", s.path, err)
	}
	return f.Close()
}

// Rewrite reads the whole store, applies transform, and replaces the file
// content with the result. The store mutex is held for the full
// read-transform-write window and the new content lands via a temp file and
// rename, so no reader of this store ever observes a partial state. A
// transform error leaves the file untouched.
func (s *Store[T]) Rewrite(transform func([]T) ([]T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return err
	}
	records, err = transform(records)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp for store %s: %w", s.path, err)
	}
	for _, rec := range records {
		if err := s.codec.Encode(tmp, rec); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return fmt.Errorf("rewrite store %s: %w", s.path, err)
		}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rewrite store %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace store %s: %w", s.path, err)
	}
	logging.Debugf("store %s rewritten with %d records", s.path, len(records))
	return nil
}
