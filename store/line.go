package store

import (
	"bufio"
	"io"
)

// LineReader yields the lines of a store file one at a time, tracking the
// current line number for error reporting.
type LineReader struct {
	sc   *bufio.Scanner
	line int
}

// NewLineReader wraps r for line-at-a-time reading.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{sc: bufio.NewScanner(r)}
}

// Next returns the next line without its trailing newline. At a clean end of
// input it returns io.EOF.
func (r *LineReader) Next() (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	r.line++
	return r.sc.Text(), nil
}

// Line reports the number of the most recently read line (1-based).
func (r *LineReader) Line() int { return r.line }

// ReadGroup reads exactly n lines. io.EOF before the first line means a clean
// end of store and is returned as-is; running out of input mid-group is a
// corrupt record.
func ReadGroup(r *LineReader, n int) ([]string, error) {
	group := make([]string, 0, n)
	for i := 0; i < n; i++ {
		line, err := r.Next()
		if err == io.EOF {
			if i == 0 {
				return nil, io.EOF
			}
			return nil, Corruptf(r, "group truncated: got %d of %d lines", i, n)
		}
		if err != nil {
			return nil, err
		}
		group = append(group, line)
	}
	return group, nil
}
