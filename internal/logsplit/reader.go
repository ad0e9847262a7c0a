// ============================================================================
// hlogsplit Log Reader
// ============================================================================
//
// Package: internal/logsplit
// File: reader.go
// Purpose: Produces a finite lazy sequence of LogEntry values from one input
// log file (SPEC_FULL.md / spec.md §4.2).
//
// Special case: if the file is zero-length, next() simply reaches EOF
// immediately; Open reports this to the caller via the empty flag so it can
// log a warning without treating it as an error (a not-yet-flushed append on
// the dead server is the common cause).
// ============================================================================

package logsplit

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/ChuLiYu/hlogsplit/internal/fsadapter"
)

// Reader produces entries from one log file in on-disk order. Callers must
// call Close when done.
type Reader struct {
	file    afero.File
	scanner *bufio.Scanner
	empty   bool
}

// OpenReader opens path via adapter and reports whether the file was
// zero-length at open time.
func OpenReader(adapter *fsadapter.Adapter, path string) (*Reader, error) {
	size, err := adapter.Size(path)
	if err != nil {
		return nil, fmt.Errorf("logsplit: stat before open %s: %w", path, err)
	}

	f, err := adapter.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("logsplit: open %s: %w", path, err)
	}

	return &Reader{
		file:    f,
		scanner: bufio.NewScanner(f),
		empty:   size == 0,
	}, nil
}

// IsEmpty reports whether the file was zero-length at open time — the
// "empty-at-EOF" special case (spec.md §4.2, error kind 3).
func (r *Reader) IsEmpty() bool {
	return r.empty
}

// Next returns the next entry, io.EOF once the stream is exhausted, or
// ErrCorruptLog (wrapped) if a record fails to decode.
func (r *Reader) Next() (LogEntry, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return LogEntry{}, fmt.Errorf("logsplit: read: %w", err)
		}
		return LogEntry{}, io.EOF
	}

	line := r.scanner.Bytes()
	entry, err := decodeEntry(line)
	if err != nil {
		return LogEntry{}, err
	}
	return entry, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}
