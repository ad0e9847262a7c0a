// ============================================================================
// hlogsplit Region Writer Factory
// ============================================================================
//
// Package: internal/logsplit
// File: writer.go
// Purpose: Creates/opens a per-region appendable writer at the recovered-
// edits path, and the WriterTable that shares those writers across an
// entire split run (spec.md §4.3, §9 "Shared mutable WriterTable").
//
// Grounded on internal/jobmanager's concurrent map-of-handles pattern (one
// mutex-protected map, lazily-created entries, synchronized insert) and on
// internal/snapshot's pre-existing-file handling for the rerun/idempotence
// case.
// ============================================================================

package logsplit

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"

	"github.com/ChuLiYu/hlogsplit/internal/fsadapter"
)

const recoveredEditsFileName = "recovered.edits"

// RegionWriter is an open append handle bound to a recovered-edits path.
// It is lazily created on first entry for its region within the whole
// split run (not per batch) and closed exactly once, in the orchestrator's
// final phase.
type RegionWriter struct {
	Path string

	file    afero.File
	written int
	mu      sync.Mutex
}

// encodeRegionDir hex-encodes the raw region identifier so it is always
// filesystem-safe, mirroring the real system's convention of encoding
// region names before using them as directory components (SPEC_FULL.md §C.4).
func encodeRegionDir(region string) string {
	return hex.EncodeToString([]byte(region))
}

// recoveredEditsPath computes rootDir/tableDir(table)/regionDir(encoded(region))/recovered.edits.
func recoveredEditsPath(rootDir string, key RegionKey) string {
	return filepath.Join(rootDir, key.Table, encodeRegionDir(key.Region), recoveredEditsFileName)
}

// RecoveredEditsPath exposes recoveredEditsPath for callers (e.g. a master
// reassigning a region) that need to locate a completed split's output
// without re-deriving the table/region directory layout themselves.
func RecoveredEditsPath(rootDir string, key RegionKey) string {
	return recoveredEditsPath(rootDir, key)
}

// createRegionWriter opens (truncating a pre-existing file) the recovered-
// edits path for key. A pre-existing file is evidence of a previous failed
// attempt; it is logged with its length before being truncated, per the
// idempotent-rerun contract (spec.md §9's open-question resolution).
func createRegionWriter(adapter *fsadapter.Adapter, rootDir string, key RegionKey) (*RegionWriter, error) {
	path := recoveredEditsPath(rootDir, key)

	if exists, err := adapter.Exists(path); err == nil && exists {
		if size, serr := adapter.Size(path); serr == nil {
			log.Warn("truncating pre-existing recovered-edits file",
				"region", key.String(), "path", path, "previous_size", size)
		}
	}

	f, err := adapter.OpenWriter(path)
	if err != nil {
		return nil, fmt.Errorf("logsplit: create region writer for %s: %w", key.String(), err)
	}

	log.Info("region writer created", "region", key.String(), "path", path)

	return &RegionWriter{Path: path, file: f}, nil
}

// Append writes entry to the writer's file. Callers (the Parallel Region
// Flusher) guarantee at most one in-flight append per writer at a time, but
// the writer still serializes internally since a writer may be looked up
// concurrently with being populated (WriterTable insertion race).
func (w *RegionWriter) Append(entry LogEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	line, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	if _, err := w.file.Write(line); err != nil {
		return fmt.Errorf("%w: %v", ErrWriterFailed, err)
	}
	w.written++
	return nil
}

// Close closes the underlying file handle. Safe to call once; the
// orchestrator calls it exactly once per writer during finalization.
func (w *RegionWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// WriterTable is the shared region -> RegionWriter map for one split run.
// Insertion is serialized by mutex; once a writer is published, reads never
// need the lock again for correctness, only for the map lookup itself.
type WriterTable struct {
	mu      sync.Mutex
	writers map[RegionKey]*RegionWriter
	adapter *fsadapter.Adapter
	rootDir string
}

// NewWriterTable returns an empty WriterTable bound to rootDir.
func NewWriterTable(adapter *fsadapter.Adapter, rootDir string) *WriterTable {
	return &WriterTable{
		writers: make(map[RegionKey]*RegionWriter),
		adapter: adapter,
		rootDir: rootDir,
	}
}

// GetOrCreate returns the writer for key, creating it under lock if this is
// the first time key has been seen in this split run.
func (t *WriterTable) GetOrCreate(key RegionKey) (*RegionWriter, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if w, ok := t.writers[key]; ok {
		return w, nil
	}

	w, err := createRegionWriter(t.adapter, t.rootDir, key)
	if err != nil {
		return nil, err
	}
	t.writers[key] = w
	return w, nil
}

// CloseAll closes every writer ever created in this run and returns their
// paths, sorted, as the split result, plus the first close error
// encountered (if any). A writer whose Close fails still has its path in
// the list. Writers are closed on every exit path, success or failure
// (invariant 5).
func (t *WriterTable) CloseAll() ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	paths := make([]string, 0, len(t.writers))
	var firstErr error
	for key, w := range t.writers {
		paths = append(paths, w.Path)
		if err := w.Close(); err != nil {
			slog.Default().Error("failed to close region writer", "region", key.String(), "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("logsplit: close writer for %s: %w", key.String(), err)
			}
		}
	}
	sort.Strings(paths)
	return paths, firstErr
}

// Count returns the number of distinct regions with a writer in this run.
func (t *WriterTable) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.writers)
}
