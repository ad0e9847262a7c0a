// ============================================================================
// hlogsplit Data Model
// ============================================================================
//
// Package: internal/logsplit
// File: types.go
// Purpose: Core entities shared by the Log Reader, Region Writer Factory,
// Batch Demultiplexer, Parallel Region Flusher and Split Orchestrator.
// ============================================================================

package logsplit

import (
	"fmt"
	"sort"
)

// RegionKey identifies a region: its owning table plus the region's own raw
// identifier bytes. It is compared lexicographically and is the demultiplex
// key. At most one RegionWriter exists per RegionKey in a given split run.
type RegionKey struct {
	Table  string
	Region string
}

// String renders the key as "table/region" for log and error messages.
func (k RegionKey) String() string {
	return fmt.Sprintf("%s/%s", k.Table, k.Region)
}

// Less reports whether k sorts before other, used for the Batch
// Demultiplexer's deterministic iteration order.
func (k RegionKey) Less(other RegionKey) bool {
	if k.Table != other.Table {
		return k.Table < other.Table
	}
	return k.Region < other.Region
}

// LogEntry is one edit read from a WAL file: an opaque payload plus the key
// that routes it to a region, and the sequence id assigned by the server
// that wrote it. Entries are value types; ownership transfers from the Log
// Reader into the per-region queue the Batch Demultiplexer builds.
type LogEntry struct {
	Table   string
	Region  string
	Seq     uint64
	Payload []byte
}

// Key returns the RegionKey this entry routes to.
func (e LogEntry) Key() RegionKey {
	return RegionKey{Table: e.Table, Region: e.Region}
}

// FileStatus is the terminal disposition of one input log file.
type FileStatus int

const (
	// StatusPending marks a file discovered by directory listing but not
	// yet processed.
	StatusPending FileStatus = iota
	// StatusProcessed marks a file whose entire stream was parsed and
	// flushed without error.
	StatusProcessed
	// StatusCorrupted marks a file that raised a parse error while
	// parse-skip-errors was enabled.
	StatusCorrupted
)

// LogFile is one input discovered under the source directory.
type LogFile struct {
	Path   string
	Size   int64
	Status FileStatus
}

// BatchMap is an ordered region -> entries accumulation built by the Batch
// Demultiplexer for one batch of input files, and drained by the Parallel
// Region Flusher. It is discarded at the end of each batch.
type BatchMap struct {
	order   []RegionKey
	entries map[RegionKey][]LogEntry
}

// NewBatchMap returns an empty BatchMap.
func NewBatchMap() *BatchMap {
	return &BatchMap{entries: make(map[RegionKey][]LogEntry)}
}

// Append adds entry to its region's queue, creating the queue lazily and
// inserting a new key at its RegionKey-sorted position for deterministic
// iteration.
func (b *BatchMap) Append(entry LogEntry) {
	key := entry.Key()
	if _, ok := b.entries[key]; !ok {
		i := sort.Search(len(b.order), func(i int) bool { return key.Less(b.order[i]) })
		b.order = append(b.order, RegionKey{})
		copy(b.order[i+1:], b.order[i:])
		b.order[i] = key
	}
	b.entries[key] = append(b.entries[key], entry)
}

// Regions returns the region keys present in the batch, in RegionKey order.
func (b *BatchMap) Regions() []RegionKey {
	return b.order
}

// Entries returns the ordered entry queue for key.
func (b *BatchMap) Entries(key RegionKey) []LogEntry {
	return b.entries[key]
}

// Len reports how many regions are present in the batch.
func (b *BatchMap) Len() int {
	return len(b.order)
}
