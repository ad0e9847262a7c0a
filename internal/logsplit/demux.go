// ============================================================================
// hlogsplit Batch Demultiplexer
// ============================================================================
//
// Package: internal/logsplit
// File: demux.go
// Purpose: For one input log file, recovers its lease, reads its entries via
// the Log Reader, and accumulates them into a BatchMap keyed by region
// (spec.md §4.4).
// ============================================================================

package logsplit

import (
	"errors"
	"io"
	"time"

	"github.com/ChuLiYu/hlogsplit/internal/fsadapter"
)

// parseLog recovers path's lease and reads every entry into a staging slice
// scoped to this file alone; the staged entries are only merged into the
// shared batch once the whole file has parsed cleanly. This is what makes
// the edit-conservation invariant (spec.md §8) hold when a file is
// quarantined mid-stream: a log that fails partway through must not leave
// any of its already-read entries behind in another region's queue, even
// though those entries were read before the failure was known. It returns
// parseOK on a clean read
// (including the empty-at-EOF special case), parseFailed for a recoverable
// mid-stream corruption (staged entries are discarded, not merged), and
// parseFatal for anything else (including lease-recovery failure, which
// spec.md §4.6 says must not be treated as a parse error).
func parseLog(adapter *fsadapter.Adapter, path string, batch *BatchMap, cfg Config) (parseOutcome, error) {
	if err := adapter.RecoverLease(path); err != nil {
		return parseFatal, err
	}

	reader, err := OpenReader(adapter, path)
	if err != nil {
		return parseFatal, err
	}
	defer reader.Close()

	if reader.IsEmpty() {
		log.Warn("zero-length log at open, treating as empty sequence", "path", path)
		return parseOK, nil
	}

	start := time.Now()
	var staged []LogEntry
	for {
		entry, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, ErrCorruptLog) {
				if cfg.ParseSkipErrors {
					log.Warn("corrupt log, discarding its partially-read entries and quarantining",
						"path", path, "entries_discarded", len(staged), "error", err)
					return parseFailed, err
				}
				return parseFatal, err
			}
			return parseFatal, err
		}

		staged = append(staged, entry)
	}

	for _, entry := range staged {
		batch.Append(entry)
	}

	log.Info("parsed log", "path", path, "entries", len(staged), "duration", time.Since(start))
	return parseOK, nil
}
