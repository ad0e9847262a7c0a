package logsplit

// ============================================================================
// Error Definitions
// Purpose: Sentinel errors for the well-known failure kinds named in the
// split orchestrator's error-handling design, plus a typed parse-boundary
// result that distinguishes a recoverable parse failure from everything
// else.
// ============================================================================

import "errors"

var (
	// ErrOrphanLog indicates the source directory held more files at
	// finalization than were accounted for as processed or corrupted —
	// evidence a resurrected writer dropped a file mid-split.
	ErrOrphanLog = errors.New("logsplit: orphan hlog discovered")

	// ErrWriterFailed indicates a region writer task failed. Writer
	// failures are always fatal to the split, regardless of the
	// writer-skip-errors setting.
	ErrWriterFailed = errors.New("logsplit: region writer failed")

	// ErrPoolInterrupted indicates the flusher's quiescence wait was
	// interrupted before every task terminated; treated as possible data
	// loss.
	ErrPoolInterrupted = errors.New("logsplit: writer pool interrupted, possible data loss")

	// ErrCorruptLog indicates a log raised an error mid-stream while
	// being parsed; recoverable iff parse-skip-errors is enabled.
	ErrCorruptLog = errors.New("logsplit: corrupt log")

	// ErrArchiveFailed wraps a failure moving a processed or corrupted
	// log into its destination directory.
	ErrArchiveFailed = errors.New("logsplit: archive or quarantine move failed")

	// ErrSourceCleanupFailed wraps a failure deleting the now-empty
	// source directory.
	ErrSourceCleanupFailed = errors.New("logsplit: source directory cleanup failed")
)

// parseOutcome is the result of parsing one input log file: a three-way
// variant (ok / parse-failed / fatal) rather than a boolean, because an
// empty-at-EOF log is not an error at all while a mid-stream corruption is
// recoverable only when permitted and any other I/O failure is always
// fatal.
type parseOutcome int

const (
	parseOK parseOutcome = iota
	parseFailed
	parseFatal
)
