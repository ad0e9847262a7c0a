// ============================================================================
// hlogsplit Split Orchestrator
// ============================================================================
//
// Package: internal/logsplit
// File: orchestrator.go
// Purpose: Top-level algorithm — batch iteration, corruption bookkeeping,
// archival, source-directory cleanup, timing (spec.md §4.6).
//
// Grounded on internal/controller/controller.go's single top-level
// coordinator shape (one struct wiring its collaborators, a slog logger,
// fmt.Errorf("...: %w", err) wrapping at every boundary) generalized from a
// long-running four-loop coordinator into a single-shot, idempotent
// SplitLog call — this system has no crash-recovery loop of its own; it IS
// the crash-recovery step another system invokes.
// ============================================================================

package logsplit

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ChuLiYu/hlogsplit/internal/fsadapter"
	"github.com/ChuLiYu/hlogsplit/internal/metrics"
)

// RunStats summarizes one SplitLog call — the counters the status CLI view
// and the Prometheus collector both read from.
type RunStats struct {
	FilesParsed    int
	FilesCorrupted int
	EditsWritten   int
	OrphanLogs     int
	RegionsWritten int
	Duration       time.Duration
}

// Orchestrator is the Split Orchestrator (C6): it owns the Filesystem
// Adapter handle and the run configuration, and drives the Batch
// Demultiplexer and Parallel Region Flusher through one split run.
type Orchestrator struct {
	adapter *fsadapter.Adapter
	cfg     Config

	// Metrics, if non-nil, receives counters as SplitLog progresses.
	Metrics *metrics.Collector

	lastStats RunStats
}

// NewOrchestrator returns an Orchestrator bound to adapter, applying
// defaults to any unset Config field.
func NewOrchestrator(adapter *fsadapter.Adapter, cfg Config) *Orchestrator {
	return &Orchestrator{adapter: adapter, cfg: cfg.withDefaults()}
}

// LastRunStats returns the counters from the most recently completed
// SplitLog call.
func (o *Orchestrator) LastRunStats() RunStats {
	return o.lastStats
}

// SplitLog is the collaborator interface named in spec.md §6: it reads
// srcDir's WAL files, demultiplexes them by region beneath rootDir, archives
// processed inputs under oldLogDir, quarantines corrupted ones under
// rootDir/QuarantineDir, deletes srcDir on success, and returns the ordered
// sequence of recovered-edits paths written. It is idempotent: a rerun
// truncates any pre-existing recovered-edits files (writer.go).
func (o *Orchestrator) SplitLog(ctx context.Context, rootDir, srcDir, oldLogDir string) (paths []string, err error) {
	start := time.Now()
	o.lastStats = RunStats{}
	log.Info("split starting", "srcDir", srcDir, "rootDir", rootDir)

	exists, existsErr := o.adapter.Exists(srcDir)
	if existsErr != nil {
		return nil, existsErr
	}
	if !exists {
		log.Info("split finished, source directory absent", "srcDir", srcDir, "duration", time.Since(start))
		return nil, nil
	}

	files, listErr := o.adapter.List(srcDir)
	if listErr != nil {
		return nil, listErr
	}
	if len(files) == 0 {
		if rmErr := o.adapter.RemoveAll(srcDir); rmErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceCleanupFailed, rmErr)
		}
		log.Info("split finished, empty source directory", "srcDir", srcDir, "duration", time.Since(start))
		return nil, nil
	}

	table := NewWriterTable(o.adapter, rootDir)
	flusher := NewFlusher(o.cfg.WriterThreads, o.cfg.PollInterval, o.cfg.WriterSkipErrors)
	flusher.Metrics = o.Metrics
	if startErr := flusher.Start(); startErr != nil {
		return nil, startErr
	}
	var editsWritten int
	defer func() {
		flusher.Stop()
		closedPaths, closeErr := table.CloseAll()
		paths = closedPaths
		if err == nil {
			err = closeErr
		}
		stats := o.lastStats
		stats.EditsWritten = editsWritten
		stats.RegionsWritten = len(closedPaths)
		stats.Duration = time.Since(start)
		o.lastStats = stats
		if o.Metrics != nil {
			o.Metrics.SetRegionsRecovered(stats.RegionsWritten)
			o.Metrics.RecordEditsWritten(editsWritten)
			o.Metrics.ObserveSplitDuration(stats.Duration.Seconds())
		}
		log.Info("split done", "srcDir", srcDir, "regions", len(closedPaths), "duration", time.Since(start), "failed", err != nil)
	}()

	processedLogs, corruptedLogs, written, runErr := o.runBatches(ctx, files, rootDir, table, flusher)
	editsWritten = written
	o.lastStats.FilesParsed = len(processedLogs)
	o.lastStats.FilesCorrupted = len(corruptedLogs)
	if o.Metrics != nil {
		for range processedLogs {
			o.Metrics.RecordParsed()
		}
		for range corruptedLogs {
			o.Metrics.RecordCorrupted()
		}
	}
	if runErr != nil {
		return nil, runErr
	}

	if orphanErr := o.checkOrphans(srcDir, len(processedLogs)+len(corruptedLogs)); orphanErr != nil {
		o.lastStats.OrphanLogs++
		if o.Metrics != nil {
			o.Metrics.RecordOrphanLogs(1)
		}
		return nil, orphanErr
	}

	if archErr := o.archiveAndQuarantine(rootDir, srcDir, oldLogDir, processedLogs, corruptedLogs); archErr != nil {
		return nil, archErr
	}
	if o.Metrics != nil {
		for range processedLogs {
			o.Metrics.RecordArchived()
		}
	}

	if rmErr := o.adapter.RemoveAll(srcDir); rmErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceCleanupFailed, rmErr)
	}

	return nil, nil
}

// runBatches implements the `parsing(batch i) -> flushing(batch i) ->
// parsing(batch i+1) -> ...` portion of the state machine described in
// spec.md §4.6. Batches never overlap: a batch's flush fully completes
// before the next batch's parsing begins.
func (o *Orchestrator) runBatches(ctx context.Context, files []fsadapter.FileInfo, rootDir string, table *WriterTable, flusher *Flusher) (processed, corrupted []string, written int, err error) {
	batches := partitionBatches(files, o.cfg.BatchSize)

	for i, batchFiles := range batches {
		log.Info("parsing batch", "index", i, "files", len(batchFiles))
		batch := NewBatchMap()

		for _, lf := range batchFiles {
			outcome, perr := parseLog(o.adapter, lf.Path, batch, o.cfg)
			switch outcome {
			case parseOK:
				processed = append(processed, lf.Path)
			case parseFailed:
				corrupted = append(corrupted, lf.Path)
			default:
				return processed, corrupted, written, perr
			}
		}

		for _, key := range batch.Regions() {
			written += len(batch.Entries(key))
		}

		log.Info("flushing batch", "index", i, "regions", batch.Len())
		if ferr := flusher.Flush(ctx, batch, table); ferr != nil {
			return processed, corrupted, written, ferr
		}
	}

	return processed, corrupted, written, nil
}

// checkOrphans verifies that no file appeared in srcDir after the initial
// listing was taken — evidence a resurrected server wrote to the directory
// mid-split (invariant 4, spec.md §3 and scenario 6, spec.md §8).
func (o *Orchestrator) checkOrphans(srcDir string, accountedFor int) error {
	finalListing, err := o.adapter.List(srcDir)
	if err != nil {
		return err
	}
	if len(finalListing) != accountedFor {
		log.Error("orphan hlog discovered", "srcDir", srcDir, "listed", len(finalListing), "accounted_for", accountedFor)
		return ErrOrphanLog
	}
	return nil
}

// archiveAndQuarantine moves processed logs into the archive directory
// (derived from srcDir's own basename under oldLogDir) and corrupted logs
// into the quarantine directory (rootDir/QuarantineDir/<srcDir-basename>).
func (o *Orchestrator) archiveAndQuarantine(rootDir, srcDir, oldLogDir string, processed, corrupted []string) error {
	log.Info("archiving", "processed", len(processed), "corrupted", len(corrupted))

	archiveDir := filepath.Join(oldLogDir, filepath.Base(srcDir))
	quarantineDir := filepath.Join(rootDir, o.cfg.QuarantineDir, filepath.Base(srcDir))

	if err := o.adapter.MkdirAll(archiveDir); err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveFailed, err)
	}
	if len(corrupted) > 0 {
		if err := o.adapter.MkdirAll(quarantineDir); err != nil {
			return fmt.Errorf("%w: %v", ErrArchiveFailed, err)
		}
	}

	for _, path := range processed {
		dst := filepath.Join(archiveDir, filepath.Base(path))
		if err := o.adapter.Rename(path, dst); err != nil {
			return fmt.Errorf("%w: %v", ErrArchiveFailed, err)
		}
	}
	for _, path := range corrupted {
		dst := filepath.Join(quarantineDir, filepath.Base(path))
		if err := o.adapter.Rename(path, dst); err != nil {
			return fmt.Errorf("%w: %v", ErrArchiveFailed, err)
		}
	}

	return nil
}

// partitionBatches splits files into contiguous, fixed-size groups in
// listing order.
func partitionBatches(files []fsadapter.FileInfo, batchSize int) [][]fsadapter.FileInfo {
	var batches [][]fsadapter.FileInfo
	for i := 0; i < len(files); i += batchSize {
		end := i + batchSize
		if end > len(files) {
			end = len(files)
		}
		batches = append(batches, files[i:end])
	}
	return batches
}
