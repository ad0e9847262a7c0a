package logsplit

import "time"

// Config controls one split run. It is passed explicitly by the caller
// (pkg/types equivalent in this repo is the CLI-level yaml Config, §A.3 of
// SPEC_FULL.md) rather than read from module-level state.
type Config struct {
	// BatchSize is how many input log files are parsed together into one
	// in-memory BatchMap before being flushed. Bounds memory to
	// (batch size) x (mean log size).
	BatchSize int

	// WriterThreads is the Parallel Region Flusher's fixed worker pool
	// size.
	WriterThreads int

	// ParseSkipErrors, if true, quarantines a log that raises a parse
	// error instead of aborting the whole split.
	ParseSkipErrors bool

	// WriterSkipErrors is accepted for interface symmetry with
	// ParseSkipErrors but never masks a writer failure (§4.5); it only
	// governs whether a pool-quiescence interruption is tolerated.
	WriterSkipErrors bool

	// QuarantineDir names the directory (relative to rootDir) unparseable
	// inputs are preserved under for operator inspection.
	QuarantineDir string

	// PollInterval is the bounded polling interval the orchestrator uses
	// while waiting for the writer pool to quiesce.
	PollInterval time.Duration
}

// DefaultConfig returns the configuration defaults named in SPEC_FULL.md §A.3.
func DefaultConfig() Config {
	return Config{
		BatchSize:        3,
		WriterThreads:    3,
		ParseSkipErrors:  false,
		WriterSkipErrors: false,
		QuarantineDir:    ".corrupt",
		PollInterval:     5 * time.Second,
	}
}

// withDefaults fills any zero-valued field of cfg with DefaultConfig's value,
// mirroring the teacher's loadConfig-then-apply-defaults idiom.
func (cfg Config) withDefaults() Config {
	d := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = d.BatchSize
	}
	if cfg.WriterThreads <= 0 {
		cfg.WriterThreads = d.WriterThreads
	}
	if cfg.QuarantineDir == "" {
		cfg.QuarantineDir = d.QuarantineDir
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = d.PollInterval
	}
	return cfg
}
