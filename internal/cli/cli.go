// ============================================================================
// hlogsplit CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Provides user-friendly command line interface based on Cobra framework
//
// Command Structure:
//   hlogsplit                        # Root command
//   ├── split                        # Run one split over a dead region server's WAL
//   │   └── --config, -c            # Specify config file
//   ├── status                       # View the last run's counters
//   ├── --version                    # Display version information
//   └── --help                       # Display help information
//
// Configuration Management:
//   Uses YAML format config file (default: configs/default.yaml)
//   Configuration items include:
//   - paths: root/src/old-log directories
//   - logsplit: batch size, writer threads, skip-error policy, quarantine dir
//   - metrics: Prometheus monitoring configuration
//
// split Command:
//   Runs exactly one split over a dead region server's log directory:
//   1. Load config file
//   2. Start Metrics HTTP server (if enabled)
//   3. Run Orchestrator.SplitLog once
//   4. Persist run counters for the status command
//   5. Log how many recovered-edits files were written, plus the run counters
//
//   Examples:
//     ./hlogsplit split
//     ./hlogsplit split -c custom-config.yaml
//
// status Command:
//   Display the counters from the most recent split run, read back from the
//   run-state file the split command persists.
//
//   Examples:
//     ./hlogsplit status
//
// ============================================================================

package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ChuLiYu/hlogsplit/internal/fsadapter"
	"github.com/ChuLiYu/hlogsplit/internal/logsplit"
	"github.com/ChuLiYu/hlogsplit/internal/metrics"
)

// Config represents the complete system configuration structure. Maps
// config file fields through YAML tags.
type Config struct {
	Paths struct {
		RootDir   string `yaml:"root_dir"`
		SrcDir    string `yaml:"src_dir"`
		OldLogDir string `yaml:"old_log_dir"`
	} `yaml:"paths"`

	LogSplit struct {
		BatchSize           int    `yaml:"batch_size"`
		WriterThreads       int    `yaml:"writer_threads"`
		ParseSkipErrors     bool   `yaml:"parse_skip_errors"`
		WriterSkipErrors    bool   `yaml:"writer_skip_errors"`
		QuarantineDir       string `yaml:"quarantine_dir"`
		PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	} `yaml:"logsplit"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"metrics"`
}

func (c Config) toLogsplitConfig() logsplit.Config {
	return logsplit.Config{
		BatchSize:        c.LogSplit.BatchSize,
		WriterThreads:    c.LogSplit.WriterThreads,
		ParseSkipErrors:  c.LogSplit.ParseSkipErrors,
		WriterSkipErrors: c.LogSplit.WriterSkipErrors,
		QuarantineDir:    c.LogSplit.QuarantineDir,
		PollInterval:     time.Duration(c.LogSplit.PollIntervalSeconds) * time.Second,
	}
}

var configFile string

// stateFileName is where the split command persists its last-run counters
// so the status command can read them back without a running process.
const stateFileName = ".hlogsplit-status.yaml"

func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hlogsplit",
		Short: "hlogsplit: splits a dead region server's write-ahead log by region",
		Long: `hlogsplit demultiplexes a region server's crash-time WAL into
per-region recovered.edits files so the master can reassign regions safely:
- Lease recovery before read, so a half-written log is never misread as corrupt
- Batch-bounded streaming demultiplexing
- Parallel per-region flushing with quiescence tracking
- Prometheus metrics and idempotent reruns`,
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/default.yaml", "config file path")

	rootCmd.AddCommand(buildSplitCommand())
	rootCmd.AddCommand(buildStatusCommand())

	return rootCmd
}

func buildSplitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a dead region server's WAL directory by region",
		Long:  "Run exactly one split over the configured source directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit()
		},
	}
	return cmd
}

func runSplit() error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log.Printf("Starting hlogsplit: src=%s root=%s old=%s\n", cfg.Paths.SrcDir, cfg.Paths.RootDir, cfg.Paths.OldLogDir)

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector()
		go func() {
			log.Printf("Starting metrics server on :%d\n", cfg.Metrics.Port)
			if err := metrics.StartServer(cfg.Metrics.Port); err != nil {
				log.Printf("Metrics server error: %v\n", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("received shutdown signal, canceling split...")
		cancel()
	}()

	adapter := fsadapter.NewOS()
	orchestrator := logsplit.NewOrchestrator(adapter, cfg.toLogsplitConfig())
	orchestrator.Metrics = collector

	paths, splitErr := orchestrator.SplitLog(ctx, cfg.Paths.RootDir, cfg.Paths.SrcDir, cfg.Paths.OldLogDir)
	stats := orchestrator.LastRunStats()

	var result *multierror.Error
	if splitErr != nil {
		result = multierror.Append(result, fmt.Errorf("split failed: %w", splitErr))
	}
	if saveErr := saveRunState(cfg.Paths.RootDir, stats); saveErr != nil {
		result = multierror.Append(result, fmt.Errorf("failed to persist run state: %w", saveErr))
	}

	log.Printf("Split wrote %d recovered.edits files, %d edits, %d files parsed, %d quarantined\n",
		len(paths), stats.EditsWritten, stats.FilesParsed, stats.FilesCorrupted)

	return result.ErrorOrNil()
}

func buildStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status counters from the most recent split run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus()
		},
	}
	return cmd
}

func showStatus() error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("\n╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                 hlogsplit Run Status                       ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	fmt.Println("📋 Configuration:")
	fmt.Printf("  └─ Config File:      %s\n", configFile)
	fmt.Printf("  └─ Source Directory: %s\n", cfg.Paths.SrcDir)
	fmt.Printf("  └─ Root Directory:   %s\n", cfg.Paths.RootDir)
	fmt.Printf("  └─ Old Log Directory:%s\n", cfg.Paths.OldLogDir)
	fmt.Println()

	stats, err := loadRunState(cfg.Paths.RootDir)
	if err != nil {
		fmt.Println("📊 Last Run:")
		fmt.Printf("  └─ No run recorded yet (%v)\n", err)
		fmt.Println()
		return nil
	}

	fmt.Println("📊 Last Run:")
	fmt.Printf("  ├─ Files Parsed:     %d\n", stats.FilesParsed)
	fmt.Printf("  ├─ Files Corrupted:  %d\n", stats.FilesCorrupted)
	fmt.Printf("  ├─ Edits Written:    %d\n", stats.EditsWritten)
	fmt.Printf("  ├─ Regions Written:  %d\n", stats.RegionsWritten)
	fmt.Printf("  ├─ Orphan Logs:      %d\n", stats.OrphanLogs)
	fmt.Printf("  └─ Duration:         %s\n", stats.Duration)
	fmt.Println()

	fmt.Println("📡 Metrics:")
	if cfg.Metrics.Enabled {
		fmt.Printf("  └─ Status: enabled on http://localhost:%d/metrics\n", cfg.Metrics.Port)
	} else {
		fmt.Println("  └─ Status: disabled")
	}
	fmt.Println()

	fmt.Println("═══════════════════════════════════════════════════════════")
	return nil
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return &cfg, nil
}
