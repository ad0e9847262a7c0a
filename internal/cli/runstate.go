package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ChuLiYu/hlogsplit/internal/logsplit"
)

// runState is the YAML-serializable form of logsplit.RunStats persisted
// between invocations so `status` can report on a split run that already
// exited.
type runState struct {
	FilesParsed    int           `yaml:"files_parsed"`
	FilesCorrupted int           `yaml:"files_corrupted"`
	EditsWritten   int           `yaml:"edits_written"`
	OrphanLogs     int           `yaml:"orphan_logs"`
	RegionsWritten int           `yaml:"regions_written"`
	Duration       time.Duration `yaml:"duration"`
}

func toRunState(s logsplit.RunStats) runState {
	return runState{
		FilesParsed:    s.FilesParsed,
		FilesCorrupted: s.FilesCorrupted,
		EditsWritten:   s.EditsWritten,
		OrphanLogs:     s.OrphanLogs,
		RegionsWritten: s.RegionsWritten,
		Duration:       s.Duration,
	}
}

// saveRunState atomically persists stats under rootDir by writing a temp
// file and renaming it into place: a crash mid-write never leaves a
// half-written status file.
func saveRunState(rootDir string, stats logsplit.RunStats) error {
	path := filepath.Join(rootDir, stateFileName)

	data, err := yaml.Marshal(toRunState(stats))
	if err != nil {
		return fmt.Errorf("failed to marshal run state: %w", err)
	}

	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return fmt.Errorf("failed to create root directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp run state: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename run state: %w", err)
	}
	return nil
}

func loadRunState(rootDir string) (runState, error) {
	path := filepath.Join(rootDir, stateFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		return runState{}, err
	}

	var s runState
	if err := yaml.Unmarshal(data, &s); err != nil {
		return runState{}, fmt.Errorf("failed to parse run state: %w", err)
	}
	return s, nil
}
