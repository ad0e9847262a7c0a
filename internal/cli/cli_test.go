package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/hlogsplit/internal/logsplit"
)

func TestBuildCLI(t *testing.T) {
	cmd := BuildCLI()

	assert.NotNil(t, cmd, "BuildCLI should return a non-nil command")
	assert.Equal(t, "hlogsplit", cmd.Use, "Root command should be 'hlogsplit'")
	assert.Equal(t, "1.0.0", cmd.Version, "Version should be 1.0.0")

	commands := cmd.Commands()
	assert.Len(t, commands, 2, "Should have 2 subcommands")

	commandNames := make(map[string]bool)
	for _, c := range commands {
		commandNames[c.Use] = true
	}

	assert.True(t, commandNames["split"], "Should have 'split' command")
	assert.True(t, commandNames["status"], "Should have 'status' command")

	configFlag := cmd.PersistentFlags().Lookup("config")
	assert.NotNil(t, configFlag, "Should have --config flag")
	assert.Equal(t, "configs/default.yaml", configFlag.DefValue, "Default config path should be configs/default.yaml")
}

func TestBuildSplitCommand(t *testing.T) {
	cmd := buildSplitCommand()

	assert.NotNil(t, cmd, "buildSplitCommand should return a non-nil command")
	assert.Equal(t, "split", cmd.Use, "Command should be 'split'")
	assert.NotNil(t, cmd.RunE, "RunE function should be set")
}

func TestBuildStatusCommand(t *testing.T) {
	cmd := buildStatusCommand()

	assert.NotNil(t, cmd, "buildStatusCommand should return a non-nil command")
	assert.Equal(t, "status", cmd.Use, "Command should be 'status'")
	assert.Contains(t, cmd.Short, "status", "Short description should mention 'status'")
	assert.NotNil(t, cmd.RunE, "RunE function should be set")
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.yaml")

	configContent := `
paths:
  root_dir: "./test_root"
  src_dir: "./test_src"
  old_log_dir: "./test_oldlogs"

logsplit:
  batch_size: 5
  writer_threads: 4
  parse_skip_errors: true
  writer_skip_errors: false
  quarantine_dir: ".corrupt"
  poll_interval_seconds: 2

metrics:
  enabled: true
  port: 8080
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err, "Failed to write test config file")

	cfg, err := loadConfig(configPath)
	require.NoError(t, err, "loadConfig should not return an error")
	require.NotNil(t, cfg, "Config should not be nil")

	assert.Equal(t, "./test_root", cfg.Paths.RootDir)
	assert.Equal(t, "./test_src", cfg.Paths.SrcDir)
	assert.Equal(t, "./test_oldlogs", cfg.Paths.OldLogDir)

	assert.Equal(t, 5, cfg.LogSplit.BatchSize)
	assert.Equal(t, 4, cfg.LogSplit.WriterThreads)
	assert.True(t, cfg.LogSplit.ParseSkipErrors)
	assert.False(t, cfg.LogSplit.WriterSkipErrors)
	assert.Equal(t, ".corrupt", cfg.LogSplit.QuarantineDir)
	assert.Equal(t, 2, cfg.LogSplit.PollIntervalSeconds)

	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 8080, cfg.Metrics.Port)

	logsplitCfg := cfg.toLogsplitConfig()
	assert.Equal(t, 5, logsplitCfg.BatchSize)
	assert.Equal(t, 2*time.Second, logsplitCfg.PollInterval)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := loadConfig("/nonexistent/config.yaml")

	assert.Error(t, err, "loadConfig should return an error for nonexistent file")
	assert.Nil(t, cfg, "Config should be nil on error")
	assert.Contains(t, err.Error(), "failed to read config file", "Error should mention file reading failure")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
paths:
  root_dir: "not a number"
  invalid yaml structure
    broken indentation
`

	err := os.WriteFile(configPath, []byte(invalidYAML), 0644)
	require.NoError(t, err, "Failed to write invalid YAML file")

	cfg, err := loadConfig(configPath)

	assert.Error(t, err, "loadConfig should return an error for invalid YAML")
	assert.Nil(t, cfg, "Config should be nil on parse error")
	assert.Contains(t, err.Error(), "failed to parse config YAML", "Error should mention YAML parsing failure")
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "empty.yaml")

	err := os.WriteFile(configPath, []byte(""), 0644)
	require.NoError(t, err, "Failed to write empty file")

	cfg, err := loadConfig(configPath)
	assert.NoError(t, err, "Empty YAML file should parse without error")
	assert.NotNil(t, cfg, "Config should not be nil for empty file")
	assert.Equal(t, 0, cfg.LogSplit.BatchSize, "Empty config should have zero values")
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.yaml")

	partialConfig := `
logsplit:
  batch_size: 2
`

	err := os.WriteFile(configPath, []byte(partialConfig), 0644)
	require.NoError(t, err, "Failed to write partial config")

	cfg, err := loadConfig(configPath)
	require.NoError(t, err, "Partial config should parse successfully")
	assert.Equal(t, 2, cfg.LogSplit.BatchSize, "Batch size should be set")
	assert.Empty(t, cfg.Paths.RootDir, "Unset fields should have zero values")
}

func TestSaveAndLoadRunState(t *testing.T) {
	tmpDir := t.TempDir()

	stats := logsplit.RunStats{
		FilesParsed:    3,
		FilesCorrupted: 1,
		EditsWritten:   42,
		OrphanLogs:     0,
		RegionsWritten: 2,
		Duration:       250 * time.Millisecond,
	}

	require.NoError(t, saveRunState(tmpDir, stats))

	got, err := loadRunState(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, toRunState(stats), got)
}

func TestLoadRunState_NoPriorRun(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := loadRunState(tmpDir)
	assert.Error(t, err)
}

func TestShowStatus_NoPriorRun(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := `
paths:
  root_dir: "` + filepath.Join(tmpDir, "root") + `"
  src_dir: "./src"
  old_log_dir: "./oldlogs"
metrics:
  enabled: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	orig := configFile
	configFile = configPath
	defer func() { configFile = orig }()

	assert.NoError(t, showStatus())
}

func TestConfigStructure(t *testing.T) {
	cfg := Config{}

	cfg.Paths.RootDir = "/root"
	cfg.Paths.SrcDir = "/src"
	cfg.Paths.OldLogDir = "/oldlogs"
	cfg.LogSplit.BatchSize = 10
	cfg.LogSplit.WriterThreads = 3
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 9090

	assert.Equal(t, "/root", cfg.Paths.RootDir)
	assert.Equal(t, "/src", cfg.Paths.SrcDir)
	assert.Equal(t, "/oldlogs", cfg.Paths.OldLogDir)
	assert.Equal(t, 10, cfg.LogSplit.BatchSize)
	assert.Equal(t, 3, cfg.LogSplit.WriterThreads)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9090, cfg.Metrics.Port)
}
