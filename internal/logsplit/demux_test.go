package logsplit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/hlogsplit/internal/fsadapter"
)

func TestParseLogAccumulatesByRegion(t *testing.T) {
	adapter := fsadapter.NewMemory()
	writeRawLog(t, adapter, "/src/h1.log", []LogEntry{
		{Table: "t1", Region: "A", Seq: 1, Payload: []byte("a1")},
		{Table: "t1", Region: "B", Seq: 1, Payload: []byte("b1")},
		{Table: "t1", Region: "A", Seq: 2, Payload: []byte("a2")},
	})

	batch := NewBatchMap()
	outcome, err := parseLog(adapter, "/src/h1.log", batch, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, parseOK, outcome)

	assert.Equal(t, []RegionKey{{Table: "t1", Region: "A"}, {Table: "t1", Region: "B"}}, batch.Regions())
	assert.Len(t, batch.Entries(RegionKey{Table: "t1", Region: "A"}), 2)
	assert.Len(t, batch.Entries(RegionKey{Table: "t1", Region: "B"}), 1)
}

func TestParseLogEmptyAtEOFIsNotAnError(t *testing.T) {
	adapter := fsadapter.NewMemory()
	w, err := adapter.OpenWriter("/src/empty.log")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	batch := NewBatchMap()
	outcome, err := parseLog(adapter, "/src/empty.log", batch, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, parseOK, outcome)
	assert.Equal(t, 0, batch.Len())
}

func TestParseLogCorruptionSkippableWhenConfigured(t *testing.T) {
	adapter := fsadapter.NewMemory()
	w, err := adapter.OpenWriter("/src/bad.log")
	require.NoError(t, err)
	line, err := encodeEntry(LogEntry{Table: "t1", Region: "B", Seq: 1, Payload: []byte("b1")})
	require.NoError(t, err)
	_, err = w.Write(line)
	require.NoError(t, err)
	_, err = w.Write([]byte("{garbage\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	cfg := DefaultConfig()
	cfg.ParseSkipErrors = true

	batch := NewBatchMap()
	outcome, err := parseLog(adapter, "/src/bad.log", batch, cfg)
	assert.Equal(t, parseFailed, outcome)
	assert.ErrorIs(t, err, ErrCorruptLog)

	// The entry read before the corruption must NOT survive into the shared
	// batch: the whole file is quarantined, and the edit-conservation
	// invariant (spec.md §8) forbids any entry from a quarantined file
	// reaching its region's recovered.edits output.
	assert.Empty(t, batch.Entries(RegionKey{Table: "t1", Region: "B"}))
	assert.Equal(t, 0, batch.Len())
}

func TestParseLogCorruptionFatalWhenNotConfigured(t *testing.T) {
	adapter := fsadapter.NewMemory()
	w, err := adapter.OpenWriter("/src/bad.log")
	require.NoError(t, err)
	_, err = w.Write([]byte("{garbage\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	cfg := DefaultConfig()
	cfg.ParseSkipErrors = false

	batch := NewBatchMap()
	outcome, err := parseLog(adapter, "/src/bad.log", batch, cfg)
	assert.Equal(t, parseFatal, outcome)
	assert.ErrorIs(t, err, ErrCorruptLog)
}

func TestParseLogLeaseRecoveryFailureIsFatalNotParseError(t *testing.T) {
	adapter := fsadapter.NewMemory()
	cfg := DefaultConfig()
	cfg.ParseSkipErrors = true

	batch := NewBatchMap()
	outcome, err := parseLog(adapter, "/src/missing.log", batch, cfg)
	assert.Equal(t, parseFatal, outcome)
	assert.Error(t, err)
}
