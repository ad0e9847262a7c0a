package logsplit

// ============================================================================
// On-disk record format
// Purpose: The wire format shared by the Log Reader and the Region Writer.
// Grounded on internal/storage/wal's newline-delimited JSON records plus a
// CRC32 checksum per record (internal/storage/wal/checksum.go); recovered-
// edits files use the identical format to their inputs (SPEC_FULL.md §6).
// ============================================================================

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"hash/crc32"
)

type record struct {
	Table    string `json:"table"`
	Region   string `json:"region"`
	Seq      uint64 `json:"seq"`
	Payload  string `json:"payload"` // base64-encoded opaque bytes
	Checksum uint32 `json:"checksum"`
}

func recordChecksum(table, region string, seq uint64, payload []byte) uint32 {
	data := table + "\x00" + region + "\x00" + string(payload)
	data = fmt.Sprintf("%s%d", data, seq)
	return crc32.ChecksumIEEE([]byte(data))
}

// EncodeEntry renders e in the on-disk wire format shared by input WAL
// files and recovered.edits outputs. Exported for callers that need to
// write WAL-format test fixtures or feed a region server's own log writer.
func EncodeEntry(e LogEntry) ([]byte, error) {
	return encodeEntry(e)
}

func encodeEntry(e LogEntry) ([]byte, error) {
	r := record{
		Table:   e.Table,
		Region:  e.Region,
		Seq:     e.Seq,
		Payload: base64.StdEncoding.EncodeToString(e.Payload),
	}
	r.Checksum = recordChecksum(r.Table, r.Region, r.Seq, e.Payload)

	line, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("logsplit: encode entry: %w", err)
	}
	return append(line, '\n'), nil
}

func decodeEntry(line []byte) (LogEntry, error) {
	var r record
	if err := json.Unmarshal(line, &r); err != nil {
		return LogEntry{}, fmt.Errorf("%w: %v", ErrCorruptLog, err)
	}

	payload, err := base64.StdEncoding.DecodeString(r.Payload)
	if err != nil {
		return LogEntry{}, fmt.Errorf("%w: bad payload encoding: %v", ErrCorruptLog, err)
	}

	if recordChecksum(r.Table, r.Region, r.Seq, payload) != r.Checksum {
		return LogEntry{}, fmt.Errorf("%w: checksum mismatch at seq=%d", ErrCorruptLog, r.Seq)
	}

	return LogEntry{
		Table:   r.Table,
		Region:  r.Region,
		Seq:     r.Seq,
		Payload: payload,
	}, nil
}
