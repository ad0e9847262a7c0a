package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestNewCollector(t *testing.T) {
	// Reset Prometheus registry to avoid duplicate registration
	prometheus.DefaultRegisterer = prometheus.NewRegistry()

	collector := NewCollector()

	assert.NotNil(t, collector, "NewCollector should return a non-nil collector")
	assert.NotNil(t, collector.filesParsed, "filesParsed counter should be initialized")
	assert.NotNil(t, collector.filesCorrupted, "filesCorrupted counter should be initialized")
	assert.NotNil(t, collector.filesArchived, "filesArchived counter should be initialized")
	assert.NotNil(t, collector.editsWritten, "editsWritten counter should be initialized")
	assert.NotNil(t, collector.orphanLogs, "orphanLogs counter should be initialized")
	assert.NotNil(t, collector.regionsRecovered, "regionsRecovered gauge should be initialized")
	assert.NotNil(t, collector.splitDuration, "splitDuration histogram should be initialized")
	assert.NotNil(t, collector.regionDuration, "regionDuration histogram should be initialized")
}

func TestRecordParsed(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.RecordParsed()
	}, "RecordParsed should not panic")

	for i := 0; i < 5; i++ {
		collector.RecordParsed()
	}
}

func TestRecordCorrupted(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.RecordCorrupted()
	}, "RecordCorrupted should not panic")
}

func TestRecordArchived(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.RecordArchived()
	}, "RecordArchived should not panic")
}

func TestRecordEditsWritten(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.RecordEditsWritten(3)
	}, "RecordEditsWritten should not panic")
}

func TestRecordOrphanLogs(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.RecordOrphanLogs(1)
	}, "RecordOrphanLogs should not panic")
}

func TestSetRegionsRecovered(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.SetRegionsRecovered(4)
	}, "SetRegionsRecovered should not panic")
}

func TestObserveSplitDuration(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.ObserveSplitDuration(0.42)
	}, "ObserveSplitDuration should not panic")
}

func TestObserveRegionFlushDuration(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.ObserveRegionFlushDuration(0.05)
	}, "ObserveRegionFlushDuration should not panic")
}
