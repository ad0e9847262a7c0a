// ============================================================================
// hlogsplit Metrics - Prometheus Monitoring
// ============================================================================
//
// Package: internal/metrics
// File: metrics.go
// Purpose: Collect and expose split-run metrics for Prometheus monitoring
//
// Metric Categories:
//
//   1. Counters - Cumulative, monotonically increasing:
//      - splitlog_files_parsed_total: Logs successfully parsed
//      - splitlog_files_corrupted_total: Logs quarantined due to corruption
//      - splitlog_files_archived_total: Logs moved to the old-logs directory
//      - splitlog_edits_written_total: Log entries appended to recovered.edits files
//      - splitlog_orphan_logs_total: Orphan logs detected after a run
//
//   2. Status metrics (Gauge) - Instantaneous values:
//      - splitlog_regions_recovered: Regions written to in the last run
//
//   3. Performance metrics (Histogram) - Distribution stats:
//      - splitlog_split_duration_seconds: Whole-run wall time
//      - splitlog_region_flush_duration_seconds: Per-region flush time
//
// Prometheus Query Examples:
//
//   # Corruption rate
//   rate(splitlog_files_corrupted_total[5m]) / rate(splitlog_files_parsed_total[5m])
//
//   # 95th percentile split duration
//   histogram_quantile(0.95, splitlog_split_duration_seconds_bucket)
//
// HTTP Endpoint:
//   Exposed via /metrics, scraped by Prometheus. Default port: 9090.
// ============================================================================

package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects Prometheus metrics for a split run.
type Collector struct {
	filesParsed    prometheus.Counter
	filesCorrupted prometheus.Counter
	filesArchived  prometheus.Counter
	editsWritten   prometheus.Counter
	orphanLogs     prometheus.Counter

	regionsRecovered prometheus.Gauge

	splitDuration  prometheus.Histogram
	regionDuration prometheus.Histogram
}

// NewCollector creates a new metrics collector and registers it with the
// default Prometheus registry.
func NewCollector() *Collector {
	c := &Collector{
		filesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "splitlog_files_parsed_total",
			Help: "Total number of log files successfully parsed",
		}),
		filesCorrupted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "splitlog_files_corrupted_total",
			Help: "Total number of log files quarantined due to corruption",
		}),
		filesArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "splitlog_files_archived_total",
			Help: "Total number of log files moved to the old-logs directory",
		}),
		editsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "splitlog_edits_written_total",
			Help: "Total number of log entries appended to recovered.edits files",
		}),
		orphanLogs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "splitlog_orphan_logs_total",
			Help: "Total number of orphan logs detected after a run",
		}),
		regionsRecovered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "splitlog_regions_recovered",
			Help: "Number of distinct regions written to in the last run",
		}),
		splitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "splitlog_split_duration_seconds",
			Help:    "Wall-clock time of a whole split run",
			Buckets: prometheus.DefBuckets,
		}),
		regionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "splitlog_region_flush_duration_seconds",
			Help:    "Time taken to flush one region's batch to its writer",
			Buckets: prometheus.DefBuckets,
		}),
	}

	prometheus.MustRegister(c.filesParsed)
	prometheus.MustRegister(c.filesCorrupted)
	prometheus.MustRegister(c.filesArchived)
	prometheus.MustRegister(c.editsWritten)
	prometheus.MustRegister(c.orphanLogs)
	prometheus.MustRegister(c.regionsRecovered)
	prometheus.MustRegister(c.splitDuration)
	prometheus.MustRegister(c.regionDuration)

	return c
}

// RecordParsed records a successfully parsed log file.
func (c *Collector) RecordParsed() {
	c.filesParsed.Inc()
}

// RecordCorrupted records a log file quarantined due to corruption.
func (c *Collector) RecordCorrupted() {
	c.filesCorrupted.Inc()
}

// RecordArchived records a log file moved to the old-logs directory.
func (c *Collector) RecordArchived() {
	c.filesArchived.Inc()
}

// RecordEditsWritten adds n to the edits-written counter.
func (c *Collector) RecordEditsWritten(n int) {
	c.editsWritten.Add(float64(n))
}

// RecordOrphanLogs adds n to the orphan-logs counter.
func (c *Collector) RecordOrphanLogs(n int) {
	c.orphanLogs.Add(float64(n))
}

// SetRegionsRecovered sets the regions-recovered gauge for the current run.
func (c *Collector) SetRegionsRecovered(n int) {
	c.regionsRecovered.Set(float64(n))
}

// ObserveSplitDuration records the wall-clock time of a whole split run.
func (c *Collector) ObserveSplitDuration(seconds float64) {
	c.splitDuration.Observe(seconds)
}

// ObserveRegionFlushDuration records the time taken to flush one region.
func (c *Collector) ObserveRegionFlushDuration(seconds float64) {
	c.regionDuration.Observe(seconds)
}

// StartServer starts the Prometheus metrics HTTP server.
func StartServer(port int) error {
	http.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	return http.ListenAndServe(addr, nil)
}
