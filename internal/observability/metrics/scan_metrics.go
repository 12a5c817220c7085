package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Scan error types reported by the detection service.
const (
	ScanErrorTypeCanceled = "canceled"
	ScanErrorTypeDB       = "db"
	ScanErrorTypeUnknown  = "unknown"
)

// ScanMetrics captures detection scan health signals on the Prometheus
// registry scraped at /metrics.
type ScanMetrics struct {
	scanRuns     *prometheus.CounterVec
	scanErrors   *prometheus.CounterVec
	scanDuration *prometheus.HistogramVec
	corpusSize   prometheus.Histogram
}

var (
	scanMetricsOnce sync.Once
	scanMetrics     *ScanMetrics
)

// Scan returns the singleton scan metrics registry.
func Scan() *ScanMetrics {
	return ScanWithConfig(Config{})
}

// ScanWithConfig returns the singleton scan metrics registry using config labels.
func ScanWithConfig(cfg Config) *ScanMetrics {
	scanMetricsOnce.Do(func() {
		scanMetrics = newScanMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return scanMetrics
}

// ResetScanMetricsForTest resets the scan metrics singleton for tests.
func ResetScanMetricsForTest() {
	scanMetricsOnce = sync.Once{}
	scanMetrics = nil
}

func newScanMetrics(registerer prometheus.Registerer, cfg Config) *ScanMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "shipmentdna"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &ScanMetrics{
		scanRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "shipmentdna_detection_scan_runs_total",
			Help:        "Completed duplicate detection scans by trigger.",
			ConstLabels: constLabels,
		}, []string{"trigger"}),
		scanErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "shipmentdna_detection_scan_errors_total",
			Help:        "Failed duplicate detection scans by error type.",
			ConstLabels: constLabels,
		}, []string{"error_type"}),
		scanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "shipmentdna_detection_scan_duration_seconds",
			Help:        "Wall-clock duration of duplicate detection scans.",
			Buckets:     prometheus.ExponentialBuckets(0.01, 2, 12),
			ConstLabels: constLabels,
		}, []string{"trigger"}),
		corpusSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "shipmentdna_detection_corpus_size",
			Help:        "Number of invoice records per scan.",
			Buckets:     prometheus.ExponentialBuckets(10, 4, 8),
			ConstLabels: constLabels,
		}),
	}

	for _, collector := range []prometheus.Collector{
		m.scanRuns, m.scanErrors, m.scanDuration, m.corpusSize,
	} {
		if err := registerer.Register(collector); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				_ = are
				continue
			}
		}
	}

	return m
}

// ObserveScan records one completed scan.
func (m *ScanMetrics) ObserveScan(trigger string, corpusSize int, elapsed time.Duration) {
	if m == nil {
		return
	}
	trigger = normalizeTrigger(trigger)
	m.scanRuns.WithLabelValues(trigger).Inc()
	m.scanDuration.WithLabelValues(trigger).Observe(elapsed.Seconds())
	m.corpusSize.Observe(float64(corpusSize))
}

// ObserveScanError records one failed scan.
func (m *ScanMetrics) ObserveScanError(errorType string) {
	if m == nil {
		return
	}
	errorType = strings.TrimSpace(errorType)
	if errorType == "" {
		errorType = ScanErrorTypeUnknown
	}
	m.scanErrors.WithLabelValues(errorType).Inc()
}

func normalizeTrigger(trigger string) string {
	switch strings.ToLower(strings.TrimSpace(trigger)) {
	case "batch":
		return "batch"
	case "submit", "check":
		return "submit"
	default:
		return "unknown"
	}
}
