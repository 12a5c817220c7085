package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments for the detection engine.
type Metrics struct {
	scanRuns          metric.Int64Counter
	pairsAnalyzed     metric.Int64Counter
	duplicatesFlagged metric.Int64Counter
	duplicateChecks   metric.Int64Counter
	scanDuration      metric.Float64Histogram
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "shipmentdna"
	}
	meter := provider.Meter(name)

	scanRuns, err := meter.Int64Counter("shipmentdna_scan_runs_total")
	if err != nil {
		return nil, err
	}
	pairsAnalyzed, err := meter.Int64Counter("shipmentdna_pairs_analyzed_total")
	if err != nil {
		return nil, err
	}
	duplicatesFlagged, err := meter.Int64Counter("shipmentdna_duplicates_flagged_total")
	if err != nil {
		return nil, err
	}
	duplicateChecks, err := meter.Int64Counter("shipmentdna_duplicate_checks_total")
	if err != nil {
		return nil, err
	}
	scanDuration, err := meter.Float64Histogram("shipmentdna_scan_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		scanRuns:          scanRuns,
		pairsAnalyzed:     pairsAnalyzed,
		duplicatesFlagged: duplicatesFlagged,
		duplicateChecks:   duplicateChecks,
		scanDuration:      scanDuration,
	}, nil
}

// RecordScanRun counts a completed corpus scan and its duration.
func (m *Metrics) RecordScanRun(ctx context.Context, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.scanRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.scanDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

// RecordPairsAnalyzed counts scored invoice pairs.
func (m *Metrics) RecordPairsAnalyzed(ctx context.Context, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.pairsAnalyzed.Add(ctx, int64(count))
}

// RecordDuplicatesFlagged counts flagged pairs by risk level.
func (m *Metrics) RecordDuplicatesFlagged(ctx context.Context, riskLevel string, count int) {
	if m == nil || count <= 0 {
		return
	}
	attrs := FilterAttributes(attribute.String("risk_level", strings.TrimSpace(riskLevel)))
	m.duplicatesFlagged.Add(ctx, int64(count), metric.WithAttributes(attrs...))
}

// RecordDuplicateCheck counts single-invoice check-on-submit calls.
func (m *Metrics) RecordDuplicateCheck(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.duplicateChecks.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// HTTPMetrics carries the inbound request instruments.
type HTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewHTTPMetrics configures the HTTP server instruments.
func NewHTTPMetrics(cfg Config, provider metric.MeterProvider) (*HTTPMetrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "shipmentdna"
	}
	meter := provider.Meter(name)

	requests, err := meter.Int64Counter("shipmentdna_http_requests_total")
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("shipmentdna_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{requests: requests, duration: duration}, nil
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		attrs := FilterAttributes(
			attribute.String("endpoint", route),
			attribute.String("status_code", fmt.Sprintf("%d", c.Writer.Status())),
		)
		ctx := c.Request.Context()
		m.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
		m.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attrs...))
	}
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint":    {},
	"status_code": {},
	"status":      {},
	"risk_level":  {},
	"outcome":     {},
	"trigger":     {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
