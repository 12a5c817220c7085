package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("endpoint", "/api/v1/duplicate-scans"),
		attribute.String("vendor_id", "VEND-001"),
		attribute.String("risk_level", "HIGH"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	for _, attr := range attrs {
		if attr.Key == "vendor_id" {
			t.Fatalf("expected vendor_id to be dropped")
		}
	}
}

func TestScanMetricsObserve(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newScanMetrics(registry, Config{ServiceName: "shipmentdna", Environment: "test"})

	m.ObserveScan("batch", 120, 250*time.Millisecond)
	m.ObserveScan("submit", 1, 2*time.Millisecond)
	m.ObserveScanError(ScanErrorTypeDB)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}
}

func TestNormalizeTrigger(t *testing.T) {
	cases := map[string]string{
		"batch":  "batch",
		"Submit": "submit",
		"check":  "submit",
		"":       "unknown",
	}
	for in, want := range cases {
		if got := normalizeTrigger(in); got != want {
			t.Fatalf("normalizeTrigger(%q) = %q, want %q", in, got, want)
		}
	}
}
