package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/shipmentdna/internal/clock"
	"github.com/smallbiznis/shipmentdna/internal/dedup"
	detectiondomain "github.com/smallbiznis/shipmentdna/internal/detection/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubDetectionSvc struct {
	runs     atomic.Int64
	failWith error
}

func (s *stubDetectionSvc) RunScan(ctx context.Context, req detectiondomain.RunScanRequest) (*detectiondomain.RunScanResponse, error) {
	s.runs.Add(1)
	if s.failWith != nil {
		return nil, s.failWith
	}
	node, _ := snowflake.NewNode(1)
	return &detectiondomain.RunScanResponse{
		ScanRun: &detectiondomain.ScanRun{ID: node.Generate(), Trigger: req.Trigger},
		Report:  &dedup.ScanReport{},
	}, nil
}

func (s *stubDetectionSvc) GetScanRun(context.Context, detectiondomain.GetScanRunRequest) (*detectiondomain.ScanRun, error) {
	return nil, detectiondomain.ErrScanNotFound
}

func (s *stubDetectionSvc) CheckInvoice(context.Context, detectiondomain.CheckInvoiceRequest) (*detectiondomain.CheckInvoiceResponse, error) {
	return nil, detectiondomain.ErrInvoiceNotFound
}

func newTestScheduler(t *testing.T, svc detectiondomain.Service) *Scheduler {
	t.Helper()

	sched, err := New(Params{
		Log:          zap.NewNop(),
		DetectionSvc: svc,
		Clock:        clock.NewFakeClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
		Config:       Config{ScanInterval: 10 * time.Millisecond},
	})
	require.NoError(t, err)
	return sched
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunOnce_TriggersBatchScan(t *testing.T) {
	svc := &stubDetectionSvc{}
	sched := newTestScheduler(t, svc)

	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, int64(1), svc.runs.Load())
}

func TestRunOnce_PropagatesScanError(t *testing.T) {
	svc := &stubDetectionSvc{failWith: errors.New("boom")}
	sched := newTestScheduler(t, svc)

	assert.Error(t, sched.RunOnce(context.Background()))
}

func TestRunForever_StopsOnCancel(t *testing.T) {
	svc := &stubDetectionSvc{}
	sched := newTestScheduler(t, svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.RunForever(ctx)
		close(done)
	}()

	// Let at least the first run fire, then stop.
	assert.Eventually(t, func() bool { return svc.runs.Load() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
