// Package scheduler runs periodic whole-corpus duplicate scans so flagged
// pairs surface without anyone calling the scan endpoint.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/shipmentdna/internal/clock"
	detectiondomain "github.com/smallbiznis/shipmentdna/internal/detection/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

type Params struct {
	fx.In

	Log          *zap.Logger
	DetectionSvc detectiondomain.Service
	Clock        clock.Clock
	Config       Config `optional:"true"`
}

type Scheduler struct {
	log          *zap.Logger
	cfg          Config
	clock        clock.Clock
	detectionSvc detectiondomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.DetectionSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:          p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:          p.Config.withDefaults(),
		clock:        p.Clock,
		detectionSvc: p.DetectionSvc,
	}, nil
}

// RunOnce performs one batch scan over the full corpus.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ScanTimeout)
	defer cancel()

	start := s.clock.Now()
	resp, err := s.detectionSvc.RunScan(ctx, detectiondomain.RunScanRequest{
		Trigger: detectiondomain.TriggerBatch,
	})
	if err != nil {
		return err
	}

	s.log.Info("scheduled scan completed",
		zap.String("scan_id", resp.ScanRun.ID.String()),
		zap.Int("total_scanned", resp.Report.Summary.TotalScanned),
		zap.Int("duplicates_detected", resp.Report.Summary.DuplicatesDetected),
		zap.Duration("elapsed", s.clock.Now().Sub(start)),
	)
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduled scan failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
