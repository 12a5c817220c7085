package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/shipmentdna/internal/clock"
	"github.com/smallbiznis/shipmentdna/internal/config"
	"github.com/smallbiznis/shipmentdna/internal/dedup"
	"github.com/smallbiznis/shipmentdna/internal/detection/domain"
	invoicedomain "github.com/smallbiznis/shipmentdna/internal/invoice/domain"
	"github.com/smallbiznis/shipmentdna/internal/observability/logger"
	"github.com/smallbiznis/shipmentdna/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	InvoiceRepo invoicedomain.Repository
	Holder      *config.DetectionConfigHolder
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	invoiceRepo invoicedomain.Repository
	holder      *config.DetectionConfigHolder
	metrics     *metrics.Metrics
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("detection.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		invoiceRepo: p.InvoiceRepo,
		holder:      p.Holder,
		metrics:     p.Metrics,
	}
}

func (s *Service) RunScan(ctx context.Context, req domain.RunScanRequest) (*domain.RunScanResponse, error) {
	cfg := s.holder.Get()

	threshold := cfg.Threshold
	if req.Threshold != 0 {
		if req.Threshold < 0 || req.Threshold > 1 {
			return nil, domain.ErrInvalidThreshold
		}
		threshold = req.Threshold
	}

	trigger := req.Trigger
	if trigger == "" {
		trigger = domain.TriggerBatch
	}
	vendorID := strings.TrimSpace(req.VendorID)

	started := s.clock.Now()

	invoices, err := s.loadCorpus(ctx, vendorID)
	if err != nil {
		metrics.Scan().ObserveScanError(metrics.ScanErrorTypeDB)
		return nil, err
	}
	records := invoicedomain.EngineRecords(invoices)

	scanner := dedup.NewScanner(dedup.NewScorer(dedup.Config{
		AmountTolerancePct: cfg.AmountTolerancePct,
		DateToleranceDays:  cfg.DateToleranceDays,
	}))
	report, err := scanner.Scan(ctx, records, dedup.ScanOptions{Threshold: threshold})
	if err != nil {
		metrics.Scan().ObserveScanError(classifyScanError(err))
		if s.metrics != nil {
			s.metrics.RecordScanRun(ctx, "failed", s.clock.Now().Sub(started))
		}
		return nil, err
	}
	completed := s.clock.Now()
	elapsed := completed.Sub(started)

	pairsJSON, err := json.Marshal(report.Pairs)
	if err != nil {
		return nil, err
	}

	run := &domain.ScanRun{
		ID:                 s.genID.Generate(),
		Trigger:            trigger,
		VendorID:           vendorID,
		Threshold:          threshold,
		Status:             domain.ScanStatusCompleted,
		TotalScanned:       report.Summary.TotalScanned,
		PairsAnalyzed:      report.Summary.PairsAnalyzed,
		DuplicatesDetected: report.Summary.DuplicatesDetected,
		HighRiskCount:      report.Summary.HighRiskCount,
		MediumRiskCount:    report.Summary.MediumRiskCount,
		TotalAmountAtRisk:  report.Summary.TotalAmountAtRisk,
		Pairs:              datatypes.JSON(pairsJSON),
		StartedAt:          started,
		CompletedAt:        completed,
	}
	if err := s.repo.Insert(ctx, s.db, run); err != nil {
		metrics.Scan().ObserveScanError(metrics.ScanErrorTypeDB)
		return nil, err
	}

	metrics.Scan().ObserveScan(trigger, report.Summary.TotalScanned, elapsed)
	if s.metrics != nil {
		s.metrics.RecordScanRun(ctx, "completed", elapsed)
		s.metrics.RecordPairsAnalyzed(ctx, report.Summary.PairsAnalyzed)
		s.metrics.RecordDuplicatesFlagged(ctx, dedup.RiskHigh, report.Summary.HighRiskCount)
		s.metrics.RecordDuplicatesFlagged(ctx, dedup.RiskMedium, report.Summary.MediumRiskCount)
	}

	logger.WithScan(s.log, run.ID.String()).Info("duplicate scan completed",
		zap.String("trigger", trigger),
		zap.Int("total_scanned", report.Summary.TotalScanned),
		zap.Int("pairs_analyzed", report.Summary.PairsAnalyzed),
		zap.Int("duplicates_detected", report.Summary.DuplicatesDetected),
		zap.Duration("elapsed", elapsed),
	)

	return &domain.RunScanResponse{ScanRun: run, Report: report}, nil
}

func (s *Service) GetScanRun(ctx context.Context, req domain.GetScanRunRequest) (*domain.ScanRun, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	run, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, domain.ErrScanNotFound
	}
	return run, nil
}

func (s *Service) CheckInvoice(ctx context.Context, req domain.CheckInvoiceRequest) (*domain.CheckInvoiceResponse, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.InvoiceID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrInvoiceNotFound
	}

	corpus, err := s.invoiceRepo.ListByVendor(ctx, s.db, invoice.VendorID)
	if err != nil {
		return nil, err
	}

	cfg := s.holder.Get()
	scanner := dedup.NewScanner(dedup.NewScorer(dedup.Config{
		AmountTolerancePct: cfg.AmountTolerancePct,
		DateToleranceDays:  cfg.DateToleranceDays,
	}))
	matches, err := scanner.DetectAgainst(ctx, invoice.EngineRecord(), invoicedomain.EngineRecords(corpus), dedup.ScanOptions{
		Threshold: cfg.Threshold,
	})
	if err != nil {
		return nil, err
	}

	resp := &domain.CheckInvoiceResponse{
		Invoice:        invoice,
		Matches:        matches,
		Recommendation: domain.RecommendationProceed,
	}
	for _, match := range matches {
		if match.Similarity.IsPotentialDuplicate {
			resp.IsPotentialDuplicate = true
		}
		if match.Similarity.IsLikelyDuplicate {
			resp.IsLikelyDuplicate = true
		}
	}
	switch {
	case resp.IsLikelyDuplicate:
		resp.Recommendation = dedup.RecommendationBlock
	case resp.IsPotentialDuplicate:
		resp.Recommendation = dedup.RecommendationReview
	}

	if s.metrics != nil {
		s.metrics.RecordDuplicateCheck(ctx, strings.ToLower(resp.Recommendation))
	}

	return resp, nil
}

func (s *Service) loadCorpus(ctx context.Context, vendorID string) ([]*invoicedomain.Invoice, error) {
	if vendorID != "" {
		return s.invoiceRepo.ListByVendor(ctx, s.db, vendorID)
	}
	return s.invoiceRepo.ListAll(ctx, s.db)
}

func classifyScanError(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ScanErrorTypeCanceled
	default:
		return metrics.ScanErrorTypeUnknown
	}
}
