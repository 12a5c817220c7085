package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/shipmentdna/internal/dedup"
	invoicedomain "github.com/smallbiznis/shipmentdna/internal/invoice/domain"
)

// RecommendationProceed is the submit-check verdict when no existing
// invoice crosses the flagging threshold. Flagged verdicts reuse the
// engine's BLOCK and REVIEW recommendations.
const RecommendationProceed = "PROCEED"

type RunScanRequest struct {
	// VendorID restricts the scan to one vendor's invoices when set.
	VendorID string `json:"vendor_id"`
	// Threshold overrides the configured flagging threshold when > 0.
	Threshold float64 `json:"threshold"`
	Trigger   string  `json:"-"`
}

// RunScanResponse pairs the persisted run with the full ranked report.
type RunScanResponse struct {
	ScanRun *ScanRun          `json:"scan_run"`
	Report  *dedup.ScanReport `json:"report"`
}

type GetScanRunRequest struct {
	ID string
}

type CheckInvoiceRequest struct {
	InvoiceID string
}

// CheckInvoiceResponse is the submit-time verdict for one invoice against
// its vendor's existing invoices.
type CheckInvoiceResponse struct {
	Invoice              *invoicedomain.Invoice `json:"invoice"`
	Matches              []dedup.DuplicatePair  `json:"matches"`
	IsPotentialDuplicate bool                   `json:"is_potential_duplicate"`
	IsLikelyDuplicate    bool                   `json:"is_likely_duplicate"`
	Recommendation       string                 `json:"recommendation"`
}

type Service interface {
	RunScan(context.Context, RunScanRequest) (*RunScanResponse, error)
	GetScanRun(context.Context, GetScanRunRequest) (*ScanRun, error)
	CheckInvoice(context.Context, CheckInvoiceRequest) (*CheckInvoiceResponse, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidThreshold = errors.New("invalid_threshold")
	ErrScanNotFound     = errors.New("scan_not_found")
	ErrInvoiceNotFound  = errors.New("invoice_not_found")
)
