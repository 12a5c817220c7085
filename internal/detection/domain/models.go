package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Scan triggers. Batch scans walk the whole corpus; submit checks run a
// single invoice against its vendor's history.
const (
	TriggerBatch  = "batch"
	TriggerSubmit = "submit"
)

const (
	ScanStatusCompleted = "COMPLETED"
	ScanStatusFailed    = "FAILED"
)

// ScanRun is the persisted record of one duplicate scan: the effective
// parameters, the summary counts, and a JSON snapshot of the flagged
// pairs as they were ranked at scan time.
type ScanRun struct {
	ID                 snowflake.ID    `gorm:"primaryKey" json:"id"`
	Trigger            string          `gorm:"type:text;not null" json:"trigger"`
	VendorID           string          `gorm:"type:text;index" json:"vendor_id,omitempty"`
	Threshold          float64         `gorm:"not null" json:"threshold"`
	Status             string          `gorm:"type:text;not null" json:"status"`
	TotalScanned       int             `json:"total_scanned"`
	PairsAnalyzed      int             `json:"pairs_analyzed"`
	DuplicatesDetected int             `json:"duplicates_detected"`
	HighRiskCount      int             `json:"high_risk_count"`
	MediumRiskCount    int             `json:"medium_risk_count"`
	TotalAmountAtRisk  decimal.Decimal `gorm:"type:decimal(20,4)" json:"total_amount_at_risk"`
	Pairs              datatypes.JSON  `gorm:"type:jsonb" json:"pairs"`
	StartedAt          time.Time       `json:"started_at"`
	CompletedAt        time.Time       `json:"completed_at"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ScanRun) TableName() string {
	return "detection_scan_runs"
}
