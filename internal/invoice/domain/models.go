// Package domain contains persistence models for freight invoices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/shipmentdna/internal/dedup"
	"gorm.io/datatypes"
)

// InvoiceStatus represents freight invoice lifecycle states. The
// detection engine treats status as an opaque passthrough.
type InvoiceStatus string

const (
	InvoiceStatusSubmitted   InvoiceStatus = "SUBMITTED"
	InvoiceStatusUnderReview InvoiceStatus = "UNDER_REVIEW"
	InvoiceStatusApproved    InvoiceStatus = "APPROVED"
	InvoiceStatusBlocked     InvoiceStatus = "BLOCKED"
	InvoiceStatusPaid        InvoiceStatus = "PAID"
)

// Invoice represents a submitted freight invoice. InvoiceDate holds the
// raw extracted string; upstream intake does not normalize formats, the
// engine's date comparator does tolerant parsing instead.
type Invoice struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	InvoiceNumber string            `gorm:"type:text;not null;uniqueIndex:ux_freight_invoices_vendor_number,priority:2" json:"invoice_number"`
	VendorID      string            `gorm:"type:text;not null;uniqueIndex:ux_freight_invoices_vendor_number,priority:1;index" json:"vendor_id"`
	Amount        decimal.Decimal   `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`
	InvoiceDate   string            `gorm:"type:text" json:"invoice_date,omitempty"`
	VehicleNumber string            `gorm:"type:text" json:"vehicle_number,omitempty"`
	Status        InvoiceStatus     `gorm:"type:text;not null;default:'SUBMITTED'" json:"status"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "freight_invoices" }

// EngineRecord converts the stored invoice into the engine's input shape.
func (i Invoice) EngineRecord() dedup.Invoice {
	return dedup.Invoice{
		ID:            i.ID.String(),
		InvoiceNumber: i.InvoiceNumber,
		VendorID:      i.VendorID,
		Amount:        i.Amount,
		InvoiceDate:   i.InvoiceDate,
		VehicleNumber: i.VehicleNumber,
		Status:        string(i.Status),
	}
}

// EngineRecords converts a corpus slice for the engine.
func EngineRecords(invoices []*Invoice) []dedup.Invoice {
	records := make([]dedup.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		records = append(records, inv.EngineRecord())
	}
	return records
}
