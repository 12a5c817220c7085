// Package seed bootstraps sample freight invoices for local development.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/shipmentdna/internal/invoice/domain"
	"gorm.io/gorm"
)

type sample struct {
	number  string
	vendor  string
	amount  string
	date    string
	vehicle string
}

// A corpus with one near-duplicate resubmission, so a first scan against
// seeded data reports something.
var samples = []sample{
	{"TCI-2024-0501", "VEND-TransCargo", "45250.00", "2024-05-01", "MH-04-AB-1234"},
	{"TCI-2024-0501/A", "VEND-TransCargo", "45476.25", "2024-05-02", "MH-04-AB-1234"},
	{"TCI-2024-0517", "VEND-TransCargo", "61800.00", "2024-05-17", "MH-12-CD-5678"},
	{"RFL-88211", "VEND-RoadFleet", "12750.00", "15-05-2024", "KA-01-ZZ-9999"},
	{"RFL-88305", "VEND-RoadFleet", "9400.00", "21/05/2024", "KA-05-XY-4321"},
}

// EnsureSampleInvoices inserts the sample corpus once; reruns are no-ops.
func EnsureSampleInvoices(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).Model(&invoicedomain.Invoice{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		for _, s := range samples {
			amount, err := decimal.NewFromString(s.amount)
			if err != nil {
				return err
			}
			inv := invoicedomain.Invoice{
				ID:            node.Generate(),
				InvoiceNumber: s.number,
				VendorID:      s.vendor,
				Amount:        amount,
				InvoiceDate:   s.date,
				VehicleNumber: s.vehicle,
				Status:        invoicedomain.InvoiceStatusSubmitted,
			}
			if err := tx.WithContext(ctx).Create(&inv).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
