package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/shipmentdna/pkg/db/pagination"
)

type ListInvoiceRequest struct {
	PageToken     string
	PageSize      int32
	VendorID      string
	InvoiceNumber string
	Status        string
}

type ListInvoiceFilter struct {
	VendorID      string
	InvoiceNumber string
	Status        string
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []*Invoice `json:"invoices"`
}

type CreateInvoiceRequest struct {
	InvoiceNumber string         `json:"invoice_number"`
	VendorID      string         `json:"vendor_id"`
	Amount        string         `json:"amount"`
	InvoiceDate   string         `json:"invoice_date"`
	VehicleNumber string         `json:"vehicle_number"`
	Metadata      map[string]any `json:"metadata"`
}

type GetInvoiceRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (*Invoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(context.Context, GetInvoiceRequest) (*Invoice, error)
}

var (
	ErrInvalidInvoiceNumber = errors.New("invalid_invoice_number")
	ErrInvalidVendor        = errors.New("invalid_vendor")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidID            = errors.New("invalid_id")
	ErrDuplicateNumber      = errors.New("duplicate_invoice_number")
	ErrNotFound             = errors.New("not_found")
)
