package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/shipmentdna/internal/invoice/domain"
	"github.com/smallbiznis/shipmentdna/pkg/db"
	"github.com/smallbiznis/shipmentdna/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		return nil, domain.ErrInvalidInvoiceNumber
	}
	vendorID := strings.TrimSpace(req.VendorID)
	if vendorID == "" {
		return nil, domain.ErrInvalidVendor
	}

	amount := decimal.Zero
	if raw := strings.TrimSpace(req.Amount); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.IsNegative() {
			return nil, domain.ErrInvalidAmount
		}
		amount = parsed
	}

	now := time.Now().UTC()
	invoice := &domain.Invoice{
		ID:            s.genID.Generate(),
		InvoiceNumber: number,
		VendorID:      vendorID,
		Amount:        amount,
		InvoiceDate:   strings.TrimSpace(req.InvoiceDate),
		VehicleNumber: strings.TrimSpace(req.VehicleNumber),
		Status:        domain.InvoiceStatusSubmitted,
		Metadata:      datatypes.JSONMap(req.Metadata),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if invoice.Metadata == nil {
		invoice.Metadata = datatypes.JSONMap{}
	}

	if err := s.repo.Insert(ctx, s.db, invoice); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateNumber
		}
		s.log.Error("insert invoice failed", zap.Error(err))
		return nil, err
	}

	return invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	pageSize := int(req.PageSize)
	if pageSize <= 0 {
		pageSize = 10
	}

	invoices, err := s.repo.List(ctx, s.db, domain.ListInvoiceFilter{
		VendorID:      strings.TrimSpace(req.VendorID),
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
		Status:        req.Status,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(invoices, int32(pageSize), func(inv *domain.Invoice) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: inv.ID.String()})
		return token
	})
	if len(invoices) > pageSize {
		invoices = invoices[:pageSize]
	}

	return domain.ListInvoiceResponse{
		PageInfo: *pageInfo,
		Invoices: invoices,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetInvoiceRequest) (*domain.Invoice, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}
