package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/shipmentdna/internal/invoice/domain"
	"github.com/smallbiznis/shipmentdna/internal/invoice/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Invoice{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func validCreateRequest() domain.CreateInvoiceRequest {
	return domain.CreateInvoiceRequest{
		InvoiceNumber: "TCI-2024-0501",
		VendorID:      "VEND-001",
		Amount:        "45250.00",
		InvoiceDate:   "2024-05-01",
		VehicleNumber: "MH-04-AB-1234",
	}
}

func TestCreate_PersistsSubmittedInvoice(t *testing.T) {
	svc := setupService(t)

	inv, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.NotZero(t, inv.ID)
	assert.Equal(t, domain.InvoiceStatusSubmitted, inv.Status)
	assert.Equal(t, "45250", inv.Amount.String())

	got, err := svc.GetByID(context.Background(), domain.GetInvoiceRequest{ID: inv.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)
}

func TestCreate_Validation(t *testing.T) {
	svc := setupService(t)

	tests := []struct {
		name    string
		mutate  func(*domain.CreateInvoiceRequest)
		wantErr error
	}{
		{"missing number", func(r *domain.CreateInvoiceRequest) { r.InvoiceNumber = "  " }, domain.ErrInvalidInvoiceNumber},
		{"missing vendor", func(r *domain.CreateInvoiceRequest) { r.VendorID = "" }, domain.ErrInvalidVendor},
		{"malformed amount", func(r *domain.CreateInvoiceRequest) { r.Amount = "45,250.00" }, domain.ErrInvalidAmount},
		{"negative amount", func(r *domain.CreateInvoiceRequest) { r.Amount = "-10" }, domain.ErrInvalidAmount},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.mutate(&req)

			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreate_MissingAmountTreatedAsZero(t *testing.T) {
	svc := setupService(t)

	req := validCreateRequest()
	req.Amount = ""
	inv, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, inv.Amount.IsZero())
}

func TestCreate_RejectsExactNumberResubmission(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validCreateRequest())
	assert.ErrorIs(t, err, domain.ErrDuplicateNumber)

	// Same number under another vendor is a distinct invoice.
	req := validCreateRequest()
	req.VendorID = "VEND-002"
	_, err = svc.Create(context.Background(), req)
	assert.NoError(t, err)
}

func TestList_FiltersAndPaginates(t *testing.T) {
	svc := setupService(t)

	for i := 0; i < 3; i++ {
		req := validCreateRequest()
		req.InvoiceNumber = req.InvoiceNumber + "-" + string(rune('A'+i))
		_, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
	}
	other := validCreateRequest()
	other.VendorID = "VEND-002"
	_, err := svc.Create(context.Background(), other)
	require.NoError(t, err)

	resp, err := svc.List(context.Background(), domain.ListInvoiceRequest{VendorID: "VEND-001", PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Invoices, 2)
	assert.True(t, resp.HasMore)

	next, err := svc.List(context.Background(), domain.ListInvoiceRequest{
		VendorID:  "VEND-001",
		PageSize:  2,
		PageToken: resp.NextPageToken,
	})
	require.NoError(t, err)
	assert.Len(t, next.Invoices, 1)
	assert.False(t, next.HasMore)
}

func TestGetByID_Errors(t *testing.T) {
	svc := setupService(t)

	_, err := svc.GetByID(context.Background(), domain.GetInvoiceRequest{ID: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	node, _ := snowflake.NewNode(2)
	_, err = svc.GetByID(context.Background(), domain.GetInvoiceRequest{ID: node.Generate().String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
