package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/shipmentdna/internal/clock"
	"github.com/smallbiznis/shipmentdna/internal/config"
	detectiondomain "github.com/smallbiznis/shipmentdna/internal/detection/domain"
	detectionrepo "github.com/smallbiznis/shipmentdna/internal/detection/repository"
	detectionservice "github.com/smallbiznis/shipmentdna/internal/detection/service"
	invoicedomain "github.com/smallbiznis/shipmentdna/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/shipmentdna/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/shipmentdna/internal/invoice/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&invoicedomain.Invoice{}, &detectiondomain.ScanRun{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder, err := config.NewDetectionConfigHolder()
	require.NoError(t, err)

	log := zap.NewNop()
	invoiceSvc := invoiceservice.NewService(invoiceservice.ServiceParam{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  invoicerepo.Provide(),
	})
	detectionSvc := detectionservice.NewService(detectionservice.ServiceParam{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       clock.NewSystemClock(),
		Repo:        detectionrepo.Provide(),
		InvoiceRepo: invoicerepo.Provide(),
		Holder:      holder,
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	return NewServer(ServerParams{
		Gin:          engine,
		Cfg:          config.Config{Environment: "test", HTTPAddr: ":0"},
		DB:           db,
		GenID:        node,
		InvoiceSvc:   invoiceSvc,
		DetectionSvc: detectionSvc,
	})
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func createInvoice(t *testing.T, srv *Server, number, vendor, amount, date, vehicle string) string {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/invoices", map[string]any{
		"invoice_number": number,
		"vendor_id":      vendor,
		"amount":         amount,
		"invoice_date":   date,
		"vehicle_number": vehicle,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			ID snowflake.ID `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data.ID.String()
}

func TestCreateInvoiceEndpoint(t *testing.T) {
	srv := setupServer(t)

	createInvoice(t, srv, "TCI-2024-0501", "VEND-001", "45250.00", "2024-05-01", "MH-04-AB-1234")

	// Exact resubmission of the same number is a conflict.
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/invoices", map[string]any{
		"invoice_number": "TCI-2024-0501",
		"vendor_id":      "VEND-001",
		"amount":         "45250.00",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/invoices", map[string]any{
		"vendor_id": "VEND-001",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListInvoicesEndpoint(t *testing.T) {
	srv := setupServer(t)
	createInvoice(t, srv, "TCI-2024-0501", "VEND-001", "45250.00", "2024-05-01", "MH-04-AB-1234")
	createInvoice(t, srv, "TCI-2024-0502", "VEND-002", "12000.00", "2024-05-02", "KA-01-ZZ-9999")

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/invoices?vendor_id=VEND-001", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/invoices?page_size=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDuplicateScanEndpoints(t *testing.T) {
	srv := setupServer(t)
	createInvoice(t, srv, "TCI-2024-0501", "VEND-001", "45250.00", "2024-05-01", "MH-04-AB-1234")
	createInvoice(t, srv, "TCI-2024-0501/A", "VEND-001", "45476.25", "2024-05-02", "MH-04-AB-1234")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/duplicate-scans", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var scanResp struct {
		Data struct {
			ID snowflake.ID `json:"id"`
		} `json:"data"`
		Summary struct {
			TotalScanned       int `json:"total_scanned"`
			DuplicatesDetected int `json:"duplicates_detected"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scanResp))
	assert.Equal(t, 2, scanResp.Summary.TotalScanned)
	assert.Equal(t, 1, scanResp.Summary.DuplicatesDetected)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/duplicate-scans/"+scanResp.Data.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/duplicate-scans/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	node, _ := snowflake.NewNode(2)
	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/duplicate-scans/%s", node.Generate()), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDuplicateCheckEndpoint(t *testing.T) {
	srv := setupServer(t)
	createInvoice(t, srv, "TCI-2024-0501", "VEND-001", "45250.00", "2024-05-01", "MH-04-AB-1234")
	resubID := createInvoice(t, srv, "TCI-2024-0501/A", "VEND-001", "45476.25", "2024-05-02", "MH-04-AB-1234")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/invoices/"+resubID+"/duplicate-check", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			IsLikelyDuplicate bool   `json:"is_likely_duplicate"`
			Recommendation    string `json:"recommendation"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.IsLikelyDuplicate)
	assert.Equal(t, "BLOCK", resp.Data.Recommendation)
}

func TestCleanupEndpoint(t *testing.T) {
	srv := setupServer(t)
	createInvoice(t, srv, "e2e-TCI-0001", "VEND-001", "100.00", "2024-05-01", "MH-04-AB-1234")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/test/cleanup", map[string]any{"prefix": "e2e-"})
	require.Equal(t, http.StatusOK, rec.Code)

	list := doJSON(t, srv, http.MethodGet, "/api/v1/invoices", nil)
	var resp struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data)
}
