package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	detectiondomain "github.com/smallbiznis/shipmentdna/internal/detection/domain"
)

func (s *Server) RunDuplicateScan(c *gin.Context) {
	var req detectiondomain.RunScanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}
	req.Trigger = detectiondomain.TriggerBatch

	resp, err := s.detectionSvc.RunScan(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":    resp.ScanRun,
		"summary": resp.Report.Summary,
		"pairs":   resp.Report.Pairs,
	})
}

func (s *Server) GetDuplicateScan(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	run, err := s.detectionSvc.GetScanRun(c.Request.Context(), detectiondomain.GetScanRunRequest{ID: id})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}

func (s *Server) CheckInvoiceForDuplicates(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	resp, err := s.detectionSvc.CheckInvoice(c.Request.Context(), detectiondomain.CheckInvoiceRequest{InvoiceID: id})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
