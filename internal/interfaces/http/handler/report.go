package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	appreport "github.com/donortrack/backend/internal/application/report"
	"github.com/donortrack/backend/internal/domain/report"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves donor reports and exports
type ReportHandler struct {
	BaseHandler
	reports *appreport.ReportService
	exports *appreport.ExportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *appreport.ReportService, exports *appreport.ExportService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// ReportQuery selects a report over an optional date window
type ReportQuery struct {
	Type      string `form:"type" example:"financial"`
	StartDate string `form:"startDate" example:"2024-01-01"`
	EndDate   string `form:"endDate" example:"2024-12-31"`
	Format    string `form:"format" example:"json"`
}

// ExportRequest selects a report over a preset window
type ExportRequest struct {
	Type      string `json:"type" example:"donation"`
	Format    string `json:"format" example:"csv"`
	DateRange string `json:"dateRange" binding:"omitempty,oneof=last-week last-month last-quarter last-year all" example:"last-month"`
	Archive   bool   `json:"archive"`
}

// ArchivedExport points at an export kept in object storage
type ArchivedExport struct {
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// GetReport godoc
// @ID           getReport
// @Summary      Donation, financial or impact report
// @Description  JSON returns the report in the envelope; csv downloads an attachment. Dates are YYYY-MM-DD or RFC 3339.
// @Tags         reports
// @Produce      json
// @Produce      text/csv
// @Security     BearerAuth
// @Param        type      query string false "donation, financial or impact" default(donation)
// @Param        startDate query string false "Window start"
// @Param        endDate   query string false "Window end"
// @Param        format    query string false "json, csv or pdf" default(json)
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} ErrorResponse
// @Router       /reports [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	donorID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var q ReportQuery
	if !h.BindQuery(c, &q) {
		return
	}

	typ, err := report.ParseType(q.Type)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	format, err := appreport.ParseFormat(q.Format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	rng, err := parseDateRange(q.StartDate, q.EndDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	ctx := c.Request.Context()
	if format == appreport.FormatJSON {
		r, err := h.reports.BuildReport(ctx, appreport.BuildInput{Type: typ, DonorID: donorID, Range: rng})
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, r)
		return
	}

	result, err := h.exports.Export(ctx, appreport.ExportInput{
		DonorID: donorID,
		Type:    string(typ),
		Format:  string(format),
		Range:   &rng,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	attach(c, result)
}

// Export godoc
// @ID           exportReport
// @Summary      Export a report
// @Description  Encodes a report over a preset window. With archive the file is stored and a temporary download link returned.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Produce      text/csv
// @Security     BearerAuth
// @Param        request body ExportRequest true "Export options"
// @Success      200 {object} APIResponse[ArchivedExport]
// @Failure      400 {object} ErrorResponse
// @Router       /export [post]
func (h *ReportHandler) Export(c *gin.Context) {
	donorID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req ExportRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.exports.Export(c.Request.Context(), appreport.ExportInput{
		DonorID: donorID,
		Type:    req.Type,
		Format:  req.Format,
		Preset:  req.DateRange,
		Archive: req.Archive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !req.Archive {
		attach(c, result)
		return
	}
	h.Success(c, ArchivedExport{
		FileName:    result.FileName,
		ContentType: result.File.ContentType,
		DownloadURL: result.DownloadURL,
		ExpiresAt:   result.ExpiresAt,
	})
}

func attach(c *gin.Context, result *appreport.ExportResult) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.FileName))
	c.Data(http.StatusOK, result.File.ContentType, result.File.Data)
}

// parseDateRange accepts YYYY-MM-DD (UTC midnight) or RFC 3339 bounds;
// empty bounds stay open
func parseDateRange(start, end string) (report.DateRange, error) {
	s, err := parseDate("startDate", start)
	if err != nil {
		return report.DateRange{}, err
	}
	e, err := parseDate("endDate", end)
	if err != nil {
		return report.DateRange{}, err
	}
	return report.NewDateRange(s, e)
}

func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339Nano} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, shared.NewValidationError("%s must be YYYY-MM-DD or RFC 3339, got %q", field, value)
}
