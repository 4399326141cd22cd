package handler

import (
	"github.com/gin-gonic/gin"
	reportapp "github.com/tafa/dashboard/internal/application/report"
	"github.com/tafa/dashboard/internal/infrastructure/export"
)

// ReportHandler serves the dashboard pages and their section downloads
type ReportHandler struct {
	BaseHandler
	reports *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Pages lists the page names served by Page
func (h *ReportHandler) Pages() []string {
	return h.reports.Pages()
}

// Page returns the handler of one page
func (h *ReportHandler) Page(page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := h.bindQuery(c)
		if !ok {
			return
		}
		result, err := h.reports.Page(c.Request.Context(), page, q.Filter(c))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, result)
	}
}

// ExportSection downloads one result table of a page.
// GET /reports/:page/export/:section?format=csv|xlsx|json, csv by default.
func (h *ReportHandler) ExportSection(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	page, section := c.Param("page"), c.Param("section")

	t, err := h.reports.Section(c.Request.Context(), page, section, q.Filter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	format := q.ExportFormat(export.FormatCSV)
	if format == export.FormatJSON {
		h.Success(c, reportapp.NewTableResponse(t))
		return
	}
	h.Download(c, t, format, page+"_"+section)
}

// PageIndexResponse lists the report pages
type PageIndexResponse struct {
	Pages []string `json:"pages"`
}

// ListPages answers GET /reports
func (h *ReportHandler) ListPages(c *gin.Context) {
	h.Success(c, PageIndexResponse{Pages: h.Pages()})
}
