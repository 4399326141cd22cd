package handler

import (
	"github.com/gin-gonic/gin"
	reportapp "github.com/tafa/dashboard/internal/application/report"
	"github.com/tafa/dashboard/internal/infrastructure/export"
)

// TableHandler serves the filtered transaction views and cache control
type TableHandler struct {
	BaseHandler
	reports *reportapp.ReportService
	tables  *reportapp.TableService
}

// NewTableHandler creates a new TableHandler
func NewTableHandler(reports *reportapp.ReportService, tables *reportapp.TableService) *TableHandler {
	return &TableHandler{reports: reports, tables: tables}
}

// GetTable returns the filtered rows of one table, newest first.
// GET /tables/:name?format=json|csv|xlsx
func (h *TableHandler) GetTable(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	name := c.Param("name")

	t, err := h.reports.Transactions(c.Request.Context(), name, q.Filter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	format := q.ExportFormat(export.FormatJSON)
	if format == export.FormatJSON {
		h.Success(c, reportapp.NewTableResponse(t))
		return
	}
	h.Download(c, t, format, name)
}

// ReloadResponse reports which tables were invalidated
type ReloadResponse struct {
	Reloaded []string `json:"reloaded"`
}

// Reload invalidates one cached table, or all of them without ?name=.
// POST /tables/reload
func (h *TableHandler) Reload(c *gin.Context) {
	name := c.Query("name")
	if err := h.tables.Reload(c.Request.Context(), name); err != nil {
		h.HandleError(c, err)
		return
	}

	reloaded := h.tables.Names()
	if name != "" {
		reloaded = []string{name}
	}
	h.Success(c, ReloadResponse{Reloaded: reloaded})
}

// ListTables answers GET /tables
func (h *TableHandler) ListTables(c *gin.Context) {
	h.Success(c, gin.H{"tables": h.tables.Names()})
}
