package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	reportapp "github.com/tafa/dashboard/internal/application/report"
	"github.com/tafa/dashboard/internal/domain/ledger"
	domainreport "github.com/tafa/dashboard/internal/domain/report"
	"github.com/tafa/dashboard/internal/infrastructure/export"
)

// ReportQuery holds the scalar query parameters shared by report and table routes.
// Selections are repeated parameters and are read separately.
type ReportQuery struct {
	StartDate string `form:"start_date" binding:"omitempty,yyyymmdd"`
	EndDate   string `form:"end_date" binding:"omitempty,yyyymmdd"`
	Dimension string `form:"dimension" binding:"omitempty,max=64"`
	Axis      string `form:"axis" binding:"omitempty,oneof=union overlap"`
	Format    string `form:"format" binding:"omitempty,oneof=json csv xlsx"`
}

// Filter converts the query into a report filter. A selection parameter
// present in the query is active; blank values are dropped, so ?name=
// selects nothing rather than the rows with an empty name.
func (q ReportQuery) Filter(c *gin.Context) reportapp.Filter {
	f := reportapp.Filter{
		Start:     parseDay(q.StartDate),
		End:       parseDay(q.EndDate),
		Dimension: q.Dimension,
		Axis:      domainreport.Axis(q.Axis),
	}
	for _, p := range reportapp.SelectionParams() {
		values, ok := c.GetQueryArray(p)
		if !ok {
			continue
		}
		if f.Selections == nil {
			f.Selections = make(map[string][]string)
		}
		f.Selections[p] = nonBlank(values)
	}
	return f
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// ExportFormat returns the requested format or def when none was given
func (q ReportQuery) ExportFormat(def export.Format) export.Format {
	if q.Format == "" {
		return def
	}
	f, _ := export.ParseFormat(q.Format)
	return f
}

// parseDay reads an already validated yyyy-mm-dd value
func parseDay(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.Parse(ledger.DateLayout, s)
	if err != nil {
		return nil
	}
	return &d
}

// bindQuery binds and validates the query, answering 400 on failure
func (h *BaseHandler) bindQuery(c *gin.Context) (ReportQuery, bool) {
	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return q, false
	}
	return q, true
}
