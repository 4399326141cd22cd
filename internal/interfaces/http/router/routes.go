package router

import "github.com/tafa/dashboard/internal/interfaces/http/handler"

// Handlers are the HTTP handlers of the dashboard API
type Handlers struct {
	Reports *handler.ReportHandler
	Tables  *handler.TableHandler
	System  *handler.SystemHandler
}

// DashboardGroups builds the report, table and system route groups
func DashboardGroups(h Handlers) []RouteRegistrar {
	reports := NewDomainGroup("report", "/reports")
	reports.GET("", h.Reports.ListPages)
	for _, page := range h.Reports.Pages() {
		reports.GET("/"+page, h.Reports.Page(page))
	}
	reports.GET("/:page/export/:section", h.Reports.ExportSection)

	tables := NewDomainGroup("table", "/tables")
	tables.GET("", h.Tables.ListTables)
	tables.GET("/:name", h.Tables.GetTable)
	tables.POST("/reload", h.Tables.Reload)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)
	system.GET("/ping", h.System.Ping)

	return []RouteRegistrar{reports, tables, system}
}
