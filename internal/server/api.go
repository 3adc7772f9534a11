// Package server provides the arcaudit Gin-based report API and UI.
//
//	GET  /api/health   liveness plus host info
//	GET  /api/report   summary, chart, status table, detail tables, filter options
//	GET  /api/export   spreadsheet or zipped CSV download
//	POST /api/reload   re-read both sources
//	GET  /metrics      Prometheus metrics
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vesaa/arcaudit/internal/audit"
	"github.com/vesaa/arcaudit/internal/metrics"
	"github.com/vesaa/arcaudit/internal/models"
	"github.com/vesaa/arcaudit/internal/pipeline"
	"github.com/vesaa/arcaudit/internal/report"
)

// RegisterRoutes wires up the report API on the given engine.
func RegisterRoutes(r *gin.Engine, svc *audit.Service, m *metrics.Metrics) {
	h := &handlers{svc: svc}

	api := r.Group("/api")
	{
		api.GET("/health", handleHealth)
		api.GET("/report", h.handleReport)
		api.GET("/export", h.handleExport)
		api.POST("/reload", h.handleReload)
	}

	r.GET("/metrics", gin.WrapH(m.Handler()))
}

type handlers struct {
	svc *audit.Service
}

// selectionFromQuery reads the five dynamic filters; each parameter may repeat.
//
//	/api/report?env=PROD&env=DEV&exclude_host=srv01
func selectionFromQuery(c *gin.Context) pipeline.Selection {
	return pipeline.Selection{
		OS:               c.QueryArray("os"),
		States:           c.QueryArray("state"),
		Environments:     c.QueryArray("env"),
		ExcludeLocations: c.QueryArray("exclude_location"),
		ExcludeHosts:     c.QueryArray("exclude_host"),
	}
}

// handleReport renders the report for the selection in the query string.
func (h *handlers) handleReport(c *gin.Context) {
	res, err := h.svc.Report(selectionFromQuery(c))
	if err != nil {
		abortWithPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

// handleExport streams the detail tables as an attachment.
//
//	GET /api/export?format=xlsx|csv&<filters>
func (h *handlers) handleExport(c *gin.Context) {
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	file, err := h.svc.Export(selectionFromQuery(c), format)
	if err != nil {
		abortWithPipelineError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// handleReload re-reads both sources from disk.
func (h *handlers) handleReload(c *gin.Context) {
	if err := h.svc.Reload(); err != nil {
		abortWithPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// abortWithPipelineError renders a halted run. Source problems are reported
// as 503 so the UI can ask the operator to fix the files and reload.
func abortWithPipelineError(c *gin.Context, err error) {
	kind := models.Kind(err)
	status := http.StatusInternalServerError
	switch {
	case kind == models.KindSourceRead, errors.Is(err, audit.ErrNoData):
		status = http.StatusServiceUnavailable
	case kind == models.KindMissingColumn, kind == models.KindJoin:
		status = http.StatusUnprocessableEntity
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "kind": kind})
}
