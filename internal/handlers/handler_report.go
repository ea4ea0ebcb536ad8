package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/gst_return_app/internal/dto"
	"github.com/SscSPs/gst_return_app/internal/export"
	"github.com/SscSPs/gst_return_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// getReport godoc
// @Summary GST report
// @Description Sales and expense summaries, the GST journal and GST to pay for the session
// @Tags reports
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.ReportResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (another user's session)"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /sessions/{session_id}/report [get]
func (h *sessionHandler) getReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	report, err := h.sessionService.GenerateReport(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		respondServiceError(c, logger, err, "generate report")
		return
	}
	c.JSON(http.StatusOK, dto.ToReportResponse(report))
}

// downloadJournal godoc
// @Summary Download the GST journal
// @Description Journal rows as a CSV or XLSX file named after the client
// @Tags reports
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param session_id path string true "Session ID"
// @Param format query string false "File format" Enums(csv, xlsx) default(csv)
// @Success 200 {file} file
// @Failure 400 {object} map[string]string "Unknown format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (another user's session)"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Failed to export journal"
// @Security BearerAuth
// @Router /sessions/{session_id}/report/download [get]
func (h *sessionHandler) downloadJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatCSV)))
	if err != nil {
		respondServiceError(c, logger, err, "export journal")
		return
	}

	file, err := h.sessionService.ExportJournal(c.Request.Context(), c.Param("session_id"), userID, format)
	if err != nil {
		respondServiceError(c, logger, err, "export journal")
		return
	}

	logger.Info("Journal exported", slog.String("file_name", file.FileName))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
