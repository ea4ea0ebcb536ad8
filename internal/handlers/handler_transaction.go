package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/gst_return_app/internal/dto"
	"github.com/SscSPs/gst_return_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// importTransactions godoc
// @Summary Import parsed transactions
// @Description Classifies and stores already-parsed bank lines; rows with a known category keep it
// @Tags transactions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param rows body dto.ImportTransactionsRequest true "Bank lines"
// @Success 201 {object} dto.ImportResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (another user's session)"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Failed to import transactions"
// @Security BearerAuth
// @Router /sessions/{session_id}/transactions [post]
func (h *sessionHandler) importTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ImportTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ImportTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	res, err := h.sessionService.ImportTransactions(c.Request.Context(), c.Param("session_id"), userID, req)
	if err != nil {
		respondServiceError(c, logger, err, "import transactions")
		return
	}
	c.JSON(http.StatusCreated, res)
}

// uploadTransactions godoc
// @Summary Upload a bank statement
// @Description Imports a CSV or XLSX export from ASB, BNZ, ANZ, Westpac, Kiwibank or a generic layout
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Param session_id path string true "Session ID"
// @Param file formData file true "Bank statement (.csv or .xlsx)"
// @Success 201 {object} dto.ImportResponse
// @Failure 400 {object} map[string]string "Missing or unreadable file"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (another user's session)"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 413 {object} map[string]string "File too large"
// @Failure 429 {object} map[string]string "Too many uploads"
// @Failure 500 {object} map[string]string "Failed to import file"
// @Security BearerAuth
// @Router /sessions/{session_id}/transactions/upload [post]
func (h *sessionHandler) uploadTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	if c.Request.ContentLength > h.maxUploadBytes {
		logger.Warn("Upload exceeds size limit", slog.Int64("limit", h.maxUploadBytes), slog.Int64("content_length", c.Request.ContentLength))
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("Upload exceeds size limit", slog.Int64("limit", tooLarge.Limit))
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		logger.Warn("Failed to read uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "A bank statement must be sent in the 'file' form field"})
		return
	}
	defer file.Close()

	logger.Info("Received bank statement upload",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	res, err := h.sessionService.ImportFile(c.Request.Context(), c.Param("session_id"), userID, header.Filename, file)
	if err != nil {
		respondServiceError(c, logger, err, "import file")
		return
	}
	c.JSON(http.StatusCreated, res)
}

// listTransactions godoc
// @Summary List transactions
// @Description Lists the session's working set ordered by date, then id
// @Tags transactions
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (another user's session)"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /sessions/{session_id}/transactions [get]
func (h *sessionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	txns, err := h.sessionService.ListTransactions(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		respondServiceError(c, logger, err, "list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns))
}

// updateTransaction godoc
// @Summary Edit a transaction
// @Description Changes date, payee, code, category or GST ratio; the amount is fixed by the bank statement
// @Tags transactions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param transaction_id path string true "Transaction ID"
// @Param transaction body dto.UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} object "The updated transaction"
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (another user's session)"
// @Failure 404 {object} map[string]string "Session or transaction not found"
// @Failure 500 {object} map[string]string "Failed to update transaction"
// @Security BearerAuth
// @Router /sessions/{session_id}/transactions/{transaction_id} [patch]
func (h *sessionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	t, err := h.sessionService.UpdateTransaction(c.Request.Context(), c.Param("session_id"), c.Param("transaction_id"), userID, req)
	if err != nil {
		respondServiceError(c, logger, err, "update transaction")
		return
	}
	c.JSON(http.StatusOK, t)
}

// deleteTransaction godoc
// @Summary Delete a transaction
// @Tags transactions
// @Param session_id path string true "Session ID"
// @Param transaction_id path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (another user's session)"
// @Failure 404 {object} map[string]string "Session or transaction not found"
// @Failure 500 {object} map[string]string "Failed to delete transaction"
// @Security BearerAuth
// @Router /sessions/{session_id}/transactions/{transaction_id} [delete]
func (h *sessionHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	if err := h.sessionService.DeleteTransaction(c.Request.Context(), c.Param("session_id"), c.Param("transaction_id"), userID); err != nil {
		respondServiceError(c, logger, err, "delete transaction")
		return
	}
	c.Status(http.StatusNoContent)
}

// bulkCategorize godoc
// @Summary Re-categorize many transactions
// @Description Moves the listed transactions into one category at its default GST ratio
// @Tags transactions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param request body dto.BulkCategoryRequest true "Transactions and target category"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Unknown category or invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (another user's session)"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Failed to categorize transactions"
// @Security BearerAuth
// @Router /sessions/{session_id}/transactions/bulk-category [post]
func (h *sessionHandler) bulkCategorize(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BulkCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for BulkCategorize", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	txns, err := h.sessionService.BulkCategorize(c.Request.Context(), c.Param("session_id"), userID, req)
	if err != nil {
		respondServiceError(c, logger, err, "categorize transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns))
}

// bulkSetRatio godoc
// @Summary Override the GST ratio of many transactions
// @Tags transactions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param request body dto.BulkRatioRequest true "Transactions and claim ratio"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Ratio outside [0, 1] or invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (another user's session)"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Failed to set GST ratio"
// @Security BearerAuth
// @Router /sessions/{session_id}/transactions/bulk-ratio [post]
func (h *sessionHandler) bulkSetRatio(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BulkRatioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for BulkSetRatio", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	txns, err := h.sessionService.BulkSetRatio(c.Request.Context(), c.Param("session_id"), userID, req)
	if err != nil {
		respondServiceError(c, logger, err, "set GST ratio")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns))
}

// reclassify godoc
// @Summary Re-run the classifier
// @Description Classifies every transaction again, discarding manual categories and ratio overrides
// @Tags transactions
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (another user's session)"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Failed to reclassify transactions"
// @Security BearerAuth
// @Router /sessions/{session_id}/transactions/reclassify [post]
func (h *sessionHandler) reclassify(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	txns, err := h.sessionService.Reclassify(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		respondServiceError(c, logger, err, "reclassify transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns))
}
