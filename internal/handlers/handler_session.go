package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/gst_return_app/internal/core/ports/services"
	"github.com/SscSPs/gst_return_app/internal/dto"
	"github.com/SscSPs/gst_return_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// DefaultMaxUploadBytes caps a bank file upload when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

// sessionHandler handles HTTP requests for sessions, their transactions and reports.
type sessionHandler struct {
	sessionService portssvc.SessionSvcFacade
	maxUploadBytes int64
}

// SessionRoutesOption configures the session routes.
type SessionRoutesOption func(*sessionRoutesConfig)

type sessionRoutesConfig struct {
	maxUploadBytes   int64
	uploadMiddleware []gin.HandlerFunc
}

// WithMaxUploadBytes caps the size of an uploaded bank file.
func WithMaxUploadBytes(n int64) SessionRoutesOption {
	return func(cfg *sessionRoutesConfig) {
		if n > 0 {
			cfg.maxUploadBytes = n
		}
	}
}

// WithUploadMiddleware runs extra handlers, such as a rate limiter, in front of file uploads.
func WithUploadMiddleware(handlers ...gin.HandlerFunc) SessionRoutesOption {
	return func(cfg *sessionRoutesConfig) {
		cfg.uploadMiddleware = append(cfg.uploadMiddleware, handlers...)
	}
}

// RegisterSessionRoutes registers routes related to sessions, transactions and reports.
func RegisterSessionRoutes(rg *gin.RouterGroup, sessionService portssvc.SessionSvcFacade, opts ...SessionRoutesOption) {
	dto.RegisterValidators()

	cfg := sessionRoutesConfig{maxUploadBytes: DefaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	h := &sessionHandler{sessionService: sessionService, maxUploadBytes: cfg.maxUploadBytes}

	sessions := rg.Group("/sessions")
	{
		sessions.POST("", h.createSession)
		sessions.GET("", h.listSessions)
		sessions.GET("/:session_id", h.getSession)
		sessions.DELETE("/:session_id", h.deleteSession)

		txns := sessions.Group("/:session_id/transactions")
		{
			txns.POST("", h.importTransactions)
			txns.POST("/upload", append(cfg.uploadMiddleware, h.uploadTransactions)...)
			txns.GET("", h.listTransactions)
			txns.PATCH("/:transaction_id", h.updateTransaction)
			txns.DELETE("/:transaction_id", h.deleteTransaction)
			txns.POST("/bulk-category", h.bulkCategorize)
			txns.POST("/bulk-ratio", h.bulkSetRatio)
			txns.POST("/reclassify", h.reclassify)
		}

		sessions.GET("/:session_id/report", h.getReport)
		sessions.GET("/:session_id/report/download", h.downloadJournal)
	}
}

// createSession godoc
// @Summary Create a session
// @Description Opens a reporting period for a client; GST rate defaults to the configured rate
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body dto.CreateSessionRequest true "Session details"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create session"
// @Security BearerAuth
// @Router /sessions [post]
func (h *sessionHandler) createSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSession", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	session, err := h.sessionService.CreateSession(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, logger, err, "create session")
		return
	}
	logger.Info("Session created successfully", slog.String("session_id", session.SessionID))
	c.JSON(http.StatusCreated, dto.ToSessionResponse(session))
}

// listSessions godoc
// @Summary List sessions
// @Description Lists the caller's sessions, newest first, one page at a time
// @Tags sessions
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListSessionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters or page token"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list sessions"
// @Security BearerAuth
// @Router /sessions [get]
func (h *sessionHandler) listSessions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	var params dto.ListSessionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListSessions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	res, err := h.sessionService.ListSessions(c.Request.Context(), userID, params)
	if err != nil {
		respondServiceError(c, logger, err, "list sessions")
		return
	}
	c.JSON(http.StatusOK, res)
}

// getSession godoc
// @Summary Get a session
// @Tags sessions
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (another user's session)"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Failed to get session"
// @Security BearerAuth
// @Router /sessions/{session_id} [get]
func (h *sessionHandler) getSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		respondServiceError(c, logger, err, "get session")
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

// deleteSession godoc
// @Summary Delete a session
// @Description Deletes the session and every transaction in it
// @Tags sessions
// @Param session_id path string true "Session ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (another user's session)"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Failed to delete session"
// @Security BearerAuth
// @Router /sessions/{session_id} [delete]
func (h *sessionHandler) deleteSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	if err := h.sessionService.DeleteSession(c.Request.Context(), sessionID, userID); err != nil {
		respondServiceError(c, logger, err, "delete session")
		return
	}
	logger.Info("Session deleted successfully", slog.String("session_id", sessionID))
	c.Status(http.StatusNoContent)
}
