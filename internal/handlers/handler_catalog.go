package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/gst_return_app/internal/core/ports/services"
	"github.com/SscSPs/gst_return_app/internal/dto"
	"github.com/SscSPs/gst_return_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// catalogHandler handles HTTP requests related to the account catalog.
type catalogHandler struct {
	catalogService portssvc.CatalogSvcFacade
}

func newCatalogHandler(cs portssvc.CatalogSvcFacade) *catalogHandler {
	return &catalogHandler{catalogService: cs}
}

// RegisterCatalogRoutes registers routes related to the catalog and classification rules.
func RegisterCatalogRoutes(rg *gin.RouterGroup, catalogService portssvc.CatalogSvcFacade) {
	dto.RegisterValidators()

	h := newCatalogHandler(catalogService)

	catalog := rg.Group("/catalog")
	{
		catalog.GET("", h.getCatalog)
		catalog.PUT("", h.saveCatalog)
		catalog.DELETE("", h.resetCatalog)
	}
}

// getCatalog godoc
// @Summary Get the account catalog
// @Description Returns the user's categories and classification rules, or the default catalog when none is saved
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.CatalogResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to load catalog"
// @Security BearerAuth
// @Router /catalog [get]
func (h *catalogHandler) getCatalog(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	def, err := h.catalogService.GetCatalog(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, logger, err, "load catalog")
		return
	}
	c.JSON(http.StatusOK, dto.ToCatalogResponse(def))
}

// saveCatalog godoc
// @Summary Replace the account catalog
// @Description Validates and stores the user's categories and ordered classification rules
// @Tags catalog
// @Accept json
// @Produce json
// @Param catalog body dto.SaveCatalogRequest true "Categories and rules"
// @Success 200 {object} dto.CatalogResponse
// @Failure 400 {object} map[string]string "Invalid catalog"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to save catalog"
// @Security BearerAuth
// @Router /catalog [put]
func (h *catalogHandler) saveCatalog(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SaveCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SaveCatalog", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	def, err := h.catalogService.SaveCatalog(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, logger, err, "save catalog")
		return
	}
	c.JSON(http.StatusOK, dto.ToCatalogResponse(def))
}

// resetCatalog godoc
// @Summary Reset the account catalog
// @Description Drops the user's customisation so the default catalog applies again
// @Tags catalog
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to reset catalog"
// @Security BearerAuth
// @Router /catalog [delete]
func (h *catalogHandler) resetCatalog(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	if err := h.catalogService.ResetCatalog(c.Request.Context(), userID); err != nil {
		respondServiceError(c, logger, err, "reset catalog")
		return
	}
	c.Status(http.StatusNoContent)
}
