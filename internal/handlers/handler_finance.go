package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/bbabel1/property-manager-sub016/internal/core/ports/services"
	"github.com/bbabel1/property-manager-sub016/internal/dto"
	"github.com/bbabel1/property-manager-sub016/internal/middleware"
	"github.com/gin-gonic/gin"
)

type financeHandler struct {
	financeService portssvc.FinanceSvc
}

func registerFinanceRoutes(rg *gin.RouterGroup, financeService portssvc.FinanceSvc) {
	h := &financeHandler{financeService: financeService}
	rg.GET("/finances", h.getFinances)
}

// getFinances godoc
// @Summary Point-in-time financial rollup of a property or unit
// @Tags finances
// @Produce  json
// @Param   orgID path string true "Organization ID"
// @Param   propertyId query string false "Property ID"
// @Param   unitId query string false "Unit ID"
// @Param   asOf query string false "Calendar date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.FinanceRollup
// @Security BearerAuth
// @Router /orgs/{orgID}/finances [get]
func (h *financeHandler) getFinances(c *gin.Context) {
	orgID := c.Param("orgID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("org_id", orgID))

	var query dto.FinanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("Failed to bind query for GetFinances", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	rollup, err := h.financeService.GetFinances(c.Request.Context(), orgID, query)
	if err != nil {
		respondError(c, logger, err, "Failed to compute finances")
		return
	}
	c.JSON(http.StatusOK, rollup)
}
