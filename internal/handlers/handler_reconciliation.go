package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/bbabel1/property-manager-sub016/internal/core/ports/services"
	"github.com/bbabel1/property-manager-sub016/internal/dto"
	"github.com/bbabel1/property-manager-sub016/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reconciliationHandler handles reconciliation syncs and manual bank register changes.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

func newReconciliationHandler(rs portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{reconciliationService: rs}
}

func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(reconciliationService)

	rg.POST("/reconciliations/:reconciliationID/sync", h.syncReconciliationLog)

	bankAccounts := rg.Group("/bank-accounts/:glAccountID")
	{
		bankAccounts.POST("/reconciliations/sync", h.syncBankAccount)
		bankAccounts.PUT("/register/:transactionID", h.setRegisterStatus)
	}
}

// syncReconciliationLog godoc
// @Summary Sync one reconciliation period from Buildium
// @Description Per-transaction problems are reported in the body; only a Buildium failure fails the request.
// @Tags reconciliations
// @Accept  json
// @Produce  json
// @Param   orgID path string true "Organization ID"
// @Param   reconciliationID path string true "Reconciliation log ID"
// @Param   request body dto.SyncReconciliationRequest false "Sync options"
// @Success 200 {object} domain.SyncResult
// @Failure 502 {object} map[string]string "Buildium unavailable"
// @Security BearerAuth
// @Router /orgs/{orgID}/reconciliations/{reconciliationID}/sync [post]
func (h *reconciliationHandler) syncReconciliationLog(c *gin.Context) {
	orgID := c.Param("orgID")
	logID := c.Param("reconciliationID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(
		slog.String("org_id", orgID), slog.String("reconciliation_log_id", logID))

	var req dto.SyncReconciliationRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		logger.Warn("Failed to bind JSON for SyncReconciliationLog", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.reconciliationService.SyncReconciliationLog(c.Request.Context(), orgID, logID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to sync reconciliation")
		return
	}
	logger.Info("Reconciliation synced",
		slog.Int("synced", result.Synced),
		slog.Int("unmatched", len(result.Unmatched)),
		slog.Int("errors", len(result.Errors)))
	c.JSON(http.StatusOK, result)
}

func (h *reconciliationHandler) syncBankAccount(c *gin.Context) {
	orgID := c.Param("orgID")
	glAccountID := c.Param("glAccountID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(
		slog.String("org_id", orgID), slog.String("bank_gl_account_id", glAccountID))

	var req dto.SyncBankAccountRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		logger.Warn("Failed to bind JSON for SyncBankAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	summary, err := h.reconciliationService.SyncBankAccount(c.Request.Context(), orgID, glAccountID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to sync bank account")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// setRegisterStatus godoc
// @Summary Manually clear or unclear a transaction on a bank register
// @Tags reconciliations
// @Accept  json
// @Produce  json
// @Param   orgID path string true "Organization ID"
// @Param   glAccountID path string true "Bank GL account ID"
// @Param   transactionID path string true "Transaction ID"
// @Param   request body dto.SetRegisterStatusRequest true "uncleared or cleared"
// @Success 200 {object} domain.BankRegisterState
// @Failure 409 {object} map[string]string "Transaction already reconciled"
// @Security BearerAuth
// @Router /orgs/{orgID}/bank-accounts/{glAccountID}/register/{transactionID} [put]
func (h *reconciliationHandler) setRegisterStatus(c *gin.Context) {
	orgID := c.Param("orgID")
	glAccountID := c.Param("glAccountID")
	transactionID := c.Param("transactionID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(
		slog.String("org_id", orgID),
		slog.String("bank_gl_account_id", glAccountID),
		slog.String("transaction_id", transactionID))

	var req dto.SetRegisterStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetRegisterStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	state, err := h.reconciliationService.SetRegisterStatus(c.Request.Context(), orgID, glAccountID, transactionID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to set register status")
		return
	}
	c.JSON(http.StatusOK, state)
}
