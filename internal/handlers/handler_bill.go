package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/bbabel1/property-manager-sub016/internal/core/ports/services"
	"github.com/bbabel1/property-manager-sub016/internal/dto"
	"github.com/bbabel1/property-manager-sub016/internal/middleware"
	"github.com/gin-gonic/gin"
)

// billHandler handles HTTP requests related to bills, bill payments and vendor credits.
type billHandler struct {
	billService portssvc.BillSvcFacade
}

func newBillHandler(bs portssvc.BillSvcFacade) *billHandler {
	return &billHandler{billService: bs}
}

func registerBillRoutes(rg *gin.RouterGroup, billService portssvc.BillSvcFacade) {
	h := newBillHandler(billService)

	rg.POST("/bills/:billID/applications", h.applyToBill)
	rg.POST("/bill-payments", h.recordBillPayment)
	rg.POST("/vendor-credits", h.recordVendorCredit)
}

// applyToBill godoc
// @Summary Apply an existing payment or vendor credit to a bill
// @Tags bills
// @Accept  json
// @Produce  json
// @Param   orgID path string true "Organization ID"
// @Param   billID path string true "Bill transaction ID"
// @Param   request body dto.ApplyToBillRequest true "Source and amount"
// @Success 201 {object} domain.BillApplication
// @Failure 409 {object} map[string]string "Source already applied or reconciled"
// @Failure 422 {object} map[string]string "Rejected by bill application validation"
// @Security BearerAuth
// @Router /orgs/{orgID}/bills/{billID}/applications [post]
func (h *billHandler) applyToBill(c *gin.Context) {
	orgID := c.Param("orgID")
	billID := c.Param("billID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(
		slog.String("org_id", orgID), slog.String("bill_id", billID))

	var req dto.ApplyToBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApplyToBill", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	app, err := h.billService.ApplyToBill(c.Request.Context(), orgID, billID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to apply to bill")
		return
	}
	logger.Info("Applied to bill",
		slog.String("source_transaction_id", app.SourceTransactionID),
		slog.String("amount", app.AppliedAmount.StringFixed(2)))
	c.JSON(http.StatusCreated, app)
}

// recordBillPayment godoc
// @Summary Record a bill payment and apply it to one or more bills
// @Tags bills
// @Accept  json
// @Produce  json
// @Param   orgID path string true "Organization ID"
// @Param   request body dto.RecordBillPaymentRequest true "Payment details"
// @Success 201 {object} domain.PostedSource
// @Security BearerAuth
// @Router /orgs/{orgID}/bill-payments [post]
func (h *billHandler) recordBillPayment(c *gin.Context) {
	orgID := c.Param("orgID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("org_id", orgID))

	var req dto.RecordBillPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordBillPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	posted, err := h.billService.RecordBillPayment(c.Request.Context(), orgID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to record bill payment")
		return
	}
	logger.Info("Bill payment recorded", slog.String("transaction_id", posted.Transaction.ID))
	c.JSON(http.StatusCreated, posted)
}

func (h *billHandler) recordVendorCredit(c *gin.Context) {
	orgID := c.Param("orgID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("org_id", orgID))

	var req dto.RecordVendorCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordVendorCredit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	posted, err := h.billService.RecordVendorCredit(c.Request.Context(), orgID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to record vendor credit")
		return
	}
	logger.Info("Vendor credit recorded", slog.String("transaction_id", posted.Transaction.ID))
	c.JSON(http.StatusCreated, posted)
}
