package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	portssvc "github.com/bbabel1/property-manager-sub016/internal/core/ports/services"
	"github.com/bbabel1/property-manager-sub016/internal/dto"
	"github.com/bbabel1/property-manager-sub016/internal/middleware"
	"github.com/gin-gonic/gin"
)

// allocationHandler handles HTTP requests related to charges and payment allocations.
type allocationHandler struct {
	allocationService portssvc.AllocationSvcFacade
}

func newAllocationHandler(as portssvc.AllocationSvcFacade) *allocationHandler {
	return &allocationHandler{allocationService: as}
}

// registerAllocationRoutes registers charge and allocation routes under an organization group.
func registerAllocationRoutes(rg *gin.RouterGroup, allocationService portssvc.AllocationSvcFacade) {
	h := newAllocationHandler(allocationService)

	payments := rg.Group("/payments/:paymentID")
	{
		payments.POST("/allocations", h.allocatePayment)
		payments.GET("/allocations", h.listPaymentAllocations)
	}
	rg.GET("/leases/:leaseID/charges", h.listLeaseCharges)
}

// bindOptionalJSON binds a JSON body when one was sent; an empty body leaves req untouched.
func bindOptionalJSON(c *gin.Context, req any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// allocatePayment godoc
// @Summary Allocate a payment to its lease's open charges
// @Description Oldest charges are paid first unless explicit allocations are supplied. dryRun returns the plan without writing.
// @Tags allocations
// @Accept  json
// @Produce  json
// @Param   orgID path string true "Organization ID"
// @Param   paymentID path string true "Payment transaction ID"
// @Param   request body dto.AllocatePaymentRequest false "Allocation options"
// @Success 200 {object} domain.AllocationResult
// @Failure 400 {object} map[string]string "Invalid input or payment not allocatable"
// @Failure 404 {object} map[string]string "Payment or charge not found"
// @Security BearerAuth
// @Router /orgs/{orgID}/payments/{paymentID}/allocations [post]
func (h *allocationHandler) allocatePayment(c *gin.Context) {
	orgID := c.Param("orgID")
	paymentID := c.Param("paymentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(
		slog.String("org_id", orgID), slog.String("payment_id", paymentID))

	var req dto.AllocatePaymentRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		logger.Warn("Failed to bind JSON for AllocatePayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.allocationService.AllocatePayment(c.Request.Context(), orgID, paymentID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to allocate payment")
		return
	}
	logger.Info("Payment allocated",
		slog.Bool("dry_run", result.DryRun),
		slog.Bool("already_allocated", result.AlreadyAllocated),
		slog.Int("allocations", len(result.Allocations)))
	c.JSON(http.StatusOK, result)
}

// listLeaseCharges godoc
// @Summary List a lease's charges in allocation order
// @Tags allocations
// @Produce  json
// @Param   orgID path string true "Organization ID"
// @Param   leaseID path string true "Lease ID"
// @Param   limit query int false "Page size"
// @Param   nextToken query string false "Token for the next page"
// @Param   status query string false "open, partial, paid or closed"
// @Success 200 {object} dto.ListChargesResponse
// @Security BearerAuth
// @Router /orgs/{orgID}/leases/{leaseID}/charges [get]
func (h *allocationHandler) listLeaseCharges(c *gin.Context) {
	orgID := c.Param("orgID")
	leaseID := c.Param("leaseID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(
		slog.String("org_id", orgID), slog.String("lease_id", leaseID))

	var params dto.ListChargesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListLeaseCharges", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.allocationService.ListLeaseCharges(c.Request.Context(), orgID, leaseID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list charges")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *allocationHandler) listPaymentAllocations(c *gin.Context) {
	orgID := c.Param("orgID")
	paymentID := c.Param("paymentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(
		slog.String("org_id", orgID), slog.String("payment_id", paymentID))

	resp, err := h.allocationService.ListPaymentAllocations(c.Request.Context(), orgID, paymentID)
	if err != nil {
		respondError(c, logger, err, "Failed to list allocations")
		return
	}
	c.JSON(http.StatusOK, resp)
}
