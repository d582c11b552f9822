package dto

import (
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ManualAllocationRequest pins part of a payment to a specific charge.
type ManualAllocationRequest struct {
	ChargeID string          `json:"chargeId" binding:"required" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// AllocatePaymentRequest is the body of POST /payments/:paymentID/allocations.
type AllocatePaymentRequest struct {
	// DryRun computes the plan without committing it.
	DryRun bool `json:"dryRun"`
	// ExternalID is an idempotency key recorded on the first allocation row.
	ExternalID  *string                   `json:"externalId" validate:"omitempty,max=255"`
	Allocations []ManualAllocationRequest `json:"allocations" validate:"omitempty,dive"`
}

// ToManualAllocations converts request rows to domain values.
func (r AllocatePaymentRequest) ToManualAllocations() []domain.ManualAllocation {
	if len(r.Allocations) == 0 {
		return nil
	}
	out := make([]domain.ManualAllocation, len(r.Allocations))
	for i, a := range r.Allocations {
		out[i] = domain.ManualAllocation{ChargeID: a.ChargeID, Amount: a.Amount}
	}
	return out
}

// ListChargesParams are the query parameters of GET /leases/:leaseID/charges.
type ListChargesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
	Status    *string `form:"status" validate:"omitempty,oneof=open partial paid closed"`
}

// ListChargesResponse is one page of a lease's charges.
type ListChargesResponse struct {
	Charges   []domain.Charge `json:"charges"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ListAllocationsResponse lists the allocations of one payment.
type ListAllocationsResponse struct {
	PaymentID   string                     `json:"paymentId"`
	Allocations []domain.PaymentAllocation `json:"allocations"`
	Total       decimal.Decimal            `json:"total"`
}
