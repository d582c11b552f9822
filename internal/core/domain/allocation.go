package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentAllocation links one payment transaction to one charge.
type PaymentAllocation struct {
	ID                   string          `json:"id"`
	OrgID                string          `json:"orgId"`
	PaymentTransactionID string          `json:"paymentTransactionId"`
	ChargeID             string          `json:"chargeId"`
	AllocatedAmount      decimal.Decimal `json:"allocatedAmount"`
	AllocationOrder      int             `json:"allocationOrder"`
	ExternalID           *string         `json:"externalId,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// ManualAllocation is a caller-specified split of a payment onto one charge.
type ManualAllocation struct {
	ChargeID string          `json:"chargeId" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
}

// PlannedAllocation is one step of an allocation plan, with the charge state it produces.
type PlannedAllocation struct {
	ChargeID      string
	Amount        decimal.Decimal
	Order         int
	NewAmountOpen decimal.Decimal
	NewStatus     ChargeStatus
}

// AllocationResult is what an allocation call did, or would do in dry-run mode.
type AllocationResult struct {
	PaymentID        string              `json:"paymentId"`
	DryRun           bool                `json:"dryRun"`
	AlreadyAllocated bool                `json:"alreadyAllocated"`
	TotalAllocated   decimal.Decimal     `json:"totalAllocated"`
	Unallocated      decimal.Decimal     `json:"unallocated"`
	Allocations      []PaymentAllocation `json:"allocations"`
	UpdatedCharges   []Charge            `json:"updatedCharges,omitempty"`
}
