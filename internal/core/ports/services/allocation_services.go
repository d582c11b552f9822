package services

import (
	"context"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/bbabel1/property-manager-sub016/internal/dto"
)

// AllocationReaderSvc defines read operations for charges and allocations
type AllocationReaderSvc interface {
	ListLeaseCharges(ctx context.Context, orgID, leaseID string, params dto.ListChargesParams) (*dto.ListChargesResponse, error)
	ListPaymentAllocations(ctx context.Context, orgID, paymentID string) (*dto.ListAllocationsResponse, error)
}

// AllocationWriterSvc defines the payment allocation engine
type AllocationWriterSvc interface {
	// AllocatePayment matches a payment against its lease's open charges, oldest first,
	// all-or-nothing under row locks. Dry-run returns the same plan without committing.
	AllocatePayment(ctx context.Context, orgID, paymentID string, req dto.AllocatePaymentRequest) (*domain.AllocationResult, error)
}

// AllocationSvcFacade combines all allocation service interfaces
type AllocationSvcFacade interface {
	AllocationReaderSvc
	AllocationWriterSvc
}
