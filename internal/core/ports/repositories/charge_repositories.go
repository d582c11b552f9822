package repositories

import (
	"context"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ChargeReader defines read operations for charges and payment allocations
type ChargeReader interface {
	// ListOpenChargesForUpdate locks and returns the charges a payment dated asOf may pay:
	// open or partial, amount_open > 0, due on or before asOf or undated, in allocation order.
	ListOpenChargesForUpdate(ctx context.Context, tx pgx.Tx, orgID, leaseID string, asOf time.Time) ([]domain.Charge, error)

	// FindAllocationsByPayment returns the allocations already recorded for a payment inside tx.
	FindAllocationsByPayment(ctx context.Context, tx pgx.Tx, orgID, paymentID string) ([]domain.PaymentAllocation, error)

	// FindAllocationsByExternalID returns the allocation set created under an idempotency key inside tx.
	FindAllocationsByExternalID(ctx context.Context, tx pgx.Tx, orgID, externalID string) ([]domain.PaymentAllocation, error)

	// ListAllocationsByPayment is the read-only variant of FindAllocationsByPayment.
	ListAllocationsByPayment(ctx context.Context, orgID, paymentID string) ([]domain.PaymentAllocation, error)

	// ListChargesByLease retrieves a page of a lease's charges in allocation order using token-based pagination.
	ListChargesByLease(ctx context.Context, orgID, leaseID string, status *domain.ChargeStatus, limit int, nextToken *string) ([]domain.Charge, *string, error)
}

// ChargeWriter defines write operations for charges and payment allocations
type ChargeWriter interface {
	// UpdateChargeBalances writes amount_open and status for each charge inside tx.
	UpdateChargeBalances(ctx context.Context, tx pgx.Tx, charges []domain.Charge) error

	// InsertAllocations inserts allocation rows inside tx.
	InsertAllocations(ctx context.Context, tx pgx.Tx, allocations []domain.PaymentAllocation) error

	// InsertCharge inserts a single charge row.
	InsertCharge(ctx context.Context, charge domain.Charge) error
}

// ChargeRepositoryFacade combines all charge repository interfaces
type ChargeRepositoryFacade interface {
	ChargeReader
	ChargeWriter
}

// ChargeRepositoryWithTx extends ChargeRepositoryFacade with transaction capabilities
type ChargeRepositoryWithTx interface {
	ChargeRepositoryFacade
	TransactionManager
}
