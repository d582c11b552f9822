package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	portsrepo "github.com/bbabel1/property-manager-sub016/internal/core/ports/repositories"
	portssvc "github.com/bbabel1/property-manager-sub016/internal/core/ports/services"
	"github.com/bbabel1/property-manager-sub016/internal/dto"
	"github.com/bbabel1/property-manager-sub016/internal/utils/accounting"
	"github.com/bbabel1/property-manager-sub016/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultChargePageSize = 20
	maxChargePageSize     = 100
)

// allocationService matches lease payments against open charges.
type allocationService struct {
	BaseService
	txManager  portsrepo.TransactionManager
	txnRepo    portsrepo.TransactionReader
	chargeRepo portsrepo.ChargeRepositoryFacade
}

// NewAllocationService creates a new AllocationService.
func NewAllocationService(txManager portsrepo.TransactionManager, txnRepo portsrepo.TransactionReader, chargeRepo portsrepo.ChargeRepositoryFacade) portssvc.AllocationSvcFacade {
	return &allocationService{
		txManager:  txManager,
		txnRepo:    txnRepo,
		chargeRepo: chargeRepo,
	}
}

var _ portssvc.AllocationSvcFacade = (*allocationService)(nil)

// AllocatePayment implements portssvc.AllocationWriterSvc
func (s *allocationService) AllocatePayment(ctx context.Context, orgID, paymentID string, req dto.AllocatePaymentRequest) (*domain.AllocationResult, error) {
	logger := s.GetLogger(ctx).With(slog.String("org_id", orgID), slog.String("payment_id", paymentID))

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin allocation transaction: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer func() { _ = s.txManager.Rollback(ctx, tx) }()

	payment, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, orgID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment %s: %w", paymentID, err)
	}
	if payment.Kind != domain.KindPayment {
		return nil, fmt.Errorf("%w: transaction %s is a %s, not a Payment", apperrors.ErrValidation, paymentID, payment.Kind)
	}

	existing, err := s.chargeRepo.FindAllocationsByPayment(ctx, tx, orgID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing allocations: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("Payment already allocated", slog.Int("allocations", len(existing)))
		return alreadyAllocatedResult(payment, existing, req.DryRun), nil
	}
	if req.ExternalID != nil && *req.ExternalID != "" {
		keyed, err := s.chargeRepo.FindAllocationsByExternalID(ctx, tx, orgID, *req.ExternalID)
		if err != nil {
			return nil, fmt.Errorf("failed to check allocations for external id: %w", err)
		}
		if len(keyed) > 0 {
			logger.Info("Allocation external id already used", slog.String("external_id", *req.ExternalID))
			return alreadyAllocatedResult(payment, keyed, req.DryRun), nil
		}
	}

	result := &domain.AllocationResult{
		PaymentID:      paymentID,
		DryRun:         req.DryRun,
		TotalAllocated: decimal.Zero,
		Unallocated:    decimal.Zero,
		Allocations:    []domain.PaymentAllocation{},
	}
	if payment.LeaseID == nil || *payment.LeaseID == "" || !payment.TotalAmount.IsPositive() {
		logger.Info("Payment has no lease or no positive amount; nothing to allocate")
		if payment.TotalAmount.IsPositive() {
			result.Unallocated = domain.Round2(payment.TotalAmount)
		}
		return result, nil
	}
	if payment.IsReconciled {
		return nil, fmt.Errorf("%w: cannot allocate payment: source transaction is reconciled", apperrors.ErrConflict)
	}

	charges, err := s.chargeRepo.ListOpenChargesForUpdate(ctx, tx, orgID, *payment.LeaseID, payment.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to load open charges: %w", err)
	}

	plan, err := accounting.PlanAllocations(payment.TotalAmount, charges, req.ToManualAllocations())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	allocations, updated := buildAllocations(orgID, paymentID, req.ExternalID, plan, charges, now)
	total := accounting.PlanTotal(plan)

	result.Allocations = allocations
	result.UpdatedCharges = updated
	result.TotalAllocated = total
	result.Unallocated = domain.Round2(payment.TotalAmount).Sub(total)

	if req.DryRun {
		logger.Info("Dry-run allocation planned",
			slog.Int("allocations", len(allocations)),
			slog.String("total", total.StringFixed(2)))
		return result, nil
	}
	if len(allocations) == 0 {
		logger.Info("No open charges eligible for payment")
		return result, nil
	}

	if err := s.chargeRepo.UpdateChargeBalances(ctx, tx, updated); err != nil {
		return nil, fmt.Errorf("failed to update charge balances: %w", err)
	}
	if err := s.chargeRepo.InsertAllocations(ctx, tx, allocations); err != nil {
		return nil, fmt.Errorf("failed to insert allocations: %w", err)
	}
	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit allocation: %w", err)
	}

	logger.Info("Payment allocated",
		slog.Int("allocations", len(allocations)),
		slog.String("total", total.StringFixed(2)),
		slog.String("unallocated", result.Unallocated.StringFixed(2)))
	return result, nil
}

// buildAllocations turns a plan into allocation rows and the final state of each touched charge.
// A charge hit by several manual rows appears once, with the state after its last row.
func buildAllocations(orgID, paymentID string, externalID *string, plan []domain.PlannedAllocation, charges []domain.Charge, now time.Time) ([]domain.PaymentAllocation, []domain.Charge) {
	byID := make(map[string]domain.Charge, len(charges))
	for _, c := range charges {
		byID[c.ID] = c
	}

	allocations := make([]domain.PaymentAllocation, 0, len(plan))
	updated := make([]domain.Charge, 0, len(plan))
	position := make(map[string]int, len(plan))
	for i, p := range plan {
		alloc := domain.PaymentAllocation{
			ID:                   uuid.NewString(),
			OrgID:                orgID,
			PaymentTransactionID: paymentID,
			ChargeID:             p.ChargeID,
			AllocatedAmount:      p.Amount,
			AllocationOrder:      p.Order,
			CreatedAt:            now,
		}
		if i == 0 && externalID != nil && *externalID != "" {
			alloc.ExternalID = externalID
		}
		allocations = append(allocations, alloc)

		c := byID[p.ChargeID]
		c.AmountOpen = p.NewAmountOpen
		c.Status = p.NewStatus
		c.UpdatedAt = now
		if idx, ok := position[c.ID]; ok {
			updated[idx] = c
			continue
		}
		position[c.ID] = len(updated)
		updated = append(updated, c)
	}
	return allocations, updated
}

func alreadyAllocatedResult(payment *domain.Transaction, allocations []domain.PaymentAllocation, dryRun bool) *domain.AllocationResult {
	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.AllocatedAmount)
	}
	unallocated := domain.Round2(payment.TotalAmount).Sub(total)
	if unallocated.IsNegative() {
		unallocated = decimal.Zero
	}
	return &domain.AllocationResult{
		PaymentID:        payment.ID,
		DryRun:           dryRun,
		AlreadyAllocated: true,
		TotalAllocated:   total,
		Unallocated:      unallocated,
		Allocations:      allocations,
	}
}

// ListLeaseCharges implements portssvc.AllocationReaderSvc
func (s *allocationService) ListLeaseCharges(ctx context.Context, orgID, leaseID string, params dto.ListChargesParams) (*dto.ListChargesResponse, error) {
	if err := validateStruct(params); err != nil {
		return nil, err
	}
	if params.NextToken != nil && *params.NextToken != "" {
		if _, err := pagination.DecodeChargeToken(*params.NextToken); err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
	}

	var status *domain.ChargeStatus
	if params.Status != nil && *params.Status != "" {
		st := domain.ChargeStatus(*params.Status)
		status = &st
	}
	limit := pagination.ClampLimit(params.Limit, defaultChargePageSize, maxChargePageSize)

	charges, nextToken, err := s.chargeRepo.ListChargesByLease(ctx, orgID, leaseID, status, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list lease charges", slog.String("lease_id", leaseID))
		return nil, fmt.Errorf("failed to list charges: %w", err)
	}
	if charges == nil {
		charges = []domain.Charge{}
	}
	return &dto.ListChargesResponse{Charges: charges, NextToken: nextToken}, nil
}

// ListPaymentAllocations implements portssvc.AllocationReaderSvc
func (s *allocationService) ListPaymentAllocations(ctx context.Context, orgID, paymentID string) (*dto.ListAllocationsResponse, error) {
	if _, err := s.txnRepo.FindTransactionByID(ctx, orgID, paymentID); err != nil {
		return nil, fmt.Errorf("failed to load payment %s: %w", paymentID, err)
	}
	allocations, err := s.chargeRepo.ListAllocationsByPayment(ctx, orgID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	if allocations == nil {
		allocations = []domain.PaymentAllocation{}
	}
	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.AllocatedAmount)
	}
	return &dto.ListAllocationsResponse{PaymentID: paymentID, Allocations: allocations, Total: total}, nil
}
