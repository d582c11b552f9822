package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	portsrepo "github.com/bbabel1/property-manager-sub016/internal/core/ports/repositories"
	portssvc "github.com/bbabel1/property-manager-sub016/internal/core/ports/services"
	"github.com/bbabel1/property-manager-sub016/internal/dto"
	"github.com/bbabel1/property-manager-sub016/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// billAllocationTolerance is how far a bill payment's allocations may sum away from its amount.
var billAllocationTolerance = decimal.New(5, -3)

// billService applies payments and vendor credits to bills.
type billService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	txnRepo     portsrepo.TransactionRepositoryFacade
	accountRepo portsrepo.GLAccountReader
	billRepo    portsrepo.BillApplicationRepository
}

// NewBillService creates a new BillService.
func NewBillService(txManager portsrepo.TransactionManager, txnRepo portsrepo.TransactionRepositoryFacade, accountRepo portsrepo.GLAccountReader, billRepo portsrepo.BillApplicationRepository) portssvc.BillSvcFacade {
	return &billService{
		txManager:   txManager,
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
		billRepo:    billRepo,
	}
}

var _ portssvc.BillSvcFacade = (*billService)(nil)

// ApplyToBill implements portssvc.BillApplicationSvc
func (s *billService) ApplyToBill(ctx context.Context, orgID, billID string, req dto.ApplyToBillRequest) (*domain.BillApplication, error) {
	return s.apply(ctx, orgID, billID, req, "")
}

// ApplyPayment implements portssvc.BillApplicationSvc
func (s *billService) ApplyPayment(ctx context.Context, orgID, billID string, req dto.ApplyToBillRequest) (*domain.BillApplication, error) {
	return s.apply(ctx, orgID, billID, req, domain.KindPayment)
}

// ApplyVendorCredit implements portssvc.BillApplicationSvc
func (s *billService) ApplyVendorCredit(ctx context.Context, orgID, billID string, req dto.ApplyToBillRequest) (*domain.BillApplication, error) {
	return s.apply(ctx, orgID, billID, req, domain.KindVendorCredit)
}

func (s *billService) apply(ctx context.Context, orgID, billID string, req dto.ApplyToBillRequest, pinned domain.TransactionKind) (*domain.BillApplication, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := checkApplication(billID, req.SourceTransactionID, req.Amount); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin bill application: %w", err)
	}
	defer func() { _ = s.txManager.Rollback(ctx, tx) }()

	bills, err := s.lockBills(ctx, tx, orgID, billID)
	if err != nil {
		return nil, err
	}
	app, err := s.applyInTx(ctx, tx, orgID, bills[billID], req.SourceTransactionID, req.Amount, pinned)
	if err != nil {
		return nil, err
	}
	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit bill application: %w", err)
	}

	s.LogInfo(ctx, "Bill application recorded",
		slog.String("bill_id", billID),
		slog.String("source_id", req.SourceTransactionID),
		slog.String("amount", app.AppliedAmount.StringFixed(2)))
	return app, nil
}

// checkApplication rejects an application that no stored state could make valid.
func checkApplication(billID, sourceID string, amount decimal.Decimal) error {
	if billID == "" || sourceID == "" {
		return fmt.Errorf("%w: bill and source transaction ids are required", apperrors.ErrValidation)
	}
	if billID == sourceID {
		return fmt.Errorf("%w: a bill cannot be applied to itself", apperrors.ErrValidation)
	}
	if !domain.Round2(amount).IsPositive() {
		return fmt.Errorf("%w: applied amount for bill %s must be positive", apperrors.ErrValidation, billID)
	}
	return nil
}

// lockBills loads each distinct bill FOR UPDATE on tx in ascending id order.
// Every writer takes bill locks in that order and before any source lock, so two
// postings touching the same bills queue instead of deadlocking.
func (s *billService) lockBills(ctx context.Context, tx pgx.Tx, orgID string, billIDs ...string) (map[string]*domain.Transaction, error) {
	ids := slices.Clone(billIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	bills := make(map[string]*domain.Transaction, len(ids))
	for _, id := range ids {
		bill, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, orgID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load bill %s: %w", id, err)
		}
		if bill.Kind != domain.KindBill {
			return nil, fmt.Errorf("%w: transaction %s is a %s, not a Bill", apperrors.ErrValidation, id, bill.Kind)
		}
		bills[id] = bill
	}
	return bills, nil
}

// applyInTx runs the guard sequence and inserts one application against a bill already locked by lockBills.
// Nothing is written unless every guard passes. An empty pinned kind accepts either a Payment or a VendorCredit source.
func (s *billService) applyInTx(ctx context.Context, tx pgx.Tx, orgID string, bill *domain.Transaction, sourceID string, amount decimal.Decimal, pinned domain.TransactionKind) (*domain.BillApplication, error) {
	amount = domain.Round2(amount)
	billID := bill.ID

	source, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, orgID, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load source transaction %s: %w", sourceID, err)
	}
	sourceType, ok := domain.SourceTypeForKind(source.Kind)
	if !ok || (pinned != "" && source.Kind != pinned) {
		return nil, fmt.Errorf("%w: source transaction %s is a %s and cannot be applied to a bill", apperrors.ErrValidation, sourceID, source.Kind)
	}
	if source.IsReconciled {
		return nil, fmt.Errorf("%w: cannot apply %s: source transaction is reconciled", apperrors.ErrConflict, sourceLabel(sourceType))
	}

	if err := s.billRepo.ValidateBillApplication(ctx, tx, billID, sourceID, amount); err != nil {
		return nil, fmt.Errorf("bill application rejected: %w", err)
	}

	app := domain.BillApplication{
		ID:                  uuid.NewString(),
		OrgID:               orgID,
		BillTransactionID:   billID,
		SourceTransactionID: sourceID,
		SourceType:          sourceType,
		AppliedAmount:       amount,
		AppliedAt:           time.Now().UTC(),
	}
	if err := s.billRepo.InsertBillApplication(ctx, tx, app); err != nil {
		return nil, fmt.Errorf("failed to insert bill application: %w", err)
	}
	return &app, nil
}

func sourceLabel(t domain.BillSourceType) string {
	if t == domain.SourceVendorCredit {
		return "vendor credit"
	}
	return "payment"
}

// RecordBillPayment implements portssvc.BillPostingSvc
func (s *billService) RecordBillPayment(ctx context.Context, orgID string, req dto.RecordBillPaymentRequest) (*domain.PostedSource, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	date, err := time.Parse(dto.DateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", apperrors.ErrValidation, req.Date)
	}
	amount := domain.Round2(req.Amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}
	allocated := decimal.Zero
	for _, a := range req.Allocations {
		if !a.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: allocation for bill %s must be positive", apperrors.ErrValidation, a.BillID)
		}
		allocated = allocated.Add(a.Amount)
	}
	if allocated.Sub(req.Amount).Abs().GreaterThan(billAllocationTolerance) {
		return nil, fmt.Errorf("%w: allocations total %s does not match payment amount %s",
			apperrors.ErrValidation, allocated.StringFixed(2), amount.StringFixed(2))
	}
	allocations, err := sweepAllocations(amount, req.Allocations)
	if err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin bill payment: %w", err)
	}
	defer func() { _ = s.txManager.Rollback(ctx, tx) }()

	apAccountID, err := s.accountRepo.ResolveAPAccountID(ctx, tx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accounts payable account: %w", err)
	}
	bank, err := s.accountRepo.FindGLAccountByID(ctx, orgID, req.BankGLAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank account %s: %w", req.BankGLAccountID, err)
	}
	if bank.EffectiveRole() != domain.RoleBank {
		return nil, fmt.Errorf("%w: account %s is not a bank account", apperrors.ErrValidation, bank.ID)
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		ID:          uuid.NewString(),
		OrgID:       orgID,
		Kind:        domain.KindPayment,
		TotalAmount: amount,
		Date:        date,
		VendorID:    req.VendorID,
		PropertyID:  req.PropertyID,
		Memo:        req.Memo,
		ExternalID:  req.ExternalID,
		AuditFields: domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}
	lines := make([]domain.TransactionLine, 0, len(allocations)+1)
	for _, a := range allocations {
		lines = append(lines, newLine(txn, apAccountID, a.Amount, domain.Debit, now))
	}
	lines = append(lines, newLine(txn, bank.ID, amount, domain.Credit, now))

	posted, err := s.postAndApply(ctx, tx, txn, lines, allocations)
	if err != nil {
		return nil, err
	}
	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit bill payment: %w", err)
	}

	s.LogInfo(ctx, "Bill payment recorded",
		slog.String("transaction_id", txn.ID),
		slog.String("amount", amount.StringFixed(2)),
		slog.Int("bills", len(posted.Applications)))
	return posted, nil
}

// RecordVendorCredit implements portssvc.BillPostingSvc
func (s *billService) RecordVendorCredit(ctx context.Context, orgID string, req dto.RecordVendorCreditRequest) (*domain.PostedSource, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	date, err := time.Parse(dto.DateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", apperrors.ErrValidation, req.Date)
	}
	amount := domain.Round2(req.Amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: credit amount must be positive", apperrors.ErrValidation)
	}
	applied := decimal.Zero
	for _, a := range req.Applications {
		if !a.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: application to bill %s must be positive", apperrors.ErrValidation, a.BillID)
		}
		applied = applied.Add(domain.Round2(a.Amount))
	}
	if applied.GreaterThan(amount) {
		return nil, fmt.Errorf("%w: applications total %s exceeds credit amount %s",
			apperrors.ErrValidation, applied.StringFixed(2), amount.StringFixed(2))
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin vendor credit: %w", err)
	}
	defer func() { _ = s.txManager.Rollback(ctx, tx) }()

	apAccountID, err := s.accountRepo.ResolveAPAccountID(ctx, tx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accounts payable account: %w", err)
	}
	creditAccount, err := s.accountRepo.FindGLAccountByID(ctx, orgID, req.CreditGLAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credit account %s: %w", req.CreditGLAccountID, err)
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		ID:          uuid.NewString(),
		OrgID:       orgID,
		Kind:        domain.KindVendorCredit,
		TotalAmount: amount,
		Date:        date,
		VendorID:    req.VendorID,
		PropertyID:  req.PropertyID,
		Memo:        req.Memo,
		AuditFields: domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}
	lines := []domain.TransactionLine{
		newLine(txn, apAccountID, amount, domain.Debit, now),
		newLine(txn, creditAccount.ID, amount, domain.Credit, now),
	}

	posted, err := s.postAndApply(ctx, tx, txn, lines, req.Applications)
	if err != nil {
		return nil, err
	}
	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit vendor credit: %w", err)
	}

	s.LogInfo(ctx, "Vendor credit recorded",
		slog.String("transaction_id", txn.ID),
		slog.String("amount", amount.StringFixed(2)),
		slog.Int("bills", len(posted.Applications)))
	return posted, nil
}

// sweepAllocations rounds each allocation to cents and moves the rounding residual onto the
// last one, so the AP debits always sum to the cent-rounded payment amount.
func sweepAllocations(amount decimal.Decimal, allocations []dto.BillAllocation) ([]dto.BillAllocation, error) {
	out := make([]dto.BillAllocation, len(allocations))
	sum := decimal.Zero
	for i, a := range allocations {
		out[i] = dto.BillAllocation{BillID: a.BillID, Amount: domain.Round2(a.Amount)}
		sum = sum.Add(out[i].Amount)
	}
	if len(out) > 0 {
		last := &out[len(out)-1]
		last.Amount = last.Amount.Add(amount.Sub(sum))
	}
	for _, a := range out {
		if !a.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: allocation for bill %s rounds to %s", apperrors.ErrValidation, a.BillID, a.Amount.StringFixed(2))
		}
	}
	return out, nil
}

// postAndApply validates and inserts a new source transaction, then applies it to each bill inside tx.
// Target bills are locked before the source row exists.
func (s *billService) postAndApply(ctx context.Context, tx pgx.Tx, txn domain.Transaction, lines []domain.TransactionLine, allocations []dto.BillAllocation) (*domain.PostedSource, error) {
	if err := accounting.ValidateBalance(lines); err != nil {
		return nil, err
	}
	billIDs := make([]string, 0, len(allocations))
	for _, a := range allocations {
		if err := checkApplication(a.BillID, txn.ID, a.Amount); err != nil {
			return nil, err
		}
		billIDs = append(billIDs, a.BillID)
	}
	bills, err := s.lockBills(ctx, tx, txn.OrgID, billIDs...)
	if err != nil {
		return nil, err
	}
	if err := s.txnRepo.CreateTransaction(ctx, tx, txn, lines); err != nil {
		return nil, fmt.Errorf("failed to create %s transaction: %w", txn.Kind, err)
	}

	apps := make([]domain.BillApplication, 0, len(allocations))
	for _, a := range allocations {
		app, err := s.applyInTx(ctx, tx, txn.OrgID, bills[a.BillID], txn.ID, a.Amount, txn.Kind)
		if err != nil {
			return nil, fmt.Errorf("bill %s: %w", a.BillID, err)
		}
		apps = append(apps, *app)
	}
	return &domain.PostedSource{Transaction: txn, Lines: lines, Applications: apps}, nil
}

func newLine(txn domain.Transaction, accountID string, amount decimal.Decimal, posting domain.PostingType, now time.Time) domain.TransactionLine {
	return domain.TransactionLine{
		ID:            uuid.NewString(),
		TransactionID: txn.ID,
		OrgID:         txn.OrgID,
		GLAccountID:   accountID,
		Amount:        amount,
		PostingType:   posting,
		PropertyID:    txn.PropertyID,
		UnitID:        txn.UnitID,
		LeaseID:       txn.LeaseID,
		Date:          txn.Date,
		Memo:          txn.Memo,
		CreatedAt:     now,
	}
}
