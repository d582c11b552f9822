package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	portsrepo "github.com/bbabel1/property-manager-sub016/internal/core/ports/repositories"
	portssvc "github.com/bbabel1/property-manager-sub016/internal/core/ports/services"
	"github.com/bbabel1/property-manager-sub016/internal/dto"
	"github.com/bbabel1/property-manager-sub016/internal/middleware"
	"github.com/bbabel1/property-manager-sub016/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultBackfillLimit = 500

// Backfill job names, as reported in summaries and used as CLI commands.
const (
	JobBackfillCharges     = "backfill-charges"
	JobBackfillAllocations = "backfill-allocations"
	JobBackfillBankLines   = "backfill-bank-lines"
	JobBackfillRoles       = "backfill-roles"
)

// backfillService rebuilds derived rows from historical transactions.
type backfillService struct {
	BaseService
	txManager    portsrepo.TransactionManager
	txnRepo      portsrepo.TransactionRepositoryFacade
	chargeRepo   portsrepo.ChargeRepositoryFacade
	accountRepo  portsrepo.GLAccountRepositoryFacade
	backfillRepo portsrepo.BackfillReader
	allocator    portssvc.AllocationWriterSvc
}

// NewBackfillService creates a new BackfillService.
func NewBackfillService(repos portsrepo.RepositoryProvider, allocator portssvc.AllocationWriterSvc) portssvc.BackfillSvc {
	return &backfillService{
		txManager:    repos.TxManager,
		txnRepo:      repos.TransactionRepo,
		chargeRepo:   repos.ChargeRepo,
		accountRepo:  repos.GLAccountRepo,
		backfillRepo: repos.BackfillRepo,
		allocator:    allocator,
	}
}

var _ portssvc.BackfillSvc = (*backfillService)(nil)

// accountCache memoizes GL account lookups for one job run.
type accountCache struct {
	repo     portsrepo.GLAccountReader
	orgID    string
	accounts map[string]domain.GLAccount
	loaded   bool
}

func newAccountCache(repo portsrepo.GLAccountReader, orgID string) *accountCache {
	return &accountCache{repo: repo, orgID: orgID, accounts: map[string]domain.GLAccount{}}
}

func (c *accountCache) get(ctx context.Context, id string) (domain.GLAccount, error) {
	if !c.loaded {
		all, err := c.repo.ListGLAccounts(ctx, c.orgID)
		if err != nil {
			return domain.GLAccount{}, fmt.Errorf("failed to load accounts: %w", err)
		}
		for _, a := range all {
			c.accounts[a.ID] = a
		}
		c.loaded = true
	}
	if a, ok := c.accounts[id]; ok {
		return a, nil
	}
	a, err := c.repo.FindGLAccountByID(ctx, c.orgID, id)
	if err != nil {
		return domain.GLAccount{}, err
	}
	c.accounts[id] = *a
	return *a, nil
}

func (s *backfillService) start(ctx context.Context, job, orgID string, opts dto.BackfillOptions) (context.Context, *slog.Logger, *domain.BackfillSummary) {
	logger := s.GetLogger(ctx).With(slog.String("job", job), slog.String("org_id", orgID), slog.Bool("dry_run", opts.DryRun))
	return middleware.WithLogger(ctx, logger), logger, &domain.BackfillSummary{Job: job, DryRun: opts.DryRun, Total: decimal.Zero}
}

func backfillLimit(limit int) int {
	if limit <= 0 {
		return defaultBackfillLimit
	}
	return limit
}

// BackfillCharges implements portssvc.BackfillSvc
func (s *backfillService) BackfillCharges(ctx context.Context, orgID string, opts dto.BackfillOptions) (*domain.BackfillSummary, error) {
	ctx, logger, summary := s.start(ctx, JobBackfillCharges, orgID, opts)

	candidates, err := s.backfillRepo.ListChargeTransactionsWithoutCharges(ctx, orgID, backfillLimit(opts.Limit))
	if err != nil {
		return summary, fmt.Errorf("failed to list charge transactions: %w", err)
	}
	cache := newAccountCache(s.accountRepo, orgID)

	for _, cand := range candidates {
		summary.Scanned++
		txn := cand.Transaction
		if txn.LeaseID == nil || *txn.LeaseID == "" {
			summary.Skipped++
			continue
		}

		amount, err := arDebitTotal(ctx, cache, cand.Lines)
		if err != nil {
			summary.Failed++
			logger.Error("Failed to classify charge lines", slog.String("transaction_id", txn.ID), slog.String("error", err.Error()))
			continue
		}
		if !amount.IsPositive() {
			summary.Skipped++
			continue
		}

		now := time.Now().UTC()
		txnID := txn.ID
		due := txn.Date
		charge := domain.Charge{
			ID:            uuid.NewString(),
			OrgID:         orgID,
			LeaseID:       *txn.LeaseID,
			TransactionID: &txnID,
			ChargeType:    domain.InferChargeType(txn.Memo),
			Amount:        amount,
			AmountOpen:    amount,
			DueDate:       &due,
			Status:        domain.ChargeOpen,
			AuditFields:   domain.AuditFields{CreatedAt: now, UpdatedAt: now},
		}
		if !opts.DryRun {
			if err := s.chargeRepo.InsertCharge(ctx, charge); err != nil {
				if errors.Is(err, apperrors.ErrDuplicate) {
					summary.Skipped++
					continue
				}
				summary.Failed++
				logger.Error("Failed to insert charge", slog.String("transaction_id", txn.ID), slog.String("error", err.Error()))
				continue
			}
		}
		summary.Changed++
		summary.Total = summary.Total.Add(amount)
		logger.Info("Charge rebuilt",
			slog.String("transaction_id", txn.ID),
			slog.String("charge_type", charge.ChargeType),
			slog.String("amount", amount.StringFixed(2)))
	}
	return summary, nil
}

// arDebitTotal sums the debit lines that hit an accounts-receivable account.
func arDebitTotal(ctx context.Context, cache *accountCache, lines []domain.TransactionLine) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range lines {
		account, err := cache.get(ctx, line.GLAccountID)
		if err != nil {
			return decimal.Zero, err
		}
		cl, err := accounting.ClassifyLine(line, account)
		if err != nil {
			return decimal.Zero, err
		}
		if cl.AR && line.PostingType == domain.Debit {
			total = total.Add(line.Amount)
		}
	}
	return domain.Round2(total), nil
}

// BackfillAllocations implements portssvc.BackfillSvc
func (s *backfillService) BackfillAllocations(ctx context.Context, orgID string, opts dto.BackfillOptions) (*domain.BackfillSummary, error) {
	ctx, logger, summary := s.start(ctx, JobBackfillAllocations, orgID, opts)

	payments, err := s.backfillRepo.ListPaymentsWithoutAllocations(ctx, orgID, backfillLimit(opts.Limit))
	if err != nil {
		return summary, fmt.Errorf("failed to list unallocated payments: %w", err)
	}

	for _, p := range payments {
		summary.Scanned++
		res, err := s.allocator.AllocatePayment(ctx, orgID, p.ID, dto.AllocatePaymentRequest{DryRun: opts.DryRun})
		if err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				summary.Skipped++
				continue
			}
			summary.Failed++
			logger.Error("Failed to allocate payment", slog.String("payment_id", p.ID), slog.String("error", err.Error()))
			continue
		}
		if res.AlreadyAllocated || len(res.Allocations) == 0 {
			summary.Skipped++
			continue
		}
		summary.Changed++
		summary.Total = summary.Total.Add(res.TotalAllocated)
	}
	return summary, nil
}

// BackfillBankLines implements portssvc.BackfillSvc
func (s *backfillService) BackfillBankLines(ctx context.Context, orgID string, opts dto.BackfillOptions) (*domain.BackfillSummary, error) {
	ctx, logger, summary := s.start(ctx, JobBackfillBankLines, orgID, opts)
	if opts.BankGLAccountID == "" {
		return summary, fmt.Errorf("%w: a bank GL account is required", apperrors.ErrValidation)
	}

	cache := newAccountCache(s.accountRepo, orgID)
	bank, err := cache.get(ctx, opts.BankGLAccountID)
	if err != nil {
		return summary, fmt.Errorf("failed to load bank account %s: %w", opts.BankGLAccountID, err)
	}
	if bank.EffectiveRole() != domain.RoleBank {
		return summary, fmt.Errorf("%w: account %s is not a bank account", apperrors.ErrValidation, bank.ID)
	}

	candidates, err := s.backfillRepo.ListPaymentsWithoutBankLines(ctx, orgID, backfillLimit(opts.Limit))
	if err != nil {
		return summary, fmt.Errorf("failed to list payments without bank lines: %w", err)
	}

	for _, cand := range candidates {
		summary.Scanned++
		txn := cand.Transaction
		imbalance := accounting.PostingImbalance(cand.Lines)
		if imbalance.IsZero() {
			summary.Skipped++
			continue
		}
		posting := domain.Credit
		if imbalance.IsNegative() {
			posting = domain.Debit
		}
		line := newLine(txn, bank.ID, imbalance.Abs(), posting, time.Now().UTC())
		if err := accounting.ValidateBalance(append(append([]domain.TransactionLine{}, cand.Lines...), line)); err != nil {
			summary.Failed++
			logger.Error("Balancing line does not balance transaction", slog.String("transaction_id", txn.ID), slog.String("error", err.Error()))
			continue
		}

		if !opts.DryRun {
			if err := s.insertLine(ctx, line); err != nil {
				summary.Failed++
				logger.Error("Failed to insert balancing bank line", slog.String("transaction_id", txn.ID), slog.String("error", err.Error()))
				continue
			}
		}
		summary.Changed++
		summary.Total = summary.Total.Add(line.Amount)
		logger.Info("Balancing bank line added",
			slog.String("transaction_id", txn.ID),
			slog.String("posting_type", string(posting)),
			slog.String("amount", line.Amount.StringFixed(2)))
	}
	return summary, nil
}

func (s *backfillService) insertLine(ctx context.Context, line domain.TransactionLine) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.txManager.Rollback(ctx, tx) }()
	if err := s.txnRepo.InsertLines(ctx, tx, []domain.TransactionLine{line}); err != nil {
		return err
	}
	return s.txManager.Commit(ctx, tx)
}

// BackfillAccountRoles implements portssvc.BackfillSvc
func (s *backfillService) BackfillAccountRoles(ctx context.Context, orgID string, opts dto.BackfillOptions) (*domain.BackfillSummary, error) {
	ctx, logger, summary := s.start(ctx, JobBackfillRoles, orgID, opts)

	accounts, err := s.accountRepo.ListAccountsWithoutRole(ctx, orgID, backfillLimit(opts.Limit))
	if err != nil {
		return summary, fmt.Errorf("failed to list accounts without role: %w", err)
	}

	for _, a := range accounts {
		summary.Scanned++
		role := domain.InferAccountRole(a)
		if !opts.DryRun {
			if err := s.accountRepo.UpdateAccountRole(ctx, orgID, a.ID, role); err != nil {
				summary.Failed++
				logger.Error("Failed to set account role", slog.String("account_id", a.ID), slog.String("error", err.Error()))
				continue
			}
		}
		summary.Changed++
		logger.Info("Account role assigned", slog.String("account_id", a.ID), slog.String("name", a.Name), slog.String("role", string(role)))
	}
	return summary, nil
}
