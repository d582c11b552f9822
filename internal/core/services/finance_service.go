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
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// financeService computes point-in-time rollups for a property or unit.
type financeService struct {
	BaseService
	financeRepo         portsrepo.FinanceReader
	accountRepo         portsrepo.GLAccountReader
	incompleteBankRatio decimal.Decimal
	now                 func() time.Time
}

// FinanceServiceOption is a functional option for configuring the finance service
type FinanceServiceOption func(*financeService)

// WithIncompleteBankRatio overrides the bank/payments coverage ratio below which bank data is treated as incomplete.
func WithIncompleteBankRatio(ratio decimal.Decimal) FinanceServiceOption {
	return func(s *financeService) {
		s.incompleteBankRatio = ratio
	}
}

// WithFinanceClock sets the clock used to default the as-of date.
func WithFinanceClock(now func() time.Time) FinanceServiceOption {
	return func(s *financeService) {
		s.now = now
	}
}

// NewFinanceService creates a new FinanceService with the provided options
func NewFinanceService(financeRepo portsrepo.FinanceReader, accountRepo portsrepo.GLAccountReader, options ...FinanceServiceOption) portssvc.FinanceSvc {
	svc := &financeService{
		financeRepo:         financeRepo,
		accountRepo:         accountRepo,
		incompleteBankRatio: accounting.DefaultIncompleteBankRatio,
		now:                 time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.FinanceSvc = (*financeService)(nil)

// GetFinances implements portssvc.FinanceSvc
func (s *financeService) GetFinances(ctx context.Context, orgID string, query dto.FinanceQuery) (*domain.FinanceRollup, error) {
	if err := validateStruct(query); err != nil {
		return nil, err
	}
	asOf := domain.DateOnly(s.now())
	if query.AsOf != "" {
		parsed, err := time.Parse(dto.DateLayout, query.AsOf)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid asOf %q", apperrors.ErrValidation, query.AsOf)
		}
		asOf = parsed
	}

	scope := domain.FinanceScope{PropertyID: query.PropertyID, UnitID: query.UnitID}
	in := accounting.RollupInput{
		Scope:               scope,
		AsOf:                asOf,
		IncompleteBankRatio: s.incompleteBankRatio,
	}
	if scope.IsEmpty() {
		snap, debug := accounting.RollupFinances(in)
		return &domain.FinanceRollup{Snapshot: snap, Debug: debug}, nil
	}

	var (
		lines    []domain.TransactionLine
		accounts []domain.GLAccount
		txns     []domain.Transaction
		opening  domain.OpeningBalances
		reserve  decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lines, err = s.financeRepo.ListLinesForScope(gctx, orgID, scope, asOf)
		if err != nil {
			return fmt.Errorf("failed to load lines: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		accounts, err = s.accountRepo.ListGLAccounts(gctx, orgID)
		if err != nil {
			return fmt.Errorf("failed to load accounts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		txns, err = s.financeRepo.ListTransactionsForScope(gctx, orgID, scope, asOf)
		if err != nil {
			return fmt.Errorf("failed to load transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		opening, err = s.financeRepo.GetOpeningBalances(gctx, orgID, scope)
		if err != nil {
			return fmt.Errorf("failed to load opening balances: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reserve, err = s.financeRepo.GetReserve(gctx, orgID, scope)
		if err != nil {
			return fmt.Errorf("failed to load reserve: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.LogError(ctx, err, "Failed to load finance rollup inputs", slog.String("org_id", orgID))
		return nil, err
	}

	accountMap := make(map[string]domain.GLAccount, len(accounts))
	for _, a := range accounts {
		accountMap[a.ID] = a
	}
	in.Lines = lines
	in.Accounts = accountMap
	in.Transactions = txns
	in.OpeningBalances = opening
	in.Reserve = reserve

	snap, debug := accounting.RollupFinances(in)
	if debug.UsedPaymentFallback {
		s.GetLogger(ctx).Warn("Bank lines incomplete; cash derived from payments",
			slog.String("reason", debug.FallbackReason),
			slog.String("payments_total", debug.PaymentsTotal.StringFixed(2)))
	}
	return &domain.FinanceRollup{Snapshot: snap, Debug: debug}, nil
}
