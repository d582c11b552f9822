package repositories

import (
	"context"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FinanceReader loads the inputs of a financial rollup for one scope.
type FinanceReader interface {
	ListLinesForScope(ctx context.Context, orgID string, scope domain.FinanceScope, asOf time.Time) ([]domain.TransactionLine, error)
	ListTransactionsForScope(ctx context.Context, orgID string, scope domain.FinanceScope, asOf time.Time) ([]domain.Transaction, error)
	GetOpeningBalances(ctx context.Context, orgID string, scope domain.FinanceScope) (domain.OpeningBalances, error)
	GetReserve(ctx context.Context, orgID string, scope domain.FinanceScope) (decimal.Decimal, error)
}
