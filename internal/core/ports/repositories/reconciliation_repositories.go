package repositories

import (
	"context"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReconciliationLogRepository defines persistence for reconciliation periods.
type ReconciliationLogRepository interface {
	FindLogByID(ctx context.Context, orgID, logID string) (*domain.ReconciliationLog, error)

	// UpsertLogByExternalID inserts or refreshes a log keyed by (org, external reconciliation id).
	UpsertLogByExternalID(ctx context.Context, log domain.ReconciliationLog) (*domain.ReconciliationLog, error)

	// UpdateLogSyncResult overwrites the sync outcome fields of a log.
	UpdateLogSyncResult(ctx context.Context, orgID string, update domain.ReconciliationSyncUpdate) error
}

// BankRegisterRepository defines persistence for per-transaction clearing state.
type BankRegisterRepository interface {
	// UpsertRegisterState writes state keyed by (org, bank account, transaction) without ever
	// lowering the stored status. Reaching reconciled also flags the transaction as reconciled.
	UpsertRegisterState(ctx context.Context, state domain.BankRegisterState) (*domain.BankRegisterState, error)

	FindRegisterState(ctx context.Context, orgID, bankGLAccountID, transactionID string) (*domain.BankRegisterState, error)

	// SetRegisterStatus writes a manually chosen status, which may move cleared back to uncleared.
	SetRegisterStatus(ctx context.Context, state domain.BankRegisterState) error

	// CalculateBookBalance returns the local book balance of a bank account as of a date.
	CalculateBookBalance(ctx context.Context, orgID, bankGLAccountID string, asOf time.Time) (decimal.Decimal, error)
}

// ReconciliationRepositoryFacade combines reconciliation log and bank register persistence
type ReconciliationRepositoryFacade interface {
	ReconciliationLogRepository
	BankRegisterRepository
}
