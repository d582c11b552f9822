package services

import (
	"context"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/bbabel1/property-manager-sub016/internal/dto"
)

// ReconciliationSyncSvc reconciles local bank register state against the external system.
type ReconciliationSyncSvc interface {
	// SyncReconciliationTransactions syncs one statement period. Per-transaction failures are
	// collected in the result; only an external fetch failure returns an error.
	SyncReconciliationTransactions(ctx context.Context, orgID string, params dto.SyncReconciliationParams, opts domain.SyncOptions) (*domain.SyncResult, error)

	SyncReconciliationLog(ctx context.Context, orgID, logID string, req dto.SyncReconciliationRequest) (*domain.SyncResult, error)
	SyncBankAccount(ctx context.Context, orgID, glAccountID string, req dto.SyncBankAccountRequest) (*domain.BankAccountSyncSummary, error)
	SyncOrganization(ctx context.Context, orgID string, opts dto.SyncOrganizationOptions) (*domain.OrganizationSyncSummary, error)
}

// BankRegisterSvc handles manual clearing actions on the bank register.
type BankRegisterSvc interface {
	SetRegisterStatus(ctx context.Context, orgID, glAccountID, transactionID string, req dto.SetRegisterStatusRequest) (*domain.BankRegisterState, error)
}

// ReconciliationSvcFacade combines all reconciliation service interfaces
type ReconciliationSvcFacade interface {
	ReconciliationSyncSvc
	BankRegisterSvc
}

// ReconciliationSource is the external system of record for bank reconciliations.
type ReconciliationSource interface {
	ListReconciliationTransactions(ctx context.Context, bankAccountID, reconciliationID string) ([]domain.ExternalTransactionRecord, error)
	ListReconciliations(ctx context.Context, bankAccountID string) ([]domain.ExternalReconciliation, error)
	GetReconciliationBalance(ctx context.Context, bankAccountID, reconciliationID string) (*domain.ExternalReconciliationBalance, error)
}
