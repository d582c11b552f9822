package dto

import "github.com/shopspring/decimal"

// SyncReconciliationParams identifies one reconciliation period on both sides.
type SyncReconciliationParams struct {
	ReconciliationLogID      string `validate:"required"`
	ExternalReconciliationID string `validate:"required"`
	BankGLAccountID          string `validate:"required"`
	ExternalBankAccountID    string `validate:"required"`
}

// SyncReconciliationRequest is the body of POST /reconciliations/:reconciliationID/sync.
// Omitted balance fields fall back to what the log already records.
type SyncReconciliationRequest struct {
	MarkReconciled      bool             `json:"markReconciled"`
	EndingBalance       *decimal.Decimal `json:"endingBalance"`
	StatementEndingDate *string          `json:"statementEndingDate" validate:"omitempty,datetime=2006-01-02"`
}

// SyncBankAccountRequest is the body of POST /bank-accounts/:glAccountID/reconciliations/sync.
type SyncBankAccountRequest struct {
	IncludeFinished bool `json:"includeFinished"`
}

// SyncOrganizationOptions controls an organization-wide reconciliation sync.
type SyncOrganizationOptions struct {
	IncludeFinished bool
	Concurrency     int
}

// SetRegisterStatusRequest is the body of PUT /bank-accounts/:glAccountID/register/:transactionID.
type SetRegisterStatusRequest struct {
	Status string `json:"status" binding:"required" validate:"required,oneof=uncleared cleared"`
}
