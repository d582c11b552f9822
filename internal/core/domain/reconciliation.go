package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterStatus is the clearing lifecycle of a transaction on a bank register.
type RegisterStatus string

const (
	RegisterUncleared  RegisterStatus = "uncleared"
	RegisterCleared    RegisterStatus = "cleared"
	RegisterReconciled RegisterStatus = "reconciled"
)

// Rank orders statuses uncleared < cleared < reconciled.
func (s RegisterStatus) Rank() int {
	switch s {
	case RegisterCleared:
		return 1
	case RegisterReconciled:
		return 2
	}
	return 0
}

// Advance returns whichever of s and next is further along.
func (s RegisterStatus) Advance(next RegisterStatus) RegisterStatus {
	if next.Rank() > s.Rank() {
		return next
	}
	return s
}

func (s RegisterStatus) Valid() bool {
	return s == RegisterUncleared || s == RegisterCleared || s == RegisterReconciled
}

// BankRegisterState is the per (org, bank account, transaction) clearing record.
type BankRegisterState struct {
	OrgID               string         `json:"orgId"`
	BankGLAccountID     string         `json:"bankGlAccountId"`
	TransactionID       string         `json:"transactionId"`
	Status              RegisterStatus `json:"status"`
	ClearedAt           *time.Time     `json:"clearedAt,omitempty"`
	ReconciledAt        *time.Time     `json:"reconciledAt,omitempty"`
	ReconciliationLogID *string        `json:"reconciliationLogId,omitempty"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

// ReconciliationLog is one bank-statement reconciliation period.
type ReconciliationLog struct {
	ID                       string           `json:"id"`
	OrgID                    string           `json:"orgId"`
	BankGLAccountID          string           `json:"bankGlAccountId"`
	ExternalReconciliationID string           `json:"externalReconciliationId"`
	StatementEndingDate      *time.Time       `json:"statementEndingDate,omitempty"`
	EndingBalance            *decimal.Decimal `json:"endingBalance,omitempty"`
	IsFinished               bool             `json:"isFinished"`
	LastSyncedAt             *time.Time       `json:"lastSyncedAt,omitempty"`
	LastSyncError            *string          `json:"lastSyncError,omitempty"`
	UnmatchedExternalIDs     []string         `json:"unmatchedExternalIds"`
	AuditFields
}

// ReconciliationSyncUpdate is the full overwrite written to a log after each sync call.
type ReconciliationSyncUpdate struct {
	LogID                string
	SyncedAt             time.Time
	UnmatchedExternalIDs []string
	LastSyncError        *string
	EndingBalance        *decimal.Decimal
	StatementEndingDate  *time.Time
}

// ExternalReconciliation is a reconciliation period as reported by Buildium.
type ExternalReconciliation struct {
	ID                  string
	StatementEndingDate *time.Time
	IsFinished          bool
}

// ExternalReconciliationBalance is the statement balance summary reported by Buildium.
type ExternalReconciliationBalance struct {
	EndingBalance             decimal.Decimal
	TotalChecksAndWithdrawals decimal.Decimal
	TotalDepositsAndAdditions decimal.Decimal
}

// ExternalTransactionRecord is one raw transaction record from the external system.
// Field names vary between endpoints, so it is kept untyped.
type ExternalTransactionRecord map[string]any

// SyncOptions controls one reconciliation sync call.
type SyncOptions struct {
	MarkReconciled      bool
	EndingBalance       *decimal.Decimal
	StatementEndingDate *time.Time
}

// SyncResult is the outcome of syncing one reconciliation period.
type SyncResult struct {
	Synced       int              `json:"synced"`
	Unmatched    []string         `json:"unmatched"`
	Errors       []string         `json:"errors"`
	BalanceDrift *decimal.Decimal `json:"balanceDrift,omitempty"`
	BookBalance  *decimal.Decimal `json:"bookBalance,omitempty"`
}

// BankAccountSyncSummary aggregates the syncs run for one bank account.
type BankAccountSyncSummary struct {
	BankGLAccountID string `json:"bankGlAccountId"`
	Reconciliations int    `json:"reconciliations"`
	LogsUpserted    int    `json:"logsUpserted"`
	Synced          int    `json:"synced"`
	Unmatched       int    `json:"unmatched"`
	Errors          int    `json:"errors"`
	Drifted         int    `json:"drifted"`
	Failed          int    `json:"failed"`
	FatalError      string `json:"fatalError,omitempty"`
}

// OrganizationSyncSummary aggregates bank-account syncs across an organization.
type OrganizationSyncSummary struct {
	Accounts  []BankAccountSyncSummary `json:"accounts"`
	Synced    int                      `json:"synced"`
	Unmatched int                      `json:"unmatched"`
	Errors    int                      `json:"errors"`
	Failed    int                      `json:"failed"`
}
