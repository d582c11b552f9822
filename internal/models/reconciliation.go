package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationLog is a row of reconciliation_log.
type ReconciliationLog struct {
	ID                              string              `db:"id"`
	OrgID                           string              `db:"org_id"`
	BankGLAccountID                 string              `db:"bank_gl_account_id"`
	BuildiumReconciliationID        string              `db:"buildium_reconciliation_id"`
	StatementEndingDate             *time.Time          `db:"statement_ending_date"`
	EndingBalance                   decimal.NullDecimal `db:"ending_balance"`
	IsFinished                      bool                `db:"is_finished"`
	LastSyncedAt                    *time.Time          `db:"last_synced_at"`
	LastSyncError                   *string             `db:"last_sync_error"`
	UnmatchedBuildiumTransactionIDs []string            `db:"unmatched_buildium_transaction_ids"`
	AuditFields
}

// BankRegisterState is a row of bank_register_state.
type BankRegisterState struct {
	OrgID               string     `db:"org_id"`
	BankGLAccountID     string     `db:"bank_gl_account_id"`
	TransactionID       string     `db:"transaction_id"`
	Status              string     `db:"status"`
	ClearedAt           *time.Time `db:"cleared_at"`
	ReconciledAt        *time.Time `db:"reconciled_at"`
	ReconciliationLogID *string    `db:"reconciliation_log_id"`
	UpdatedAt           time.Time  `db:"updated_at"`
}
