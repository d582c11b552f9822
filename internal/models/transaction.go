package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of transactions (the header, not the posting lines).
type Transaction struct {
	ID                    string          `db:"id"`
	OrgID                 string          `db:"org_id"`
	Kind                  string          `db:"kind"`
	TotalAmount           decimal.Decimal `db:"total_amount"`
	Date                  time.Time       `db:"date"`
	LeaseID               *string         `db:"lease_id"`
	PropertyID            *string         `db:"property_id"`
	UnitID                *string         `db:"unit_id"`
	VendorID              *string         `db:"vendor_id"`
	Memo                  string          `db:"memo"`
	IsReconciled          bool            `db:"is_reconciled"`
	BuildiumTransactionID *string         `db:"buildium_transaction_id"`
	AuditFields
}

// TransactionLine is a row of transaction_lines.
type TransactionLine struct {
	ID            string          `db:"id"`
	TransactionID string          `db:"transaction_id"`
	OrgID         string          `db:"org_id"`
	GLAccountID   string          `db:"gl_account_id"`
	Amount        decimal.Decimal `db:"amount"`
	PostingType   string          `db:"posting_type"`
	PropertyID    *string         `db:"property_id"`
	UnitID        *string         `db:"unit_id"`
	LeaseID       *string         `db:"lease_id"`
	Date          time.Time       `db:"date"`
	Memo          string          `db:"memo"`
	CreatedAt     time.Time       `db:"created_at"`
}
