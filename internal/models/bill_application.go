package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillApplication is a row of bill_applications.
type BillApplication struct {
	ID                  string          `db:"id"`
	OrgID               string          `db:"org_id"`
	BillTransactionID   string          `db:"bill_transaction_id"`
	SourceTransactionID string          `db:"source_transaction_id"`
	SourceType          string          `db:"source_type"`
	AppliedAmount       decimal.Decimal `db:"applied_amount"`
	AppliedAt           time.Time       `db:"applied_at"`
}
