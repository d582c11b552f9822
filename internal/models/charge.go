package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Charge struct {
	ID            string          `db:"id"`
	OrgID         string          `db:"org_id"`
	LeaseID       string          `db:"lease_id"`
	TransactionID *string         `db:"transaction_id"`
	ChargeType    string          `db:"charge_type"`
	Amount        decimal.Decimal `db:"amount"`
	AmountOpen    decimal.Decimal `db:"amount_open"`
	DueDate       *time.Time      `db:"due_date"`
	Status        string          `db:"status"`
	AuditFields
}

type PaymentAllocation struct {
	ID                   string          `db:"id"`
	OrgID                string          `db:"org_id"`
	PaymentTransactionID string          `db:"payment_transaction_id"`
	ChargeID             string          `db:"charge_id"`
	AllocatedAmount      decimal.Decimal `db:"allocated_amount"`
	AllocationOrder      int             `db:"allocation_order"`
	ExternalID           *string         `db:"external_id"`
	CreatedAt            time.Time       `db:"created_at"`
}
