package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the business type of a transaction header.
type TransactionKind string

const (
	KindCharge       TransactionKind = "Charge"
	KindPayment      TransactionKind = "Payment"
	KindBill         TransactionKind = "Bill"
	KindVendorCredit TransactionKind = "VendorCredit"
	KindApplyDeposit TransactionKind = "ApplyDeposit"
	KindCredit       TransactionKind = "Credit"
	KindRefund       TransactionKind = "Refund"
	KindJournalEntry TransactionKind = "JournalEntry"
)

// PostingType indicates whether a transaction line is a Debit or a Credit.
type PostingType string

const (
	Debit  PostingType = "DEBIT"
	Credit PostingType = "CREDIT"
)

// Transaction is a financial event header.
type Transaction struct {
	ID           string          `json:"id"`
	OrgID        string          `json:"orgId"`
	Kind         TransactionKind `json:"kind"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Date         time.Time       `json:"date"`
	LeaseID      *string         `json:"leaseId,omitempty"`
	PropertyID   *string         `json:"propertyId,omitempty"`
	UnitID       *string         `json:"unitId,omitempty"`
	VendorID     *string         `json:"vendorId,omitempty"`
	Memo         string          `json:"memo,omitempty"`
	IsReconciled bool            `json:"isReconciled"`
	ExternalID   *string         `json:"externalId,omitempty"`
	AuditFields
}

// TransactionLine is one leg of a transaction's double-entry posting.
// Amount is always a positive magnitude; PostingType carries the direction.
type TransactionLine struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transactionId"`
	OrgID         string          `json:"orgId"`
	GLAccountID   string          `json:"glAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	PostingType   PostingType     `json:"postingType"`
	PropertyID    *string         `json:"propertyId,omitempty"`
	UnitID        *string         `json:"unitId,omitempty"`
	LeaseID       *string         `json:"leaseId,omitempty"`
	Date          time.Time       `json:"date"`
	Memo          string          `json:"memo,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}
