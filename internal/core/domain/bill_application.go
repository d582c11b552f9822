package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillSourceType identifies what kind of money a bill application consumes.
type BillSourceType string

const (
	SourcePayment      BillSourceType = "payment"
	SourceVendorCredit BillSourceType = "vendor_credit"
)

// SourceTypeForKind maps a source transaction kind to its application source type.
func SourceTypeForKind(k TransactionKind) (BillSourceType, bool) {
	switch k {
	case KindPayment:
		return SourcePayment, true
	case KindVendorCredit:
		return SourceVendorCredit, true
	}
	return "", false
}

// BillApplication applies part of a payment or vendor credit to a bill.
type BillApplication struct {
	ID                  string          `json:"id"`
	OrgID               string          `json:"orgId"`
	BillTransactionID   string          `json:"billTransactionId"`
	SourceTransactionID string          `json:"sourceTransactionId"`
	SourceType          BillSourceType  `json:"sourceType"`
	AppliedAmount       decimal.Decimal `json:"appliedAmount"`
	AppliedAt           time.Time       `json:"appliedAt"`
}

// PostedSource is a newly recorded payment or vendor credit together with the applications made from it.
type PostedSource struct {
	Transaction  Transaction       `json:"transaction"`
	Lines        []TransactionLine `json:"lines"`
	Applications []BillApplication `json:"applications"`
}
