package dto

import "github.com/shopspring/decimal"

// DateLayout is the calendar-date format accepted in request bodies and query strings.
const DateLayout = "2006-01-02"

// ApplyToBillRequest is the body of POST /bills/:billID/applications.
type ApplyToBillRequest struct {
	SourceTransactionID string          `json:"sourceTransactionId" binding:"required" validate:"required"`
	Amount              decimal.Decimal `json:"amount"`
}

// BillAllocation is the part of a payment or credit destined for one bill.
type BillAllocation struct {
	BillID string          `json:"billId" binding:"required" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// RecordBillPaymentRequest is the body of POST /bill-payments.
type RecordBillPaymentRequest struct {
	BankGLAccountID string           `json:"bankGlAccountId" binding:"required" validate:"required"`
	VendorID        *string          `json:"vendorId"`
	PropertyID      *string          `json:"propertyId"`
	Date            string           `json:"date" binding:"required" validate:"required,datetime=2006-01-02"`
	Amount          decimal.Decimal  `json:"amount"`
	Memo            string           `json:"memo" validate:"max=500"`
	ExternalID      *string          `json:"externalId"`
	Allocations     []BillAllocation `json:"allocations" binding:"required,min=1" validate:"required,min=1,dive"`
}

// RecordVendorCreditRequest is the body of POST /vendor-credits.
type RecordVendorCreditRequest struct {
	VendorID          *string          `json:"vendorId"`
	PropertyID        *string          `json:"propertyId"`
	CreditGLAccountID string           `json:"creditGlAccountId" binding:"required" validate:"required"`
	Date              string           `json:"date" binding:"required" validate:"required,datetime=2006-01-02"`
	Amount            decimal.Decimal  `json:"amount"`
	Memo              string           `json:"memo" validate:"max=500"`
	Applications      []BillAllocation `json:"applications" validate:"omitempty,dive"`
}
