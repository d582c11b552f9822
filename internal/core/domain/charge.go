package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ChargeStatus tracks how much of a charge has been paid.
type ChargeStatus string

const (
	ChargeOpen    ChargeStatus = "open"
	ChargePartial ChargeStatus = "partial"
	ChargePaid    ChargeStatus = "paid"
	ChargeClosed  ChargeStatus = "closed"
)

func (s ChargeStatus) rank() int {
	switch s {
	case ChargeOpen:
		return 0
	case ChargePartial:
		return 1
	case ChargePaid:
		return 2
	case ChargeClosed:
		return 3
	}
	return -1
}

// IsAllocatable reports whether a charge in this status may receive payment allocations.
func (s ChargeStatus) IsAllocatable() bool {
	return s == ChargeOpen || s == ChargePartial
}

// Charge is a billable amount owed on a lease.
type Charge struct {
	ID            string          `json:"id"`
	OrgID         string          `json:"orgId"`
	LeaseID       string          `json:"leaseId"`
	TransactionID *string         `json:"transactionId,omitempty"`
	ChargeType    string          `json:"chargeType"`
	Amount        decimal.Decimal `json:"amount"`
	AmountOpen    decimal.Decimal `json:"amountOpen"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	Status        ChargeStatus    `json:"status"`
	AuditFields
}

// ApplyPayment returns the charge after alloc has been taken off its open amount.
// amount_open never goes below zero and the status never moves backward.
func (c Charge) ApplyPayment(alloc decimal.Decimal) Charge {
	newOpen := c.AmountOpen.Sub(alloc)
	if newOpen.IsNegative() {
		newOpen = decimal.Zero
	}
	next := c.Status
	switch {
	case newOpen.LessThanOrEqual(AmountEpsilon):
		next = ChargePaid
	case newOpen.LessThan(c.Amount):
		next = ChargePartial
	}
	if next.rank() < c.Status.rank() {
		next = c.Status
	}
	c.AmountOpen = newOpen
	c.Status = next
	return c
}

// Charge types recognised when rebuilding charges from historical postings.
const (
	ChargeTypeRent    = "rent"
	ChargeTypeLateFee = "late_fee"
	ChargeTypeUtility = "utility"
	ChargeTypeFee     = "fee"
	ChargeTypeDeposit = "deposit"
)

// InferChargeType guesses a charge type from a free-text memo.
func InferChargeType(memo string) string {
	m := strings.ToLower(memo)
	switch {
	case strings.Contains(m, "late"):
		return ChargeTypeLateFee
	case strings.Contains(m, "utilit"):
		return ChargeTypeUtility
	case strings.Contains(m, "deposit"):
		return ChargeTypeDeposit
	case strings.Contains(m, "fee"):
		return ChargeTypeFee
	}
	return ChargeTypeRent
}
