package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinanceScope selects which property and/or unit a rollup covers.
type FinanceScope struct {
	PropertyID *string `json:"propertyId,omitempty"`
	UnitID     *string `json:"unitId,omitempty"`
}

// IsEmpty reports whether no property or unit context was supplied.
func (s FinanceScope) IsEmpty() bool {
	return (s.PropertyID == nil || *s.PropertyID == "") && (s.UnitID == nil || *s.UnitID == "")
}

// OpeningBalances are the balances carried in before the first posted line.
type OpeningBalances struct {
	Cash         decimal.Decimal `json:"cash"`
	DepositsHeld decimal.Decimal `json:"depositsHeld"`
	Prepayments  decimal.Decimal `json:"prepayments"`
}

// FinanceSnapshot is the point-in-time financial position of a property or unit.
type FinanceSnapshot struct {
	AsOf                time.Time       `json:"asOf"`
	CashBalance         decimal.Decimal `json:"cashBalance"`
	DepositsHeldBalance decimal.Decimal `json:"depositsHeldBalance"`
	PrepaymentsBalance  decimal.Decimal `json:"prepaymentsBalance"`
	Reserve             decimal.Decimal `json:"reserve"`
	AvailableBalance    decimal.Decimal `json:"availableBalance"`
}

// RollupDebug exposes how a snapshot was computed.
type RollupDebug struct {
	MissingContext      bool            `json:"missingContext"`
	UsedPaymentFallback bool            `json:"usedPaymentFallback"`
	FallbackReason      string          `json:"fallbackReason,omitempty"`
	BankLineCount       int             `json:"bankLineCount"`
	BankTotal           decimal.Decimal `json:"bankTotal"`
	PaymentsTotal       decimal.Decimal `json:"paymentsTotal"`
	ARTotal             decimal.Decimal `json:"arTotal"`
	PrepaymentLineCount int             `json:"prepaymentLineCount"`
	PrepaymentTotal     decimal.Decimal `json:"prepaymentTotal"`
	LinesConsidered     int             `json:"linesConsidered"`
	ExcludedLineCount   int             `json:"excludedLineCount"`
	SkippedLineCount    int             `json:"skippedLineCount"`
}

// FinanceRollup pairs a snapshot with its debug information.
type FinanceRollup struct {
	Snapshot FinanceSnapshot `json:"fin"`
	Debug    RollupDebug     `json:"debug"`
}
