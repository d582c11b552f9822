package accounting

import (
	"fmt"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DefaultIncompleteBankRatio is the bank/payments coverage below which bank lines are treated as incomplete.
var DefaultIncompleteBankRatio = decimal.NewFromFloat(0.1)

// RollupInput is everything the rollup needs for one scope.
type RollupInput struct {
	Scope           domain.FinanceScope
	AsOf            time.Time
	Lines           []domain.TransactionLine
	Accounts        map[string]domain.GLAccount
	Transactions    []domain.Transaction
	OpeningBalances domain.OpeningBalances
	Reserve         decimal.Decimal
	// IncompleteBankRatio of zero disables the coverage check; only a total
	// absence of bank lines then triggers the payment fallback.
	IncompleteBankRatio decimal.Decimal
}

// RollupFinances aggregates lines into a point-in-time snapshot.
// Missing scope yields zeros with Debug.MissingContext set instead of an error.
func RollupFinances(in RollupInput) (domain.FinanceSnapshot, domain.RollupDebug) {
	asOf := in.AsOf
	snap := domain.FinanceSnapshot{
		AsOf:                asOf,
		CashBalance:         decimal.Zero,
		DepositsHeldBalance: decimal.Zero,
		PrepaymentsBalance:  decimal.Zero,
		Reserve:             decimal.Zero,
		AvailableBalance:    decimal.Zero,
	}
	debug := domain.RollupDebug{
		BankTotal:       decimal.Zero,
		PaymentsTotal:   decimal.Zero,
		ARTotal:         decimal.Zero,
		PrepaymentTotal: decimal.Zero,
	}

	if in.Scope.IsEmpty() {
		debug.MissingContext = true
		return snap, debug
	}

	txnKinds := make(map[string]domain.TransactionKind, len(in.Transactions))
	paymentsTotal := decimal.Zero
	for _, txn := range in.Transactions {
		txnKinds[txn.ID] = txn.Kind
		if txn.Kind == domain.KindPayment && !txn.Date.After(asOf) {
			paymentsTotal = paymentsTotal.Add(txn.TotalAmount)
		}
	}

	bankTotal := decimal.Zero
	depositTotal := decimal.Zero
	arTotal := decimal.Zero
	prepayTotal := decimal.Zero

	for _, line := range in.Lines {
		if line.Date.After(asOf) || !inScope(line, in.Scope) {
			continue
		}
		account, ok := in.Accounts[line.GLAccountID]
		if !ok {
			debug.SkippedLineCount++
			continue
		}
		cl, err := ClassifyLine(line, account)
		if err != nil {
			debug.SkippedLineCount++
			continue
		}
		if cl.Excluded {
			debug.ExcludedLineCount++
			continue
		}
		debug.LinesConsidered++

		switch {
		case cl.Bank:
			debug.BankLineCount++
			bankTotal = bankTotal.Add(cl.SignedAmount)
		case cl.DepositLiability:
			// A deposit charge books the liability before any money is held.
			if txnKinds[line.TransactionID] == domain.KindCharge {
				continue
			}
			depositTotal = depositTotal.Add(cl.SignedAmount)
		case cl.AR:
			arTotal = arTotal.Add(cl.SignedAmount)
		case cl.Prepayment:
			debug.PrepaymentLineCount++
			prepayTotal = prepayTotal.Add(cl.SignedAmount)
		}
	}

	debug.PaymentsTotal = paymentsTotal
	debug.ARTotal = arTotal
	debug.PrepaymentTotal = prepayTotal

	ratio := in.IncompleteBankRatio
	if ratio.IsNegative() {
		ratio = decimal.Zero
	}
	if paymentsTotal.IsPositive() {
		switch {
		case debug.BankLineCount == 0:
			debug.UsedPaymentFallback = true
			debug.FallbackReason = "no bank lines in scope"
		case ratio.IsPositive() && bankTotal.Abs().LessThan(paymentsTotal.Mul(ratio)):
			debug.UsedPaymentFallback = true
			debug.FallbackReason = fmt.Sprintf("bank total %s covers less than %s of payments total %s",
				bankTotal.StringFixed(2), ratio.String(), paymentsTotal.StringFixed(2))
		}
	}
	if debug.UsedPaymentFallback {
		bankTotal = paymentsTotal
	}
	debug.BankTotal = bankTotal

	// A prepayment liability account is authoritative; without one, credit
	// left on AR is what tenants have paid ahead.
	prepayments := in.OpeningBalances.Prepayments.Sub(arTotal)
	if debug.PrepaymentLineCount > 0 {
		prepayments = in.OpeningBalances.Prepayments.Add(prepayTotal)
	}
	if prepayments.IsNegative() {
		prepayments = decimal.Zero
	}

	cash := in.OpeningBalances.Cash.Add(bankTotal)
	deposits := in.OpeningBalances.DepositsHeld.Add(depositTotal)

	snap.CashBalance = domain.Round2(cash)
	snap.DepositsHeldBalance = domain.Round2(deposits)
	snap.PrepaymentsBalance = domain.Round2(prepayments)
	snap.Reserve = domain.Round2(in.Reserve)
	snap.AvailableBalance = domain.Round2(cash.Sub(deposits).Sub(in.Reserve))
	return snap, debug
}

// inScope drops lines whose own property/unit tags point elsewhere.
func inScope(line domain.TransactionLine, scope domain.FinanceScope) bool {
	if scope.PropertyID != nil && *scope.PropertyID != "" && line.PropertyID != nil && *line.PropertyID != *scope.PropertyID {
		return false
	}
	if scope.UnitID != nil && *scope.UnitID != "" && line.UnitID != nil && *line.UnitID != *scope.UnitID {
		return false
	}
	return true
}
