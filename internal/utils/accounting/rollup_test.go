package accounting_test

import (
	"testing"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/bbabel1/property-manager-sub016/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

var rollupAccounts = map[string]domain.GLAccount{
	"bank":     {ID: "bank", Type: domain.Asset, IsBankAccount: true, Role: domain.RoleBank},
	"ar":       {ID: "ar", Type: domain.Asset, Role: domain.RoleAR},
	"deposits": {ID: "deposits", Type: domain.Liability, IsSecurityDepositLiability: true, Role: domain.RoleDepositLiability},
	"income":   {ID: "income", Type: domain.Income, Role: domain.RoleOther},
	"clearing": {ID: "clearing", Type: domain.Asset, IsBankAccount: true, Role: domain.RoleBank, ExcludeFromCashBalances: true},
	"repairs":  {ID: "repairs", Type: domain.Expense, Role: domain.RoleOther},
	"prepaid":  {ID: "prepaid", Name: "Prepaid Rent", Type: domain.Liability, Role: domain.RoleOther},
}

// balanced fails the test unless every transaction in lines is a valid double entry.
func balanced(t *testing.T, lines ...domain.TransactionLine) []domain.TransactionLine {
	t.Helper()
	byTxn := make(map[string][]domain.TransactionLine)
	var order []string
	for _, l := range lines {
		if _, seen := byTxn[l.TransactionID]; !seen {
			order = append(order, l.TransactionID)
		}
		byTxn[l.TransactionID] = append(byTxn[l.TransactionID], l)
	}
	for _, id := range order {
		require.NoError(t, accounting.ValidateBalance(byTxn[id]), "transaction %s", id)
	}
	return lines
}

func datedLine(id, txnID, account, amount string, posting domain.PostingType, date string) domain.TransactionLine {
	return domain.TransactionLine{
		ID:            id,
		TransactionID: txnID,
		GLAccountID:   account,
		Amount:        dec(amount),
		PostingType:   posting,
		Date:          day(date),
	}
}

func TestRollupFinances_PointInTime(t *testing.T) {
	in := accounting.RollupInput{
		Scope:    domain.FinanceScope{PropertyID: strPtr("prop-1")},
		AsOf:     day("2025-03-01"),
		Accounts: rollupAccounts,
		Lines: balanced(t,
			datedLine("l1", "t1", "bank", "2000", domain.Debit, "2025-01-10"),
			datedLine("l2", "t1", "income", "2000", domain.Credit, "2025-01-10"),
			// Repair paid from the bank.
			datedLine("l3", "t2", "bank", "500", domain.Credit, "2025-02-10"),
			datedLine("l6", "t2", "repairs", "500", domain.Debit, "2025-02-10"),
			// Deposit billed to the tenant's ledger.
			datedLine("l4", "t3", "deposits", "1200", domain.Credit, "2025-02-01"),
			datedLine("l7", "t3", "ar", "1200", domain.Debit, "2025-02-01"),
			// After as-of: ignored.
			datedLine("l5", "t4", "bank", "999", domain.Debit, "2025-03-02"),
			datedLine("l8", "t4", "income", "999", domain.Credit, "2025-03-02"),
		),
		Reserve:             dec("300"),
		IncompleteBankRatio: accounting.DefaultIncompleteBankRatio,
	}

	snap, debug := accounting.RollupFinances(in)

	assert.True(t, dec("1500").Equal(snap.CashBalance), "cash %s", snap.CashBalance)
	assert.True(t, dec("1200").Equal(snap.DepositsHeldBalance), "deposits %s", snap.DepositsHeldBalance)
	assert.True(t, decimal.Zero.Equal(snap.AvailableBalance), "available %s", snap.AvailableBalance)
	assert.True(t, day("2025-03-01").Equal(snap.AsOf), "as_of is the requested date")
	assert.False(t, debug.UsedPaymentFallback)
	assert.Equal(t, 2, debug.BankLineCount)
}

func TestRollupFinances_MissingContext(t *testing.T) {
	snap, debug := accounting.RollupFinances(accounting.RollupInput{
		AsOf:     day("2025-03-01"),
		Accounts: rollupAccounts,
		Lines: balanced(t,
			datedLine("l1", "t1", "bank", "100", domain.Debit, "2025-01-01"),
			datedLine("l2", "t1", "income", "100", domain.Credit, "2025-01-01"),
		),
	})
	assert.True(t, debug.MissingContext)
	assert.True(t, snap.CashBalance.IsZero())
	assert.True(t, snap.AvailableBalance.IsZero())
	assert.True(t, day("2025-03-01").Equal(snap.AsOf))
}

func TestRollupFinances_PaymentFallback(t *testing.T) {
	payments := []domain.Transaction{
		{ID: "p1", Kind: domain.KindPayment, TotalAmount: dec("800"), Date: day("2025-01-05")},
		{ID: "p2", Kind: domain.KindPayment, TotalAmount: dec("200"), Date: day("2025-01-20")},
		{ID: "p3", Kind: domain.KindPayment, TotalAmount: dec("5000"), Date: day("2025-04-01")},
	}

	t.Run("no bank lines", func(t *testing.T) {
		snap, debug := accounting.RollupFinances(accounting.RollupInput{
			Scope:               domain.FinanceScope{UnitID: strPtr("unit-1")},
			AsOf:                day("2025-02-01"),
			Accounts:            rollupAccounts,
			Transactions:        payments,
			IncompleteBankRatio: accounting.DefaultIncompleteBankRatio,
		})
		assert.True(t, debug.UsedPaymentFallback)
		assert.NotEmpty(t, debug.FallbackReason)
		assert.True(t, dec("1000").Equal(snap.CashBalance), "cash %s", snap.CashBalance)
	})

	t.Run("bank lines cover too little", func(t *testing.T) {
		_, debug := accounting.RollupFinances(accounting.RollupInput{
			Scope:               domain.FinanceScope{UnitID: strPtr("unit-1")},
			AsOf:                day("2025-02-01"),
			Accounts:            rollupAccounts,
			Transactions:        payments,
			Lines: balanced(t,
				datedLine("l1", "p1", "bank", "50", domain.Debit, "2025-01-05"),
				datedLine("l2", "p1", "ar", "50", domain.Credit, "2025-01-05"),
			),
			IncompleteBankRatio: accounting.DefaultIncompleteBankRatio,
		})
		assert.True(t, debug.UsedPaymentFallback)
		assert.True(t, dec("1000").Equal(debug.BankTotal))
	})

	t.Run("zero ratio disables the coverage check", func(t *testing.T) {
		snap, debug := accounting.RollupFinances(accounting.RollupInput{
			Scope:        domain.FinanceScope{UnitID: strPtr("unit-1")},
			AsOf:         day("2025-02-01"),
			Accounts:     rollupAccounts,
			Transactions: payments,
			Lines: balanced(t,
				datedLine("l1", "p1", "bank", "50", domain.Debit, "2025-01-05"),
				datedLine("l2", "p1", "ar", "50", domain.Credit, "2025-01-05"),
			),
		})
		assert.False(t, debug.UsedPaymentFallback)
		assert.True(t, dec("50").Equal(snap.CashBalance))
	})

	t.Run("adequate bank lines", func(t *testing.T) {
		_, debug := accounting.RollupFinances(accounting.RollupInput{
			Scope:               domain.FinanceScope{UnitID: strPtr("unit-1")},
			AsOf:                day("2025-02-01"),
			Accounts:            rollupAccounts,
			Transactions:        payments,
			Lines: balanced(t,
				datedLine("l1", "p1", "bank", "950", domain.Debit, "2025-01-05"),
				datedLine("l2", "p1", "ar", "950", domain.Credit, "2025-01-05"),
			),
			IncompleteBankRatio: accounting.DefaultIncompleteBankRatio,
		})
		assert.False(t, debug.UsedPaymentFallback)
	})
}

func otherPropertyLine(id, account string, posting domain.PostingType) domain.TransactionLine {
	l := datedLine(id, "other", account, "77", posting, "2025-05-02")
	l.PropertyID = strPtr("prop-2")
	return l
}

func TestRollupFinances_DepositsPrepaymentsAndExclusions(t *testing.T) {
	in := accounting.RollupInput{
		Scope:    domain.FinanceScope{PropertyID: strPtr("prop-1")},
		AsOf:     day("2025-06-30"),
		Accounts: rollupAccounts,
		Transactions: []domain.Transaction{
			{ID: "charge-dep", Kind: domain.KindCharge, TotalAmount: dec("1000"), Date: day("2025-05-01")},
			{ID: "pay", Kind: domain.KindPayment, TotalAmount: dec("1300"), Date: day("2025-05-02")},
		},
		Lines: balanced(t,
			// Deposit charge books the liability; not money held yet.
			datedLine("c1", "charge-dep", "ar", "1000", domain.Debit, "2025-05-01"),
			datedLine("c2", "charge-dep", "deposits", "1000", domain.Credit, "2025-05-01"),
			// Tenant pays 1300 against 1000 owed: 300 prepaid.
			datedLine("p1", "pay", "bank", "1300", domain.Debit, "2025-05-02"),
			datedLine("p2", "pay", "ar", "1300", domain.Credit, "2025-05-02"),
			// Excluded clearing line.
			datedLine("x1", "sweep", "clearing", "1300", domain.Debit, "2025-05-02"),
			datedLine("x2", "sweep", "income", "1300", domain.Credit, "2025-05-02"),
			// Unknown account.
			datedLine("u1", "adj", "missing", "1", domain.Debit, "2025-05-02"),
			datedLine("u2", "adj", "income", "1", domain.Credit, "2025-05-02"),
			// Tagged to another property.
			otherPropertyLine("o1", "bank", domain.Debit),
			otherPropertyLine("o2", "income", domain.Credit),
		),
		OpeningBalances: domain.OpeningBalances{Cash: dec("100"), DepositsHeld: dec("400")},
	}

	snap, debug := accounting.RollupFinances(in)

	assert.True(t, dec("1400").Equal(snap.CashBalance), "cash %s", snap.CashBalance)
	assert.True(t, dec("400").Equal(snap.DepositsHeldBalance), "deposits %s", snap.DepositsHeldBalance)
	assert.True(t, dec("300").Equal(snap.PrepaymentsBalance), "prepayments %s", snap.PrepaymentsBalance)
	assert.True(t, dec("1000").Equal(snap.AvailableBalance), "available %s", snap.AvailableBalance)
	assert.Equal(t, 1, debug.ExcludedLineCount)
	assert.Equal(t, 1, debug.SkippedLineCount)
	assert.Equal(t, 1, debug.BankLineCount)
}

func TestRollupFinances_PrepaymentLiabilityAccount(t *testing.T) {
	in := accounting.RollupInput{
		Scope:    domain.FinanceScope{UnitID: strPtr("unit-1")},
		AsOf:     day("2025-06-30"),
		Accounts: rollupAccounts,
		Lines: balanced(t,
			datedLine("c1", "rent", "ar", "200", domain.Debit, "2025-06-01"),
			datedLine("c2", "rent", "income", "200", domain.Credit, "2025-06-01"),
			// 500 received: 200 settles rent, 300 is parked as prepaid rent.
			datedLine("p1", "pay", "bank", "500", domain.Debit, "2025-06-02"),
			datedLine("p2", "pay", "ar", "200", domain.Credit, "2025-06-02"),
			datedLine("p3", "pay", "prepaid", "300", domain.Credit, "2025-06-02"),
		),
		OpeningBalances: domain.OpeningBalances{Prepayments: dec("50")},
	}

	snap, debug := accounting.RollupFinances(in)

	assert.True(t, debug.ARTotal.IsZero(), "AR settled, ar %s", debug.ARTotal)
	assert.Equal(t, 1, debug.PrepaymentLineCount)
	assert.True(t, dec("300").Equal(debug.PrepaymentTotal))
	assert.True(t, dec("350").Equal(snap.PrepaymentsBalance), "prepayments %s", snap.PrepaymentsBalance)
	assert.True(t, dec("500").Equal(snap.CashBalance))
}

func TestRollupFinances_PrepaymentFallsBackToARCredit(t *testing.T) {
	snap, debug := accounting.RollupFinances(accounting.RollupInput{
		Scope:    domain.FinanceScope{UnitID: strPtr("unit-1")},
		AsOf:     day("2025-06-30"),
		Accounts: rollupAccounts,
		Lines: balanced(t,
			datedLine("p1", "pay", "bank", "120", domain.Debit, "2025-06-02"),
			datedLine("p2", "pay", "ar", "120", domain.Credit, "2025-06-02"),
		),
	})

	assert.Zero(t, debug.PrepaymentLineCount)
	assert.True(t, dec("120").Equal(snap.PrepaymentsBalance), "prepayments %s", snap.PrepaymentsBalance)
}
