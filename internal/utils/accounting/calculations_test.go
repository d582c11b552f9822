package accounting_test

import (
	"errors"
	"testing"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/bbabel1/property-manager-sub016/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(id, account string, amount string, posting domain.PostingType) domain.TransactionLine {
	return domain.TransactionLine{ID: id, GLAccountID: account, Amount: dec(amount), PostingType: posting}
}

func TestCalculateSignedAmount(t *testing.T) {
	tests := []struct {
		name        string
		posting     domain.PostingType
		accountType domain.AccountType
		want        string
	}{
		{"debit asset", domain.Debit, domain.Asset, "100"},
		{"credit asset", domain.Credit, domain.Asset, "-100"},
		{"debit expense", domain.Debit, domain.Expense, "100"},
		{"debit liability", domain.Debit, domain.Liability, "-100"},
		{"credit liability", domain.Credit, domain.Liability, "100"},
		{"credit income", domain.Credit, domain.Income, "100"},
		{"debit equity", domain.Debit, domain.Equity, "-100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := accounting.CalculateSignedAmount(dec("100"), tt.posting, tt.accountType)
			require.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}

	_, err := accounting.CalculateSignedAmount(dec("1"), domain.Debit, domain.AccountType("CONTRA"))
	assert.Error(t, err)
}

func TestValidateBalance(t *testing.T) {
	t.Run("balanced", func(t *testing.T) {
		err := accounting.ValidateBalance([]domain.TransactionLine{
			line("l1", "bank", "600.00", domain.Debit),
			line("l2", "ar", "500.00", domain.Credit),
			line("l3", "ar", "100.00", domain.Credit),
		})
		assert.NoError(t, err)
	})

	t.Run("off by a cent is rejected", func(t *testing.T) {
		err := accounting.ValidateBalance([]domain.TransactionLine{
			line("l1", "bank", "600.00", domain.Debit),
			line("l2", "ar", "599.99", domain.Credit),
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})

	t.Run("single line", func(t *testing.T) {
		err := accounting.ValidateBalance([]domain.TransactionLine{line("l1", "bank", "1", domain.Debit)})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		err := accounting.ValidateBalance([]domain.TransactionLine{
			line("l1", "bank", "0", domain.Debit),
			line("l2", "ar", "0", domain.Credit),
		})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestPostingImbalance(t *testing.T) {
	diff := accounting.PostingImbalance([]domain.TransactionLine{
		line("l1", "ar", "250", domain.Credit),
		line("l2", "fees", "10", domain.Debit),
	})
	assert.True(t, dec("-240").Equal(diff))
}

func TestClassifyLine(t *testing.T) {
	bank := domain.GLAccount{ID: "bank", Type: domain.Asset, IsBankAccount: true, Role: domain.RoleBank}
	deposits := domain.GLAccount{ID: "dep", Name: "Security Deposits", Type: domain.Liability}
	ar := domain.GLAccount{ID: "ar", Type: domain.Asset, Role: domain.RoleAR}
	ap := domain.GLAccount{ID: "ap", Type: domain.Liability, Role: domain.RoleAP}
	clearing := domain.GLAccount{ID: "clr", Type: domain.Asset, IsBankAccount: true, ExcludeFromCashBalances: true}

	cl, err := accounting.ClassifyLine(line("1", "bank", "50", domain.Credit), bank)
	require.NoError(t, err)
	assert.True(t, cl.Bank)
	assert.True(t, dec("-50").Equal(cl.SignedAmount), "credit to bank is an outflow")

	cl, err = accounting.ClassifyLine(line("2", "dep", "1200", domain.Credit), deposits)
	require.NoError(t, err)
	assert.True(t, cl.DepositLiability, "role inferred when not stored")
	assert.True(t, dec("1200").Equal(cl.SignedAmount))

	cl, err = accounting.ClassifyLine(line("3", "ar", "75", domain.Debit), ar)
	require.NoError(t, err)
	assert.True(t, cl.AR)
	assert.False(t, cl.Bank)

	cl, err = accounting.ClassifyLine(line("4", "ap", "75", domain.Debit), ap)
	require.NoError(t, err)
	assert.True(t, cl.AP)
	assert.True(t, dec("-75").Equal(cl.SignedAmount))

	cl, err = accounting.ClassifyLine(line("5", "clr", "10", domain.Debit), clearing)
	require.NoError(t, err)
	assert.True(t, cl.Excluded)

	_, err = accounting.ClassifyLine(line("6", "x", "10", domain.Debit), domain.GLAccount{ID: "x"})
	assert.Error(t, err)
}
