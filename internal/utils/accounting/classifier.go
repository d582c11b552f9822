package accounting

import (
	"fmt"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ClassifiedLine is a transaction line tagged with its semantic role and signed amount.
type ClassifiedLine struct {
	Line             domain.TransactionLine
	SignedAmount     decimal.Decimal
	Bank             bool
	AR               bool
	AP               bool
	DepositLiability bool
	Prepayment       bool
	// Excluded lines are left out of cash rollups but still count for double-entry balance.
	Excluded bool
}

// ClassifyLine tags a line using its GL account metadata. It performs no I/O.
func ClassifyLine(line domain.TransactionLine, account domain.GLAccount) (ClassifiedLine, error) {
	signed, err := CalculateSignedAmount(line.Amount, line.PostingType, account.Type)
	if err != nil {
		return ClassifiedLine{}, fmt.Errorf("classify line %s on account %s: %w", line.ID, account.ID, err)
	}

	role := account.EffectiveRole()
	return ClassifiedLine{
		Line:             line,
		SignedAmount:     signed,
		Bank:             role == domain.RoleBank || account.IsBankAccount,
		AR:               role == domain.RoleAR,
		AP:               role == domain.RoleAP,
		DepositLiability: role == domain.RoleDepositLiability || account.IsSecurityDepositLiability,
		Prepayment:       !account.IsSecurityDepositLiability && account.IsPrepaymentLiability(),
		Excluded:         account.ExcludeFromCashBalances,
	}, nil
}
