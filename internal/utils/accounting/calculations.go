package accounting

import (
	"fmt"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSignedAmount applies the correct sign to a line amount based on account type and posting type.
func CalculateSignedAmount(amount decimal.Decimal, posting domain.PostingType, accountType domain.AccountType) (decimal.Decimal, error) {
	signedAmount := amount
	isDebit := posting == domain.Debit

	// DEBIT to ASSET/EXPENSE -> Positive (+)
	// CREDIT to ASSET/EXPENSE -> Negative (-)
	// DEBIT to LIABILITY/EQUITY/INCOME -> Negative (-)
	// CREDIT to LIABILITY/EQUITY/INCOME -> Positive (+)
	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			signedAmount = signedAmount.Neg()
		}
	case domain.Liability, domain.Equity, domain.Income:
		if isDebit {
			signedAmount = signedAmount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s'", accountType)
	}
	return signedAmount, nil
}

// ValidateBalance checks the double-entry invariant for one transaction's lines:
// at least two lines, positive magnitudes, and debit total exactly equal to credit total.
func ValidateBalance(lines []domain.TransactionLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: transaction must have at least two lines", apperrors.ErrValidation)
	}

	debits := decimal.Zero
	credits := decimal.Zero
	for _, line := range lines {
		if !line.Amount.IsPositive() {
			return fmt.Errorf("%w: line amount must be positive (line %s)", apperrors.ErrValidation, line.ID)
		}
		switch line.PostingType {
		case domain.Debit:
			debits = debits.Add(line.Amount)
		case domain.Credit:
			credits = credits.Add(line.Amount)
		default:
			return fmt.Errorf("%w: unknown posting type '%s' (line %s)", apperrors.ErrValidation, line.PostingType, line.ID)
		}
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits %s do not equal credits %s", apperrors.ErrValidation, debits.String(), credits.String())
	}
	return nil
}

// PostingImbalance returns debits minus credits for a set of lines.
func PostingImbalance(lines []domain.TransactionLine) decimal.Decimal {
	diff := decimal.Zero
	for _, line := range lines {
		if line.PostingType == domain.Debit {
			diff = diff.Add(line.Amount)
		} else {
			diff = diff.Sub(line.Amount)
		}
	}
	return diff
}
