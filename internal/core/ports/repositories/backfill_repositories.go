package repositories

import (
	"context"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
)

// BackfillReader finds historical rows that are missing derived ledger records.
type BackfillReader interface {
	// ListChargeTransactionsWithoutCharges returns Charge transactions that have no charges row.
	ListChargeTransactionsWithoutCharges(ctx context.Context, orgID string, limit int) ([]domain.TransactionWithLines, error)

	// ListPaymentsWithoutAllocations returns lease payments that have no allocation rows.
	ListPaymentsWithoutAllocations(ctx context.Context, orgID string, limit int) ([]domain.Transaction, error)

	// ListPaymentsWithoutBankLines returns payments none of whose lines hit a bank account.
	ListPaymentsWithoutBankLines(ctx context.Context, orgID string, limit int) ([]domain.TransactionWithLines, error)
}
