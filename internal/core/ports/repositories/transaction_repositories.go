package repositories

import (
	"context"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// TransactionReader defines read operations for transaction headers and lines
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction header. Returns apperrors.ErrNotFound when absent.
	FindTransactionByID(ctx context.Context, orgID, transactionID string) (*domain.Transaction, error)

	// FindTransactionByIDForUpdate retrieves and row-locks a transaction header inside tx.
	FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, orgID, transactionID string) (*domain.Transaction, error)

	// FindTransactionIDByExternalID maps an external-system id to a local transaction id.
	// Returns apperrors.ErrNotFound when no local transaction carries that id.
	FindTransactionIDByExternalID(ctx context.Context, orgID, externalID string) (string, error)

	// ListLinesByTransactionID returns the posting lines of one transaction.
	ListLinesByTransactionID(ctx context.Context, orgID, transactionID string) ([]domain.TransactionLine, error)
}

// TransactionWriter defines write operations for transaction headers and lines
type TransactionWriter interface {
	// CreateTransaction inserts a header and its lines inside tx. Callers validate balance first.
	CreateTransaction(ctx context.Context, tx pgx.Tx, txn domain.Transaction, lines []domain.TransactionLine) error

	// InsertLines appends lines to an existing transaction inside tx.
	InsertLines(ctx context.Context, tx pgx.Tx, lines []domain.TransactionLine) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionRepositoryWithTx extends TransactionRepositoryFacade with transaction capabilities
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
