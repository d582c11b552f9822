package repositories

import (
	"context"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// GLAccountReader defines read operations for chart-of-accounts data
type GLAccountReader interface {
	// FindGLAccountByID retrieves one account. Returns apperrors.ErrNotFound when absent.
	FindGLAccountByID(ctx context.Context, orgID, accountID string) (*domain.GLAccount, error)

	// ListGLAccounts returns every account of an organization.
	ListGLAccounts(ctx context.Context, orgID string) ([]domain.GLAccount, error)

	// ListBankAccountsForSync returns bank accounts linked to an external bank account id.
	ListBankAccountsForSync(ctx context.Context, orgID string) ([]domain.GLAccount, error)

	// ListAccountsWithoutRole returns accounts whose role has not been assigned yet.
	ListAccountsWithoutRole(ctx context.Context, orgID string, limit int) ([]domain.GLAccount, error)

	// ResolveAPAccountID returns the organization's accounts-payable account inside tx.
	ResolveAPAccountID(ctx context.Context, tx pgx.Tx, orgID string) (string, error)
}

// GLAccountWriter defines write operations for chart-of-accounts data
type GLAccountWriter interface {
	UpdateAccountRole(ctx context.Context, orgID, accountID string, role domain.AccountRole) error
}

// GLAccountRepositoryFacade combines all GL account repository interfaces
type GLAccountRepositoryFacade interface {
	GLAccountReader
	GLAccountWriter
}
