package pgsql

import (
	"context"
	"fmt"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	portsrepo "github.com/bbabel1/property-manager-sub016/internal/core/ports/repositories"
	"github.com/bbabel1/property-manager-sub016/internal/models"
	"github.com/bbabel1/property-manager-sub016/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxGLAccountRepository struct {
	BaseRepository
}

// newPgxGLAccountRepository creates a new repository for chart-of-accounts data.
func newPgxGLAccountRepository(pool *pgxpool.Pool) portsrepo.GLAccountRepositoryFacade {
	return &PgxGLAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxGLAccountRepository implements portsrepo.GLAccountRepositoryFacade
var _ portsrepo.GLAccountRepositoryFacade = (*PgxGLAccountRepository)(nil)

const glAccountSelectQuery = `
SELECT
	id, org_id, name, type, sub_type, is_bank_account, is_security_deposit_liability,
	exclude_from_cash_balances, role, bank_account_number, bank_routing_number,
	buildium_gl_account_id, created_at, updated_at
FROM gl_accounts
`

// getAccounts runs the shared select with the given filter appended.
func (r *PgxGLAccountRepository) getAccounts(ctx context.Context, filterQuery string, args ...any) ([]domain.GLAccount, error) {
	rows, err := r.Pool.Query(ctx, glAccountSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, mapPgError(err, "query gl accounts")
	}
	defer rows.Close()
	modelAccounts, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.GLAccount])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect gl account rows", err)
	}
	return mapping.ToDomainGLAccountSlice(modelAccounts), nil
}

// FindGLAccountByID retrieves one account scoped to its organization.
func (r *PgxGLAccountRepository) FindGLAccountByID(ctx context.Context, orgID, accountID string) (*domain.GLAccount, error) {
	accounts, err := r.getAccounts(ctx, "WHERE org_id = $1 AND id = $2", orgID, accountID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, apperrors.NewNotFoundError("gl account " + accountID)
	}
	return &accounts[0], nil
}

func (r *PgxGLAccountRepository) ListGLAccounts(ctx context.Context, orgID string) ([]domain.GLAccount, error) {
	return r.getAccounts(ctx, "WHERE org_id = $1 ORDER BY name, id", orgID)
}

// ListBankAccountsForSync returns bank accounts that carry a Buildium bank account id.
func (r *PgxGLAccountRepository) ListBankAccountsForSync(ctx context.Context, orgID string) ([]domain.GLAccount, error) {
	return r.getAccounts(ctx, `
		WHERE org_id = $1
		  AND (is_bank_account OR role = 'BANK')
		  AND buildium_gl_account_id IS NOT NULL AND buildium_gl_account_id <> ''
		ORDER BY name, id`, orgID)
}

func (r *PgxGLAccountRepository) ListAccountsWithoutRole(ctx context.Context, orgID string, limit int) ([]domain.GLAccount, error) {
	return r.getAccounts(ctx, "WHERE org_id = $1 AND role IS NULL ORDER BY created_at, id LIMIT $2", orgID, limit)
}

// ResolveAPAccountID calls resolve_ap_gl_account_id inside tx.
// An organization without an AP account surfaces as apperrors.ErrUnprocessable.
func (r *PgxGLAccountRepository) ResolveAPAccountID(ctx context.Context, tx pgx.Tx, orgID string) (string, error) {
	var accountID string
	if err := tx.QueryRow(ctx, `SELECT resolve_ap_gl_account_id($1)::text`, orgID).Scan(&accountID); err != nil {
		return "", mapPgError(err, "resolve accounts payable account")
	}
	return accountID, nil
}

// UpdateAccountRole persists a role chosen by the role backfill.
func (r *PgxGLAccountRepository) UpdateAccountRole(ctx context.Context, orgID, accountID string, role domain.AccountRole) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE gl_accounts SET role = $3, updated_at = now()
		WHERE org_id = $1 AND id = $2`,
		orgID, accountID, string(role),
	)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("update role of gl account %s", accountID))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("gl account " + accountID)
	}
	return nil
}
