package pgsql

import (
	"context"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	portsrepo "github.com/bbabel1/property-manager-sub016/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBackfillRepository struct {
	BaseRepository
}

// newPgxBackfillRepository creates the repository that finds rows the backfill jobs repair.
func newPgxBackfillRepository(pool *pgxpool.Pool) portsrepo.BackfillReader {
	return &PgxBackfillRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.BackfillReader = (*PgxBackfillRepository)(nil)

// bankLineExists is true when a transaction already posts to a bank account.
const bankLineExists = `
	EXISTS (
		SELECT 1 FROM transaction_lines bl
		JOIN gl_accounts ga ON ga.id = bl.gl_account_id
		WHERE bl.transaction_id = t.id AND (ga.is_bank_account OR ga.role = 'BANK')
	)`

func (r *PgxBackfillRepository) listTransactions(ctx context.Context, filter string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.Pool.Query(ctx, `SELECT`+transactionColumns+` FROM transactions t `+filter, args...)
	if err != nil {
		return nil, mapPgError(err, "list backfill candidates")
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (r *PgxBackfillRepository) withLines(ctx context.Context, orgID string, txns []domain.Transaction) ([]domain.TransactionWithLines, error) {
	ids := make([]string, len(txns))
	for i, t := range txns {
		ids[i] = t.ID
	}
	grouped, err := loadLinesFor(ctx, r.Pool, orgID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TransactionWithLines, len(txns))
	for i, t := range txns {
		out[i] = domain.TransactionWithLines{Transaction: t, Lines: grouped[t.ID]}
	}
	return out, nil
}

func (r *PgxBackfillRepository) ListChargeTransactionsWithoutCharges(ctx context.Context, orgID string, limit int) ([]domain.TransactionWithLines, error) {
	txns, err := r.listTransactions(ctx, `
		WHERE t.org_id = $1 AND t.kind = 'Charge'
		  AND NOT EXISTS (SELECT 1 FROM charges c WHERE c.transaction_id = t.id)
		ORDER BY t.date, t.created_at, t.id
		LIMIT $2`, orgID, limit)
	if err != nil {
		return nil, err
	}
	return r.withLines(ctx, orgID, txns)
}

// ListPaymentsWithoutAllocations returns lease payments with no allocation rows, oldest first.
func (r *PgxBackfillRepository) ListPaymentsWithoutAllocations(ctx context.Context, orgID string, limit int) ([]domain.Transaction, error) {
	return r.listTransactions(ctx, `
		WHERE t.org_id = $1 AND t.kind = 'Payment' AND t.lease_id IS NOT NULL
		  AND NOT EXISTS (SELECT 1 FROM payment_allocations pa WHERE pa.payment_transaction_id = t.id)
		ORDER BY t.date, t.created_at, t.id
		LIMIT $2`, orgID, limit)
}

func (r *PgxBackfillRepository) ListPaymentsWithoutBankLines(ctx context.Context, orgID string, limit int) ([]domain.TransactionWithLines, error) {
	txns, err := r.listTransactions(ctx, `
		WHERE t.org_id = $1 AND t.kind = 'Payment'
		  AND NOT`+bankLineExists+`
		ORDER BY t.date, t.created_at, t.id
		LIMIT $2`, orgID, limit)
	if err != nil {
		return nil, err
	}
	return r.withLines(ctx, orgID, txns)
}
