package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	portsrepo "github.com/bbabel1/property-manager-sub016/internal/core/ports/repositories"
	"github.com/bbabel1/property-manager-sub016/internal/models"
	"github.com/bbabel1/property-manager-sub016/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transaction headers and lines.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryWithTx
var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

const transactionColumns = `
	t.id, t.org_id, t.kind, t.total_amount, t.date, t.lease_id, t.property_id, t.unit_id,
	t.vendor_id, t.memo, t.is_reconciled, t.buildium_transaction_id, t.created_at, t.updated_at`

const transactionLineColumns = `
	l.id, l.transaction_id, l.org_id, l.gl_account_id, l.amount, l.posting_type,
	l.property_id, l.unit_id, l.lease_id, l.date, l.memo, l.created_at`

const insertTransactionQuery = `
	INSERT INTO transactions (
		id, org_id, kind, total_amount, date, lease_id, property_id, unit_id, vendor_id,
		memo, is_reconciled, buildium_transaction_id, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`

const insertTransactionLineQuery = `
	INSERT INTO transaction_lines (
		id, transaction_id, org_id, gl_account_id, amount, posting_type,
		property_id, unit_id, lease_id, date, memo, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`

// collectTransactions scans transaction rows through the row model.
func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	modelTxns, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Transaction])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect transaction rows", err)
	}
	return mapping.ToDomainTransactionSlice(modelTxns), nil
}

func collectLines(rows pgx.Rows) ([]domain.TransactionLine, error) {
	modelLines, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.TransactionLine])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect transaction line rows", err)
	}
	return mapping.ToDomainTransactionLineSlice(modelLines), nil
}

func findTransaction(ctx context.Context, q querier, query, orgID, transactionID string) (*domain.Transaction, error) {
	rows, err := q.Query(ctx, query, orgID, transactionID)
	if err != nil {
		return nil, mapPgError(err, "find transaction "+transactionID)
	}
	defer rows.Close()
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, apperrors.NewNotFoundError("transaction " + transactionID)
	}
	return &txns[0], nil
}

// FindTransactionByID retrieves a transaction header scoped to its organization.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, orgID, transactionID string) (*domain.Transaction, error) {
	query := `SELECT` + transactionColumns + ` FROM transactions t WHERE t.org_id = $1 AND t.id = $2`
	return findTransaction(ctx, r.Pool, query, orgID, transactionID)
}

// FindTransactionByIDForUpdate locks the header row until tx ends.
func (r *PgxTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, orgID, transactionID string) (*domain.Transaction, error) {
	query := `SELECT` + transactionColumns + ` FROM transactions t WHERE t.org_id = $1 AND t.id = $2 FOR UPDATE`
	return findTransaction(ctx, tx, query, orgID, transactionID)
}

// FindTransactionIDByExternalID maps a Buildium transaction id to the local id.
func (r *PgxTransactionRepository) FindTransactionIDByExternalID(ctx context.Context, orgID, externalID string) (string, error) {
	var transactionID string
	err := r.Pool.QueryRow(ctx, `
		SELECT id::text FROM transactions
		WHERE org_id = $1 AND buildium_transaction_id = $2`,
		orgID, externalID,
	).Scan(&transactionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFoundError("transaction with external id " + externalID)
		}
		return "", mapPgError(err, "find transaction by external id "+externalID)
	}
	return transactionID, nil
}

func (r *PgxTransactionRepository) ListLinesByTransactionID(ctx context.Context, orgID, transactionID string) ([]domain.TransactionLine, error) {
	rows, err := r.Pool.Query(ctx, `SELECT`+transactionLineColumns+`
		FROM transaction_lines l
		WHERE l.org_id = $1 AND l.transaction_id = $2
		ORDER BY l.created_at, l.id`,
		orgID, transactionID,
	)
	if err != nil {
		return nil, mapPgError(err, "list lines of transaction "+transactionID)
	}
	defer rows.Close()
	return collectLines(rows)
}

// CreateTransaction inserts the header, then queues every line in one batch.
func (r *PgxTransactionRepository) CreateTransaction(ctx context.Context, tx pgx.Tx, txn domain.Transaction, lines []domain.TransactionLine) error {
	m := mapping.ToModelTransaction(txn)
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}
	_, err := tx.Exec(ctx, insertTransactionQuery,
		m.ID,
		m.OrgID,
		m.Kind,
		m.TotalAmount,
		m.Date,
		m.LeaseID,
		m.PropertyID,
		m.UnitID,
		m.VendorID,
		m.Memo,
		m.IsReconciled,
		m.BuildiumTransactionID,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return mapPgError(err, "insert transaction "+m.ID)
	}
	return r.InsertLines(ctx, tx, lines)
}

// InsertLines writes lines in a single batch; the first failing insert aborts the batch.
func (r *PgxTransactionRepository) InsertLines(ctx context.Context, tx pgx.Tx, lines []domain.TransactionLine) error {
	if len(lines) == 0 {
		return nil
	}
	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, line := range lines {
		m := mapping.ToModelTransactionLine(line)
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		batch.Queue(insertTransactionLineQuery,
			m.ID,
			m.TransactionID,
			m.OrgID,
			m.GLAccountID,
			m.Amount,
			m.PostingType,
			m.PropertyID,
			m.UnitID,
			m.LeaseID,
			m.Date,
			m.Memo,
			m.CreatedAt,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapPgError(err, "insert transaction lines")
	}
	return nil
}

// loadLinesFor fetches the lines of many transactions at once, grouped by transaction id.
func loadLinesFor(ctx context.Context, q querier, orgID string, transactionIDs []string) (map[string][]domain.TransactionLine, error) {
	grouped := make(map[string][]domain.TransactionLine, len(transactionIDs))
	if len(transactionIDs) == 0 {
		return grouped, nil
	}
	rows, err := q.Query(ctx, `SELECT`+transactionLineColumns+`
		FROM transaction_lines l
		WHERE l.org_id = $1 AND l.transaction_id = ANY($2::uuid[])
		ORDER BY l.transaction_id, l.created_at, l.id`,
		orgID, transactionIDs,
	)
	if err != nil {
		return nil, mapPgError(err, "load transaction lines")
	}
	defer rows.Close()
	lines, err := collectLines(rows)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		grouped[line.TransactionID] = append(grouped[line.TransactionID], line)
	}
	return grouped, nil
}
