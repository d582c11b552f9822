package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	portsrepo "github.com/bbabel1/property-manager-sub016/internal/core/ports/repositories"
	"github.com/bbabel1/property-manager-sub016/internal/models"
	"github.com/bbabel1/property-manager-sub016/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxReconciliationRepository struct {
	BaseRepository
}

// newPgxReconciliationRepository creates a new repository for reconciliation logs and bank register state.
func newPgxReconciliationRepository(pool *pgxpool.Pool) portsrepo.ReconciliationRepositoryFacade {
	return &PgxReconciliationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxReconciliationRepository implements portsrepo.ReconciliationRepositoryFacade
var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

const reconciliationLogColumns = `
	id, org_id, bank_gl_account_id, buildium_reconciliation_id, statement_ending_date,
	ending_balance, is_finished, last_synced_at, last_sync_error,
	unmatched_buildium_transaction_ids, created_at, updated_at`

const registerStateColumns = `
	org_id, bank_gl_account_id, transaction_id, status, cleared_at, reconciled_at,
	reconciliation_log_id, updated_at`

// statusRank orders register statuses so an upsert can refuse to move backwards.
const statusRank = `array_position(ARRAY['uncleared', 'cleared', 'reconciled'], %s)`

func collectLog(rows pgx.Rows, what string) (*domain.ReconciliationLog, error) {
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.ReconciliationLog])
	if err != nil {
		return nil, mapPgError(err, what)
	}
	log := mapping.ToDomainReconciliationLog(m)
	return &log, nil
}

func (r *PgxReconciliationRepository) FindLogByID(ctx context.Context, orgID, logID string) (*domain.ReconciliationLog, error) {
	rows, err := r.Pool.Query(ctx, `SELECT`+reconciliationLogColumns+`
		FROM reconciliation_log WHERE org_id = $1 AND id = $2`,
		orgID, logID,
	)
	if err != nil {
		return nil, mapPgError(err, "find reconciliation log "+logID)
	}
	defer rows.Close()
	return collectLog(rows, "reconciliation log "+logID)
}

// UpsertLogByExternalID inserts a period or refreshes its header fields.
// Sync outcome columns are left to UpdateLogSyncResult; a missing statement date never erases a known one.
func (r *PgxReconciliationRepository) UpsertLogByExternalID(ctx context.Context, log domain.ReconciliationLog) (*domain.ReconciliationLog, error) {
	m := mapping.ToModelReconciliationLog(log)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}
	rows, err := r.Pool.Query(ctx, `
		INSERT INTO reconciliation_log (
			id, org_id, bank_gl_account_id, buildium_reconciliation_id, statement_ending_date,
			ending_balance, is_finished, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (org_id, buildium_reconciliation_id) DO UPDATE SET
			bank_gl_account_id    = EXCLUDED.bank_gl_account_id,
			statement_ending_date = COALESCE(EXCLUDED.statement_ending_date, reconciliation_log.statement_ending_date),
			ending_balance        = COALESCE(EXCLUDED.ending_balance, reconciliation_log.ending_balance),
			is_finished           = EXCLUDED.is_finished,
			updated_at            = EXCLUDED.updated_at
		RETURNING`+reconciliationLogColumns,
		m.ID, m.OrgID, m.BankGLAccountID, m.BuildiumReconciliationID, m.StatementEndingDate,
		m.EndingBalance, m.IsFinished, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return nil, mapPgError(err, "upsert reconciliation log "+m.BuildiumReconciliationID)
	}
	defer rows.Close()
	return collectLog(rows, "upsert reconciliation log "+m.BuildiumReconciliationID)
}

// UpdateLogSyncResult overwrites the outcome of the latest sync. Balance and statement date
// are only replaced when the update carries them.
func (r *PgxReconciliationRepository) UpdateLogSyncResult(ctx context.Context, orgID string, update domain.ReconciliationSyncUpdate) error {
	unmatched := update.UnmatchedExternalIDs
	if unmatched == nil {
		unmatched = []string{}
	}
	var balance decimal.NullDecimal
	if update.EndingBalance != nil {
		balance = decimal.NewNullDecimal(*update.EndingBalance)
	}
	var statementDate *time.Time
	if update.StatementEndingDate != nil {
		d := domain.DateOnly(*update.StatementEndingDate)
		statementDate = &d
	}

	tag, err := r.Pool.Exec(ctx, `
		UPDATE reconciliation_log SET
			last_synced_at                     = $3,
			unmatched_buildium_transaction_ids = $4,
			last_sync_error                    = $5,
			ending_balance                     = COALESCE($6::numeric, ending_balance),
			statement_ending_date              = COALESCE($7::date, statement_ending_date),
			updated_at                         = $3
		WHERE org_id = $1 AND id = $2`,
		orgID, update.LogID, update.SyncedAt, unmatched, update.LastSyncError, balance, statementDate,
	)
	if err != nil {
		return mapPgError(err, "update sync result of reconciliation log "+update.LogID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("reconciliation log " + update.LogID)
	}
	return nil
}

// UpsertRegisterState merges state into the register without lowering its status. The first
// cleared and reconciled timestamps are kept. Reaching reconciled flags the transaction too,
// in the same database transaction.
func (r *PgxReconciliationRepository) UpsertRegisterState(ctx context.Context, state domain.BankRegisterState) (*domain.BankRegisterState, error) {
	m := mapping.ToModelBankRegisterState(state)
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now().UTC()
	}
	incoming := fmt.Sprintf(statusRank, "EXCLUDED.status")
	stored := fmt.Sprintf(statusRank, "bank_register_state.status")

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	rows, err := tx.Query(ctx, `
		INSERT INTO bank_register_state (`+registerStateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (org_id, bank_gl_account_id, transaction_id) DO UPDATE SET
			status = CASE WHEN `+incoming+` > `+stored+`
				THEN EXCLUDED.status ELSE bank_register_state.status END,
			cleared_at    = COALESCE(bank_register_state.cleared_at, EXCLUDED.cleared_at),
			reconciled_at = COALESCE(bank_register_state.reconciled_at, EXCLUDED.reconciled_at),
			reconciliation_log_id = CASE WHEN `+incoming+` >= `+stored+`
				THEN COALESCE(EXCLUDED.reconciliation_log_id, bank_register_state.reconciliation_log_id)
				ELSE bank_register_state.reconciliation_log_id END,
			updated_at = EXCLUDED.updated_at
		RETURNING`+registerStateColumns,
		m.OrgID, m.BankGLAccountID, m.TransactionID, m.Status, m.ClearedAt, m.ReconciledAt,
		m.ReconciliationLogID, m.UpdatedAt,
	)
	if err != nil {
		return nil, mapPgError(err, "upsert register state of transaction "+m.TransactionID)
	}
	saved, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.BankRegisterState])
	if err != nil {
		return nil, mapPgError(err, "upsert register state of transaction "+m.TransactionID)
	}

	if domain.RegisterStatus(saved.Status) == domain.RegisterReconciled {
		_, err := tx.Exec(ctx, `
			UPDATE transactions SET is_reconciled = TRUE, updated_at = now()
			WHERE org_id = $1 AND id = $2 AND NOT is_reconciled`,
			m.OrgID, m.TransactionID,
		)
		if err != nil {
			return nil, mapPgError(err, "flag transaction "+m.TransactionID+" as reconciled")
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	result := mapping.ToDomainBankRegisterState(saved)
	return &result, nil
}

func (r *PgxReconciliationRepository) FindRegisterState(ctx context.Context, orgID, bankGLAccountID, transactionID string) (*domain.BankRegisterState, error) {
	rows, err := r.Pool.Query(ctx, `SELECT`+registerStateColumns+`
		FROM bank_register_state
		WHERE org_id = $1 AND bank_gl_account_id = $2 AND transaction_id = $3`,
		orgID, bankGLAccountID, transactionID,
	)
	if err != nil {
		return nil, mapPgError(err, "find register state of transaction "+transactionID)
	}
	defer rows.Close()
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.BankRegisterState])
	if err != nil {
		return nil, mapPgError(err, "register state of transaction "+transactionID)
	}
	state := mapping.ToDomainBankRegisterState(m)
	return &state, nil
}

// SetRegisterStatus overwrites a row unless it is already reconciled, which yields apperrors.ErrConflict.
func (r *PgxReconciliationRepository) SetRegisterStatus(ctx context.Context, state domain.BankRegisterState) error {
	m := mapping.ToModelBankRegisterState(state)
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now().UTC()
	}
	tag, err := r.Pool.Exec(ctx, `
		INSERT INTO bank_register_state (`+registerStateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (org_id, bank_gl_account_id, transaction_id) DO UPDATE SET
			status                = EXCLUDED.status,
			cleared_at            = EXCLUDED.cleared_at,
			reconciliation_log_id = EXCLUDED.reconciliation_log_id,
			updated_at            = EXCLUDED.updated_at
		WHERE bank_register_state.status <> 'reconciled'`,
		m.OrgID, m.BankGLAccountID, m.TransactionID, m.Status, m.ClearedAt, m.ReconciledAt,
		m.ReconciliationLogID, m.UpdatedAt,
	)
	if err != nil {
		return mapPgError(err, "set register status of transaction "+m.TransactionID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s is reconciled", apperrors.ErrConflict, m.TransactionID)
	}
	return nil
}

// CalculateBookBalance delegates to calculate_book_balance.
func (r *PgxReconciliationRepository) CalculateBookBalance(ctx context.Context, orgID, bankGLAccountID string, asOf time.Time) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.Pool.QueryRow(ctx, `SELECT calculate_book_balance($1, $2, $3)`,
		bankGLAccountID, domain.DateOnly(asOf), orgID,
	).Scan(&balance)
	if err != nil {
		return decimal.Zero, mapPgError(err, "calculate book balance of "+bankGLAccountID)
	}
	return balance, nil
}
