package pgsql

import (
	"context"
	"strconv"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	portsrepo "github.com/bbabel1/property-manager-sub016/internal/core/ports/repositories"
	"github.com/bbabel1/property-manager-sub016/internal/models"
	"github.com/bbabel1/property-manager-sub016/internal/utils/mapping"
	"github.com/bbabel1/property-manager-sub016/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxChargeRepository struct {
	BaseRepository
}

// newPgxChargeRepository creates a new repository for charges and payment allocations.
func newPgxChargeRepository(pool *pgxpool.Pool) portsrepo.ChargeRepositoryWithTx {
	return &PgxChargeRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxChargeRepository implements portsrepo.ChargeRepositoryWithTx
var _ portsrepo.ChargeRepositoryWithTx = (*PgxChargeRepository)(nil)

const chargeColumns = `
	id, org_id, lease_id, transaction_id, charge_type, amount, amount_open, due_date, status,
	created_at, updated_at`

const allocationColumns = `
	id, org_id, payment_transaction_id, charge_id, allocated_amount, allocation_order,
	external_id, created_at`

// Allocation order: oldest due first, undated last, then creation time and id.
const chargeOrderBy = ` ORDER BY due_date ASC NULLS LAST, created_at ASC, id ASC`

func collectCharges(rows pgx.Rows) ([]domain.Charge, error) {
	modelCharges, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Charge])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect charge rows", err)
	}
	return mapping.ToDomainChargeSlice(modelCharges), nil
}

func collectAllocations(rows pgx.Rows) ([]domain.PaymentAllocation, error) {
	modelAllocs, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.PaymentAllocation])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect allocation rows", err)
	}
	return mapping.ToDomainPaymentAllocationSlice(modelAllocs), nil
}

// ListOpenChargesForUpdate locks the lease's payable charges in allocation order.
func (r *PgxChargeRepository) ListOpenChargesForUpdate(ctx context.Context, tx pgx.Tx, orgID, leaseID string, asOf time.Time) ([]domain.Charge, error) {
	query := `SELECT` + chargeColumns + `
		FROM charges
		WHERE org_id = $1 AND lease_id = $2
		  AND status IN ('open', 'partial')
		  AND amount_open > 0
		  AND (due_date IS NULL OR due_date <= $3)` +
		chargeOrderBy + `
		FOR UPDATE`
	rows, err := tx.Query(ctx, query, orgID, leaseID, domain.DateOnly(asOf))
	if err != nil {
		return nil, mapPgError(err, "lock open charges of lease "+leaseID)
	}
	defer rows.Close()
	return collectCharges(rows)
}

func (r *PgxChargeRepository) listAllocations(ctx context.Context, q querier, filter string, args ...any) ([]domain.PaymentAllocation, error) {
	rows, err := q.Query(ctx, `SELECT`+allocationColumns+` FROM payment_allocations `+filter+` ORDER BY allocation_order, id`, args...)
	if err != nil {
		return nil, mapPgError(err, "list payment allocations")
	}
	defer rows.Close()
	return collectAllocations(rows)
}

func (r *PgxChargeRepository) FindAllocationsByPayment(ctx context.Context, tx pgx.Tx, orgID, paymentID string) ([]domain.PaymentAllocation, error) {
	return r.listAllocations(ctx, tx, "WHERE org_id = $1 AND payment_transaction_id = $2", orgID, paymentID)
}

func (r *PgxChargeRepository) FindAllocationsByExternalID(ctx context.Context, tx pgx.Tx, orgID, externalID string) ([]domain.PaymentAllocation, error) {
	return r.listAllocations(ctx, tx, "WHERE org_id = $1 AND external_id = $2", orgID, externalID)
}

func (r *PgxChargeRepository) ListAllocationsByPayment(ctx context.Context, orgID, paymentID string) ([]domain.PaymentAllocation, error) {
	return r.listAllocations(ctx, r.Pool, "WHERE org_id = $1 AND payment_transaction_id = $2", orgID, paymentID)
}

// ListChargesByLease retrieves a page of a lease's charges in allocation order using token-based pagination.
// It returns the charges, a token for the next page, and an error.
func (r *PgxChargeRepository) ListChargesByLease(ctx context.Context, orgID, leaseID string, status *domain.ChargeStatus, limit int, nextToken *string) ([]domain.Charge, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	query := `SELECT` + chargeColumns + ` FROM charges WHERE org_id = $1 AND lease_id = $2`
	args := []any{orgID, leaseID}
	if status != nil {
		args = append(args, string(*status))
		query += " AND status = $" + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeChargeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", err)
		}
		// NULL due dates sort last, so a dated cursor still has every undated charge after it.
		if cursor.DueDate != nil {
			args = append(args, domain.DateOnly(*cursor.DueDate), cursor.CreatedAt, cursor.ID)
			n := len(args)
			query += " AND (due_date IS NULL OR (due_date, created_at, id) > ($" + strconv.Itoa(n-2) +
				", $" + strconv.Itoa(n-1) + ", $" + strconv.Itoa(n) + "::uuid))"
		} else {
			args = append(args, cursor.CreatedAt, cursor.ID)
			n := len(args)
			query += " AND due_date IS NULL AND (created_at, id) > ($" + strconv.Itoa(n-1) +
				", $" + strconv.Itoa(n) + "::uuid)"
		}
	}

	args = append(args, fetchLimit)
	query += chargeOrderBy + " LIMIT $" + strconv.Itoa(len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, mapPgError(err, "list charges of lease "+leaseID)
	}
	defer rows.Close()
	charges, err := collectCharges(rows)
	if err != nil {
		return nil, nil, err
	}

	var nextTokenVal *string
	if len(charges) > limit {
		last := charges[limit-1]
		token := pagination.EncodeChargeToken(pagination.ChargeCursor{
			DueDate:   last.DueDate,
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		nextTokenVal = &token
		charges = charges[:limit]
	}
	return charges, nextTokenVal, nil
}

// UpdateChargeBalances writes the post-allocation state of each charge in one batch.
func (r *PgxChargeRepository) UpdateChargeBalances(ctx context.Context, tx pgx.Tx, charges []domain.Charge) error {
	if len(charges) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range charges {
		batch.Queue(`
			UPDATE charges SET amount_open = $3, status = $4, updated_at = now()
			WHERE org_id = $1 AND id = $2`,
			c.OrgID, c.ID, c.AmountOpen, string(c.Status),
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapPgError(err, "update charge balances")
	}
	return nil
}

func (r *PgxChargeRepository) InsertAllocations(ctx context.Context, tx pgx.Tx, allocations []domain.PaymentAllocation) error {
	if len(allocations) == 0 {
		return nil
	}
	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, a := range allocations {
		m := mapping.ToModelPaymentAllocation(a)
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		batch.Queue(`
			INSERT INTO payment_allocations (`+allocationColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			m.ID, m.OrgID, m.PaymentTransactionID, m.ChargeID, m.AllocatedAmount,
			m.AllocationOrder, m.ExternalID, m.CreatedAt,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapPgError(err, "insert payment allocations")
	}
	return nil
}

// InsertCharge inserts one charge. A second charge for the same transaction is a duplicate.
func (r *PgxChargeRepository) InsertCharge(ctx context.Context, charge domain.Charge) error {
	m := mapping.ToModelCharge(charge)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO charges (`+chargeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.ID, m.OrgID, m.LeaseID, m.TransactionID, m.ChargeType, m.Amount, m.AmountOpen,
		m.DueDate, m.Status, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return mapPgError(err, "insert charge "+m.ID)
	}
	return nil
}
