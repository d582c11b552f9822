package pgsql

import (
	"context"
	"strconv"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	portsrepo "github.com/bbabel1/property-manager-sub016/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxFinanceRepository struct {
	BaseRepository
}

// newPgxFinanceRepository creates the read-only repository behind financial rollups.
func newPgxFinanceRepository(pool *pgxpool.Pool) portsrepo.FinanceReader {
	return &PgxFinanceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.FinanceReader = (*PgxFinanceRepository)(nil)

// scopeFilter matches rows by the most specific property/unit tag available: the row's own,
// then the header's, then the lease's. args already holds the leading positional parameters.
func scopeFilter(scope domain.FinanceScope, propertyExpr, unitExpr string, args []any) (string, []any) {
	clause := ""
	if scope.PropertyID != nil && *scope.PropertyID != "" {
		args = append(args, *scope.PropertyID)
		clause += " AND " + propertyExpr + " = $" + strconv.Itoa(len(args)) + "::uuid"
	}
	if scope.UnitID != nil && *scope.UnitID != "" {
		args = append(args, *scope.UnitID)
		clause += " AND " + unitExpr + " = $" + strconv.Itoa(len(args)) + "::uuid"
	}
	return clause, args
}

// ListLinesForScope returns every posting line in scope dated on or before asOf.
func (r *PgxFinanceRepository) ListLinesForScope(ctx context.Context, orgID string, scope domain.FinanceScope, asOf time.Time) ([]domain.TransactionLine, error) {
	filter, args := scopeFilter(scope,
		"COALESCE(l.property_id, t.property_id, le.property_id)",
		"COALESCE(l.unit_id, t.unit_id, le.unit_id)",
		[]any{orgID, domain.DateOnly(asOf)},
	)
	rows, err := r.Pool.Query(ctx, `SELECT`+transactionLineColumns+`
		FROM transaction_lines l
		JOIN transactions t ON t.id = l.transaction_id
		LEFT JOIN leases le ON le.id = COALESCE(l.lease_id, t.lease_id)
		WHERE l.org_id = $1 AND l.date <= $2`+filter+`
		ORDER BY l.date, l.created_at, l.id`,
		args...,
	)
	if err != nil {
		return nil, mapPgError(err, "list lines in scope")
	}
	defer rows.Close()
	return collectLines(rows)
}

// ListTransactionsForScope returns the headers in scope dated on or before asOf.
func (r *PgxFinanceRepository) ListTransactionsForScope(ctx context.Context, orgID string, scope domain.FinanceScope, asOf time.Time) ([]domain.Transaction, error) {
	filter, args := scopeFilter(scope,
		"COALESCE(t.property_id, le.property_id)",
		"COALESCE(t.unit_id, le.unit_id)",
		[]any{orgID, domain.DateOnly(asOf)},
	)
	rows, err := r.Pool.Query(ctx, `SELECT`+transactionColumns+`
		FROM transactions t
		LEFT JOIN leases le ON le.id = t.lease_id
		WHERE t.org_id = $1 AND t.date <= $2`+filter+`
		ORDER BY t.date, t.created_at, t.id`,
		args...,
	)
	if err != nil {
		return nil, mapPgError(err, "list transactions in scope")
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// GetOpeningBalances sums the opening balances of the units in scope. An empty scope yields zeros.
func (r *PgxFinanceRepository) GetOpeningBalances(ctx context.Context, orgID string, scope domain.FinanceScope) (domain.OpeningBalances, error) {
	var opening domain.OpeningBalances
	filter, args := scopeFilter(scope, "u.property_id", "u.id", []any{orgID})
	err := r.Pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(u.opening_cash), 0),
			COALESCE(SUM(u.opening_deposits), 0),
			COALESCE(SUM(u.opening_prepayments), 0)
		FROM units u
		WHERE u.org_id = $1`+filter,
		args...,
	).Scan(&opening.Cash, &opening.DepositsHeld, &opening.Prepayments)
	if err != nil {
		return domain.OpeningBalances{}, mapPgError(err, "load opening balances")
	}
	return opening, nil
}

// GetReserve returns the unit reserve for unit scope, else the property reserve. Missing rows yield zero.
func (r *PgxFinanceRepository) GetReserve(ctx context.Context, orgID string, scope domain.FinanceScope) (decimal.Decimal, error) {
	var (
		query string
		id    string
	)
	switch {
	case scope.UnitID != nil && *scope.UnitID != "":
		query, id = `SELECT COALESCE((SELECT reserve FROM units WHERE org_id = $1 AND id = $2), 0)`, *scope.UnitID
	case scope.PropertyID != nil && *scope.PropertyID != "":
		query, id = `SELECT COALESCE((SELECT reserve FROM properties WHERE org_id = $1 AND id = $2), 0)`, *scope.PropertyID
	default:
		return decimal.Zero, nil
	}
	var reserve decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, orgID, id).Scan(&reserve); err != nil {
		return decimal.Zero, mapPgError(err, "load reserve")
	}
	return reserve, nil
}
