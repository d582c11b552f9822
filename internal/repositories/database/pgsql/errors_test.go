package pgsql

import (
	"errors"
	"testing"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPgError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		contains string
	}{
		{
			name:     "no rows",
			err:      pgx.ErrNoRows,
			sentinel: apperrors.ErrNotFound,
			contains: "charge c1",
		},
		{
			name:     "unique violation",
			err:      &pgconn.PgError{Code: "23505", ConstraintName: "payment_allocations_external_id_key"},
			sentinel: apperrors.ErrDuplicate,
			contains: "payment_allocations_external_id_key",
		},
		{
			name:     "check violation",
			err:      &pgconn.PgError{Code: "23514", Message: "new row violates check constraint"},
			sentinel: apperrors.ErrValidation,
		},
		{
			name:     "bad uuid",
			err:      &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"},
			sentinel: apperrors.ErrValidation,
		},
		{
			name:     "raised by validation function",
			err:      &pgconn.PgError{Code: "P0001", Message: "Application amount exceeds remaining bill balance"},
			sentinel: apperrors.ErrUnprocessable,
			contains: "exceeds remaining bill balance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapPgError(tt.err, "charge c1")
			require.Error(t, got)
			assert.True(t, errors.Is(got, tt.sentinel), "got %v", got)
			if tt.contains != "" {
				assert.Contains(t, got.Error(), tt.contains)
			}
		})
	}
}

func TestMapPgError_PassThrough(t *testing.T) {
	assert.NoError(t, mapPgError(nil, "anything"))

	cause := errors.New("conn closed")
	got := mapPgError(cause, "load lines")
	assert.ErrorIs(t, got, cause)
	assert.EqualError(t, got, "failed to load lines: conn closed")
}

func TestScopeFilter(t *testing.T) {
	prop, unit := "p1", "u1"

	clause, args := scopeFilter(domain.FinanceScope{}, "x.property_id", "x.unit_id", []any{"org"})
	assert.Empty(t, clause)
	assert.Equal(t, []any{"org"}, args)

	clause, args = scopeFilter(domain.FinanceScope{PropertyID: &prop, UnitID: &unit}, "x.property_id", "x.unit_id", []any{"org", "date"})
	assert.Equal(t, " AND x.property_id = $3::uuid AND x.unit_id = $4::uuid", clause)
	assert.Equal(t, []any{"org", "date", "p1", "u1"}, args)

	empty := ""
	clause, _ = scopeFilter(domain.FinanceScope{UnitID: &empty}, "x.property_id", "x.unit_id", nil)
	assert.Empty(t, clause)
}
