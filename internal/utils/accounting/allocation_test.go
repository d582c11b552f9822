package accounting_test

import (
	"testing"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/bbabel1/property-manager-sub016/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }

func openCharge(id, amount string, due *time.Time, created time.Time) domain.Charge {
	return domain.Charge{
		ID:          id,
		LeaseID:     "lease-1",
		Amount:      dec(amount),
		AmountOpen:  dec(amount),
		DueDate:     due,
		Status:      domain.ChargeOpen,
		AuditFields: domain.AuditFields{CreatedAt: created},
	}
}

func TestPlanAllocations_EndToEndScenario(t *testing.T) {
	created := day("2024-12-15")
	charges := []domain.Charge{
		openCharge("c2", "300", timePtr(day("2025-02-01")), created),
		openCharge("c1", "500", timePtr(day("2025-01-01")), created),
	}

	plan, err := accounting.PlanAllocations(dec("600.00"), charges, nil)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.Equal(t, "c1", plan[0].ChargeID)
	assert.Equal(t, 0, plan[0].Order)
	assert.True(t, dec("500.00").Equal(plan[0].Amount))
	assert.True(t, plan[0].NewAmountOpen.IsZero())
	assert.Equal(t, domain.ChargePaid, plan[0].NewStatus)

	assert.Equal(t, "c2", plan[1].ChargeID)
	assert.Equal(t, 1, plan[1].Order)
	assert.True(t, dec("100.00").Equal(plan[1].Amount))
	assert.True(t, dec("200.00").Equal(plan[1].NewAmountOpen))
	assert.Equal(t, domain.ChargePartial, plan[1].NewStatus)

	// Input slice is left untouched.
	assert.Equal(t, "c2", charges[0].ID)
}

func TestPlanAllocations_RoundingClosure(t *testing.T) {
	created := day("2025-01-01")
	charges := []domain.Charge{
		openCharge("a", "33.333", nil, created),
		openCharge("b", "66.667", nil, created.Add(time.Minute)),
	}

	plan, err := accounting.PlanAllocations(dec("100.00"), charges, nil)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.True(t, dec("33.33").Equal(plan[0].Amount))
	assert.True(t, dec("66.67").Equal(plan[1].Amount))
	assert.True(t, dec("100.00").Equal(accounting.PlanTotal(plan)))
}

func TestPlanAllocations_DriftSweptIntoLastRow(t *testing.T) {
	created := day("2025-01-01")
	charges := []domain.Charge{
		openCharge("a", "33.333", nil, created),
		openCharge("b", "33.333", nil, created.Add(time.Second)),
		openCharge("c", "33.334", nil, created.Add(2*time.Second)),
	}

	plan, err := accounting.PlanAllocations(dec("100.00"), charges, nil)
	require.NoError(t, err)
	require.Len(t, plan, 3)
	assert.True(t, dec("100.00").Equal(accounting.PlanTotal(plan)), "total %s", accounting.PlanTotal(plan))
	assert.True(t, dec("33.34").Equal(plan[2].Amount), "last row absorbs the cent: %s", plan[2].Amount)
	assert.Equal(t, domain.ChargePaid, plan[2].NewStatus)
}

func TestPlanAllocations_NullDueDateOrdering(t *testing.T) {
	early := openCharge("zzz", "50", nil, day("2025-01-01"))
	late := openCharge("aaa", "50", nil, day("2025-01-02"))

	for _, input := range [][]domain.Charge{{early, late}, {late, early}} {
		plan, err := accounting.PlanAllocations(dec("60"), input, nil)
		require.NoError(t, err)
		require.Len(t, plan, 2)
		assert.Equal(t, "zzz", plan[0].ChargeID, "earlier-created charge goes first")
		assert.True(t, dec("50").Equal(plan[0].Amount))
		assert.True(t, dec("10").Equal(plan[1].Amount))
	}
}

func TestSortChargesForAllocation(t *testing.T) {
	created := day("2025-01-01")
	charges := []domain.Charge{
		openCharge("undated", "1", nil, created),
		openCharge("b", "1", timePtr(day("2025-01-05")), created),
		openCharge("a", "1", timePtr(day("2025-01-05")), created),
		openCharge("first", "1", timePtr(day("2025-01-01")), created.Add(time.Hour)),
	}
	accounting.SortChargesForAllocation(charges)

	ids := make([]string, len(charges))
	for i, c := range charges {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{"first", "a", "b", "undated"}, ids)
}

func TestPlanAllocations_Conservation(t *testing.T) {
	created := day("2025-01-01")
	tests := []struct {
		name    string
		payment string
		opens   []string
	}{
		{"payment smaller than open", "120.50", []string{"100", "100"}},
		{"payment larger than open", "1000", []string{"100", "250.25"}},
		{"payment equal to open", "350.25", []string{"100", "250.25"}},
		{"fractional opens", "10", []string{"3.335", "3.335", "3.335"}},
		{"no charges", "10", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			charges := make([]domain.Charge, len(tt.opens))
			openTotal := decimal.Zero
			for i, o := range tt.opens {
				charges[i] = openCharge(string(rune('a'+i)), o, nil, created.Add(time.Duration(i)*time.Second))
				openTotal = openTotal.Add(dec(o))
			}
			payment := dec(tt.payment)

			plan, err := accounting.PlanAllocations(payment, charges, nil)
			require.NoError(t, err)

			total := accounting.PlanTotal(plan)
			want := domain.Round2(decimal.Min(payment, openTotal))
			assert.True(t, want.Equal(total), "want %s got %s", want, total)
			assert.True(t, total.LessThanOrEqual(payment))
			for _, p := range plan {
				assert.True(t, p.Amount.IsPositive())
			}
		})
	}
}

func TestPlanAllocations_SkipsIneligibleAndNonPositivePayment(t *testing.T) {
	created := day("2025-01-01")
	paid := openCharge("paid", "100", nil, created)
	paid.Status = domain.ChargePaid
	empty := openCharge("empty", "100", nil, created)
	empty.AmountOpen = decimal.Zero

	plan, err := accounting.PlanAllocations(dec("50"), []domain.Charge{paid, empty}, nil)
	require.NoError(t, err)
	assert.Empty(t, plan)

	plan, err = accounting.PlanAllocations(decimal.Zero, []domain.Charge{openCharge("x", "5", nil, created)}, nil)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestPlanAllocations_Manual(t *testing.T) {
	created := day("2025-01-01")
	charges := []domain.Charge{
		openCharge("c1", "500", timePtr(day("2025-01-01")), created),
		openCharge("c2", "300", timePtr(day("2025-02-01")), created),
	}

	t.Run("caller order is kept", func(t *testing.T) {
		plan, err := accounting.PlanAllocations(dec("400"), charges, []domain.ManualAllocation{
			{ChargeID: "c2", Amount: dec("300")},
			{ChargeID: "c1", Amount: dec("100")},
		})
		require.NoError(t, err)
		require.Len(t, plan, 2)
		assert.Equal(t, "c2", plan[0].ChargeID)
		assert.Equal(t, domain.ChargePaid, plan[0].NewStatus)
		assert.Equal(t, "c1", plan[1].ChargeID)
		assert.Equal(t, domain.ChargePartial, plan[1].NewStatus)
	})

	t.Run("sum must match payment", func(t *testing.T) {
		_, err := accounting.PlanAllocations(dec("400"), charges, []domain.ManualAllocation{
			{ChargeID: "c1", Amount: dec("100")},
		})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("cannot exceed open amount", func(t *testing.T) {
		_, err := accounting.PlanAllocations(dec("400"), charges, []domain.ManualAllocation{
			{ChargeID: "c2", Amount: dec("400")},
		})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("unknown charge", func(t *testing.T) {
		_, err := accounting.PlanAllocations(dec("10"), charges, []domain.ManualAllocation{
			{ChargeID: "nope", Amount: dec("10")},
		})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("repeated charge sees reduced open amount", func(t *testing.T) {
		_, err := accounting.PlanAllocations(dec("600"), charges, []domain.ManualAllocation{
			{ChargeID: "c2", Amount: dec("300")},
			{ChargeID: "c2", Amount: dec("300")},
		})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}
