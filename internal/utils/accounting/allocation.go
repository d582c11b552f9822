package accounting

import (
	"fmt"
	"sort"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SortChargesForAllocation orders charges oldest debt first:
// due_date ascending with undated charges last, then created_at, then id.
func SortChargesForAllocation(charges []domain.Charge) {
	sort.SliceStable(charges, func(i, j int) bool {
		a, b := charges[i], charges[j]
		switch {
		case a.DueDate == nil && b.DueDate != nil:
			return false
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// PlanAllocations computes how a payment is spread over eligible charges.
// Without manual allocations it walks charges greedily in allocation order and
// sweeps any cent drift into the last row, so the plan total is exactly
// round2(min(payment, sum of open amounts)). The input slice is not modified.
func PlanAllocations(paymentAmount decimal.Decimal, charges []domain.Charge, manual []domain.ManualAllocation) ([]domain.PlannedAllocation, error) {
	if !paymentAmount.IsPositive() {
		return nil, nil
	}
	if len(manual) > 0 {
		return planManual(paymentAmount, charges, manual)
	}

	ordered := make([]domain.Charge, 0, len(charges))
	for _, c := range charges {
		if c.Status.IsAllocatable() && c.AmountOpen.IsPositive() {
			ordered = append(ordered, c)
		}
	}
	SortChargesForAllocation(ordered)

	remaining := domain.Round2(paymentAmount)
	openTotal := decimal.Zero
	for _, c := range ordered {
		openTotal = openTotal.Add(c.AmountOpen)
	}
	target := domain.Round2(decimal.Min(paymentAmount, openTotal))

	plan := make([]domain.PlannedAllocation, 0, len(ordered))
	used := make([]domain.Charge, 0, len(ordered))
	allocated := decimal.Zero
	for _, c := range ordered {
		if !remaining.IsPositive() {
			break
		}
		alloc := decimal.Min(remaining, domain.Round2(c.AmountOpen))
		if !alloc.IsPositive() {
			continue
		}
		plan = append(plan, domain.PlannedAllocation{
			ChargeID: c.ID,
			Amount:   alloc,
			Order:    len(plan),
		})
		used = append(used, c)
		remaining = remaining.Sub(alloc)
		allocated = allocated.Add(alloc)
	}

	if drift := target.Sub(allocated); !drift.IsZero() && len(plan) > 0 {
		last := &plan[len(plan)-1]
		if adjusted := last.Amount.Add(drift); adjusted.IsPositive() {
			last.Amount = adjusted
		}
	}

	for i := range plan {
		after := used[i].ApplyPayment(plan[i].Amount)
		plan[i].NewAmountOpen = after.AmountOpen
		plan[i].NewStatus = after.Status
	}
	return plan, nil
}

func planManual(paymentAmount decimal.Decimal, charges []domain.Charge, manual []domain.ManualAllocation) ([]domain.PlannedAllocation, error) {
	byID := make(map[string]domain.Charge, len(charges))
	for _, c := range charges {
		byID[c.ID] = c
	}

	// Several manual rows may target the same charge; each sees the open amount left by the previous.
	working := make(map[string]domain.Charge, len(manual))
	plan := make([]domain.PlannedAllocation, 0, len(manual))
	sum := decimal.Zero
	for i, m := range manual {
		c, ok := working[m.ChargeID]
		if !ok {
			c, ok = byID[m.ChargeID]
			if !ok || !c.Status.IsAllocatable() || !c.AmountOpen.IsPositive() {
				return nil, fmt.Errorf("%w: charge %s is not open for this payment", apperrors.ErrValidation, m.ChargeID)
			}
		}
		amount := domain.Round2(m.Amount)
		if !amount.IsPositive() {
			return nil, fmt.Errorf("%w: allocation %d amount must be positive", apperrors.ErrValidation, i)
		}
		if amount.GreaterThan(c.AmountOpen.Add(domain.AmountEpsilon)) {
			return nil, fmt.Errorf("%w: allocation %s exceeds open amount %s on charge %s",
				apperrors.ErrValidation, amount.StringFixed(2), c.AmountOpen.StringFixed(2), c.ID)
		}
		after := c.ApplyPayment(amount)
		working[m.ChargeID] = after
		plan = append(plan, domain.PlannedAllocation{
			ChargeID:      c.ID,
			Amount:        amount,
			Order:         i,
			NewAmountOpen: after.AmountOpen,
			NewStatus:     after.Status,
		})
		sum = sum.Add(amount)
	}

	if sum.Sub(domain.Round2(paymentAmount)).Abs().GreaterThan(domain.AmountEpsilon) {
		return nil, fmt.Errorf("%w: allocations total %s does not match payment amount %s",
			apperrors.ErrValidation, sum.StringFixed(2), domain.Round2(paymentAmount).StringFixed(2))
	}
	return plan, nil
}

// PlanTotal sums the amounts of a plan.
func PlanTotal(plan []domain.PlannedAllocation) decimal.Decimal {
	total := decimal.Zero
	for _, p := range plan {
		total = total.Add(p.Amount)
	}
	return total
}
