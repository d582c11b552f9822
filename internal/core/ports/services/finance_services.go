package services

import (
	"context"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/bbabel1/property-manager-sub016/internal/dto"
)

// FinanceSvc serves point-in-time financial rollups.
type FinanceSvc interface {
	GetFinances(ctx context.Context, orgID string, query dto.FinanceQuery) (*domain.FinanceRollup, error)
}
