package services

import (
	"context"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/bbabel1/property-manager-sub016/internal/dto"
)

// BackfillSvc rebuilds derived ledger rows from historical transactions.
// Every job is idempotent and honours opts.DryRun.
type BackfillSvc interface {
	BackfillCharges(ctx context.Context, orgID string, opts dto.BackfillOptions) (*domain.BackfillSummary, error)
	BackfillAllocations(ctx context.Context, orgID string, opts dto.BackfillOptions) (*domain.BackfillSummary, error)
	BackfillBankLines(ctx context.Context, orgID string, opts dto.BackfillOptions) (*domain.BackfillSummary, error)
	BackfillAccountRoles(ctx context.Context, orgID string, opts dto.BackfillOptions) (*domain.BackfillSummary, error)
}
