package repositories

import (
	"context"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BillApplicationRepository defines persistence for bill applications.
type BillApplicationRepository interface {
	// ValidateBillApplication runs the server-side validation routine inside tx.
	// A rejection is returned as an error matching apperrors.ErrUnprocessable.
	ValidateBillApplication(ctx context.Context, tx pgx.Tx, billID, sourceID string, amount decimal.Decimal) error

	// InsertBillApplication inserts one application inside tx.
	// A repeated (source, bill) pair returns an error matching apperrors.ErrDuplicate.
	InsertBillApplication(ctx context.Context, tx pgx.Tx, app domain.BillApplication) error

	// ListApplicationsBySource returns the applications made from one source transaction.
	ListApplicationsBySource(ctx context.Context, orgID, sourceID string) ([]domain.BillApplication, error)
}
