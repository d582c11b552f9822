package pgsql

import (
	"context"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	portsrepo "github.com/bbabel1/property-manager-sub016/internal/core/ports/repositories"
	"github.com/bbabel1/property-manager-sub016/internal/models"
	"github.com/bbabel1/property-manager-sub016/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxBillApplicationRepository struct {
	BaseRepository
}

func newPgxBillApplicationRepository(pool *pgxpool.Pool) portsrepo.BillApplicationRepository {
	return &PgxBillApplicationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.BillApplicationRepository = (*PgxBillApplicationRepository)(nil)

const billApplicationColumns = `
	id, org_id, bill_transaction_id, source_transaction_id, source_type, applied_amount, applied_at`

// ValidateBillApplication delegates to validate_bill_application; its RAISE text becomes the error message.
func (r *PgxBillApplicationRepository) ValidateBillApplication(ctx context.Context, tx pgx.Tx, billID, sourceID string, amount decimal.Decimal) error {
	if _, err := tx.Exec(ctx, `SELECT validate_bill_application($1, $2, $3)`, billID, sourceID, amount); err != nil {
		return mapPgError(err, "validate bill application")
	}
	return nil
}

func (r *PgxBillApplicationRepository) InsertBillApplication(ctx context.Context, tx pgx.Tx, app domain.BillApplication) error {
	m := mapping.ToModelBillApplication(app)
	_, err := tx.Exec(ctx, `
		INSERT INTO bill_applications (`+billApplicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.OrgID, m.BillTransactionID, m.SourceTransactionID, m.SourceType, m.AppliedAmount, m.AppliedAt,
	)
	if err != nil {
		return mapPgError(err, "insert bill application")
	}
	return nil
}

func (r *PgxBillApplicationRepository) ListApplicationsBySource(ctx context.Context, orgID, sourceID string) ([]domain.BillApplication, error) {
	rows, err := r.Pool.Query(ctx, `SELECT`+billApplicationColumns+`
		FROM bill_applications
		WHERE org_id = $1 AND source_transaction_id = $2
		ORDER BY applied_at, id`,
		orgID, sourceID,
	)
	if err != nil {
		return nil, mapPgError(err, "list bill applications of "+sourceID)
	}
	defer rows.Close()
	modelApps, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.BillApplication])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect bill application rows", err)
	}
	return mapping.ToDomainBillApplicationSlice(modelApps), nil
}
