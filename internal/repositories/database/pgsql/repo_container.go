package pgsql

import (
	portsrepo "github.com/bbabel1/property-manager-sub016/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:          &BaseRepository{Pool: dbPool},
		GLAccountRepo:      newPgxGLAccountRepository(dbPool),
		TransactionRepo:    newPgxTransactionRepository(dbPool),
		ChargeRepo:         newPgxChargeRepository(dbPool),
		BillRepo:           newPgxBillApplicationRepository(dbPool),
		ReconciliationRepo: newPgxReconciliationRepository(dbPool),
		FinanceRepo:        newPgxFinanceRepository(dbPool),
		BackfillRepo:       newPgxBackfillRepository(dbPool),
	}
}
