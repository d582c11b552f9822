package services

import (
	portsrepo "github.com/bbabel1/property-manager-sub016/internal/core/ports/repositories"
	portssvc "github.com/bbabel1/property-manager-sub016/internal/core/ports/services"
	"github.com/bbabel1/property-manager-sub016/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, source portssvc.ReconciliationSource) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Allocation = NewAllocationService(repos.TxManager, repos.TransactionRepo, repos.ChargeRepo)
	container.Bill = NewBillService(repos.TxManager, repos.TransactionRepo, repos.GLAccountRepo, repos.BillRepo)
	container.Finance = NewFinanceService(
		repos.FinanceRepo,
		repos.GLAccountRepo,
		WithIncompleteBankRatio(cfg.RollupIncompleteBankRatio),
	)
	container.Reconciliation = NewReconciliationService(
		source,
		repos.ReconciliationRepo,
		repos.TransactionRepo,
		repos.GLAccountRepo,
		WithDriftTolerance(cfg.DriftTolerance),
		WithSyncConcurrency(cfg.SyncConcurrency),
	)

	// Backfills drive the same allocation engine the API uses.
	container.Backfill = NewBackfillService(repos, container.Allocation)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AllocationSvcFacade     = (*allocationService)(nil)
	_ portssvc.BillSvcFacade           = (*billService)(nil)
	_ portssvc.FinanceSvc              = (*financeService)(nil)
	_ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)
	_ portssvc.BackfillSvc             = (*backfillService)(nil)
)
