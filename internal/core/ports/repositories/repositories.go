package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TxManager          TransactionManager
	GLAccountRepo      GLAccountRepositoryFacade
	TransactionRepo    TransactionRepositoryFacade
	ChargeRepo         ChargeRepositoryFacade
	BillRepo           BillApplicationRepository
	ReconciliationRepo ReconciliationRepositoryFacade
	FinanceRepo        FinanceReader
	BackfillRepo       BackfillReader
}
