package services_test

import (
	"context"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	portsrepo "github.com/bbabel1/property-manager-sub016/internal/core/ports/repositories"
	portssvc "github.com/bbabel1/property-manager-sub016/internal/core/ports/services"
	"github.com/bbabel1/property-manager-sub016/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// fakeTx stands in for a database transaction; services only pass it through to repositories.
type fakeTx struct {
	pgx.Tx
}

// --- Mock TransactionManager ---
type MockTxManager struct {
	mock.Mock
}

var _ portsrepo.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockTxManager) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTxManager) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// expectTx wires Begin and the deferred Rollback; Commit is left to each test.
func expectTx(m *MockTxManager) pgx.Tx {
	tx := &fakeTx{}
	m.On("Begin", mock.Anything).Return(tx, nil)
	m.On("Rollback", mock.Anything, tx).Return(nil)
	return tx
}

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

var _ portsrepo.TransactionRepositoryFacade = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, orgID, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, orgID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, orgID, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, tx, orgID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionIDByExternalID(ctx context.Context, orgID, externalID string) (string, error) {
	args := m.Called(ctx, orgID, externalID)
	return args.String(0), args.Error(1)
}

func (m *MockTransactionRepository) ListLinesByTransactionID(ctx context.Context, orgID, transactionID string) ([]domain.TransactionLine, error) {
	args := m.Called(ctx, orgID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionLine), args.Error(1)
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, tx pgx.Tx, txn domain.Transaction, lines []domain.TransactionLine) error {
	args := m.Called(ctx, tx, txn, lines)
	return args.Error(0)
}

func (m *MockTransactionRepository) InsertLines(ctx context.Context, tx pgx.Tx, lines []domain.TransactionLine) error {
	args := m.Called(ctx, tx, lines)
	return args.Error(0)
}

// --- Mock ChargeRepository ---
type MockChargeRepository struct {
	mock.Mock
}

var _ portsrepo.ChargeRepositoryFacade = (*MockChargeRepository)(nil)

func (m *MockChargeRepository) ListOpenChargesForUpdate(ctx context.Context, tx pgx.Tx, orgID, leaseID string, asOf time.Time) ([]domain.Charge, error) {
	args := m.Called(ctx, tx, orgID, leaseID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Charge), args.Error(1)
}

func (m *MockChargeRepository) FindAllocationsByPayment(ctx context.Context, tx pgx.Tx, orgID, paymentID string) ([]domain.PaymentAllocation, error) {
	args := m.Called(ctx, tx, orgID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentAllocation), args.Error(1)
}

func (m *MockChargeRepository) FindAllocationsByExternalID(ctx context.Context, tx pgx.Tx, orgID, externalID string) ([]domain.PaymentAllocation, error) {
	args := m.Called(ctx, tx, orgID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentAllocation), args.Error(1)
}

func (m *MockChargeRepository) ListAllocationsByPayment(ctx context.Context, orgID, paymentID string) ([]domain.PaymentAllocation, error) {
	args := m.Called(ctx, orgID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentAllocation), args.Error(1)
}

func (m *MockChargeRepository) ListChargesByLease(ctx context.Context, orgID, leaseID string, status *domain.ChargeStatus, limit int, nextToken *string) ([]domain.Charge, *string, error) {
	args := m.Called(ctx, orgID, leaseID, status, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Charge), returnedNextToken, args.Error(2)
}

func (m *MockChargeRepository) UpdateChargeBalances(ctx context.Context, tx pgx.Tx, charges []domain.Charge) error {
	args := m.Called(ctx, tx, charges)
	return args.Error(0)
}

func (m *MockChargeRepository) InsertAllocations(ctx context.Context, tx pgx.Tx, allocations []domain.PaymentAllocation) error {
	args := m.Called(ctx, tx, allocations)
	return args.Error(0)
}

func (m *MockChargeRepository) InsertCharge(ctx context.Context, charge domain.Charge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}

// --- Mock GLAccountRepository ---
type MockGLAccountRepository struct {
	mock.Mock
}

var _ portsrepo.GLAccountRepositoryFacade = (*MockGLAccountRepository)(nil)

func (m *MockGLAccountRepository) FindGLAccountByID(ctx context.Context, orgID, accountID string) (*domain.GLAccount, error) {
	args := m.Called(ctx, orgID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GLAccount), args.Error(1)
}

func (m *MockGLAccountRepository) ListGLAccounts(ctx context.Context, orgID string) ([]domain.GLAccount, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GLAccount), args.Error(1)
}

func (m *MockGLAccountRepository) ListBankAccountsForSync(ctx context.Context, orgID string) ([]domain.GLAccount, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GLAccount), args.Error(1)
}

func (m *MockGLAccountRepository) ListAccountsWithoutRole(ctx context.Context, orgID string, limit int) ([]domain.GLAccount, error) {
	args := m.Called(ctx, orgID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GLAccount), args.Error(1)
}

func (m *MockGLAccountRepository) ResolveAPAccountID(ctx context.Context, tx pgx.Tx, orgID string) (string, error) {
	args := m.Called(ctx, tx, orgID)
	return args.String(0), args.Error(1)
}

func (m *MockGLAccountRepository) UpdateAccountRole(ctx context.Context, orgID, accountID string, role domain.AccountRole) error {
	args := m.Called(ctx, orgID, accountID, role)
	return args.Error(0)
}

// --- Mock BillApplicationRepository ---
type MockBillRepository struct {
	mock.Mock
}

var _ portsrepo.BillApplicationRepository = (*MockBillRepository)(nil)

func (m *MockBillRepository) ValidateBillApplication(ctx context.Context, tx pgx.Tx, billID, sourceID string, amount decimal.Decimal) error {
	args := m.Called(ctx, tx, billID, sourceID, amount)
	return args.Error(0)
}

func (m *MockBillRepository) InsertBillApplication(ctx context.Context, tx pgx.Tx, app domain.BillApplication) error {
	args := m.Called(ctx, tx, app)
	return args.Error(0)
}

func (m *MockBillRepository) ListApplicationsBySource(ctx context.Context, orgID, sourceID string) ([]domain.BillApplication, error) {
	args := m.Called(ctx, orgID, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BillApplication), args.Error(1)
}

// --- Mock ReconciliationRepository ---
type MockReconciliationRepository struct {
	mock.Mock
}

var _ portsrepo.ReconciliationRepositoryFacade = (*MockReconciliationRepository)(nil)

func (m *MockReconciliationRepository) FindLogByID(ctx context.Context, orgID, logID string) (*domain.ReconciliationLog, error) {
	args := m.Called(ctx, orgID, logID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationLog), args.Error(1)
}

func (m *MockReconciliationRepository) UpsertLogByExternalID(ctx context.Context, log domain.ReconciliationLog) (*domain.ReconciliationLog, error) {
	args := m.Called(ctx, log)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationLog), args.Error(1)
}

func (m *MockReconciliationRepository) UpdateLogSyncResult(ctx context.Context, orgID string, update domain.ReconciliationSyncUpdate) error {
	args := m.Called(ctx, orgID, update)
	return args.Error(0)
}

func (m *MockReconciliationRepository) UpsertRegisterState(ctx context.Context, state domain.BankRegisterState) (*domain.BankRegisterState, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankRegisterState), args.Error(1)
}

func (m *MockReconciliationRepository) FindRegisterState(ctx context.Context, orgID, bankGLAccountID, transactionID string) (*domain.BankRegisterState, error) {
	args := m.Called(ctx, orgID, bankGLAccountID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankRegisterState), args.Error(1)
}

func (m *MockReconciliationRepository) SetRegisterStatus(ctx context.Context, state domain.BankRegisterState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockReconciliationRepository) CalculateBookBalance(ctx context.Context, orgID, bankGLAccountID string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, orgID, bankGLAccountID, asOf)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock FinanceReader ---
type MockFinanceRepository struct {
	mock.Mock
}

var _ portsrepo.FinanceReader = (*MockFinanceRepository)(nil)

func (m *MockFinanceRepository) ListLinesForScope(ctx context.Context, orgID string, scope domain.FinanceScope, asOf time.Time) ([]domain.TransactionLine, error) {
	args := m.Called(ctx, orgID, scope, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionLine), args.Error(1)
}

func (m *MockFinanceRepository) ListTransactionsForScope(ctx context.Context, orgID string, scope domain.FinanceScope, asOf time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, orgID, scope, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockFinanceRepository) GetOpeningBalances(ctx context.Context, orgID string, scope domain.FinanceScope) (domain.OpeningBalances, error) {
	args := m.Called(ctx, orgID, scope)
	return args.Get(0).(domain.OpeningBalances), args.Error(1)
}

func (m *MockFinanceRepository) GetReserve(ctx context.Context, orgID string, scope domain.FinanceScope) (decimal.Decimal, error) {
	args := m.Called(ctx, orgID, scope)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock BackfillReader ---
type MockBackfillRepository struct {
	mock.Mock
}

var _ portsrepo.BackfillReader = (*MockBackfillRepository)(nil)

func (m *MockBackfillRepository) ListChargeTransactionsWithoutCharges(ctx context.Context, orgID string, limit int) ([]domain.TransactionWithLines, error) {
	args := m.Called(ctx, orgID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionWithLines), args.Error(1)
}

func (m *MockBackfillRepository) ListPaymentsWithoutAllocations(ctx context.Context, orgID string, limit int) ([]domain.Transaction, error) {
	args := m.Called(ctx, orgID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockBackfillRepository) ListPaymentsWithoutBankLines(ctx context.Context, orgID string, limit int) ([]domain.TransactionWithLines, error) {
	args := m.Called(ctx, orgID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionWithLines), args.Error(1)
}

// --- Mock ReconciliationSource ---
type MockReconciliationSource struct {
	mock.Mock
}

var _ portssvc.ReconciliationSource = (*MockReconciliationSource)(nil)

func (m *MockReconciliationSource) ListReconciliationTransactions(ctx context.Context, bankAccountID, reconciliationID string) ([]domain.ExternalTransactionRecord, error) {
	args := m.Called(ctx, bankAccountID, reconciliationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExternalTransactionRecord), args.Error(1)
}

func (m *MockReconciliationSource) ListReconciliations(ctx context.Context, bankAccountID string) ([]domain.ExternalReconciliation, error) {
	args := m.Called(ctx, bankAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExternalReconciliation), args.Error(1)
}

func (m *MockReconciliationSource) GetReconciliationBalance(ctx context.Context, bankAccountID, reconciliationID string) (*domain.ExternalReconciliationBalance, error) {
	args := m.Called(ctx, bankAccountID, reconciliationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExternalReconciliationBalance), args.Error(1)
}

// --- Mock AllocationWriterSvc ---
type MockAllocator struct {
	mock.Mock
}

var _ portssvc.AllocationWriterSvc = (*MockAllocator)(nil)

func (m *MockAllocator) AllocatePayment(ctx context.Context, orgID, paymentID string, req dto.AllocatePaymentRequest) (*domain.AllocationResult, error) {
	args := m.Called(ctx, orgID, paymentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AllocationResult), args.Error(1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}
