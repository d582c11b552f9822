package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	portsrepo "github.com/bbabel1/property-manager-sub016/internal/core/ports/repositories"
	portssvc "github.com/bbabel1/property-manager-sub016/internal/core/ports/services"
	"github.com/bbabel1/property-manager-sub016/internal/dto"
	"github.com/bbabel1/property-manager-sub016/internal/utils/coalesce"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const defaultSyncConcurrency = 4

// DefaultDriftTolerance is the largest statement/book difference not reported as drift.
var DefaultDriftTolerance = decimal.New(1, -2)

var (
	externalIDFields = coalesce.StringFields("Id", "id", "TransactionId", "transactionId", "BuildiumTransactionId", "buildiumTransactionId")
	statusFields     = coalesce.StringFields("Status", "status")
	clearedFields    = []coalesce.Accessor[map[string]any, bool]{coalesce.BoolField("IsCleared"), coalesce.BoolField("isCleared")}
)

// reconciliationService syncs bank register state from the external system of record.
type reconciliationService struct {
	BaseService
	source         portssvc.ReconciliationSource
	reconRepo      portsrepo.ReconciliationRepositoryFacade
	txnRepo        portsrepo.TransactionReader
	accountRepo    portsrepo.GLAccountReader
	driftTolerance decimal.Decimal
	concurrency    int
	now            func() time.Time
}

// ReconciliationServiceOption is a functional option for configuring the reconciliation service
type ReconciliationServiceOption func(*reconciliationService)

// WithDriftTolerance sets the balance difference above which drift is reported.
func WithDriftTolerance(tolerance decimal.Decimal) ReconciliationServiceOption {
	return func(s *reconciliationService) {
		s.driftTolerance = tolerance
	}
}

// WithSyncConcurrency bounds how many bank accounts an organization-wide sync runs at once.
func WithSyncConcurrency(n int) ReconciliationServiceOption {
	return func(s *reconciliationService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithReconciliationClock sets the clock used for sync timestamps.
func WithReconciliationClock(now func() time.Time) ReconciliationServiceOption {
	return func(s *reconciliationService) {
		s.now = now
	}
}

// NewReconciliationService creates a new ReconciliationService with the provided options
func NewReconciliationService(source portssvc.ReconciliationSource, reconRepo portsrepo.ReconciliationRepositoryFacade, txnRepo portsrepo.TransactionReader, accountRepo portsrepo.GLAccountReader, options ...ReconciliationServiceOption) portssvc.ReconciliationSvcFacade {
	svc := &reconciliationService{
		source:         source,
		reconRepo:      reconRepo,
		txnRepo:        txnRepo,
		accountRepo:    accountRepo,
		driftTolerance: DefaultDriftTolerance,
		concurrency:    defaultSyncConcurrency,
		now:            time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// SyncReconciliationTransactions implements portssvc.ReconciliationSyncSvc
func (s *reconciliationService) SyncReconciliationTransactions(ctx context.Context, orgID string, params dto.SyncReconciliationParams, opts domain.SyncOptions) (*domain.SyncResult, error) {
	if err := validateStruct(params); err != nil {
		return nil, err
	}
	logger := s.GetLogger(ctx).With(
		slog.String("org_id", orgID),
		slog.String("reconciliation_log_id", params.ReconciliationLogID),
		slog.String("external_reconciliation_id", params.ExternalReconciliationID))

	result := &domain.SyncResult{Unmatched: []string{}, Errors: []string{}}

	records, err := s.source.ListReconciliationTransactions(ctx, params.ExternalBankAccountID, params.ExternalReconciliationID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrExternalService) {
			err = fmt.Errorf("%w: %v", apperrors.ErrExternalService, err)
		}
		msg := fmt.Sprintf("failed to fetch reconciliation transactions: %v", err)
		logger.Error("Reconciliation fetch failed", slog.String("error", err.Error()))
		s.writeLog(ctx, orgID, params.ReconciliationLogID, result, &msg, opts)
		return result, fmt.Errorf("sync reconciliation %s: %w", params.ExternalReconciliationID, err)
	}

	logID := params.ReconciliationLogID
	aborted := false
	for i, rec := range records {
		if ctx.Err() != nil {
			aborted = true
			break
		}
		extID, ok := coalesce.FirstDefined(map[string]any(rec), externalIDFields...)
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("record %d: missing transaction id", i))
			continue
		}

		txnID, err := s.txnRepo.FindTransactionIDByExternalID(ctx, orgID, extID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				result.Unmatched = append(result.Unmatched, extID)
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("transaction %s: lookup failed: %v", extID, err))
			continue
		}

		now := s.now().UTC()
		state := domain.BankRegisterState{
			OrgID:               orgID,
			BankGLAccountID:     params.BankGLAccountID,
			TransactionID:       txnID,
			Status:              recordStatus(rec, opts.MarkReconciled),
			ReconciliationLogID: &logID,
			UpdatedAt:           now,
		}
		if state.Status.Rank() >= domain.RegisterCleared.Rank() {
			state.ClearedAt = &now
		}
		if state.Status == domain.RegisterReconciled {
			state.ReconciledAt = &now
		}
		if _, err := s.reconRepo.UpsertRegisterState(ctx, state); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("transaction %s: register update failed: %v", extID, err))
			continue
		}
		result.Synced++
	}

	var notes []string
	if aborted {
		notes = append(notes, fmt.Sprintf("sync aborted after %d of %d records", result.Synced+len(result.Unmatched)+len(result.Errors), len(records)))
	} else if opts.EndingBalance != nil && opts.StatementEndingDate != nil {
		book, err := s.reconRepo.CalculateBookBalance(ctx, orgID, params.BankGLAccountID, *opts.StatementEndingDate)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("book balance: %v", err))
		} else {
			drift := domain.Round2(opts.EndingBalance.Sub(book))
			result.BookBalance = &book
			result.BalanceDrift = &drift
			if drift.Abs().GreaterThan(s.driftTolerance) {
				notes = append(notes, fmt.Sprintf("balance drift %s: statement ending balance %s vs book balance %s as of %s",
					drift.StringFixed(2), opts.EndingBalance.StringFixed(2), book.StringFixed(2),
					opts.StatementEndingDate.Format(dto.DateLayout)))
			}
		}
	}

	lastError := composeSyncError(result, notes)
	s.writeLog(ctx, orgID, logID, result, lastError, opts)

	logger.Info("Reconciliation synced",
		slog.Int("synced", result.Synced),
		slog.Int("unmatched", len(result.Unmatched)),
		slog.Int("errors", len(result.Errors)),
		slog.Bool("aborted", aborted))
	if aborted {
		return result, fmt.Errorf("sync reconciliation %s: %w", params.ExternalReconciliationID, ctx.Err())
	}
	return result, nil
}

// recordStatus maps an external record onto the register lifecycle.
func recordStatus(rec domain.ExternalTransactionRecord, markReconciled bool) domain.RegisterStatus {
	if markReconciled {
		return domain.RegisterReconciled
	}
	m := map[string]any(rec)
	if status, ok := coalesce.FirstDefined(m, statusFields...); ok {
		lower := strings.ToLower(status)
		switch {
		case strings.Contains(lower, "reconciled") && !strings.Contains(lower, "unreconciled"):
			return domain.RegisterReconciled
		case strings.Contains(lower, "cleared") && !strings.Contains(lower, "uncleared"):
			return domain.RegisterCleared
		}
	}
	if cleared, ok := coalesce.FirstDefined(m, clearedFields...); ok && cleared {
		return domain.RegisterCleared
	}
	return domain.RegisterUncleared
}

// composeSyncError builds the log error text, or nil for a clean sync.
func composeSyncError(result *domain.SyncResult, notes []string) *string {
	var parts []string
	if n := len(result.Unmatched); n > 0 {
		parts = append(parts, fmt.Sprintf("%d unmatched transaction(s)", n))
	}
	if n := len(result.Errors); n > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s): %s", n, strings.Join(result.Errors, "; ")))
	}
	parts = append(parts, notes...)
	if len(parts) == 0 {
		return nil
	}
	msg := strings.Join(parts, "; ")
	return &msg
}

// writeLog overwrites the log with this call's findings. It survives cancellation of ctx.
func (s *reconciliationService) writeLog(ctx context.Context, orgID, logID string, result *domain.SyncResult, lastError *string, opts domain.SyncOptions) {
	update := domain.ReconciliationSyncUpdate{
		LogID:                logID,
		SyncedAt:             s.now().UTC(),
		UnmatchedExternalIDs: result.Unmatched,
		LastSyncError:        lastError,
		EndingBalance:        opts.EndingBalance,
		StatementEndingDate:  opts.StatementEndingDate,
	}
	if err := s.reconRepo.UpdateLogSyncResult(context.WithoutCancel(ctx), orgID, update); err != nil {
		s.LogError(ctx, err, "Failed to write reconciliation log", slog.String("reconciliation_log_id", logID))
	}
}

// SyncReconciliationLog implements portssvc.ReconciliationSyncSvc
func (s *reconciliationService) SyncReconciliationLog(ctx context.Context, orgID, logID string, req dto.SyncReconciliationRequest) (*domain.SyncResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	log, err := s.reconRepo.FindLogByID(ctx, orgID, logID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reconciliation log %s: %w", logID, err)
	}
	account, err := s.accountRepo.FindGLAccountByID(ctx, orgID, log.BankGLAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank account %s: %w", log.BankGLAccountID, err)
	}
	if account.ExternalID == nil || *account.ExternalID == "" {
		return nil, fmt.Errorf("%w: bank account %s is not linked to an external bank account", apperrors.ErrValidation, account.ID)
	}

	opts := domain.SyncOptions{
		MarkReconciled:      req.MarkReconciled,
		EndingBalance:       log.EndingBalance,
		StatementEndingDate: log.StatementEndingDate,
	}
	if req.EndingBalance != nil {
		opts.EndingBalance = req.EndingBalance
	}
	if req.StatementEndingDate != nil && *req.StatementEndingDate != "" {
		d, err := time.Parse(dto.DateLayout, *req.StatementEndingDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid statementEndingDate %q", apperrors.ErrValidation, *req.StatementEndingDate)
		}
		opts.StatementEndingDate = &d
	}

	return s.SyncReconciliationTransactions(ctx, orgID, dto.SyncReconciliationParams{
		ReconciliationLogID:      log.ID,
		ExternalReconciliationID: log.ExternalReconciliationID,
		BankGLAccountID:          log.BankGLAccountID,
		ExternalBankAccountID:    *account.ExternalID,
	}, opts)
}

// SyncBankAccount implements portssvc.ReconciliationSyncSvc
func (s *reconciliationService) SyncBankAccount(ctx context.Context, orgID, glAccountID string, req dto.SyncBankAccountRequest) (*domain.BankAccountSyncSummary, error) {
	account, err := s.accountRepo.FindGLAccountByID(ctx, orgID, glAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank account %s: %w", glAccountID, err)
	}
	if account.ExternalID == nil || *account.ExternalID == "" {
		return nil, fmt.Errorf("%w: bank account %s is not linked to an external bank account", apperrors.ErrValidation, glAccountID)
	}
	return s.syncAccount(ctx, orgID, *account, req.IncludeFinished)
}

func (s *reconciliationService) syncAccount(ctx context.Context, orgID string, account domain.GLAccount, includeFinished bool) (*domain.BankAccountSyncSummary, error) {
	logger := s.GetLogger(ctx).With(slog.String("org_id", orgID), slog.String("bank_gl_account_id", account.ID))
	summary := &domain.BankAccountSyncSummary{BankGLAccountID: account.ID}
	externalBankID := *account.ExternalID

	recs, err := s.source.ListReconciliations(ctx, externalBankID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrExternalService) {
			err = fmt.Errorf("%w: %v", apperrors.ErrExternalService, err)
		}
		summary.FatalError = err.Error()
		return summary, fmt.Errorf("list reconciliations for bank account %s: %w", account.ID, err)
	}
	summary.Reconciliations = len(recs)

	for _, rec := range recs {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		now := s.now().UTC()
		log, err := s.reconRepo.UpsertLogByExternalID(ctx, domain.ReconciliationLog{
			OrgID:                    orgID,
			BankGLAccountID:          account.ID,
			ExternalReconciliationID: rec.ID,
			StatementEndingDate:      rec.StatementEndingDate,
			IsFinished:               rec.IsFinished,
			AuditFields:              domain.AuditFields{CreatedAt: now, UpdatedAt: now},
		})
		if err != nil {
			summary.Failed++
			logger.Error("Failed to upsert reconciliation log", slog.String("external_reconciliation_id", rec.ID), slog.String("error", err.Error()))
			continue
		}
		summary.LogsUpserted++

		if rec.IsFinished && !includeFinished {
			continue
		}

		opts := domain.SyncOptions{MarkReconciled: rec.IsFinished, StatementEndingDate: rec.StatementEndingDate}
		balance, err := s.source.GetReconciliationBalance(ctx, externalBankID, rec.ID)
		if err != nil {
			logger.Warn("Reconciliation balance unavailable; drift check skipped",
				slog.String("external_reconciliation_id", rec.ID), slog.String("error", err.Error()))
		} else {
			ending := balance.EndingBalance
			opts.EndingBalance = &ending
		}

		result, err := s.SyncReconciliationTransactions(ctx, orgID, dto.SyncReconciliationParams{
			ReconciliationLogID:      log.ID,
			ExternalReconciliationID: rec.ID,
			BankGLAccountID:          account.ID,
			ExternalBankAccountID:    externalBankID,
		}, opts)
		if result != nil {
			summary.Synced += result.Synced
			summary.Unmatched += len(result.Unmatched)
			summary.Errors += len(result.Errors)
			if result.BalanceDrift != nil && result.BalanceDrift.Abs().GreaterThan(s.driftTolerance) {
				summary.Drifted++
			}
		}
		if err != nil {
			summary.Failed++
			logger.Error("Reconciliation sync failed", slog.String("external_reconciliation_id", rec.ID), slog.String("error", err.Error()))
		}
	}
	return summary, nil
}

// SyncOrganization implements portssvc.ReconciliationSyncSvc
func (s *reconciliationService) SyncOrganization(ctx context.Context, orgID string, opts dto.SyncOrganizationOptions) (*domain.OrganizationSyncSummary, error) {
	accounts, err := s.accountRepo.ListBankAccountsForSync(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}

	limit := s.concurrency
	if opts.Concurrency > 0 {
		limit = opts.Concurrency
	}

	summaries := make([]domain.BankAccountSyncSummary, len(accounts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, account := range accounts {
		if account.ExternalID == nil || *account.ExternalID == "" {
			summaries[i] = domain.BankAccountSyncSummary{BankGLAccountID: account.ID}
			continue
		}
		i, account := i, account
		g.Go(func() error {
			summary, err := s.syncAccount(gctx, orgID, account, opts.IncludeFinished)
			if summary != nil {
				summaries[i] = *summary
			}
			if err != nil {
				summaries[i].BankGLAccountID = account.ID
				summaries[i].FatalError = err.Error()
			}
			// One account's failure does not cancel the others.
			return nil
		})
	}
	_ = g.Wait()

	out := &domain.OrganizationSyncSummary{Accounts: summaries}
	for _, sm := range summaries {
		out.Synced += sm.Synced
		out.Unmatched += sm.Unmatched
		out.Errors += sm.Errors
		out.Failed += sm.Failed
		if sm.FatalError != "" {
			out.Failed++
		}
	}
	s.LogInfo(ctx, "Organization reconciliation sync finished",
		slog.String("org_id", orgID),
		slog.Int("accounts", len(accounts)),
		slog.Int("synced", out.Synced),
		slog.Int("failed", out.Failed))
	return out, nil
}

// SetRegisterStatus implements portssvc.BankRegisterSvc
func (s *reconciliationService) SetRegisterStatus(ctx context.Context, orgID, glAccountID, transactionID string, req dto.SetRegisterStatusRequest) (*domain.BankRegisterState, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.txnRepo.FindTransactionByID(ctx, orgID, transactionID); err != nil {
		return nil, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
	}

	now := s.now().UTC()
	state := domain.BankRegisterState{
		OrgID:           orgID,
		BankGLAccountID: glAccountID,
		TransactionID:   transactionID,
		UpdatedAt:       now,
	}
	current, err := s.reconRepo.FindRegisterState(ctx, orgID, glAccountID, transactionID)
	switch {
	case err == nil:
		if current.Status == domain.RegisterReconciled {
			return nil, fmt.Errorf("%w: transaction %s is reconciled and cannot be changed manually", apperrors.ErrConflict, transactionID)
		}
		state.ClearedAt = current.ClearedAt
		state.ReconciliationLogID = current.ReconciliationLogID
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		return nil, fmt.Errorf("failed to load register state: %w", err)
	}

	state.Status = domain.RegisterStatus(req.Status)
	if state.Status == domain.RegisterCleared {
		if state.ClearedAt == nil {
			state.ClearedAt = &now
		}
	} else {
		state.ClearedAt = nil
	}

	if err := s.reconRepo.SetRegisterStatus(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to set register status: %w", err)
	}
	s.LogInfo(ctx, "Register status set manually",
		slog.String("transaction_id", transactionID),
		slog.String("status", string(state.Status)))
	return &state, nil
}
