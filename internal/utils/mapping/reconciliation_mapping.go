package mapping

import (
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/bbabel1/property-manager-sub016/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelReconciliationLog converts a domain ReconciliationLog to a model ReconciliationLog
func ToModelReconciliationLog(d domain.ReconciliationLog) models.ReconciliationLog {
	m := models.ReconciliationLog{
		ID:                              d.ID,
		OrgID:                           d.OrgID,
		BankGLAccountID:                 d.BankGLAccountID,
		BuildiumReconciliationID:        d.ExternalReconciliationID,
		StatementEndingDate:             d.StatementEndingDate,
		IsFinished:                      d.IsFinished,
		LastSyncedAt:                    d.LastSyncedAt,
		LastSyncError:                   d.LastSyncError,
		UnmatchedBuildiumTransactionIDs: d.UnmatchedExternalIDs,
		AuditFields:                     ToModelAuditFields(d.AuditFields),
	}
	if d.EndingBalance != nil {
		m.EndingBalance = decimal.NewNullDecimal(*d.EndingBalance)
	}
	if m.UnmatchedBuildiumTransactionIDs == nil {
		m.UnmatchedBuildiumTransactionIDs = []string{}
	}
	return m
}

// ToDomainReconciliationLog converts a model ReconciliationLog to a domain ReconciliationLog
func ToDomainReconciliationLog(m models.ReconciliationLog) domain.ReconciliationLog {
	d := domain.ReconciliationLog{
		ID:                       m.ID,
		OrgID:                    m.OrgID,
		BankGLAccountID:          m.BankGLAccountID,
		ExternalReconciliationID: m.BuildiumReconciliationID,
		StatementEndingDate:      m.StatementEndingDate,
		IsFinished:               m.IsFinished,
		LastSyncedAt:             m.LastSyncedAt,
		LastSyncError:            m.LastSyncError,
		UnmatchedExternalIDs:     m.UnmatchedBuildiumTransactionIDs,
		AuditFields:              ToDomainAuditFields(m.AuditFields),
	}
	if m.EndingBalance.Valid {
		balance := m.EndingBalance.Decimal
		d.EndingBalance = &balance
	}
	if d.UnmatchedExternalIDs == nil {
		d.UnmatchedExternalIDs = []string{}
	}
	return d
}

// ToModelBankRegisterState converts a domain BankRegisterState to a model BankRegisterState
func ToModelBankRegisterState(d domain.BankRegisterState) models.BankRegisterState {
	return models.BankRegisterState{
		OrgID:               d.OrgID,
		BankGLAccountID:     d.BankGLAccountID,
		TransactionID:       d.TransactionID,
		Status:              string(d.Status),
		ClearedAt:           d.ClearedAt,
		ReconciledAt:        d.ReconciledAt,
		ReconciliationLogID: d.ReconciliationLogID,
		UpdatedAt:           d.UpdatedAt,
	}
}

// ToDomainBankRegisterState converts a model BankRegisterState to a domain BankRegisterState
func ToDomainBankRegisterState(m models.BankRegisterState) domain.BankRegisterState {
	return domain.BankRegisterState{
		OrgID:               m.OrgID,
		BankGLAccountID:     m.BankGLAccountID,
		TransactionID:       m.TransactionID,
		Status:              domain.RegisterStatus(m.Status),
		ClearedAt:           m.ClearedAt,
		ReconciledAt:        m.ReconciledAt,
		ReconciliationLogID: m.ReconciliationLogID,
		UpdatedAt:           m.UpdatedAt,
	}
}
